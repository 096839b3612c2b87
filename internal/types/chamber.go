package types

import (
  "time"
)

// Chamber is a regional tax advisor chamber. Lookup entity, shared by many firms.
type Chamber struct {
  ID         uint      `gorm:"primaryKey" json:"id"`
  Name       string    `gorm:"column:name;uniqueIndex;not null" json:"name"`
  Street     string    `gorm:"column:street" json:"street,omitempty"`
  PostalCode string    `gorm:"column:postal_code;size:5" json:"postal_code,omitempty"`
  City       string    `gorm:"column:city" json:"city,omitempty"`
  CreatedAt  time.Time `json:"created_at"`
}

func (Chamber) TableName() string {
  return "chamber"
}
