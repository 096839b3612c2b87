package types

import (
  "time"
)

// Practitioner is one licensed tax advisor. Every practitioner is owned by
// exactly one firm at any time; reassignment happens only through the
// reconciliation engine.
type Practitioner struct {
  ID          uint       `gorm:"primaryKey" json:"id"`
  RegistryID  *string    `gorm:"column:registry_id;uniqueIndex" json:"registry_id,omitempty"`
  Title       string     `gorm:"column:title" json:"title,omitempty"`
  FirstName   string     `gorm:"column:first_name" json:"first_name,omitempty"`
  LastName    string     `gorm:"column:last_name;not null;index" json:"last_name"`
  Email       *string    `gorm:"column:email" json:"email,omitempty"`
  Mobile      *string    `gorm:"column:mobile" json:"mobile,omitempty"`
  AppointedAt *time.Time `gorm:"column:appointed_at" json:"appointed_at,omitempty"`
  FirmID      uint       `gorm:"column:firm_id;not null;index" json:"firm_id"`
  Firm        *Firm      `gorm:"foreignKey:FirmID" json:"firm,omitempty"`
  CreatedAt   time.Time  `json:"created_at"`
}

func (Practitioner) TableName() string {
  return "practitioner"
}

func (p *Practitioner) FullName() string {
  if p.FirstName != "" {
    return p.FirstName + " " + p.LastName
  }
  return p.LastName
}
