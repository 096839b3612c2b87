package types

import (
  "strings"
  "time"
)

// Firm is one organizational entity at one address. A firm without a legal
// form is a placeholder created for a practitioner that was scraped as a
// standalone entry before (or without) the real company page.
type Firm struct {
  ID          uint       `gorm:"primaryKey" json:"id"`
  Name        string     `gorm:"column:name;not null;index;uniqueIndex:uq_firm_name_postal_code" json:"name"`
  LegalFormID *uint      `gorm:"column:legal_form_id;index" json:"legal_form_id,omitempty"`
  Street      string     `gorm:"column:street" json:"street,omitempty"`
  PostalCode  string     `gorm:"column:postal_code;size:5;index;uniqueIndex:uq_firm_name_postal_code" json:"postal_code"`
  City        string     `gorm:"column:city" json:"city,omitempty"`
  Phone       string     `gorm:"column:phone" json:"phone,omitempty"`
  Fax         string     `gorm:"column:fax" json:"fax,omitempty"`
  Email       string     `gorm:"column:email" json:"email,omitempty"`
  Website     string     `gorm:"column:website" json:"website,omitempty"`
  ChamberID   *uint      `gorm:"column:chamber_id;index" json:"chamber_id,omitempty"`
  CreatedAt   time.Time  `json:"created_at"`
  UpdatedAt   time.Time  `json:"updated_at"`
}

func (Firm) TableName() string {
  return "firm"
}

// IsPlaceholder reports whether the firm stands in for a single practitioner.
func (f *Firm) IsPlaceholder() bool {
  return f.LegalFormID == nil
}

func (f *Firm) FullAddress() string {
  parts := []string{}
  if f.Street != "" {
    parts = append(parts, f.Street)
  }
  switch {
  case f.PostalCode != "" && f.City != "":
    parts = append(parts, f.PostalCode+" "+f.City)
  case f.PostalCode != "":
    parts = append(parts, f.PostalCode)
  case f.City != "":
    parts = append(parts, f.City)
  }
  return strings.Join(parts, ", ")
}
