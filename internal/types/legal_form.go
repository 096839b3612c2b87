package types

import (
  "time"
)

// LegalForm is the legal form of a firm, keyed by its short code
// (e.g. "GbR", "PartG mbB"). A firm referencing a legal form is a real
// company; a firm without one is a standalone placeholder.
type LegalForm struct {
  ID        uint      `gorm:"primaryKey" json:"id"`
  Code      string    `gorm:"column:code;uniqueIndex;not null" json:"code"`
  Label     string    `gorm:"column:label" json:"label,omitempty"`
  CreatedAt time.Time `json:"created_at"`
}

func (LegalForm) TableName() string {
  return "legal_form"
}

// LegalFormSeed lists the common German legal forms created on startup.
var LegalFormSeed = []LegalForm{
  {Code: "Einzelunternehmen", Label: "Einzelunternehmen"},
  {Code: "GbR", Label: "Gesellschaft bürgerlichen Rechts"},
  {Code: "PartG", Label: "Partnerschaftsgesellschaft"},
  {Code: "PartG mbB", Label: "Partnerschaftsgesellschaft mit beschränkter Berufshaftung"},
  {Code: "GmbH", Label: "Gesellschaft mit beschränkter Haftung"},
  {Code: "UG", Label: "Unternehmergesellschaft (haftungsbeschränkt)"},
  {Code: "AG", Label: "Aktiengesellschaft"},
  {Code: "KG", Label: "Kommanditgesellschaft"},
  {Code: "OHG", Label: "Offene Handelsgesellschaft"},
  {Code: "e.K.", Label: "eingetragener Kaufmann"},
}
