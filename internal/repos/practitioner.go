package repos

import (
  "context"
  "errors"
  "strings"
  "gorm.io/gorm"
  "github.com/steuertel/collector/internal/logger"
  "github.com/steuertel/collector/internal/types"
)

// ErrMissingLastName marks a scraped record without a usable last name.
// Callers log and skip the record; it must never abort a batch.
var ErrMissingLastName = errors.New("practitioner last name is required")

type PractitionerRepo interface {
  Upsert(ctx context.Context, tx *gorm.DB, practitioner *types.Practitioner) (*types.Practitioner, bool, error)
  GetByRegistryID(ctx context.Context, tx *gorm.DB, registryID string) (*types.Practitioner, error)
  FindStandaloneByPostalCode(ctx context.Context, tx *gorm.DB, postalCode string) ([]*types.Practitioner, error)
  UpdateFirm(ctx context.Context, tx *gorm.DB, practitionerID, firmID uint) error
}

type practitionerRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPractitionerRepo(db *gorm.DB, baseLog *logger.Logger) PractitionerRepo {
  repoLog := baseLog.With("repo", "PractitionerRepo")
  return &practitionerRepo{db: db, log: repoLog}
}

// Upsert creates a practitioner, or updates the existing row when the
// registry id is already known. Name, title and owning firm are always
// refreshed; email, mobile and appointment date only when the incoming
// record actually provides them.
func (r *practitionerRepo) Upsert(ctx context.Context, tx *gorm.DB, practitioner *types.Practitioner) (*types.Practitioner, bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if strings.TrimSpace(practitioner.LastName) == "" {
    return nil, false, ErrMissingLastName
  }

  if practitioner.RegistryID != nil && *practitioner.RegistryID != "" {
    var existing types.Practitioner
    err := transaction.WithContext(ctx).
      Where("registry_id = ?", *practitioner.RegistryID).
      First(&existing).Error
    if err == nil {
      existing.LastName = practitioner.LastName
      existing.FirstName = practitioner.FirstName
      existing.Title = practitioner.Title
      existing.FirmID = practitioner.FirmID
      if practitioner.Email != nil {
        existing.Email = practitioner.Email
      }
      if practitioner.Mobile != nil {
        existing.Mobile = practitioner.Mobile
      }
      if practitioner.AppointedAt != nil {
        existing.AppointedAt = practitioner.AppointedAt
      }
      if err := transaction.WithContext(ctx).Save(&existing).Error; err != nil {
        return nil, false, err
      }
      return &existing, false, nil
    }
    if !errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, false, err
    }
  }

  if err := transaction.WithContext(ctx).Create(practitioner).Error; err != nil {
    return nil, false, err
  }
  r.log.Debug("Created practitioner", "last_name", practitioner.LastName, "firm_id", practitioner.FirmID)
  return practitioner, true, nil
}

func (r *practitionerRepo) GetByRegistryID(ctx context.Context, tx *gorm.DB, registryID string) (*types.Practitioner, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var practitioner types.Practitioner
  if err := transaction.WithContext(ctx).
    Where("registry_id = ?", registryID).
    First(&practitioner).Error; err != nil {
    return nil, err
  }
  return &practitioner, nil
}

// FindStandaloneByPostalCode returns the practitioners of one postal code
// whose owning firm has no legal form, with that placeholder firm preloaded.
// Ordered by practitioner id for run-to-run determinism.
func (r *practitionerRepo) FindStandaloneByPostalCode(ctx context.Context, tx *gorm.DB, postalCode string) ([]*types.Practitioner, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Practitioner
  if err := transaction.WithContext(ctx).
    Joins("JOIN firm ON firm.id = practitioner.firm_id").
    Where("firm.postal_code = ? AND firm.legal_form_id IS NULL", postalCode).
    Preload("Firm").
    Order("practitioner.id").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *practitionerRepo) UpdateFirm(ctx context.Context, tx *gorm.DB, practitionerID, firmID uint) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.Practitioner{}).
    Where("id = ?", practitionerID).
    Update("firm_id", firmID).Error
}
