package repos

import (
  "context"
  "errors"
  "gorm.io/gorm"
  "github.com/steuertel/collector/internal/logger"
  "github.com/steuertel/collector/internal/types"
)

type FirmRepo interface {
  GetOrCreate(ctx context.Context, tx *gorm.DB, firm *types.Firm) (*types.Firm, bool, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Firm, error)
  FindCompanyCandidates(ctx context.Context, tx *gorm.DB, postalCode string) ([]*types.Firm, error)
  CountPractitioners(ctx context.Context, tx *gorm.DB, firmID uint) (int64, error)
  Delete(ctx context.Context, tx *gorm.DB, firmID uint) error
}

type firmRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewFirmRepo(db *gorm.DB, baseLog *logger.Logger) FirmRepo {
  repoLog := baseLog.With("repo", "FirmRepo")
  return &firmRepo{db: db, log: repoLog}
}

// GetOrCreate looks a firm up by (name, postal code) and creates it when
// absent. Attributes of an existing firm are never refreshed; the first
// scrape of a firm wins.
func (r *firmRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, firm *types.Firm) (*types.Firm, bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var existing types.Firm
  err := transaction.WithContext(ctx).
    Where("name = ? AND postal_code = ?", firm.Name, firm.PostalCode).
    First(&existing).Error
  if err == nil {
    return &existing, false, nil
  }
  if !errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, false, err
  }

  if err := transaction.WithContext(ctx).Create(firm).Error; err != nil {
    return nil, false, err
  }
  r.log.Debug("Created firm", "name", firm.Name, "postal_code", firm.PostalCode)
  return firm, true, nil
}

func (r *firmRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Firm, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var firm types.Firm
  if err := transaction.WithContext(ctx).First(&firm, id).Error; err != nil {
    return nil, err
  }
  return &firm, nil
}

// FindCompanyCandidates returns the firms of one postal code that carry a
// legal form, ordered by id so that runs over identical data score
// candidates in the same order every time.
func (r *firmRepo) FindCompanyCandidates(ctx context.Context, tx *gorm.DB, postalCode string) ([]*types.Firm, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Firm
  if err := transaction.WithContext(ctx).
    Where("postal_code = ? AND legal_form_id IS NOT NULL", postalCode).
    Order("id").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *firmRepo) CountPractitioners(ctx context.Context, tx *gorm.DB, firmID uint) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Practitioner{}).
    Where("firm_id = ?", firmID).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}

func (r *firmRepo) Delete(ctx context.Context, tx *gorm.DB, firmID uint) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).Delete(&types.Firm{}, firmID).Error
}
