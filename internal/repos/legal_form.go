package repos

import (
  "context"
  "errors"
  "gorm.io/gorm"
  "github.com/steuertel/collector/internal/logger"
  "github.com/steuertel/collector/internal/types"
)

type LegalFormRepo interface {
  GetOrCreate(ctx context.Context, tx *gorm.DB, code, label string) (*types.LegalForm, error)
  SeedDefaults(ctx context.Context, tx *gorm.DB) (int, error)
}

type legalFormRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewLegalFormRepo(db *gorm.DB, baseLog *logger.Logger) LegalFormRepo {
  repoLog := baseLog.With("repo", "LegalFormRepo")
  return &legalFormRepo{db: db, log: repoLog}
}

func (r *legalFormRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, code, label string) (*types.LegalForm, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var form types.LegalForm
  err := transaction.WithContext(ctx).Where("code = ?", code).First(&form).Error
  if err == nil {
    return &form, nil
  }
  if !errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, err
  }

  form = types.LegalForm{Code: code, Label: label}
  if err := transaction.WithContext(ctx).Create(&form).Error; err != nil {
    return nil, err
  }
  r.log.Debug("Created legal form", "code", code)
  return &form, nil
}

// SeedDefaults creates the common legal forms that are missing and returns
// how many were created.
func (r *legalFormRepo) SeedDefaults(ctx context.Context, tx *gorm.DB) (int, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  created := 0
  for _, seed := range types.LegalFormSeed {
    var existing types.LegalForm
    err := transaction.WithContext(ctx).Where("code = ?", seed.Code).First(&existing).Error
    if err == nil {
      continue
    }
    if !errors.Is(err, gorm.ErrRecordNotFound) {
      return created, err
    }
    form := types.LegalForm{Code: seed.Code, Label: seed.Label}
    if err := transaction.WithContext(ctx).Create(&form).Error; err != nil {
      return created, err
    }
    created++
  }
  if created > 0 {
    r.log.Info("Seeded legal forms", "created", created)
  }
  return created, nil
}
