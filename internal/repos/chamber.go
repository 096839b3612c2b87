package repos

import (
  "context"
  "errors"
  "gorm.io/gorm"
  "github.com/steuertel/collector/internal/logger"
  "github.com/steuertel/collector/internal/types"
)

type ChamberRepo interface {
  GetOrCreate(ctx context.Context, tx *gorm.DB, name, street, postalCode, city string) (*types.Chamber, error)
  GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Chamber, error)
}

type chamberRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewChamberRepo(db *gorm.DB, baseLog *logger.Logger) ChamberRepo {
  repoLog := baseLog.With("repo", "ChamberRepo")
  return &chamberRepo{db: db, log: repoLog}
}

func (r *chamberRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, name, street, postalCode, city string) (*types.Chamber, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var chamber types.Chamber
  err := transaction.WithContext(ctx).Where("name = ?", name).First(&chamber).Error
  if err == nil {
    return &chamber, nil
  }
  if !errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, err
  }

  chamber = types.Chamber{
    Name:       name,
    Street:     street,
    PostalCode: postalCode,
    City:       city,
  }
  if err := transaction.WithContext(ctx).Create(&chamber).Error; err != nil {
    return nil, err
  }
  r.log.Debug("Created chamber", "name", name)
  return &chamber, nil
}

func (r *chamberRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Chamber, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var chamber types.Chamber
  if err := transaction.WithContext(ctx).Where("name = ?", name).First(&chamber).Error; err != nil {
    return nil, err
  }
  return &chamber, nil
}
