package repos

import (
  "context"
  "errors"
  "gorm.io/gorm"
  "github.com/steuertel/collector/internal/logger"
  "github.com/steuertel/collector/internal/types"
)

type AIConfigRepo interface {
  Get(ctx context.Context, tx *gorm.DB) (*types.AIConfig, error)
  AddUsage(ctx context.Context, tx *gorm.DB, id uint, tokensInput, tokensOutput int, costUSD float64) error
  Save(ctx context.Context, tx *gorm.DB, config *types.AIConfig) error
  ResetBudget(ctx context.Context, tx *gorm.DB, id uint) error
  ResetAllStats(ctx context.Context, tx *gorm.DB, id uint) error
}

type aiConfigRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewAIConfigRepo(db *gorm.DB, baseLog *logger.Logger) AIConfigRepo {
  repoLog := baseLog.With("repo", "AIConfigRepo")
  return &aiConfigRepo{db: db, log: repoLog}
}

// Get returns the singleton config row, creating it with defaults the first
// time it is asked for.
func (r *aiConfigRepo) Get(ctx context.Context, tx *gorm.DB) (*types.AIConfig, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var config types.AIConfig
  err := transaction.WithContext(ctx).Order("id").First(&config).Error
  if err == nil {
    return &config, nil
  }
  if !errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, err
  }

  config = types.AIConfig{
    Model:          types.DefaultAIModel,
    BudgetLimitUSD: 10.0,
  }
  if err := transaction.WithContext(ctx).Create(&config).Error; err != nil {
    return nil, err
  }
  r.log.Info("Created default AI config row")
  return &config, nil
}

// AddUsage increments the request, token and spend counters in a single
// UPDATE so that concurrent batches cannot lose increments.
func (r *aiConfigRepo) AddUsage(ctx context.Context, tx *gorm.DB, id uint, tokensInput, tokensOutput int, costUSD float64) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.AIConfig{}).
    Where("id = ?", id).
    Updates(map[string]interface{}{
      "total_requests":      gorm.Expr("total_requests + 1"),
      "total_tokens_input":  gorm.Expr("total_tokens_input + ?", tokensInput),
      "total_tokens_output": gorm.Expr("total_tokens_output + ?", tokensOutput),
      "budget_used_usd":     gorm.Expr("budget_used_usd + ?", costUSD),
    }).Error
}

func (r *aiConfigRepo) Save(ctx context.Context, tx *gorm.DB, config *types.AIConfig) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).Save(config).Error
}

func (r *aiConfigRepo) ResetBudget(ctx context.Context, tx *gorm.DB, id uint) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.AIConfig{}).
    Where("id = ?", id).
    Update("budget_used_usd", 0).Error
}

func (r *aiConfigRepo) ResetAllStats(ctx context.Context, tx *gorm.DB, id uint) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.AIConfig{}).
    Where("id = ?", id).
    Updates(map[string]interface{}{
      "budget_used_usd":     0,
      "total_requests":      0,
      "total_tokens_input":  0,
      "total_tokens_output": 0,
    }).Error
}
