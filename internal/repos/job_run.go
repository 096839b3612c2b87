package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
  "github.com/steuertel/collector/internal/logger"
  "github.com/steuertel/collector/internal/types"
)

type JobRunRepo interface {
  Create(ctx context.Context, tx *gorm.DB, job *types.JobRun) (*types.JobRun, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.JobRun, error)
  AddAIUsage(ctx context.Context, tx *gorm.DB, id uuid.UUID, tokensInput, tokensOutput int, costUSD float64) error
  UpdateResult(ctx context.Context, tx *gorm.DB, id uuid.UUID, result datatypes.JSON) error
}

type jobRunRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
  repoLog := baseLog.With("repo", "JobRunRepo")
  return &jobRunRepo{db: db, log: repoLog}
}

func (r *jobRunRepo) Create(ctx context.Context, tx *gorm.DB, job *types.JobRun) (*types.JobRun, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if job.ID == uuid.Nil {
    job.ID = uuid.New()
  }
  if err := transaction.WithContext(ctx).Create(job).Error; err != nil {
    return nil, err
  }
  return job, nil
}

func (r *jobRunRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.JobRun, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var job types.JobRun
  if err := transaction.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
    return nil, err
  }
  return &job, nil
}

// AddAIUsage attributes one AI call to a job. A missing job row is not an
// error; attribution is best effort.
func (r *jobRunRepo) AddAIUsage(ctx context.Context, tx *gorm.DB, id uuid.UUID, tokensInput, tokensOutput int, costUSD float64) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.JobRun{}).
    Where("id = ?", id).
    Updates(map[string]interface{}{
      "ai_requests":      gorm.Expr("ai_requests + 1"),
      "ai_tokens_input":  gorm.Expr("ai_tokens_input + ?", tokensInput),
      "ai_tokens_output": gorm.Expr("ai_tokens_output + ?", tokensOutput),
      "ai_cost_usd":      gorm.Expr("ai_cost_usd + ?", costUSD),
    }).Error
}

func (r *jobRunRepo) UpdateResult(ctx context.Context, tx *gorm.DB, id uuid.UUID, result datatypes.JSON) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.JobRun{}).
    Where("id = ?", id).
    Update("result", result).Error
}
