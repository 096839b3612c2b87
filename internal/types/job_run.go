package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// JobRun is one crawl/reconcile job. The reconciliation engine only ever
// adds AI usage onto an existing row and stores its result blob; lifecycle
// management belongs to the job runner.
type JobRun struct {
  ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  JobType        string         `gorm:"column:job_type;not null;index" json:"job_type"`
  Status         string         `gorm:"column:status;not null;index" json:"status"`
  PostalCode     string         `gorm:"column:postal_code;index" json:"postal_code,omitempty"`
  AIRequests     int            `gorm:"column:ai_requests;not null;default:0" json:"ai_requests"`
  AITokensInput  int            `gorm:"column:ai_tokens_input;not null;default:0" json:"ai_tokens_input"`
  AITokensOutput int            `gorm:"column:ai_tokens_output;not null;default:0" json:"ai_tokens_output"`
  AICostUSD      float64        `gorm:"column:ai_cost_usd;not null;default:0" json:"ai_cost_usd"`
  Result         datatypes.JSON `gorm:"column:result" json:"result,omitempty"`
  CreatedAt      time.Time      `json:"created_at"`
  UpdatedAt      time.Time      `json:"updated_at"`
}

func (JobRun) TableName() string {
  return "job_run"
}
