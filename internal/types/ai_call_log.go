package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// AICallLog is one audit row per tie-breaker invocation, successful or not.
type AICallLog struct {
  ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  JobID     *uuid.UUID     `gorm:"type:uuid;column:job_id;index" json:"job_id,omitempty"`
  CallType  string         `gorm:"column:call_type;not null" json:"call_type"`
  Model     string         `gorm:"column:model;not null" json:"model"`
  Prompt    string         `gorm:"column:prompt" json:"prompt"`
  Response  string         `gorm:"column:response" json:"response"`
  Success   bool           `gorm:"column:success;not null" json:"success"`
  Error     string         `gorm:"column:error" json:"error,omitempty"`
  Usage     datatypes.JSON `gorm:"column:usage" json:"usage"`
  CreatedAt time.Time      `json:"created_at"`
}

func (AICallLog) TableName() string {
  return "ai_call_log"
}

// AICallUsage is the shape of the Usage JSON blob.
type AICallUsage struct {
  TokensInput  int     `json:"tokens_input"`
  TokensOutput int     `json:"tokens_output"`
  CostUSD      float64 `json:"cost_usd"`
}
