package types

import (
  "time"

  "github.com/steuertel/collector/internal/utils"
)

const DefaultAIModel = "anthropic/claude-3-haiku"

// AIConfig is the singleton configuration and budget ledger row for the
// AI tie-breaker. The API key is stored sealed; spend counters are
// incremented atomically through AIConfigRepo.AddUsage.
type AIConfig struct {
  ID                uint      `gorm:"primaryKey" json:"id"`
  APIKeySealed      string    `gorm:"column:api_key" json:"-"`
  Model             string    `gorm:"column:model" json:"model"`
  CustomModel       string    `gorm:"column:custom_model" json:"custom_model,omitempty"`
  BudgetLimitUSD    float64   `gorm:"column:budget_limit_usd" json:"budget_limit_usd"`
  BudgetUsedUSD     float64   `gorm:"column:budget_used_usd" json:"budget_used_usd"`
  TotalRequests     int       `gorm:"column:total_requests" json:"total_requests"`
  TotalTokensInput  int       `gorm:"column:total_tokens_input" json:"total_tokens_input"`
  TotalTokensOutput int       `gorm:"column:total_tokens_output" json:"total_tokens_output"`
  Enabled           bool      `gorm:"column:enabled" json:"enabled"`
  CreatedAt         time.Time `json:"created_at"`
  UpdatedAt         time.Time `json:"updated_at"`
}

func (AIConfig) TableName() string {
  return "ai_config"
}

// EffectiveModel prefers an explicitly entered custom model id over the
// catalogue selection.
func (c *AIConfig) EffectiveModel() string {
  if c.CustomModel != "" {
    return c.CustomModel
  }
  if c.Model != "" {
    return c.Model
  }
  return DefaultAIModel
}

func (c *AIConfig) BudgetRemaining() float64 {
  remaining := c.BudgetLimitUSD - c.BudgetUsedUSD
  if remaining < 0 {
    return 0
  }
  return remaining
}

func (c *AIConfig) BudgetExhausted() bool {
  return c.BudgetUsedUSD >= c.BudgetLimitUSD
}

// SetAPIKey seals the plaintext key with the app secret before it is stored.
func (c *AIConfig) SetAPIKey(plain, secret string) error {
  sealed, err := utils.SealSecret(plain, secret)
  if err != nil {
    return err
  }
  c.APIKeySealed = sealed
  return nil
}

// APIKey returns the decrypted key, or "" when none is stored or the app
// secret does not match the one the key was sealed with.
func (c *AIConfig) APIKey(secret string) string {
  plain, err := utils.OpenSecret(c.APIKeySealed, secret)
  if err != nil {
    return ""
  }
  return plain
}

func (c *AIConfig) MaskedAPIKey(secret string) string {
  key := c.APIKey(secret)
  if key == "" {
    return ""
  }
  if len(key) <= 8 {
    return "****"
  }
  return key[:4] + "..." + key[len(key)-4:]
}

func (c *AIConfig) IsConfigured(secret string) bool {
  return c.Enabled && c.APIKey(secret) != ""
}

// ModelOption is one selectable catalogue entry with its rough price point.
type ModelOption struct {
  ID        string  `json:"id"`
  Name      string  `json:"name"`
  CostPer1M float64 `json:"cost_per_1m"`
}

// AvailableModels lists the known OpenRouter models, sorted by cost.
var AvailableModels = []ModelOption{
  {ID: "mistralai/mistral-7b-instruct", Name: "Mistral 7B Instruct", CostPer1M: 0.05},
  {ID: "google/gemini-flash-1.5", Name: "Gemini Flash 1.5", CostPer1M: 0.075},
  {ID: "openai/gpt-4o-mini", Name: "GPT-4o Mini", CostPer1M: 0.15},
  {ID: "anthropic/claude-3-haiku", Name: "Claude 3 Haiku", CostPer1M: 0.25},
  {ID: "anthropic/claude-3.5-sonnet", Name: "Claude 3.5 Sonnet", CostPer1M: 3.0},
}
