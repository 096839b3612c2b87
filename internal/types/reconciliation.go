package types

// ReconciliationResult is returned by one reconciliation batch for a single
// postal code. Details are ordered, human-readable lines for the job log.
type ReconciliationResult struct {
  Matched           int      `json:"matched_count"`
  DeletedFirms      int      `json:"deleted_firm_count"`
  AIRequests        int      `json:"ai_request_count"`
  AIMatches         int      `json:"ai_match_count"`
  AITokensInput     int      `json:"ai_tokens_input"`
  AITokensOutput    int      `json:"ai_tokens_output"`
  AICostUSD         float64  `json:"ai_cost_usd"`
  AIBudgetExhausted bool     `json:"ai_budget_exhausted"`
  Details           []string `json:"details"`
}
