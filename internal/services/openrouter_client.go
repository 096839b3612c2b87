package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "strings"
  "time"

  "github.com/steuertel/collector/internal/logger"
  "github.com/steuertel/collector/internal/types"
  "github.com/steuertel/collector/internal/utils"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai"

// Fallback per-1M-token rates when OpenRouter does not report the
// generation cost itself.
const (
  costPer1MInput  = 0.25
  costPer1MOutput = 0.50
)

type OpenRouterClient interface {
  CheckMatch(ctx context.Context, practitioner *types.Practitioner, placeholder *types.Firm, candidate *types.Firm) *AIMatchResult
  Credits(ctx context.Context) (map[string]any, error)
  TestConnection(ctx context.Context) (bool, string)
}

// AIMatchResult is the outcome of one tie-breaker call. Transport and API
// failures are folded into Err with a zero cost; the engine treats them
// like a plain negative verdict.
type AIMatchResult struct {
  Match        bool
  Reason       string
  TokensInput  int
  TokensOutput int
  CostUSD      float64
  Err          string
  Prompt       string
  Raw          string
}

type openRouterClient struct {
  log        *logger.Logger
  baseURL    string
  apiKey     string
  model      string
  httpClient *http.Client
}

func NewOpenRouterClient(apiKey, model string, log *logger.Logger) OpenRouterClient {
  serviceLog := log.With("service", "OpenRouterClient")
  baseURL := utils.GetEnv("OPENROUTER_BASE_URL", defaultOpenRouterBaseURL, nil)
  return &openRouterClient{
    log:        serviceLog,
    baseURL:    strings.TrimRight(baseURL, "/"),
    apiKey:     apiKey,
    model:      model,
    httpClient: &http.Client{Timeout: 30 * time.Second},
  }
}

type openRouterHTTPError struct {
  StatusCode int
  Body       string
}

func (e *openRouterHTTPError) Error() string {
  return fmt.Sprintf("openrouter http %d: %s", e.StatusCode, e.Body)
}

type chatMessage struct {
  Role    string `json:"role"`
  Content string `json:"content"`
}

type chatCompletionRequest struct {
  Model       string        `json:"model"`
  Messages    []chatMessage `json:"messages"`
  MaxTokens   int           `json:"max_tokens"`
  Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
  Choices []struct {
    Message struct {
      Content string `json:"content"`
    } `json:"message"`
  } `json:"choices"`
  Usage struct {
    PromptTokens     int `json:"prompt_tokens"`
    CompletionTokens int `json:"completion_tokens"`
  } `json:"usage"`
  GenerationCost float64 `json:"generation_cost"`
}

type matchVerdict struct {
  Match  bool   `json:"match"`
  Reason string `json:"reason"`
}

// CheckMatch asks the model whether the practitioner plausibly belongs to
// the candidate firm. It never fails upward: any transport, API or parse
// problem degrades into a negative, zero-cost result.
func (c *openRouterClient) CheckMatch(ctx context.Context, practitioner *types.Practitioner, placeholder *types.Firm, candidate *types.Firm) *AIMatchResult {
  prompt := buildMatchPrompt(practitioner, placeholder, candidate)

  req := chatCompletionRequest{
    Model:       c.model,
    Messages:    []chatMessage{{Role: "user", Content: prompt}},
    MaxTokens:   150,
    Temperature: 0.1,
  }

  var resp chatCompletionResponse
  if err := c.do(ctx, http.MethodPost, "/api/v1/chat/completions", req, &resp); err != nil {
    c.log.Error("OpenRouter request failed", "error", err)
    return &AIMatchResult{
      Match:  false,
      Reason: "request failed",
      Err:    err.Error(),
      Prompt: prompt,
    }
  }

  tokensInput := resp.Usage.PromptTokens
  tokensOutput := resp.Usage.CompletionTokens
  cost := resp.GenerationCost
  if cost == 0 {
    cost = estimateCost(tokensInput, tokensOutput)
  }

  var content string
  if len(resp.Choices) > 0 {
    content = resp.Choices[0].Message.Content
  }
  match, reason := parseMatchResponse(content, c.log)

  c.log.Debug("AI match check complete",
    "practitioner", practitioner.FullName(),
    "candidate", candidate.Name,
    "match", match,
    "tokens_input", tokensInput,
    "tokens_output", tokensOutput,
    "cost_usd", cost,
  )

  return &AIMatchResult{
    Match:        match,
    Reason:       reason,
    TokensInput:  tokensInput,
    TokensOutput: tokensOutput,
    CostUSD:      cost,
    Prompt:       prompt,
    Raw:          content,
  }
}

func (c *openRouterClient) do(ctx context.Context, method, path string, body any, out any) error {
  var buf bytes.Buffer
  if body != nil {
    if err := json.NewEncoder(&buf).Encode(body); err != nil {
      return err
    }
  }

  req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
  if err != nil {
    return err
  }
  req.Header.Set("Authorization", "Bearer "+c.apiKey)
  req.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return err
  }

  raw, readErr := io.ReadAll(resp.Body)
  _ = resp.Body.Close()
  if readErr != nil {
    return readErr
  }

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return &openRouterHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
  }
  if out == nil {
    return nil
  }
  if err := json.Unmarshal(raw, out); err != nil {
    return fmt.Errorf("openrouter decode error: %w; raw=%s", err, string(raw))
  }
  return nil
}

func buildMatchPrompt(practitioner *types.Practitioner, placeholder *types.Firm, candidate *types.Firm) string {
  email := "-"
  if practitioner.Email != nil && *practitioner.Email != "" {
    email = *practitioner.Email
  }
  title := practitioner.Title
  if title == "" {
    title = "-"
  }
  placeholderName := "-"
  placeholderAddress := "-"
  if placeholder != nil {
    placeholderName = placeholder.Name
    placeholderAddress = placeholder.FullAddress()
  }
  candidateEmail := candidate.Email
  if candidateEmail == "" {
    candidateEmail = "-"
  }
  candidateWebsite := candidate.Website
  if candidateWebsite == "" {
    candidateWebsite = "-"
  }

  return fmt.Sprintf(`Analyze whether this tax advisor belongs to the company firm.

TAX ADVISOR:
- Name: %s
- Title: %s
- Email: %s
- Currently assigned to: "%s"
- Address of current firm: %s

COMPANY FIRM (potential target):
- Name: %s
- Address: %s
- Email: %s
- Website: %s

Does the tax advisor most likely belong to this company firm?
Consider: name similarities in the firm name, same address, email domain.

Answer EXACTLY in this JSON format:
{"match": true, "reason": "short justification"}
or
{"match": false, "reason": "short justification"}`,
    practitioner.FullName(),
    title,
    email,
    placeholderName,
    placeholderAddress,
    candidate.Name,
    candidate.FullAddress(),
    candidateEmail,
    candidateWebsite,
  )
}

// parseMatchResponse extracts the verdict from the model reply. A fenced
// code block around the JSON is tolerated; an unparseable reply degrades to
// a keyword check and finally to a negative verdict.
func parseMatchResponse(content string, log *logger.Logger) (bool, string) {
  trimmed := strings.TrimSpace(content)

  if strings.Contains(trimmed, "```json") {
    parts := strings.SplitN(trimmed, "```json", 2)
    trimmed = strings.TrimSpace(strings.SplitN(parts[1], "```", 2)[0])
  } else if strings.Contains(trimmed, "```") {
    parts := strings.SplitN(trimmed, "```", 3)
    if len(parts) >= 2 {
      trimmed = strings.TrimSpace(parts[1])
    }
  }

  var verdict matchVerdict
  if err := json.Unmarshal([]byte(trimmed), &verdict); err == nil {
    reason := verdict.Reason
    if reason == "" {
      reason = "no justification given"
    }
    return verdict.Match, reason
  }

  if log != nil {
    preview := content
    if len(preview) > 200 {
      preview = preview[:200]
    }
    log.Warn("Failed to parse AI response", "content", preview)
  }

  lower := strings.ToLower(content)
  if strings.Contains(lower, "true") || strings.Contains(lower, "\"match\": true") || strings.Contains(lower, "ja") || strings.Contains(lower, "gehört") {
    return true, "reply could not be parsed, interpreted as positive"
  }
  return false, "unparseable response"
}

func estimateCost(tokensInput, tokensOutput int) float64 {
  inputCost := float64(tokensInput) / 1_000_000 * costPer1MInput
  outputCost := float64(tokensOutput) / 1_000_000 * costPer1MOutput
  return inputCost + outputCost
}

type creditsResponse struct {
  Data map[string]any `json:"data"`
}

// Credits fetches the account limits from OpenRouter.
func (c *openRouterClient) Credits(ctx context.Context) (map[string]any, error) {
  var resp creditsResponse
  if err := c.do(ctx, http.MethodGet, "/api/v1/auth/key", nil, &resp); err != nil {
    return nil, err
  }
  return resp.Data, nil
}

// TestConnection checks key validity and returns a human-readable summary.
func (c *openRouterClient) TestConnection(ctx context.Context) (bool, string) {
  credits, err := c.Credits(ctx)
  if err != nil {
    return false, fmt.Sprintf("connection error: %v", err)
  }
  if len(credits) == 0 {
    return false, "no data received from OpenRouter"
  }
  limit := credits["limit"]
  usage := credits["usage"]
  return true, fmt.Sprintf("connection OK, limit: %v, used: %v", limit, usage)
}
