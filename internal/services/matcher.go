package services

import (
  "context"
  "encoding/json"
  "fmt"
  "strings"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/steuertel/collector/internal/logger"
  "github.com/steuertel/collector/internal/repos"
  "github.com/steuertel/collector/internal/types"
)

// MatcherService reconciles standalone practitioners with company firms
// after the crawl of one postal code has finished.
//
// Practitioners are frequently scraped standalone before (or without) the
// page of their real firm, which leaves them attached to a one-person
// placeholder firm. Once a postal code is fully collected, every such
// practitioner is scored against the company firms of the same postal code
// and re-owned when the evidence is strong enough. Score 1 cases can
// optionally be settled by an AI tie-breaker, capped by the budget ledger.
type MatcherService interface {
  Reconcile(ctx context.Context, postalCode string, useAI bool, jobID *uuid.UUID) (*types.ReconciliationResult, error)
}

// OpenRouterClientFactory lets tests substitute the AI client.
type OpenRouterClientFactory func(apiKey, model string, log *logger.Logger) OpenRouterClient

type matcherService struct {
  db            *gorm.DB
  log           *logger.Logger
  firms         repos.FirmRepo
  practitioners repos.PractitionerRepo
  aiConfigs     repos.AIConfigRepo
  aiCallLogs    repos.AICallLogRepo
  jobRuns       repos.JobRunRepo
  secret        string
  newClient     OpenRouterClientFactory
}

func NewMatcherService(
  db *gorm.DB,
  baseLog *logger.Logger,
  firms repos.FirmRepo,
  practitioners repos.PractitionerRepo,
  aiConfigs repos.AIConfigRepo,
  aiCallLogs repos.AICallLogRepo,
  jobRuns repos.JobRunRepo,
  secret string,
) MatcherService {
  return &matcherService{
    db:            db,
    log:           baseLog.With("service", "MatcherService"),
    firms:         firms,
    practitioners: practitioners,
    aiConfigs:     aiConfigs,
    aiCallLogs:    aiCallLogs,
    jobRuns:       jobRuns,
    secret:        secret,
    newClient:     NewOpenRouterClient,
  }
}

type bestCandidate struct {
  firm       *types.Firm
  score      float64
  indicators []string
}

type reassignment struct {
  practitionerID uint
  firmID         uint
}

type aiUsage struct {
  tokensInput  int
  tokensOutput int
  costUSD      float64
}

func (s *matcherService) Reconcile(ctx context.Context, postalCode string, useAI bool, jobID *uuid.UUID) (*types.ReconciliationResult, error) {
  log := s.log.With("postal_code", postalCode)
  result := &types.ReconciliationResult{Details: []string{}}

  var client OpenRouterClient
  var config *types.AIConfig
  if useAI {
    var err error
    config, err = s.aiConfigs.Get(ctx, nil)
    if err != nil {
      return nil, fmt.Errorf("failed to load AI config: %w", err)
    }
    apiKey := config.APIKey(s.secret)
    switch {
    case !config.Enabled || apiKey == "":
      log.Debug("AI not configured or disabled, rule-based matching only")
      useAI = false
    case config.BudgetExhausted():
      log.Warn("AI budget exhausted, rule-based matching only",
        "budget_used_usd", config.BudgetUsedUSD,
        "budget_limit_usd", config.BudgetLimitUSD,
      )
      result.AIBudgetExhausted = true
      useAI = false
    default:
      client = s.newClient(apiKey, config.EffectiveModel(), s.log)
      log.Debug("AI matching enabled", "model", config.EffectiveModel())
    }
  }

  candidates, err := s.firms.FindCompanyCandidates(ctx, nil, postalCode)
  if err != nil {
    return nil, fmt.Errorf("failed to load company candidates: %w", err)
  }
  if len(candidates) == 0 {
    log.Debug("No company firms found")
    return result, nil
  }

  standalone, err := s.practitioners.FindStandaloneByPostalCode(ctx, nil, postalCode)
  if err != nil {
    return nil, fmt.Errorf("failed to load standalone practitioners: %w", err)
  }
  if len(standalone) == 0 {
    log.Debug("No standalone practitioners found")
    return result, nil
  }

  log.Debug("Reconciling postal code",
    "company_firms", len(candidates),
    "standalone_practitioners", len(standalone),
  )

  // Spend is tracked locally during the loop; the ledger row is only
  // written inside the final commit.
  var budgetUsed float64
  if config != nil {
    budgetUsed = config.BudgetUsedUSD
  }

  var reassignments []reassignment
  var orphanIDs []uint
  orphanSeen := map[uint]bool{}
  var usages []aiUsage
  var callLogs []*types.AICallLog

  for _, practitioner := range standalone {
    placeholder := practitioner.Firm
    var best *bestCandidate

    for _, candidate := range candidates {
      score, indicators := CalculateMatchScore(practitioner, placeholder, candidate)

      if score >= MatchThreshold {
        if best == nil || float64(score) > best.score {
          best = &bestCandidate{firm: candidate, score: float64(score), indicators: indicators}
        }
        continue
      }

      if score != 1 || !useAI || client == nil {
        continue
      }

      // Exhaustion is sticky for the rest of the batch.
      if config != nil && budgetUsed >= config.BudgetLimitUSD {
        if !result.AIBudgetExhausted {
          log.Warn("AI budget exhausted mid-batch, skipping remaining AI calls",
            "practitioner", practitioner.FullName(),
          )
        }
        result.AIBudgetExhausted = true
        continue
      }

      log.Info("Asking AI tie-breaker",
        "practitioner", practitioner.FullName(),
        "candidate", candidate.Name,
      )
      aiResult := client.CheckMatch(ctx, practitioner, placeholder, candidate)

      result.AIRequests++
      result.AITokensInput += aiResult.TokensInput
      result.AITokensOutput += aiResult.TokensOutput
      result.AICostUSD += aiResult.CostUSD
      budgetUsed += aiResult.CostUSD
      usages = append(usages, aiUsage{
        tokensInput:  aiResult.TokensInput,
        tokensOutput: aiResult.TokensOutput,
        costUSD:      aiResult.CostUSD,
      })
      callLogs = append(callLogs, s.buildCallLog(config, jobID, aiResult))

      if aiResult.Err != "" {
        log.Error("AI tie-breaker call failed, treating as no-match",
          "practitioner", practitioner.FullName(),
          "error", aiResult.Err,
        )
        continue
      }

      if aiResult.Match {
        result.AIMatches++
        aiIndicators := append(append([]string{}, indicators...), "AI: "+aiResult.Reason)
        if best == nil || best.score < aiConfirmedScore {
          best = &bestCandidate{firm: candidate, score: aiConfirmedScore, indicators: aiIndicators}
        }
        log.Info("AI confirmed match", "reason", aiResult.Reason)
      } else {
        log.Info("AI rejected match", "reason", aiResult.Reason)
      }
    }

    if best == nil {
      continue
    }

    detail := fmt.Sprintf("practitioner '%s' -> '%s' (score: %g, indicators: %s)",
      practitioner.FullName(), best.firm.Name, best.score, strings.Join(best.indicators, ", "))
    result.Details = append(result.Details, detail)
    log.Info("Match found", "detail", detail)

    reassignments = append(reassignments, reassignment{
      practitionerID: practitioner.ID,
      firmID:         best.firm.ID,
    })
    if !orphanSeen[practitioner.FirmID] {
      orphanSeen[practitioner.FirmID] = true
      orphanIDs = append(orphanIDs, practitioner.FirmID)
    }
    result.Matched++
  }

  // Nothing moved and no AI spend: skip the write entirely.
  if result.Matched == 0 && result.AIRequests == 0 {
    return result, nil
  }

  err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    for _, r := range reassignments {
      if err := s.practitioners.UpdateFirm(ctx, tx, r.practitionerID, r.firmID); err != nil {
        return fmt.Errorf("failed to reassign practitioner %d: %w", r.practitionerID, err)
      }
    }

    // Placeholder firms that no longer own anyone are deleted; one that
    // still owns an unmatched practitioner is retained.
    for _, firmID := range orphanIDs {
      count, err := s.firms.CountPractitioners(ctx, tx, firmID)
      if err != nil {
        return err
      }
      if count > 0 {
        continue
      }
      firm, err := s.firms.GetByID(ctx, tx, firmID)
      if err != nil {
        return err
      }
      if err := s.firms.Delete(ctx, tx, firmID); err != nil {
        return fmt.Errorf("failed to delete orphaned firm %d: %w", firmID, err)
      }
      result.DeletedFirms++
      result.Details = append(result.Details, fmt.Sprintf("deleted orphaned firm '%s'", firm.Name))
      log.Info("Deleted orphaned firm", "name", firm.Name)
    }

    for _, usage := range usages {
      if err := s.aiConfigs.AddUsage(ctx, tx, config.ID, usage.tokensInput, usage.tokensOutput, usage.costUSD); err != nil {
        return fmt.Errorf("failed to record AI usage: %w", err)
      }
      if jobID != nil {
        if err := s.jobRuns.AddAIUsage(ctx, tx, *jobID, usage.tokensInput, usage.tokensOutput, usage.costUSD); err != nil {
          return fmt.Errorf("failed to attribute AI usage to job: %w", err)
        }
      }
    }

    if len(callLogs) > 0 {
      if _, err := s.aiCallLogs.Create(ctx, tx, callLogs); err != nil {
        return fmt.Errorf("failed to write AI call logs: %w", err)
      }
    }

    return nil
  })
  if err != nil {
    return nil, err
  }

  log.Info("Reconciliation complete",
    "matched", result.Matched,
    "deleted_firms", result.DeletedFirms,
    "ai_requests", result.AIRequests,
    "ai_matches", result.AIMatches,
    "ai_cost_usd", result.AICostUSD,
    "ai_budget_exhausted", result.AIBudgetExhausted,
  )

  return result, nil
}

func (s *matcherService) buildCallLog(config *types.AIConfig, jobID *uuid.UUID, aiResult *AIMatchResult) *types.AICallLog {
  usage, _ := json.Marshal(types.AICallUsage{
    TokensInput:  aiResult.TokensInput,
    TokensOutput: aiResult.TokensOutput,
    CostUSD:      aiResult.CostUSD,
  })
  model := ""
  if config != nil {
    model = config.EffectiveModel()
  }
  response := aiResult.Raw
  if response == "" {
    response = aiResult.Reason
  }
  return &types.AICallLog{
    ID:       uuid.New(),
    JobID:    jobID,
    CallType: "match_check",
    Model:    model,
    Prompt:   aiResult.Prompt,
    Response: response,
    Success:  aiResult.Err == "",
    Error:    aiResult.Err,
    Usage:    usage,
  }
}
