package main

import (
  "context"
  "fmt"
  "os"

  "github.com/joho/godotenv"

  "github.com/steuertel/collector/internal/db"
  "github.com/steuertel/collector/internal/logger"
  "github.com/steuertel/collector/internal/repos"
  "github.com/steuertel/collector/internal/services"
  "github.com/steuertel/collector/internal/utils"
)

func main() {
  _ = godotenv.Load()

  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  appSecret := utils.GetEnv("APP_SECRET_KEY", "dev-secret-change-in-production", log)

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Error("Postgres auto migration failed", "error", err)
    os.Exit(1)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up repos from main...")
  firmRepo := repos.NewFirmRepo(thePG, log)
  practitionerRepo := repos.NewPractitionerRepo(thePG, log)
  legalFormRepo := repos.NewLegalFormRepo(thePG, log)
  aiConfigRepo := repos.NewAIConfigRepo(thePG, log)
  aiCallLogRepo := repos.NewAICallLogRepo(thePG, log)
  jobRunRepo := repos.NewJobRunRepo(thePG, log)

  ctx := context.Background()

  if _, err := legalFormRepo.SeedDefaults(ctx, nil); err != nil {
    log.Error("Failed to seed legal forms", "error", err)
    os.Exit(1)
  }

  // Services
  log.Info("Setting up services from main...")
  matcherService := services.NewMatcherService(
    thePG,
    log,
    firmRepo,
    practitionerRepo,
    aiConfigRepo,
    aiCallLogRepo,
    jobRunRepo,
    appSecret,
  )

  postalCode := utils.GetEnv("RECONCILE_PLZ", "", log)
  if postalCode == "" {
    log.Info("RECONCILE_PLZ not set, nothing to reconcile")
    return
  }
  useAI := utils.GetEnvAsBool("RECONCILE_USE_AI", false, log)

  result, err := matcherService.Reconcile(ctx, postalCode, useAI, nil)
  if err != nil {
    log.Error("Reconciliation failed", "postal_code", postalCode, "error", err)
    os.Exit(1)
  }

  log.Info("Reconciliation finished",
    "postal_code", postalCode,
    "matched", result.Matched,
    "deleted_firms", result.DeletedFirms,
    "ai_requests", result.AIRequests,
    "ai_matches", result.AIMatches,
    "ai_cost_usd", result.AICostUSD,
    "ai_budget_exhausted", result.AIBudgetExhausted,
  )
  for _, detail := range result.Details {
    log.Info("Detail", "line", detail)
  }
}
