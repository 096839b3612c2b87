package repos

import (
	"context"
	"testing"

	"github.com/steuertel/collector/internal/types"
)

func TestAIConfigGetCreatesDefaultRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAIConfigRepo(db, noopLogger())
	ctx := context.Background()

	config, err := repo.Get(ctx, nil)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if config.Model != types.DefaultAIModel {
		t.Fatalf("expected default model %q, got %q", types.DefaultAIModel, config.Model)
	}
	if config.BudgetLimitUSD != 10.0 {
		t.Fatalf("expected default budget limit 10.0, got %v", config.BudgetLimitUSD)
	}
	if config.Enabled {
		t.Fatalf("AI must be disabled by default")
	}

	again, err := repo.Get(ctx, nil)
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if again.ID != config.ID {
		t.Fatalf("get must return the singleton row, got %d and %d", config.ID, again.ID)
	}
}

func TestAIConfigAddUsageAccumulates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAIConfigRepo(db, noopLogger())
	ctx := context.Background()

	config, err := repo.Get(ctx, nil)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if err := repo.AddUsage(ctx, nil, config.ID, 100, 20, 0.001); err != nil {
		t.Fatalf("first add usage failed: %v", err)
	}
	if err := repo.AddUsage(ctx, nil, config.ID, 50, 10, 0.0005); err != nil {
		t.Fatalf("second add usage failed: %v", err)
	}

	reloaded, err := repo.Get(ctx, nil)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.TotalRequests != 2 {
		t.Fatalf("expected 2 requests, got %d", reloaded.TotalRequests)
	}
	if reloaded.TotalTokensInput != 150 || reloaded.TotalTokensOutput != 30 {
		t.Fatalf("unexpected token totals %d/%d", reloaded.TotalTokensInput, reloaded.TotalTokensOutput)
	}
	if reloaded.BudgetUsedUSD != 0.0015 {
		t.Fatalf("expected spend 0.0015, got %v", reloaded.BudgetUsedUSD)
	}
}

func TestAIConfigResets(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAIConfigRepo(db, noopLogger())
	ctx := context.Background()

	config, err := repo.Get(ctx, nil)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if err := repo.AddUsage(ctx, nil, config.ID, 100, 20, 0.5); err != nil {
		t.Fatalf("add usage failed: %v", err)
	}

	if err := repo.ResetBudget(ctx, nil, config.ID); err != nil {
		t.Fatalf("reset budget failed: %v", err)
	}
	afterBudgetReset, err := repo.Get(ctx, nil)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if afterBudgetReset.BudgetUsedUSD != 0 {
		t.Fatalf("expected spend reset, got %v", afterBudgetReset.BudgetUsedUSD)
	}
	if afterBudgetReset.TotalRequests != 1 {
		t.Fatalf("budget reset must keep the lifetime counters, got %d", afterBudgetReset.TotalRequests)
	}

	if err := repo.ResetAllStats(ctx, nil, config.ID); err != nil {
		t.Fatalf("reset all stats failed: %v", err)
	}
	afterFullReset, err := repo.Get(ctx, nil)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if afterFullReset.TotalRequests != 0 || afterFullReset.TotalTokensInput != 0 || afterFullReset.TotalTokensOutput != 0 {
		t.Fatalf("expected all counters zeroed, got %+v", afterFullReset)
	}
}

func TestAIConfigSaveRoundTripsSealedKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAIConfigRepo(db, noopLogger())
	ctx := context.Background()

	config, err := repo.Get(ctx, nil)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if err := config.SetAPIKey("sk-or-secret", "app-secret"); err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	config.Enabled = true
	if err := repo.Save(ctx, nil, config); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	reloaded, err := repo.Get(ctx, nil)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !reloaded.Enabled {
		t.Fatalf("expected enabled flag persisted")
	}
	if reloaded.APIKey("app-secret") != "sk-or-secret" {
		t.Fatalf("expected sealed key to round-trip through the database")
	}
}
