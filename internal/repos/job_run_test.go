package repos

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/steuertel/collector/internal/types"
)

func TestJobRunCreateAssignsID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRunRepo(db, noopLogger())
	ctx := context.Background()

	job, err := repo.Create(ctx, nil, &types.JobRun{JobType: "collect", Status: "running", PostalCode: "12345"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if job.ID == uuid.Nil {
		t.Fatalf("expected an assigned id")
	}

	reloaded, err := repo.GetByID(ctx, nil, job.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if reloaded.JobType != "collect" || reloaded.PostalCode != "12345" {
		t.Fatalf("unexpected row %+v", reloaded)
	}
}

func TestJobRunAddAIUsage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRunRepo(db, noopLogger())
	ctx := context.Background()

	job, err := repo.Create(ctx, nil, &types.JobRun{JobType: "collect", Status: "running"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.AddAIUsage(ctx, nil, job.ID, 100, 20, 0.001); err != nil {
		t.Fatalf("first add usage failed: %v", err)
	}
	if err := repo.AddAIUsage(ctx, nil, job.ID, 80, 15, 0.0008); err != nil {
		t.Fatalf("second add usage failed: %v", err)
	}

	reloaded, err := repo.GetByID(ctx, nil, job.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if reloaded.AIRequests != 2 {
		t.Fatalf("expected 2 requests, got %d", reloaded.AIRequests)
	}
	if reloaded.AITokensInput != 180 || reloaded.AITokensOutput != 35 {
		t.Fatalf("unexpected token totals %d/%d", reloaded.AITokensInput, reloaded.AITokensOutput)
	}
	if reloaded.AICostUSD != 0.0018 {
		t.Fatalf("expected cost 0.0018, got %v", reloaded.AICostUSD)
	}
}

func TestJobRunAddAIUsageMissingRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRunRepo(db, noopLogger())

	if err := repo.AddAIUsage(context.Background(), nil, uuid.New(), 1, 1, 0.001); err != nil {
		t.Fatalf("missing job row must not be an error, got %v", err)
	}
}

func TestJobRunUpdateResult(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRunRepo(db, noopLogger())
	ctx := context.Background()

	job, err := repo.Create(ctx, nil, &types.JobRun{JobType: "collect", Status: "running"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	blob, err := json.Marshal(&types.ReconciliationResult{Matched: 3})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := repo.UpdateResult(ctx, nil, job.ID, blob); err != nil {
		t.Fatalf("update result failed: %v", err)
	}

	reloaded, err := repo.GetByID(ctx, nil, job.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	var result types.ReconciliationResult
	if err := json.Unmarshal(reloaded.Result, &result); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if result.Matched != 3 {
		t.Fatalf("expected matched=3 in stored result, got %d", result.Matched)
	}
}
