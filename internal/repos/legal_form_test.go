package repos

import (
	"context"
	"testing"

	"github.com/steuertel/collector/internal/types"
)

func TestLegalFormGetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLegalFormRepo(db, noopLogger())
	ctx := context.Background()

	form, err := repo.GetOrCreate(ctx, nil, "GmbH", "Gesellschaft mit beschränkter Haftung")
	if err != nil {
		t.Fatalf("get-or-create failed: %v", err)
	}
	again, err := repo.GetOrCreate(ctx, nil, "GmbH", "ignored on lookup")
	if err != nil {
		t.Fatalf("second get-or-create failed: %v", err)
	}
	if again.ID != form.ID {
		t.Fatalf("expected the same legal form row, got %d and %d", form.ID, again.ID)
	}
	if again.Label != "Gesellschaft mit beschränkter Haftung" {
		t.Fatalf("existing label must not be refreshed, got %q", again.Label)
	}
}

func TestLegalFormSeedDefaultsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLegalFormRepo(db, noopLogger())
	ctx := context.Background()

	created, err := repo.SeedDefaults(ctx, nil)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if created != len(types.LegalFormSeed) {
		t.Fatalf("expected %d created, got %d", len(types.LegalFormSeed), created)
	}

	createdAgain, err := repo.SeedDefaults(ctx, nil)
	if err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if createdAgain != 0 {
		t.Fatalf("expected idempotent reseed, got %d created", createdAgain)
	}

	var count int64
	if err := db.Model(&types.LegalForm{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != int64(len(types.LegalFormSeed)) {
		t.Fatalf("expected %d rows, got %d", len(types.LegalFormSeed), count)
	}
}
