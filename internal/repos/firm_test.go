package repos

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/steuertel/collector/internal/types"
)

func TestFirmGetOrCreateFirstWriteWins(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFirmRepo(db, noopLogger())
	ctx := context.Background()

	first, created, err := repo.GetOrCreate(ctx, nil, &types.Firm{
		Name:       "Steuerkanzlei Becker GmbH",
		PostalCode: "12345",
		Street:     "Hauptstraße 5",
		Email:      "info@becker.de",
	})
	if err != nil {
		t.Fatalf("first get-or-create failed: %v", err)
	}
	if !created {
		t.Fatalf("expected first call to create")
	}

	second, created, err := repo.GetOrCreate(ctx, nil, &types.Firm{
		Name:       "Steuerkanzlei Becker GmbH",
		PostalCode: "12345",
		Street:     "Ganz andere Straße 99",
		Email:      "neu@becker.de",
	})
	if err != nil {
		t.Fatalf("second get-or-create failed: %v", err)
	}
	if created {
		t.Fatalf("expected second call to find the existing row")
	}
	if second.ID != first.ID {
		t.Fatalf("expected the same firm, got %d and %d", first.ID, second.ID)
	}
	if second.Street != "Hauptstraße 5" || second.Email != "info@becker.de" {
		t.Fatalf("existing attributes must not be refreshed, got %+v", second)
	}
}

func TestFirmGetOrCreateSameNameDifferentPostalCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFirmRepo(db, noopLogger())
	ctx := context.Background()

	a, _, err := repo.GetOrCreate(ctx, nil, &types.Firm{Name: "Müller", PostalCode: "12345"})
	if err != nil {
		t.Fatalf("get-or-create failed: %v", err)
	}
	b, created, err := repo.GetOrCreate(ctx, nil, &types.Firm{Name: "Müller", PostalCode: "54321"})
	if err != nil {
		t.Fatalf("get-or-create failed: %v", err)
	}
	if !created || a.ID == b.ID {
		t.Fatalf("same name in another postal code must be a distinct firm")
	}
}

func TestFirmFindCompanyCandidates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFirmRepo(db, noopLogger())
	ctx := context.Background()

	form := &types.LegalForm{Code: "GmbH"}
	if err := db.Create(form).Error; err != nil {
		t.Fatalf("failed to create legal form: %v", err)
	}

	// Placeholder, wrong postal code and two real companies.
	if err := db.Create(&types.Firm{Name: "Müller", PostalCode: "12345"}).Error; err != nil {
		t.Fatalf("failed to create placeholder: %v", err)
	}
	if err := db.Create(&types.Firm{Name: "Elsewhere GmbH", PostalCode: "99999", LegalFormID: &form.ID}).Error; err != nil {
		t.Fatalf("failed to create out-of-scope firm: %v", err)
	}
	companyB := &types.Firm{Name: "Becker GmbH", PostalCode: "12345", LegalFormID: &form.ID}
	if err := db.Create(companyB).Error; err != nil {
		t.Fatalf("failed to create company: %v", err)
	}
	companyA := &types.Firm{Name: "Albrecht GmbH", PostalCode: "12345", LegalFormID: &form.ID}
	if err := db.Create(companyA).Error; err != nil {
		t.Fatalf("failed to create company: %v", err)
	}

	candidates, err := repo.FindCompanyCandidates(ctx, nil, "12345")
	if err != nil {
		t.Fatalf("find candidates failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	// Ordered by id, not by name.
	if candidates[0].ID != companyB.ID || candidates[1].ID != companyA.ID {
		t.Fatalf("expected id order %d,%d got %d,%d",
			companyB.ID, companyA.ID, candidates[0].ID, candidates[1].ID)
	}
}

func TestFirmCountPractitionersAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFirmRepo(db, noopLogger())
	ctx := context.Background()

	firm := &types.Firm{Name: "Müller", PostalCode: "12345"}
	if err := db.Create(firm).Error; err != nil {
		t.Fatalf("failed to create firm: %v", err)
	}
	if err := db.Create(&types.Practitioner{LastName: "Müller", FirmID: firm.ID}).Error; err != nil {
		t.Fatalf("failed to create practitioner: %v", err)
	}

	count, err := repo.CountPractitioners(ctx, nil, firm.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 practitioner, got %d", count)
	}

	if err := repo.Delete(ctx, nil, firm.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	var gone types.Firm
	if err := db.First(&gone, firm.ID).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected firm deleted, got err=%v", err)
	}
}
