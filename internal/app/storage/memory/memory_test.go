package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/pathforge/platform/internal/app/domain/assessment"
	"github.com/pathforge/platform/internal/app/domain/opportunity"
	"github.com/pathforge/platform/internal/app/storage"
)

func TestCreateSavedEnforcesUniqueness(t *testing.T) {
	store := New()
	ctx := context.Background()

	row := opportunity.SavedOpportunity{UserID: "user-1", JobID: "1", JobTitle: "Tech", Company: "TSMC Arizona", Location: "Phoenix, AZ"}
	if _, err := store.CreateSaved(ctx, row); err != nil {
		t.Fatalf("first CreateSaved returned error: %v", err)
	}
	if _, err := store.CreateSaved(ctx, row); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate, got %v", err)
	}

	// Same job for another user is fine.
	row.UserID = "user-2"
	if _, err := store.CreateSaved(ctx, row); err != nil {
		t.Fatalf("CreateSaved for second user returned error: %v", err)
	}
}

func TestDeleteSavedFreesTheSlot(t *testing.T) {
	store := New()
	ctx := context.Background()

	row := opportunity.SavedOpportunity{UserID: "user-1", JobID: "1", JobTitle: "Tech", Company: "Intel", Location: "Columbus, OH"}
	created, err := store.CreateSaved(ctx, row)
	if err != nil {
		t.Fatalf("CreateSaved returned error: %v", err)
	}

	if err := store.DeleteSaved(ctx, "user-1", created.ID); err != nil {
		t.Fatalf("DeleteSaved returned error: %v", err)
	}
	if err := store.DeleteSaved(ctx, "user-1", created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}
	if _, err := store.CreateSaved(ctx, row); err != nil {
		t.Fatalf("re-save after delete returned error: %v", err)
	}
}

func TestListOrderingNewestFirst(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, jobID := range []string{"1", "2", "3"} {
		if _, err := store.CreateSaved(ctx, opportunity.SavedOpportunity{
			UserID: "user-1", JobID: jobID, JobTitle: "job-" + jobID, Company: "c", Location: "l",
		}); err != nil {
			t.Fatalf("CreateSaved returned error: %v", err)
		}
	}

	rows, err := store.ListSaved(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListSaved returned error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].JobID != "3" || rows[2].JobID != "1" {
		t.Fatalf("expected newest first, got %q,%q,%q", rows[0].JobID, rows[1].JobID, rows[2].JobID)
	}
}

func TestLatestAssessment(t *testing.T) {
	store := New()
	ctx := context.Background()

	latest, err := store.LatestAssessment(ctx, "user-1")
	if err != nil {
		t.Fatalf("LatestAssessment returned error: %v", err)
	}
	if latest != nil {
		t.Fatal("expected nil for empty store")
	}

	for _, zip := range []string{"85001", "85002"} {
		if _, err := store.CreateAssessment(ctx, assessment.Assessment{
			UserID: "user-1", ZipCode: zip, CurrentOccupation: "associate",
		}); err != nil {
			t.Fatalf("CreateAssessment returned error: %v", err)
		}
	}

	latest, err = store.LatestAssessment(ctx, "user-1")
	if err != nil {
		t.Fatalf("LatestAssessment returned error: %v", err)
	}
	if latest == nil || latest.ZipCode != "85002" {
		t.Fatalf("expected newest assessment, got %+v", latest)
	}
}
