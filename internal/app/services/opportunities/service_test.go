package opportunities

import (
	"context"
	"errors"
	"testing"

	"github.com/pathforge/platform/internal/app/storage"
	"github.com/pathforge/platform/internal/app/storage/memory"
	"github.com/pathforge/platform/internal/logging"

	"github.com/sirupsen/logrus"
)

type staticIdentity string

func (s staticIdentity) UserID(context.Context) string { return string(s) }

func newService(t *testing.T, userID string) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	log := logging.New("test", logrus.ErrorLevel)
	return New(staticIdentity(userID), store, store, nil, log), store
}

func TestCatalogIsFixed(t *testing.T) {
	svc, _ := newService(t, "user-1")

	jobs := svc.Catalog()
	if len(jobs) != 4 {
		t.Fatalf("expected 4 postings, got %d", len(jobs))
	}
	if jobs[0].Company != "TSMC Arizona" {
		t.Fatalf("unexpected first posting: %+v", jobs[0])
	}
}

func TestSavePersistsCatalogFields(t *testing.T) {
	svc, store := newService(t, "user-1")

	outcome, err := svc.Save(context.Background(), "2")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("expected success, got %+v", outcome)
	}

	rows, err := store.ListSaved(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListSaved returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 saved row, got %d", len(rows))
	}
	if rows[0].JobTitle != "CNC Machinist - Tool & Die" || rows[0].Company != "Intel Corporation" {
		t.Fatalf("saved row missing catalog fields: %+v", rows[0])
	}
}

func TestSaveDuplicateReportsAlreadySaved(t *testing.T) {
	svc, store := newService(t, "user-1")

	if _, err := svc.Save(context.Background(), "1"); err != nil {
		t.Fatalf("first Save returned error: %v", err)
	}
	outcome, err := svc.Save(context.Background(), "1")
	if err != nil {
		t.Fatalf("second Save returned error: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("duplicate save must still succeed, got %+v", outcome)
	}
	if outcome.Message != "Already saved" {
		t.Fatalf("expected already-saved message, got %q", outcome.Message)
	}

	rows, err := store.ListSaved(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListSaved returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single row after duplicate save, got %d", len(rows))
	}
}

func TestSaveUnknownJob(t *testing.T) {
	svc, _ := newService(t, "user-1")

	if _, err := svc.Save(context.Background(), "999"); !errors.Is(err, ErrUnknownOpportunity) {
		t.Fatalf("expected ErrUnknownOpportunity, got %v", err)
	}
}

func TestSaveWithoutSession(t *testing.T) {
	svc, store := newService(t, "")

	outcome, err := svc.Save(context.Background(), "1")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if !outcome.RequiresAuth {
		t.Fatalf("expected auth-required outcome, got %+v", outcome)
	}

	rows, err := store.ListSaved(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListSaved returned error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatal("nothing may persist without a session")
	}
}

func TestApplyWithoutSession(t *testing.T) {
	svc, store := newService(t, "")

	outcome, err := svc.Apply(context.Background(), "1")
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !outcome.RequiresAuth {
		t.Fatalf("expected auth-required outcome, got %+v", outcome)
	}

	rows, err := store.ListJobApplications(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListJobApplications returned error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatal("nothing may persist without a session")
	}
}

func TestApplyCreatesSubmittedApplication(t *testing.T) {
	svc, store := newService(t, "user-1")

	outcome, err := svc.Apply(context.Background(), "3")
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("expected success, got %+v", outcome)
	}

	rows, err := store.ListJobApplications(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListJobApplications returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 application, got %d", len(rows))
	}
	app := rows[0]
	if app.Status != "submitted" {
		t.Fatalf("expected submitted status, got %q", app.Status)
	}
	if app.AppliedAt == nil {
		t.Fatal("expected applied_at to be stamped")
	}
	if app.CertificationRequired != "CMfgA" {
		t.Fatalf("expected certification from catalog, got %q", app.CertificationRequired)
	}
}

func TestApplyTwiceCreatesTwoRows(t *testing.T) {
	svc, store := newService(t, "user-1")

	for i := 0; i < 2; i++ {
		if _, err := svc.Apply(context.Background(), "1"); err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}
	}

	rows, err := store.ListJobApplications(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListJobApplications returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("repeat applications must each create a row, got %d", len(rows))
	}
}

func TestListsWithoutSessionAreEmpty(t *testing.T) {
	svc, _ := newService(t, "")

	saved, err := svc.ListSaved(context.Background())
	if err != nil {
		t.Fatalf("ListSaved returned error: %v", err)
	}
	if len(saved) != 0 {
		t.Fatalf("expected empty list, got %d rows", len(saved))
	}

	apps, err := svc.ListApplications(context.Background())
	if err != nil {
		t.Fatalf("ListApplications returned error: %v", err)
	}
	if len(apps) != 0 {
		t.Fatalf("expected empty list, got %d rows", len(apps))
	}
}

func TestDeleteSaved(t *testing.T) {
	svc, store := newService(t, "user-1")

	if _, err := svc.Save(context.Background(), "1"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	rows, err := store.ListSaved(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListSaved returned error: %v", err)
	}

	if err := svc.DeleteSaved(context.Background(), rows[0].ID); err != nil {
		t.Fatalf("DeleteSaved returned error: %v", err)
	}

	rows, err = store.ListSaved(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListSaved returned error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected bookmark removed, got %d rows", len(rows))
	}

	// The slot is free again after deletion.
	outcome, err := svc.Save(context.Background(), "1")
	if err != nil {
		t.Fatalf("re-save returned error: %v", err)
	}
	if outcome.Message != "Opportunity saved" {
		t.Fatalf("expected fresh save after delete, got %q", outcome.Message)
	}
}

func TestDeleteSavedMissingRow(t *testing.T) {
	svc, _ := newService(t, "user-1")

	if err := svc.DeleteSaved(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
