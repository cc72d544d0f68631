package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/pathforge/platform/internal/app/domain/opportunity"
	"github.com/pathforge/platform/internal/app/domain/profile"
	"github.com/pathforge/platform/internal/app/domain/status"
	"github.com/pathforge/platform/internal/app/storage"
)

func profileFixture() profile.Profile {
	return profile.Profile{UserID: "user-1", ZipCode: "85001", CurrentJob: "warehouse associate"}
}

func newStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New returned error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestCreateSavedMapsUniqueViolation(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("INSERT INTO saved_opportunities").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := store.CreateSaved(context.Background(), opportunity.SavedOpportunity{
		UserID: "user-1", JobID: "1", JobTitle: "Tech", Company: "TSMC Arizona", Location: "Phoenix, AZ",
	})
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreateSavedReturnsGeneratedFields(t *testing.T) {
	store, mock := newStore(t)

	created := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO saved_opportunities").
		WithArgs("user-1", "1", "Tech", "TSMC Arizona", "Phoenix, AZ", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("row-1", created))

	saved, err := store.CreateSaved(context.Background(), opportunity.SavedOpportunity{
		UserID: "user-1", JobID: "1", JobTitle: "Tech", Company: "TSMC Arizona", Location: "Phoenix, AZ",
	})
	if err != nil {
		t.Fatalf("CreateSaved returned error: %v", err)
	}
	if saved.ID != "row-1" || !saved.CreatedAt.Equal(created) {
		t.Fatalf("unexpected row: %+v", saved)
	}
}

func TestDeleteSavedNotFound(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("DELETE FROM saved_opportunities").
		WithArgs("row-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteSaved(context.Background(), "user-1", "row-1")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLatestAssessmentNoRows(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("(?s)SELECT .+ FROM user_assessments").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	latest, err := store.LatestAssessment(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("LatestAssessment returned error: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil, got %+v", latest)
	}
}

func TestListJobApplicationsScansNullables(t *testing.T) {
	store, mock := newStore(t)

	applied := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "job_title", "company", "location",
		"salary_range", "certification_required", "status", "applied_at", "created_at",
	}).
		AddRow("row-1", "user-1", "Tech", "Intel", "Columbus, OH",
			"$62,000 - $78,000", "NIMS CNC Milling", "submitted", applied, applied).
		AddRow("row-2", "user-1", "Tech", "Intel", "Columbus, OH",
			nil, nil, "submitted", nil, applied)
	mock.ExpectQuery("(?s)SELECT .+ FROM job_applications").
		WithArgs("user-1").
		WillReturnRows(rows)

	apps, err := store.ListJobApplications(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListJobApplications returned error: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(apps))
	}
	if apps[0].Status != status.Submitted || apps[0].AppliedAt == nil {
		t.Fatalf("unexpected first row: %+v", apps[0])
	}
	if apps[1].SalaryRange != "" || apps[1].AppliedAt != nil {
		t.Fatalf("expected empty nullables, got %+v", apps[1])
	}
}

func TestUpsertProfile(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("INSERT INTO profiles").
		WithArgs("user-1", "85001", "warehouse associate").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpsertProfile(context.Background(), profileFixture())
	if err != nil {
		t.Fatalf("UpsertProfile returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
