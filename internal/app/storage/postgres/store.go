// Package postgres implements the storage interfaces on a self-hosted
// PostgreSQL database for deployments that bypass the hosted gateway.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/pathforge/platform/internal/app/domain/assessment"
	"github.com/pathforge/platform/internal/app/domain/grant"
	"github.com/pathforge/platform/internal/app/domain/opportunity"
	"github.com/pathforge/platform/internal/app/domain/profile"
	"github.com/pathforge/platform/internal/app/storage"
)

// Store is the PostgreSQL backend.
type Store struct {
	db *sql.DB
}

var _ storage.ProfileStore = (*Store)(nil)
var _ storage.AssessmentStore = (*Store)(nil)
var _ storage.SavedOpportunityStore = (*Store)(nil)
var _ storage.JobApplicationStore = (*Store)(nil)
var _ storage.GrantApplicationStore = (*Store)(nil)

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return storage.ErrConflict
	}
	return err
}

// UpsertProfile inserts or updates the user's profile row.
func (s *Store) UpsertProfile(ctx context.Context, p profile.Profile) error {
	const q = `
		INSERT INTO profiles (user_id, zip_code, current_job, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id)
		DO UPDATE SET zip_code = EXCLUDED.zip_code,
		              current_job = EXCLUDED.current_job,
		              updated_at = now()`
	if _, err := s.db.ExecContext(ctx, q, p.UserID, p.ZipCode, p.CurrentJob); err != nil {
		return fmt.Errorf("upsert profile: %w", mapError(err))
	}
	return nil
}

// CreateAssessment inserts an assessment row and returns it with the
// generated id and timestamp.
func (s *Store) CreateAssessment(ctx context.Context, a assessment.Assessment) (assessment.Assessment, error) {
	const q = `
		INSERT INTO user_assessments
			(user_id, zip_code, current_occupation, interested_sectors,
			 skill_level, education_level, years_experience, willing_to_relocate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	err := s.db.QueryRowContext(ctx, q,
		a.UserID, a.ZipCode, a.CurrentOccupation, pq.Array(a.InterestedSectors),
		nullString(a.SkillLevel), nullString(a.EducationLevel),
		nullInt(a.YearsExperience), nullBool(a.WillingToRelocate),
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return assessment.Assessment{}, fmt.Errorf("insert assessment: %w", mapError(err))
	}
	return a, nil
}

// LatestAssessment returns the newest assessment for the user, or nil.
func (s *Store) LatestAssessment(ctx context.Context, userID string) (*assessment.Assessment, error) {
	const q = `
		SELECT id, user_id, zip_code, current_occupation, interested_sectors,
		       skill_level, education_level, years_experience, willing_to_relocate,
		       created_at
		FROM user_assessments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	var (
		a         assessment.Assessment
		skill     sql.NullString
		education sql.NullString
		years     sql.NullInt64
		relocate  sql.NullBool
	)
	err := s.db.QueryRowContext(ctx, q, userID).Scan(
		&a.ID, &a.UserID, &a.ZipCode, &a.CurrentOccupation,
		pq.Array(&a.InterestedSectors), &skill, &education, &years, &relocate,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest assessment: %w", mapError(err))
	}
	a.SkillLevel = skill.String
	a.EducationLevel = education.String
	if years.Valid {
		v := int(years.Int64)
		a.YearsExperience = &v
	}
	if relocate.Valid {
		v := relocate.Bool
		a.WillingToRelocate = &v
	}
	return &a, nil
}

// CreateSaved inserts a saved opportunity. The unique index on
// (user_id, job_id) surfaces as storage.ErrConflict.
func (s *Store) CreateSaved(ctx context.Context, saved opportunity.SavedOpportunity) (opportunity.SavedOpportunity, error) {
	const q = `
		INSERT INTO saved_opportunities
			(user_id, job_id, job_title, company, location, salary_range)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := s.db.QueryRowContext(ctx, q,
		saved.UserID, saved.JobID, saved.JobTitle, saved.Company,
		saved.Location, nullString(saved.SalaryRange),
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return opportunity.SavedOpportunity{}, fmt.Errorf("insert saved opportunity: %w", mapError(err))
	}
	return saved, nil
}

// ListSaved returns the user's saved opportunities, newest first.
func (s *Store) ListSaved(ctx context.Context, userID string) ([]opportunity.SavedOpportunity, error) {
	const q = `
		SELECT id, user_id, job_id, job_title, company, location, salary_range, created_at
		FROM saved_opportunities
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved opportunities: %w", mapError(err))
	}
	defer rows.Close()

	var out []opportunity.SavedOpportunity
	for rows.Next() {
		var (
			saved  opportunity.SavedOpportunity
			salary sql.NullString
		)
		if err := rows.Scan(&saved.ID, &saved.UserID, &saved.JobID, &saved.JobTitle,
			&saved.Company, &saved.Location, &salary, &saved.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan saved opportunity: %w", err)
		}
		saved.SalaryRange = salary.String
		out = append(out, saved)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list saved opportunities: %w", err)
	}
	return out, nil
}

// DeleteSaved removes a saved opportunity by row id, scoped to the user.
func (s *Store) DeleteSaved(ctx context.Context, userID, id string) error {
	const q = `DELETE FROM saved_opportunities WHERE id = $1 AND user_id = $2`
	res, err := s.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return fmt.Errorf("delete saved opportunity: %w", mapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete saved opportunity: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateJobApplication inserts a job application row.
func (s *Store) CreateJobApplication(ctx context.Context, a opportunity.JobApplication) (opportunity.JobApplication, error) {
	const q = `
		INSERT INTO job_applications
			(user_id, job_title, company, location, salary_range,
			 certification_required, status, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	err := s.db.QueryRowContext(ctx, q,
		a.UserID, a.JobTitle, a.Company, a.Location,
		nullString(a.SalaryRange), nullString(a.CertificationRequired),
		string(a.Status), nullTime(a.AppliedAt),
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return opportunity.JobApplication{}, fmt.Errorf("insert job application: %w", mapError(err))
	}
	return a, nil
}

// ListJobApplications returns the user's applications, newest first.
func (s *Store) ListJobApplications(ctx context.Context, userID string) ([]opportunity.JobApplication, error) {
	const q = `
		SELECT id, user_id, job_title, company, location, salary_range,
		       certification_required, status, applied_at, created_at
		FROM job_applications
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list job applications: %w", mapError(err))
	}
	defer rows.Close()

	var out []opportunity.JobApplication
	for rows.Next() {
		var (
			app     opportunity.JobApplication
			salary  sql.NullString
			cert    sql.NullString
			applied sql.NullTime
		)
		if err := rows.Scan(&app.ID, &app.UserID, &app.JobTitle, &app.Company,
			&app.Location, &salary, &cert, &app.Status, &applied, &app.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan job application: %w", err)
		}
		app.SalaryRange = salary.String
		app.CertificationRequired = cert.String
		if applied.Valid {
			t := applied.Time
			app.AppliedAt = &t
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list job applications: %w", err)
	}
	return out, nil
}

// CreateGrantApplication inserts a grant application row.
func (s *Store) CreateGrantApplication(ctx context.Context, a grant.Application) (grant.Application, error) {
	const q = `
		INSERT INTO grant_applications
			(user_id, first_name, last_name, email, phone,
			 ssn_last_four, annual_income, grant_amount, grant_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`
	err := s.db.QueryRowContext(ctx, q,
		a.UserID, a.FirstName, a.LastName, a.Email, a.Phone,
		nullString(a.SSNLastFour), nullString(a.AnnualIncome),
		a.GrantAmount, string(a.GrantType), string(a.Status),
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return grant.Application{}, fmt.Errorf("insert grant application: %w", mapError(err))
	}
	return a, nil
}

// ListGrantApplications returns the user's grant applications, newest first.
func (s *Store) ListGrantApplications(ctx context.Context, userID string) ([]grant.Application, error) {
	const q = `
		SELECT id, user_id, first_name, last_name, email, phone,
		       ssn_last_four, annual_income, grant_amount, grant_type, status, created_at
		FROM grant_applications
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list grant applications: %w", mapError(err))
	}
	defer rows.Close()

	var out []grant.Application
	for rows.Next() {
		var (
			app    grant.Application
			ssn    sql.NullString
			income sql.NullString
		)
		if err := rows.Scan(&app.ID, &app.UserID, &app.FirstName, &app.LastName,
			&app.Email, &app.Phone, &ssn, &income, &app.GrantAmount,
			&app.GrantType, &app.Status, &app.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan grant application: %w", err)
		}
		app.SSNLastFour = ssn.String
		app.AnnualIncome = income.String
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list grant applications: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
