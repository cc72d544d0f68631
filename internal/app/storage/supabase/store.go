// Package supabase implements the storage interfaces against the hosted
// gateway's REST surface.
package supabase

import (
	"context"
	"fmt"

	"github.com/pathforge/platform/internal/app/domain/assessment"
	"github.com/pathforge/platform/internal/app/domain/grant"
	"github.com/pathforge/platform/internal/app/domain/opportunity"
	"github.com/pathforge/platform/internal/app/domain/profile"
	"github.com/pathforge/platform/internal/app/storage"
	supa "github.com/pathforge/platform/internal/supabase"
)

// Table names of the fixed gateway contract.
const (
	tableProfiles           = "profiles"
	tableAssessments        = "user_assessments"
	tableSavedOpportunities = "saved_opportunities"
	tableJobApplications    = "job_applications"
	tableGrantApplications  = "grant_applications"
)

// Store implements the storage interfaces over the gateway client. When a
// service key is configured, queries run with it so row-level security does
// not apply to this backend service.
type Store struct {
	client     *supa.Client
	serviceKey string
}

var _ storage.ProfileStore = (*Store)(nil)
var _ storage.AssessmentStore = (*Store)(nil)
var _ storage.SavedOpportunityStore = (*Store)(nil)
var _ storage.JobApplicationStore = (*Store)(nil)
var _ storage.GrantApplicationStore = (*Store)(nil)

// New creates a gateway-backed store.
func New(client *supa.Client, serviceKey string) *Store {
	return &Store{client: client, serviceKey: serviceKey}
}

func (s *Store) query(table string) *supa.QueryBuilder {
	q := s.client.Database().From(table)
	if s.serviceKey != "" {
		q = q.WithToken(s.serviceKey)
	}
	return q
}

func mapError(err error) error {
	if supa.IsUniqueViolation(err) {
		return storage.ErrConflict
	}
	return err
}

// UpsertProfile writes the user's zip and current job, merging on user_id.
func (s *Store) UpsertProfile(ctx context.Context, p profile.Profile) error {
	row := map[string]interface{}{
		"user_id":     p.UserID,
		"zip_code":    p.ZipCode,
		"current_job": p.CurrentJob,
	}
	if _, err := s.query(tableProfiles).Upsert(row, "user_id").Execute(ctx); err != nil {
		return fmt.Errorf("upsert profile: %w", mapError(err))
	}
	return nil
}

// CreateAssessment inserts an assessment row and returns the stored row.
func (s *Store) CreateAssessment(ctx context.Context, a assessment.Assessment) (assessment.Assessment, error) {
	row := map[string]interface{}{
		"user_id":            a.UserID,
		"zip_code":           a.ZipCode,
		"current_occupation": a.CurrentOccupation,
		"interested_sectors": sectorsOrEmpty(a.InterestedSectors),
	}
	if a.SkillLevel != "" {
		row["skill_level"] = a.SkillLevel
	}
	if a.EducationLevel != "" {
		row["education_level"] = a.EducationLevel
	}
	if a.YearsExperience != nil {
		row["years_experience"] = *a.YearsExperience
	}
	if a.WillingToRelocate != nil {
		row["willing_to_relocate"] = *a.WillingToRelocate
	}

	var rows []assessment.Assessment
	if err := s.query(tableAssessments).Insert(row).ExecuteInto(ctx, &rows); err != nil {
		return assessment.Assessment{}, fmt.Errorf("insert assessment: %w", mapError(err))
	}
	if len(rows) == 0 {
		return a, nil
	}
	return rows[0], nil
}

// LatestAssessment returns the newest assessment for a user, or nil.
func (s *Store) LatestAssessment(ctx context.Context, userID string) (*assessment.Assessment, error) {
	var rows []assessment.Assessment
	err := s.query(tableAssessments).
		Select("*").
		Eq("user_id", userID).
		Order("created_at", supa.OrderDesc).
		Limit(1).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("latest assessment: %w", mapError(err))
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// CreateSaved inserts a saved opportunity. A duplicate (user, job) pair
// surfaces as storage.ErrConflict.
func (s *Store) CreateSaved(ctx context.Context, saved opportunity.SavedOpportunity) (opportunity.SavedOpportunity, error) {
	row := map[string]interface{}{
		"user_id":   saved.UserID,
		"job_id":    saved.JobID,
		"job_title": saved.JobTitle,
		"company":   saved.Company,
		"location":  saved.Location,
	}
	if saved.SalaryRange != "" {
		row["salary_range"] = saved.SalaryRange
	}

	var rows []opportunity.SavedOpportunity
	if err := s.query(tableSavedOpportunities).Insert(row).ExecuteInto(ctx, &rows); err != nil {
		return opportunity.SavedOpportunity{}, fmt.Errorf("insert saved opportunity: %w", mapError(err))
	}
	if len(rows) == 0 {
		return saved, nil
	}
	return rows[0], nil
}

// ListSaved returns the user's saved opportunities, newest first.
func (s *Store) ListSaved(ctx context.Context, userID string) ([]opportunity.SavedOpportunity, error) {
	var rows []opportunity.SavedOpportunity
	err := s.query(tableSavedOpportunities).
		Select("*").
		Eq("user_id", userID).
		Order("created_at", supa.OrderDesc).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list saved opportunities: %w", mapError(err))
	}
	return rows, nil
}

// DeleteSaved removes a saved opportunity by row id, scoped to the user.
func (s *Store) DeleteSaved(ctx context.Context, userID, id string) error {
	var rows []opportunity.SavedOpportunity
	err := s.query(tableSavedOpportunities).
		Delete().
		Eq("id", id).
		Eq("user_id", userID).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return fmt.Errorf("delete saved opportunity: %w", mapError(err))
	}
	if len(rows) == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateJobApplication inserts a job application row.
func (s *Store) CreateJobApplication(ctx context.Context, a opportunity.JobApplication) (opportunity.JobApplication, error) {
	row := map[string]interface{}{
		"user_id":   a.UserID,
		"job_title": a.JobTitle,
		"company":   a.Company,
		"location":  a.Location,
		"status":    a.Status,
	}
	if a.SalaryRange != "" {
		row["salary_range"] = a.SalaryRange
	}
	if a.CertificationRequired != "" {
		row["certification_required"] = a.CertificationRequired
	}
	if a.AppliedAt != nil {
		row["applied_at"] = a.AppliedAt
	}

	var rows []opportunity.JobApplication
	if err := s.query(tableJobApplications).Insert(row).ExecuteInto(ctx, &rows); err != nil {
		return opportunity.JobApplication{}, fmt.Errorf("insert job application: %w", mapError(err))
	}
	if len(rows) == 0 {
		return a, nil
	}
	return rows[0], nil
}

// ListJobApplications returns the user's applications, newest first.
func (s *Store) ListJobApplications(ctx context.Context, userID string) ([]opportunity.JobApplication, error) {
	var rows []opportunity.JobApplication
	err := s.query(tableJobApplications).
		Select("*").
		Eq("user_id", userID).
		Order("created_at", supa.OrderDesc).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list job applications: %w", mapError(err))
	}
	return rows, nil
}

// CreateGrantApplication inserts a grant application row.
func (s *Store) CreateGrantApplication(ctx context.Context, a grant.Application) (grant.Application, error) {
	row := map[string]interface{}{
		"user_id":      a.UserID,
		"first_name":   a.FirstName,
		"last_name":    a.LastName,
		"email":        a.Email,
		"phone":        a.Phone,
		"grant_amount": a.GrantAmount,
		"grant_type":   a.GrantType,
		"status":       a.Status,
	}
	if a.SSNLastFour != "" {
		row["ssn_last_four"] = a.SSNLastFour
	}
	if a.AnnualIncome != "" {
		row["annual_income"] = a.AnnualIncome
	}

	var rows []grant.Application
	if err := s.query(tableGrantApplications).Insert(row).ExecuteInto(ctx, &rows); err != nil {
		return grant.Application{}, fmt.Errorf("insert grant application: %w", mapError(err))
	}
	if len(rows) == 0 {
		return a, nil
	}
	return rows[0], nil
}

// ListGrantApplications returns the user's grant applications, newest first.
func (s *Store) ListGrantApplications(ctx context.Context, userID string) ([]grant.Application, error) {
	var rows []grant.Application
	err := s.query(tableGrantApplications).
		Select("*").
		Eq("user_id", userID).
		Order("created_at", supa.OrderDesc).
		ExecuteInto(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list grant applications: %w", mapError(err))
	}
	return rows, nil
}

func sectorsOrEmpty(sectors []string) []string {
	if sectors == nil {
		return []string{}
	}
	return sectors
}
