// Package opportunities implements the catalog, save and apply flows.
package opportunities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pathforge/platform/internal/app/domain/opportunity"
	"github.com/pathforge/platform/internal/app/domain/status"
	"github.com/pathforge/platform/internal/app/flow"
	"github.com/pathforge/platform/internal/app/storage"
	"github.com/pathforge/platform/internal/catalog"
	"github.com/pathforge/platform/internal/logging"
	"github.com/pathforge/platform/internal/metrics"
	"github.com/pathforge/platform/internal/session"
)

// ErrUnknownOpportunity reports a job id outside the catalog.
var ErrUnknownOpportunity = errors.New("opportunities: unknown job id")

// Service runs the opportunity flows.
type Service struct {
	sessions     session.Identity
	saved        storage.SavedOpportunityStore
	applications storage.JobApplicationStore
	metrics      *metrics.Metrics
	log          *logging.Logger
}

// New creates the service. Metrics may be nil.
func New(sessions session.Identity, saved storage.SavedOpportunityStore, applications storage.JobApplicationStore, m *metrics.Metrics, log *logging.Logger) *Service {
	return &Service{
		sessions:     sessions,
		saved:        saved,
		applications: applications,
		metrics:      m,
		log:          log.WithField("service", "opportunities"),
	}
}

// Catalog returns every posting in display order.
func (s *Service) Catalog() []opportunity.Opportunity {
	return catalog.All()
}

// Save bookmarks a catalog posting. Saving an already-saved posting is
// reported as success; the earlier row stands.
func (s *Service) Save(ctx context.Context, jobID string) (flow.Outcome, error) {
	job, ok := catalog.ByID(jobID)
	if !ok {
		return flow.Outcome{}, ErrUnknownOpportunity
	}

	userID := s.sessions.UserID(ctx)
	if userID == "" {
		return flow.AuthRequired("Sign in to save opportunities"), nil
	}

	_, err := s.saved.CreateSaved(ctx, opportunity.SavedOpportunity{
		UserID:      userID,
		JobID:       job.ID,
		JobTitle:    job.Title,
		Company:     job.Company,
		Location:    job.Location,
		SalaryRange: job.Salary,
	})
	if errors.Is(err, storage.ErrConflict) {
		if s.metrics != nil {
			s.metrics.RecordSaveConflict()
		}
		return flow.OK("Already saved"), nil
	}
	if err != nil {
		return flow.Outcome{}, fmt.Errorf("save opportunity: %w", err)
	}
	return flow.OK("Opportunity saved"), nil
}

// Apply submits an application for a catalog posting. Applications are
// created in submitted state with the apply time stamped; repeat applications
// for the same posting each create a row.
func (s *Service) Apply(ctx context.Context, jobID string) (flow.Outcome, error) {
	job, ok := catalog.ByID(jobID)
	if !ok {
		return flow.Outcome{}, ErrUnknownOpportunity
	}

	userID := s.sessions.UserID(ctx)
	if userID == "" {
		return flow.AuthRequired("Sign in to apply"), nil
	}

	now := time.Now().UTC()
	_, err := s.applications.CreateJobApplication(ctx, opportunity.JobApplication{
		UserID:                userID,
		JobTitle:              job.Title,
		Company:               job.Company,
		Location:              job.Location,
		SalaryRange:           job.Salary,
		CertificationRequired: job.CertRequired,
		Status:                status.Submitted,
		AppliedAt:             &now,
	})
	if err != nil {
		return flow.Outcome{}, fmt.Errorf("apply: %w", err)
	}
	return flow.OK("Application submitted"), nil
}

// ListSaved returns the user's bookmarks, newest first. No session yields an
// empty list, not an error.
func (s *Service) ListSaved(ctx context.Context) ([]opportunity.SavedOpportunity, error) {
	userID := s.sessions.UserID(ctx)
	if userID == "" {
		return nil, nil
	}
	return s.saved.ListSaved(ctx, userID)
}

// ListApplications returns the user's applications, newest first.
func (s *Service) ListApplications(ctx context.Context) ([]opportunity.JobApplication, error) {
	userID := s.sessions.UserID(ctx)
	if userID == "" {
		return nil, nil
	}
	return s.applications.ListJobApplications(ctx, userID)
}

// DeleteSaved removes a bookmark by row id. storage.ErrNotFound passes
// through for rows that do not exist or belong to someone else.
func (s *Service) DeleteSaved(ctx context.Context, id string) error {
	userID := s.sessions.UserID(ctx)
	if userID == "" {
		return storage.ErrNotFound
	}
	return s.saved.DeleteSaved(ctx, userID, id)
}
