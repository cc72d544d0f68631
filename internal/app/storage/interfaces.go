// Package storage defines the persistence interfaces over the fixed table
// contract of the hosted gateway.
package storage

import (
	"context"
	"errors"

	"github.com/pathforge/platform/internal/app/domain/assessment"
	"github.com/pathforge/platform/internal/app/domain/grant"
	"github.com/pathforge/platform/internal/app/domain/opportunity"
	"github.com/pathforge/platform/internal/app/domain/profile"
)

// Sentinel errors every backend normalizes to.
var (
	// ErrConflict reports a unique-constraint violation.
	ErrConflict = errors.New("storage: row already exists")

	// ErrNotFound reports a missing row.
	ErrNotFound = errors.New("storage: row not found")
)

// ProfileStore persists the denormalized user profile.
type ProfileStore interface {
	UpsertProfile(ctx context.Context, p profile.Profile) error
}

// AssessmentStore persists submitted assessments.
type AssessmentStore interface {
	CreateAssessment(ctx context.Context, a assessment.Assessment) (assessment.Assessment, error)
	LatestAssessment(ctx context.Context, userID string) (*assessment.Assessment, error)
}

// SavedOpportunityStore persists bookmarked postings. CreateSaved returns
// ErrConflict when the (user, job) pair already exists.
type SavedOpportunityStore interface {
	CreateSaved(ctx context.Context, s opportunity.SavedOpportunity) (opportunity.SavedOpportunity, error)
	ListSaved(ctx context.Context, userID string) ([]opportunity.SavedOpportunity, error)
	DeleteSaved(ctx context.Context, userID, id string) error
}

// JobApplicationStore persists job applications.
type JobApplicationStore interface {
	CreateJobApplication(ctx context.Context, a opportunity.JobApplication) (opportunity.JobApplication, error)
	ListJobApplications(ctx context.Context, userID string) ([]opportunity.JobApplication, error)
}

// GrantApplicationStore persists grant applications.
type GrantApplicationStore interface {
	CreateGrantApplication(ctx context.Context, a grant.Application) (grant.Application, error)
	ListGrantApplications(ctx context.Context, userID string) ([]grant.Application, error)
}
