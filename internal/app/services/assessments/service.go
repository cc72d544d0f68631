// Package assessments implements the quick-assessment flow: validate,
// persist when a session exists, buffer otherwise, and replay the buffer
// after sign-in.
package assessments

import (
	"context"
	"fmt"

	"github.com/pathforge/platform/internal/app/domain/assessment"
	"github.com/pathforge/platform/internal/app/domain/profile"
	"github.com/pathforge/platform/internal/app/flow"
	"github.com/pathforge/platform/internal/app/storage"
	"github.com/pathforge/platform/internal/logging"
	"github.com/pathforge/platform/internal/pending"
	"github.com/pathforge/platform/internal/session"
)

// Service runs the assessment flow.
type Service struct {
	sessions session.Identity
	buffer   pending.Store
	store    storage.AssessmentStore
	profiles storage.ProfileStore
	log      *logging.Logger
}

// New creates the service.
func New(sessions session.Identity, buffer pending.Store, store storage.AssessmentStore, profiles storage.ProfileStore, log *logging.Logger) *Service {
	return &Service{
		sessions: sessions,
		buffer:   buffer,
		store:    store,
		profiles: profiles,
		log:      log.WithField("service", "assessments"),
	}
}

// Submit validates and persists an assessment. Without a session the input is
// buffered and the outcome asks the caller to sign in; nothing is lost.
func (s *Service) Submit(ctx context.Context, a assessment.Assessment) (flow.Outcome, error) {
	if err := a.Validate(); err != nil {
		return flow.Outcome{}, err
	}

	userID := s.sessions.UserID(ctx)
	if userID == "" {
		if err := s.buffer.Set(a); err != nil {
			return flow.Outcome{}, fmt.Errorf("buffer assessment: %w", err)
		}
		// The input is captured, so this is a success even though the
		// caller still has to sign in to make it durable.
		return flow.Outcome{
			Success:      true,
			RequiresAuth: true,
			Message:      "Sign in to save your assessment",
		}, nil
	}

	if err := s.persist(ctx, userID, a); err != nil {
		return flow.Outcome{}, err
	}
	return flow.OK("Assessment saved"), nil
}

// SubmitPending replays the buffered assessment for a fresh session. The
// buffer is cleared only after the write succeeds, so a failed replay can be
// retried. An empty buffer is a no-op.
func (s *Service) SubmitPending(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	buffered, err := s.buffer.Get()
	if err != nil {
		return fmt.Errorf("read pending assessment: %w", err)
	}
	if buffered == nil {
		return nil
	}

	if err := s.persist(ctx, userID, *buffered); err != nil {
		return err
	}
	if err := s.buffer.Clear(); err != nil {
		return fmt.Errorf("clear pending assessment: %w", err)
	}
	s.log.WithField("user_id", userID).Info("Replayed pending assessment")
	return nil
}

// Latest returns the user's newest assessment, or nil when none exists or no
// session is active.
func (s *Service) Latest(ctx context.Context) (*assessment.Assessment, error) {
	userID := s.sessions.UserID(ctx)
	if userID == "" {
		return nil, nil
	}
	return s.store.LatestAssessment(ctx, userID)
}

// persist writes the assessment and then refreshes the denormalized profile.
// The profile write is best-effort: the assessment is already durable, so a
// profile failure is logged rather than surfaced.
func (s *Service) persist(ctx context.Context, userID string, a assessment.Assessment) error {
	a.UserID = userID
	stored, err := s.store.CreateAssessment(ctx, a)
	if err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}

	p := profile.Profile{
		UserID:     userID,
		ZipCode:    stored.ZipCode,
		CurrentJob: stored.CurrentOccupation,
	}
	if err := s.profiles.UpsertProfile(ctx, p); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("Profile refresh failed after assessment")
	}
	return nil
}
