// Package dashboard assembles the signed-in landing view from the user's
// saved opportunities, job applications and grant applications.
package dashboard

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pathforge/platform/internal/app/domain/grant"
	"github.com/pathforge/platform/internal/errors"
	"github.com/pathforge/platform/internal/app/domain/opportunity"
	"github.com/pathforge/platform/internal/app/storage"
	"github.com/pathforge/platform/internal/logging"
	"github.com/pathforge/platform/internal/session"
)

// Snapshot is one dashboard load. Sections that failed to load are empty and
// Partial is set; the sections that did load are still usable.
type Snapshot struct {
	Saved        []opportunity.SavedOpportunity `json:"saved_opportunities"`
	Applications []opportunity.JobApplication   `json:"job_applications"`
	Grants       []grant.Application            `json:"grant_applications"`
	Partial      bool                           `json:"partial,omitempty"`
	Error        string                         `json:"error,omitempty"`
}

// partialMessage is the single generic notice shown for any failed section.
const partialMessage = "Some dashboard data could not be loaded"

// Service loads the dashboard.
type Service struct {
	sessions     session.Identity
	saved        storage.SavedOpportunityStore
	applications storage.JobApplicationStore
	grants       storage.GrantApplicationStore
	log          *logging.Logger
}

// New creates the service.
func New(sessions session.Identity, saved storage.SavedOpportunityStore, applications storage.JobApplicationStore, grants storage.GrantApplicationStore, log *logging.Logger) *Service {
	return &Service{
		sessions:     sessions,
		saved:        saved,
		applications: applications,
		grants:       grants,
		log:          log.WithField("service", "dashboard"),
	}
}

// Load fetches the three sections concurrently. A failed section is logged
// and left empty rather than failing the whole view. The dashboard is only
// shown to signed-in users, so a missing session is an error here.
func (s *Service) Load(ctx context.Context) (Snapshot, error) {
	userID := s.sessions.UserID(ctx)
	if userID == "" {
		return Snapshot{}, errors.AuthRequired("sign in to view your dashboard")
	}

	var (
		snap Snapshot
		mu   sync.Mutex
		g    errgroup.Group
	)
	fail := func(section string, err error) {
		s.log.WithError(err).WithField("section", section).WithField("user_id", userID).Error("Dashboard section failed")
		mu.Lock()
		snap.Partial = true
		snap.Error = partialMessage
		mu.Unlock()
	}

	g.Go(func() error {
		rows, err := s.saved.ListSaved(ctx, userID)
		if err != nil {
			fail("saved_opportunities", err)
			return nil
		}
		mu.Lock()
		snap.Saved = rows
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		rows, err := s.applications.ListJobApplications(ctx, userID)
		if err != nil {
			fail("job_applications", err)
			return nil
		}
		mu.Lock()
		snap.Applications = rows
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		rows, err := s.grants.ListGrantApplications(ctx, userID)
		if err != nil {
			fail("grant_applications", err)
			return nil
		}
		mu.Lock()
		snap.Grants = rows
		mu.Unlock()
		return nil
	})

	_ = g.Wait()
	return snap, nil
}
