// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pathforge/platform/internal/app/domain/assessment"
	"github.com/pathforge/platform/internal/app/domain/grant"
	"github.com/pathforge/platform/internal/app/domain/opportunity"
	"github.com/pathforge/platform/internal/app/domain/profile"
	"github.com/pathforge/platform/internal/app/storage"
)

// Store is the in-memory backend.
type Store struct {
	mu           sync.RWMutex
	profiles     map[string]profile.Profile
	assessments  map[string][]assessment.Assessment
	saved        map[string][]opportunity.SavedOpportunity
	savedByJob   map[string]map[string]string // userID -> jobID -> rowID
	applications map[string][]opportunity.JobApplication
	grants       map[string][]grant.Application
	seq          int
}

var _ storage.ProfileStore = (*Store)(nil)
var _ storage.AssessmentStore = (*Store)(nil)
var _ storage.SavedOpportunityStore = (*Store)(nil)
var _ storage.JobApplicationStore = (*Store)(nil)
var _ storage.GrantApplicationStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		profiles:     make(map[string]profile.Profile),
		assessments:  make(map[string][]assessment.Assessment),
		saved:        make(map[string][]opportunity.SavedOpportunity),
		savedByJob:   make(map[string]map[string]string),
		applications: make(map[string][]opportunity.JobApplication),
		grants:       make(map[string][]grant.Application),
	}
}

// now yields strictly increasing timestamps so list ordering is stable even
// inside a single test tick.
func (s *Store) nowLocked() time.Time {
	s.seq++
	return time.Now().UTC().Add(time.Duration(s.seq) * time.Microsecond)
}

// UpsertProfile inserts or overwrites the profile for a user.
func (s *Store) UpsertProfile(_ context.Context, p profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.UpdatedAt = s.nowLocked()
	s.profiles[p.UserID] = p
	return nil
}

// Profile returns the stored profile for a user, if any. Test helper.
func (s *Store) Profile(userID string) (profile.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	return p, ok
}

// CreateAssessment appends an assessment row for the user.
func (s *Store) CreateAssessment(_ context.Context, a assessment.Assessment) (assessment.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = s.nowLocked()
	s.assessments[a.UserID] = append(s.assessments[a.UserID], a)
	return a, nil
}

// LatestAssessment returns the newest assessment for the user, or nil.
func (s *Store) LatestAssessment(_ context.Context, userID string) (*assessment.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.assessments[userID]
	if len(rows) == 0 {
		return nil, nil
	}
	latest := rows[0]
	for _, row := range rows[1:] {
		if row.CreatedAt.After(latest.CreatedAt) {
			latest = row
		}
	}
	return &latest, nil
}

// CreateSaved inserts a saved opportunity, enforcing the (user, job)
// uniqueness the gateway provides.
func (s *Store) CreateSaved(_ context.Context, saved opportunity.SavedOpportunity) (opportunity.SavedOpportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byJob := s.savedByJob[saved.UserID]
	if byJob == nil {
		byJob = make(map[string]string)
		s.savedByJob[saved.UserID] = byJob
	}
	if _, exists := byJob[saved.JobID]; exists {
		return opportunity.SavedOpportunity{}, storage.ErrConflict
	}

	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	saved.CreatedAt = s.nowLocked()
	byJob[saved.JobID] = saved.ID
	s.saved[saved.UserID] = append(s.saved[saved.UserID], saved)
	return saved, nil
}

// ListSaved returns the user's saved opportunities, newest first.
func (s *Store) ListSaved(_ context.Context, userID string) ([]opportunity.SavedOpportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := append([]opportunity.SavedOpportunity(nil), s.saved[userID]...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}

// DeleteSaved removes a saved opportunity by row id.
func (s *Store) DeleteSaved(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.saved[userID]
	for i, row := range rows {
		if row.ID == id {
			s.saved[userID] = append(rows[:i], rows[i+1:]...)
			delete(s.savedByJob[userID], row.JobID)
			return nil
		}
	}
	return storage.ErrNotFound
}

// CreateJobApplication appends a job application row. Duplicate applications
// are allowed; no idempotence key exists.
func (s *Store) CreateJobApplication(_ context.Context, a opportunity.JobApplication) (opportunity.JobApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = s.nowLocked()
	s.applications[a.UserID] = append(s.applications[a.UserID], a)
	return a, nil
}

// ListJobApplications returns the user's applications, newest first.
func (s *Store) ListJobApplications(_ context.Context, userID string) ([]opportunity.JobApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := append([]opportunity.JobApplication(nil), s.applications[userID]...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}

// CreateGrantApplication appends a grant application row.
func (s *Store) CreateGrantApplication(_ context.Context, a grant.Application) (grant.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = s.nowLocked()
	s.grants[a.UserID] = append(s.grants[a.UserID], a)
	return a, nil
}

// ListGrantApplications returns the user's grant applications, newest first.
func (s *Store) ListGrantApplications(_ context.Context, userID string) ([]grant.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := append([]grant.Application(nil), s.grants[userID]...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}
