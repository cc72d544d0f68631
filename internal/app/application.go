// Package app wires the storage backends, session manager and flow services
// into one application value the HTTP surface is built on.
package app

import (
	"github.com/pathforge/platform/internal/app/services/assessments"
	"github.com/pathforge/platform/internal/app/services/dashboard"
	"github.com/pathforge/platform/internal/app/services/grants"
	"github.com/pathforge/platform/internal/app/services/opportunities"
	"github.com/pathforge/platform/internal/app/storage"
	"github.com/pathforge/platform/internal/app/storage/memory"
	"github.com/pathforge/platform/internal/logging"
	"github.com/pathforge/platform/internal/metrics"
	"github.com/pathforge/platform/internal/pending"
	"github.com/pathforge/platform/internal/session"
)

// Stores bundles the persistence interfaces. Any nil field falls back to a
// shared in-memory store, so tests can override only what they exercise.
type Stores struct {
	Profiles           storage.ProfileStore
	Assessments        storage.AssessmentStore
	SavedOpportunities storage.SavedOpportunityStore
	JobApplications    storage.JobApplicationStore
	GrantApplications  storage.GrantApplicationStore
}

// Options configures New. Zero-value fields get working defaults.
type Options struct {
	Stores   Stores
	Sessions session.Identity
	Pending  pending.Store
	Metrics  *metrics.Metrics
	Logger   *logging.Logger
}

// Application is the assembled service layer.
type Application struct {
	Assessments   *assessments.Service
	Opportunities *opportunities.Service
	Grants        *grants.Service
	Dashboard     *dashboard.Service

	Logger  *logging.Logger
	Metrics *metrics.Metrics
}

// New assembles the application.
func New(opts Options) *Application {
	log := opts.Logger
	if log == nil {
		log = logging.NewDefault("app")
	}
	if opts.Pending == nil {
		opts.Pending = pending.NewMemory()
	}
	if opts.Sessions == nil {
		opts.Sessions = session.ContextFirst{}
	}

	var fallback *memory.Store
	mem := func() *memory.Store {
		if fallback == nil {
			fallback = memory.New()
		}
		return fallback
	}
	if opts.Stores.Profiles == nil {
		opts.Stores.Profiles = mem()
	}
	if opts.Stores.Assessments == nil {
		opts.Stores.Assessments = mem()
	}
	if opts.Stores.SavedOpportunities == nil {
		opts.Stores.SavedOpportunities = mem()
	}
	if opts.Stores.JobApplications == nil {
		opts.Stores.JobApplications = mem()
	}
	if opts.Stores.GrantApplications == nil {
		opts.Stores.GrantApplications = mem()
	}

	return &Application{
		Assessments:   assessments.New(opts.Sessions, opts.Pending, opts.Stores.Assessments, opts.Stores.Profiles, log),
		Opportunities: opportunities.New(opts.Sessions, opts.Stores.SavedOpportunities, opts.Stores.JobApplications, opts.Metrics, log),
		Grants:        grants.New(opts.Sessions, opts.Stores.GrantApplications, log),
		Dashboard:     dashboard.New(opts.Sessions, opts.Stores.SavedOpportunities, opts.Stores.JobApplications, opts.Stores.GrantApplications, log),
		Logger:        log,
		Metrics:       opts.Metrics,
	}
}
