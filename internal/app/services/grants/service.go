// Package grants implements the training-grant application flow, including
// the step validation used by the multi-step intake form.
package grants

import (
	"context"
	"fmt"
	"strings"

	"github.com/pathforge/platform/internal/app/domain/grant"
	"github.com/pathforge/platform/internal/app/domain/status"
	"github.com/pathforge/platform/internal/app/flow"
	"github.com/pathforge/platform/internal/app/storage"
	"github.com/pathforge/platform/internal/logging"
	"github.com/pathforge/platform/internal/session"
)

// Service runs the grant flow.
type Service struct {
	sessions session.Identity
	store    storage.GrantApplicationStore
	log      *logging.Logger
}

// New creates the service.
func New(sessions session.Identity, store storage.GrantApplicationStore, log *logging.Logger) *Service {
	return &Service{
		sessions: sessions,
		store:    store,
		log:      log.WithField("service", "grants"),
	}
}

// Submit persists a grant application. A session is required; unlike
// assessments there is no pending buffer for grants. Unset program fields
// take the defaults, and applications always enter in submitted state.
func (s *Service) Submit(ctx context.Context, a grant.Application) (flow.Outcome, error) {
	if err := ValidatePersonalInfo(a); err != nil {
		return flow.Outcome{}, err
	}
	if a.GrantType != "" && !a.GrantType.Valid() {
		return flow.Outcome{}, ValidationError(fmt.Sprintf("unknown grant type %q", a.GrantType))
	}

	userID := s.sessions.UserID(ctx)
	if userID == "" {
		return flow.AuthRequired("Sign in to apply for a grant"), nil
	}

	a.UserID = userID
	a.Status = status.Submitted
	if a.GrantAmount == 0 {
		a.GrantAmount = grant.DefaultAmount
	}
	if a.GrantType == "" {
		a.GrantType = grant.DefaultType
	}

	stored, err := s.store.CreateGrantApplication(ctx, a)
	if err != nil {
		return flow.Outcome{}, fmt.Errorf("create grant application: %w", err)
	}
	s.log.WithField("user_id", userID).WithField("grant_id", stored.ID).Info("Grant application submitted")
	return flow.OK("Grant application submitted"), nil
}

// List returns the user's grant applications, newest first. No session yields
// an empty list.
func (s *Service) List(ctx context.Context) ([]grant.Application, error) {
	userID := s.sessions.UserID(ctx)
	if userID == "" {
		return nil, nil
	}
	return s.store.ListGrantApplications(ctx, userID)
}

// ValidationError is a user-correctable input problem.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// ValidatePersonalInfo checks the fields collected on the first form step.
func ValidatePersonalInfo(a grant.Application) error {
	for _, f := range []struct{ name, value string }{
		{"first name", a.FirstName},
		{"last name", a.LastName},
		{"email", a.Email},
		{"phone", a.Phone},
	} {
		if strings.TrimSpace(f.value) == "" {
			return ValidationError(f.name + " is required")
		}
	}
	return nil
}

// ValidateEligibility checks the fields collected on the second form step.
func ValidateEligibility(a grant.Application) error {
	if strings.TrimSpace(a.SSNLastFour) == "" {
		return ValidationError("last four SSN digits are required")
	}
	if len(strings.TrimSpace(a.SSNLastFour)) != 4 {
		return ValidationError("last four SSN digits must be exactly four digits")
	}
	if strings.TrimSpace(a.AnnualIncome) == "" {
		return ValidationError("annual income is required")
	}
	return nil
}

// Step identifies a page of the intake form.
type Step int

const (
	StepPersonalInfo Step = iota + 1
	StepEligibility
	StepReview
)

// Wizard walks an application through the intake steps, validating each step
// before advancing. It is a client-side helper; Submit revalidates anyway.
type Wizard struct {
	step Step
	app  grant.Application
}

// NewWizard starts a wizard on the first step.
func NewWizard() *Wizard {
	return &Wizard{step: StepPersonalInfo}
}

// Step returns the current step.
func (w *Wizard) Step() Step { return w.step }

// Application returns the data entered so far.
func (w *Wizard) Application() grant.Application { return w.app }

// SetPersonalInfo records the first-step fields.
func (w *Wizard) SetPersonalInfo(firstName, lastName, email, phone string) {
	w.app.FirstName = firstName
	w.app.LastName = lastName
	w.app.Email = email
	w.app.Phone = phone
}

// SetEligibility records the second-step fields.
func (w *Wizard) SetEligibility(ssnLastFour, annualIncome string) {
	w.app.SSNLastFour = ssnLastFour
	w.app.AnnualIncome = annualIncome
}

// Next validates the current step and advances. On the review step it is a
// no-op; callers submit from there.
func (w *Wizard) Next() error {
	switch w.step {
	case StepPersonalInfo:
		if err := ValidatePersonalInfo(w.app); err != nil {
			return err
		}
		w.step = StepEligibility
	case StepEligibility:
		if err := ValidateEligibility(w.app); err != nil {
			return err
		}
		w.step = StepReview
	}
	return nil
}

// Back returns to the previous step without validating. Entered data is kept.
func (w *Wizard) Back() {
	if w.step > StepPersonalInfo {
		w.step--
	}
}
