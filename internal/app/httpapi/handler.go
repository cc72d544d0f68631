// Package httpapi exposes the flows over REST.
package httpapi

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pathforge/platform/internal/app"
	"github.com/pathforge/platform/internal/app/domain/assessment"
	"github.com/pathforge/platform/internal/app/domain/grant"
	"github.com/pathforge/platform/internal/app/flow"
	"github.com/pathforge/platform/internal/app/services/grants"
	"github.com/pathforge/platform/internal/app/services/opportunities"
	"github.com/pathforge/platform/internal/app/storage"
	"github.com/pathforge/platform/internal/errors"
	"github.com/pathforge/platform/internal/httputil"
	"github.com/pathforge/platform/internal/logging"
	"github.com/pathforge/platform/internal/middleware"
	"github.com/pathforge/platform/internal/session"
	"github.com/pathforge/platform/internal/supabase"
)

const serviceName = "pathforge"

// pendingReplayTimeout bounds the detached replay kicked off after sign-in.
const pendingReplayTimeout = 30 * time.Second

// Handler serves the REST API.
type Handler struct {
	app      *app.Application
	sessions *session.Manager
	auth     *middleware.Auth
	log      *logging.Logger
}

// New creates the handler. sessions may be nil when the deployment is purely
// token-based; the /auth endpoints then return 404.
func New(application *app.Application, sessions *session.Manager, auth *middleware.Auth, log *logging.Logger) *Handler {
	return &Handler{
		app:      application,
		sessions: sessions,
		auth:     auth,
		log:      log.WithField("component", "httpapi"),
	}
}

// Router builds the route table with the middleware chain applied.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logging(h.log))
	if h.app.Metrics != nil {
		r.Use(middleware.Metrics(h.app.Metrics, serviceName))
		r.Handle("/metrics", promhttp.HandlerFor(h.app.Metrics.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)

	if h.sessions != nil {
		r.HandleFunc("/auth/signup", h.handleSignUp).Methods(http.MethodPost)
		r.HandleFunc("/auth/signin", h.handleSignIn).Methods(http.MethodPost)
		r.HandleFunc("/auth/signout", h.handleSignOut).Methods(http.MethodPost)
	}

	api := r.NewRoute().Subrouter()
	if h.auth != nil {
		api.Use(h.auth.Optional)
	}
	api.HandleFunc("/assessments", h.handleSubmitAssessment).Methods(http.MethodPost)
	api.HandleFunc("/assessments/latest", h.handleLatestAssessment).Methods(http.MethodGet)
	api.HandleFunc("/opportunities", h.handleCatalog).Methods(http.MethodGet)
	api.HandleFunc("/opportunities/{id}/save", h.handleSave).Methods(http.MethodPost)
	api.HandleFunc("/opportunities/{id}/apply", h.handleApply).Methods(http.MethodPost)
	api.HandleFunc("/saved", h.handleListSaved).Methods(http.MethodGet)
	api.HandleFunc("/saved/{id}", h.handleDeleteSaved).Methods(http.MethodDelete)
	api.HandleFunc("/applications", h.handleListApplications).Methods(http.MethodGet)
	api.HandleFunc("/grants", h.handleSubmitGrant).Methods(http.MethodPost)
	api.HandleFunc("/grants", h.handleListGrants).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", h.handleDashboard).Methods(http.MethodGet)
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httputil.DecodeJSON(r.Body, &req); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		h.writeError(w, r, errors.Validation("email and password are required"))
		return
	}

	sess, err := h.sessions.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.writeError(w, r, errors.Unauthorized("sign up failed"))
		return
	}
	h.replayPending(sess)
	httputil.WriteJSON(w, http.StatusCreated, sess)
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httputil.DecodeJSON(r.Body, &req); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}

	sess, err := h.sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, errors.Unauthorized("invalid email or password"))
		return
	}
	h.replayPending(sess)
	httputil.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut(r.Context())
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// replayPending submits any buffered assessment for a fresh session. The
// replay is detached from the request so a slow gateway cannot stall sign-in;
// failures are logged and the buffer keeps the entry for the next sign-in.
func (h *Handler) replayPending(sess *supabase.Session) {
	if sess == nil || sess.User == nil || sess.User.ID == "" {
		return
	}
	userID := sess.User.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pendingReplayTimeout)
		defer cancel()
		if err := h.app.Assessments.SubmitPending(ctx, userID); err != nil {
			h.log.WithError(err).WithField("user_id", userID).Warn("Pending assessment replay failed")
		}
	}()
}

func (h *Handler) handleSubmitAssessment(w http.ResponseWriter, r *http.Request) {
	var a assessment.Assessment
	if err := httputil.DecodeJSON(r.Body, &a); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	outcome, err := h.app.Assessments.Submit(r.Context(), a)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeOutcome(w, "assessment", outcome)
}

func (h *Handler) handleLatestAssessment(w http.ResponseWriter, r *http.Request) {
	latest, err := h.app.Assessments.Latest(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if latest == nil {
		h.writeError(w, r, errors.NotFound("no assessment found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, latest)
}

func (h *Handler) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"opportunities": h.app.Opportunities.Catalog(),
	})
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.app.Opportunities.Save(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeOutcome(w, "save", outcome)
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.app.Opportunities.Apply(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeOutcome(w, "apply", outcome)
}

func (h *Handler) handleListSaved(w http.ResponseWriter, r *http.Request) {
	rows, err := h.app.Opportunities.ListSaved(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"saved_opportunities": emptyIfNil(rows)})
}

func (h *Handler) handleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Opportunities.DeleteSaved(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListApplications(w http.ResponseWriter, r *http.Request) {
	rows, err := h.app.Opportunities.ListApplications(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"job_applications": emptyIfNil(rows)})
}

func (h *Handler) handleSubmitGrant(w http.ResponseWriter, r *http.Request) {
	var a grant.Application
	if err := httputil.DecodeJSON(r.Body, &a); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	outcome, err := h.app.Grants.Submit(r.Context(), a)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeOutcome(w, "grant", outcome)
}

func (h *Handler) handleListGrants(w http.ResponseWriter, r *http.Request) {
	rows, err := h.app.Grants.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"grant_applications": emptyIfNil(rows)})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.app.Dashboard.Load(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

// writeOutcome renders a flow outcome. A sign-in-required outcome is a 401
// carrying the outcome body so clients can distinguish it from a rejected
// credential.
func (h *Handler) writeOutcome(w http.ResponseWriter, flowName string, outcome flow.Outcome) {
	if h.app.Metrics != nil {
		h.app.Metrics.RecordFlowWrite(flowName, outcomeLabel(outcome))
	}
	status := http.StatusOK
	if outcome.RequiresAuth {
		status = http.StatusUnauthorized
	}
	httputil.WriteJSON(w, status, outcome)
}

func outcomeLabel(outcome flow.Outcome) string {
	switch {
	case outcome.Success:
		return "success"
	case outcome.RequiresAuth:
		return "auth_required"
	default:
		return "failed"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	svcErr := errors.GetServiceError(err)
	if svcErr == nil {
		svcErr = classify(err)
	}
	if svcErr.HTTPStatus >= 500 {
		h.log.WithContext(r.Context()).WithError(err).Error("Request failed")
	}
	httputil.WriteErrorResponse(w, r, svcErr.HTTPStatus, string(svcErr.Code), svcErr.Message, svcErr.Details)
}

// classify maps flow and storage errors onto the service taxonomy.
func classify(err error) *errors.ServiceError {
	var grantErr grants.ValidationError
	switch {
	case stderrors.Is(err, storage.ErrNotFound):
		return errors.NotFound("not found")
	case stderrors.Is(err, storage.ErrConflict):
		return errors.Conflict("already exists")
	case stderrors.Is(err, opportunities.ErrUnknownOpportunity):
		return errors.NotFound("unknown opportunity")
	case stderrors.As(err, &grantErr):
		return errors.Validation(grantErr.Error())
	case isValidation(err):
		return errors.Validation(err.Error())
	}
	return errors.Internal("the request could not be completed", err)
}

func isValidation(err error) bool {
	return stderrors.Is(err, assessment.ErrZipCodeRequired) ||
		stderrors.Is(err, assessment.ErrOccupationRequired)
}

func emptyIfNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
