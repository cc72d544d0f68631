// Package session tracks the active auth session for the user-facing flows.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pathforge/platform/internal/logging"
	"github.com/pathforge/platform/internal/supabase"
)

// Source is the subset of the auth client the manager needs. Satisfied by
// *supabase.AuthClient; tests substitute a fake.
type Source interface {
	SignUp(ctx context.Context, req supabase.SignUpRequest) (*supabase.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (*supabase.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Manager holds at most one active session and refreshes it lazily.
type Manager struct {
	source Source
	log    *logging.Logger

	mu      sync.RWMutex
	current *supabase.Session
}

// NewManager creates a manager with no active session.
func NewManager(source Source, log *logging.Logger) *Manager {
	return &Manager{source: source, log: log}
}

// SignUp registers a user. The optional name lands in user metadata. The new
// session becomes current.
func (m *Manager) SignUp(ctx context.Context, email, password, name string) (*supabase.Session, error) {
	req := supabase.SignUpRequest{Email: email, Password: password}
	if name != "" {
		req.Data = map[string]interface{}{"name": name}
	}
	sess, err := m.source.SignUp(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	m.set(sess)
	return sess, nil
}

// SignIn authenticates with email/password and makes the session current.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*supabase.Session, error) {
	sess, err := m.source.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	m.set(sess)
	return sess, nil
}

// SignOut revokes the current session, if any, and clears it. Revocation
// failures are logged but do not keep the session alive locally.
func (m *Manager) SignOut(ctx context.Context) {
	m.mu.Lock()
	sess := m.current
	m.current = nil
	m.mu.Unlock()

	if sess == nil {
		return
	}
	if err := m.source.SignOut(ctx, sess.AccessToken); err != nil {
		m.log.WithError(err).Warn("Failed to revoke session")
	}
}

// Current returns the active session, refreshing it first when expired.
// Returns nil when no session is active.
func (m *Manager) Current(ctx context.Context) *supabase.Session {
	m.mu.RLock()
	sess := m.current
	m.mu.RUnlock()

	if sess == nil {
		return nil
	}
	if !expired(sess) {
		return sess
	}
	if sess.RefreshToken == "" {
		m.clearIf(sess)
		return nil
	}

	fresh, err := m.source.RefreshToken(ctx, sess.RefreshToken)
	if err != nil {
		m.log.WithError(err).Warn("Session refresh failed")
		m.clearIf(sess)
		return nil
	}
	m.set(fresh)
	return fresh
}

// UserID returns the active session's user id, or "" when signed out.
func (m *Manager) UserID(ctx context.Context) string {
	sess := m.Current(ctx)
	if sess == nil || sess.User == nil {
		return ""
	}
	return sess.User.ID
}

// Refresh forces a refresh of the current session regardless of expiry.
func (m *Manager) Refresh(ctx context.Context) (*supabase.Session, error) {
	m.mu.RLock()
	sess := m.current
	m.mu.RUnlock()

	if sess == nil || sess.RefreshToken == "" {
		return nil, fmt.Errorf("no session to refresh")
	}
	fresh, err := m.source.RefreshToken(ctx, sess.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	m.set(fresh)
	return fresh, nil
}

// Load installs an externally obtained session, e.g. one restored from a
// client after a restart.
func (m *Manager) Load(sess *supabase.Session) {
	m.set(sess)
}

// Clear drops the current session without revoking it.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

func (m *Manager) set(sess *supabase.Session) {
	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
}

// clearIf drops the session only if it is still the current one, so a
// concurrent sign-in is not discarded.
func (m *Manager) clearIf(sess *supabase.Session) {
	m.mu.Lock()
	if m.current == sess {
		m.current = nil
	}
	m.mu.Unlock()
}

// Identity resolves the acting user for an operation. The flows only need to
// know who is acting, not how the session is held.
type Identity interface {
	UserID(ctx context.Context) string
}

// ContextFirst prefers a user already authenticated on the request context
// (bearer token middleware) and falls back to the manager's session.
type ContextFirst struct {
	Manager *Manager
}

var _ Identity = ContextFirst{}

func (c ContextFirst) UserID(ctx context.Context) string {
	if id := logging.GetUserID(ctx); id != "" {
		return id
	}
	if c.Manager == nil {
		return ""
	}
	return c.Manager.UserID(ctx)
}

func expired(sess *supabase.Session) bool {
	if sess.ExpiresAt == 0 {
		return false
	}
	return time.Now().Unix() >= sess.ExpiresAt
}
