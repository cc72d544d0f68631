// Package supabase provides the REST client for the hosted database service
// used as the persistence gateway and session provider.
package supabase

import (
	"time"
)

// Config holds Supabase client configuration.
type Config struct {
	// ProjectURL is the project base URL (e.g. https://xxx.supabase.co).
	ProjectURL string

	// AnonKey is the public API key used for user-scoped requests.
	AnonKey string

	// ServiceKey is the service role key for requests that bypass RLS.
	// Optional; only admin-style operations need it.
	ServiceKey string

	// DefaultHeaders are added to every request.
	DefaultHeaders map[string]string

	// Timeout for HTTP requests.
	Timeout time.Duration
}

// User represents an authenticated user record.
type User struct {
	ID           string                 `json:"id"`
	Aud          string                 `json:"aud"`
	Role         string                 `json:"role"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone,omitempty"`
	LastSignInAt *time.Time             `json:"last_sign_in_at,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// Session represents an auth session.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// SignUpRequest for user registration.
type SignUpRequest struct {
	Email    string                 `json:"email"`
	Password string                 `json:"password"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// OrderDirection for sorting.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

// CodeUniqueViolation is the Postgres error code the gateway reports for a
// duplicate row on a unique constraint.
const CodeUniqueViolation = "23505"

// Error represents a gateway API error.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Hint       string `json:"hint,omitempty"`
	StatusCode int    `json:"status_code"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// IsUniqueViolation reports whether err is a gateway unique-constraint error.
func IsUniqueViolation(err error) bool {
	if apiErr, ok := err.(*Error); ok {
		return apiErr.Code == CodeUniqueViolation || apiErr.StatusCode == 409
	}
	return false
}
