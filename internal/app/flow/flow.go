// Package flow defines the outcome type shared by the user-facing write
// flows. An outcome distinguishes "done", "sign in first" and "failed" so
// handlers can render each without inspecting errors.
package flow

// Outcome is the result of a user-facing write.
type Outcome struct {
	// Success is true when the write (or an equivalent earlier write, for
	// idempotent saves) is durable.
	Success bool `json:"success"`

	// RequiresAuth is true when the flow stopped because no session was
	// active. The input may have been buffered for a later retry.
	RequiresAuth bool `json:"requires_auth,omitempty"`

	// Message is a short human-readable summary.
	Message string `json:"message,omitempty"`
}

// OK returns a successful outcome.
func OK(message string) Outcome {
	return Outcome{Success: true, Message: message}
}

// AuthRequired returns an outcome asking the caller to sign in.
func AuthRequired(message string) Outcome {
	return Outcome{RequiresAuth: true, Message: message}
}

// Failed returns an unsuccessful outcome.
func Failed(message string) Outcome {
	return Outcome{Message: message}
}
