// Package profile defines the denormalized user profile row.
package profile

import "time"

// Profile carries the latest assessment's location and occupation for a
// user. It is upserted whenever a new assessment is persisted.
type Profile struct {
	UserID     string    `json:"user_id"`
	ZipCode    string    `json:"zip_code"`
	CurrentJob string    `json:"current_job"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}
