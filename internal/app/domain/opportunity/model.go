// Package opportunity defines the job catalog entries and the per-user rows
// derived from them.
package opportunity

import (
	"time"

	"github.com/pathforge/platform/internal/app/domain/status"
)

// Opportunity is a catalog posting. The catalog is fixed and in-memory; only
// saves and applications derived from it are persisted.
type Opportunity struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Company       string `json:"company"`
	Location      string `json:"location"`
	Salary        string `json:"salary"`
	CertRequired  string `json:"cert_required"`
	TimeToQualify string `json:"time_to_qualify"`
}

// SavedOpportunity is a bookmarked posting. At most one row exists per
// (user, job) pair; the gateway enforces the uniqueness.
type SavedOpportunity struct {
	ID          string    `json:"id,omitempty"`
	UserID      string    `json:"user_id"`
	JobID       string    `json:"job_id"`
	JobTitle    string    `json:"job_title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	SalaryRange string    `json:"salary_range,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// JobApplication is a submitted application. This service only ever creates
// rows in "submitted" state; later transitions are made by reviewers.
type JobApplication struct {
	ID                    string        `json:"id,omitempty"`
	UserID                string        `json:"user_id"`
	JobTitle              string        `json:"job_title"`
	Company               string        `json:"company"`
	Location              string        `json:"location"`
	SalaryRange           string        `json:"salary_range,omitempty"`
	CertificationRequired string        `json:"certification_required,omitempty"`
	Status                status.Status `json:"status"`
	AppliedAt             *time.Time    `json:"applied_at,omitempty"`
	CreatedAt             time.Time     `json:"created_at,omitempty"`
}
