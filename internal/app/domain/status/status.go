// Package status defines the shared application status enum used by job and
// grant applications.
package status

// Status tracks an application through review. Transitions past "submitted"
// are driven by reviewers, not by this service.
type Status string

const (
	Draft       Status = "draft"
	Submitted   Status = "submitted"
	UnderReview Status = "under_review"
	Approved    Status = "approved"
	Rejected    Status = "rejected"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case Draft, Submitted, UnderReview, Approved, Rejected:
		return true
	}
	return false
}
