// Package assessment defines the quick-assessment entity captured on the
// landing page.
package assessment

import (
	"strings"
	"time"
)

// Assessment is one submitted skills assessment. ID and UserID are empty
// while the value sits in the pending buffer; both are set once persisted.
type Assessment struct {
	ID                string    `json:"id,omitempty"`
	UserID            string    `json:"user_id,omitempty"`
	ZipCode           string    `json:"zip_code"`
	CurrentOccupation string    `json:"current_occupation"`
	InterestedSectors []string  `json:"interested_sectors,omitempty"`
	SkillLevel        string    `json:"skill_level,omitempty"`
	EducationLevel    string    `json:"education_level,omitempty"`
	YearsExperience   *int      `json:"years_experience,omitempty"`
	WillingToRelocate *bool     `json:"willing_to_relocate,omitempty"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
}

// Validate checks the required fields before any gateway call.
func (a Assessment) Validate() error {
	if strings.TrimSpace(a.ZipCode) == "" {
		return ErrZipCodeRequired
	}
	if strings.TrimSpace(a.CurrentOccupation) == "" {
		return ErrOccupationRequired
	}
	return nil
}

// Validation failures surfaced inline, never sent to the gateway.
var (
	ErrZipCodeRequired    = validationError("zip code is required")
	ErrOccupationRequired = validationError("current occupation is required")
)

type validationError string

func (e validationError) Error() string { return string(e) }
