// Package grant defines training-grant applications and their program types.
package grant

import (
	"time"

	"github.com/pathforge/platform/internal/app/domain/status"
)

// Type identifies the funding program.
type Type string

const (
	TypeCHIPSWorkforce Type = "chips_workforce"
	TypeWIOA           Type = "wioa"
	TypeStateFund      Type = "state_fund"
	TypeOther          Type = "other"
)

// Valid reports whether t is a known grant type.
func (t Type) Valid() bool {
	switch t {
	case TypeCHIPSWorkforce, TypeWIOA, TypeStateFund, TypeOther:
		return true
	}
	return false
}

// Program defaults applied when a submission leaves them unset.
const (
	DefaultAmount = 4500
	DefaultType   = TypeCHIPSWorkforce
)

// Application is one grant application row.
type Application struct {
	ID           string        `json:"id,omitempty"`
	UserID       string        `json:"user_id"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	SSNLastFour  string        `json:"ssn_last_four,omitempty"`
	AnnualIncome string        `json:"annual_income,omitempty"`
	GrantAmount  int           `json:"grant_amount"`
	GrantType    Type          `json:"grant_type"`
	Status       status.Status `json:"status"`
	CreatedAt    time.Time     `json:"created_at,omitempty"`
}
