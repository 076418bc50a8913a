package roles

import (
	"time"

	"github.com/gatehouse-io/gatehouse/internal/guard"
)

// Record is one admin role assignment. Role records are provisioned
// externally and mutated only through manage_roles-gated actions.
type Record struct {
	AccountID              int64
	Role                   guard.Role
	IsActive               bool
	LastCredentialChangeAt *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// GuardRecord maps the stored record into the guard's input shape.
func (r Record) GuardRecord() *guard.Record {
	return &guard.Record{
		AccountID:              r.AccountID,
		Role:                   r.Role,
		IsActive:               r.IsActive,
		LastCredentialChangeAt: r.LastCredentialChangeAt,
	}
}
