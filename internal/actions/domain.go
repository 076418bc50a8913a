// Package actions wraps each privileged operation with the access-guard
// pre-check and the mandatory audit write. Handlers stay thin: every
// decision about redirect-vs-error belongs to them, every decision about
// allow-vs-deny and audit ordering lives here.
package actions

import (
	"time"

	"github.com/gatehouse-io/gatehouse/internal/identity"
	"github.com/gatehouse-io/gatehouse/internal/roles"
)

// Audit action names. Failed attempts carry the _FAILED suffix.
const (
	ActionUserDelete     = "USER_DELETE"
	ActionUploadsEnable  = "UPLOADS_ENABLED"
	ActionUploadsDisable = "UPLOADS_DISABLED"
	ActionDataExport     = "DATA_EXPORT"
	ActionRoleAssign     = "ROLE_ASSIGN"
	ActionRoleRevoke     = "ROLE_REVOKE"
)

// Actor is a resolved caller: the authenticated principal plus their
// role record, which is nil for non-admins.
type Actor struct {
	Principal identity.Principal
	Role      *roles.Record
}

// RequestMeta carries request facts copied into audit entries. IPHash is
// the keyed hash of the client address; raw IPs are never recorded.
type RequestMeta struct {
	IPHash    string
	UserAgent string
}

// Export is the redacted snapshot returned by the export action. Email
// and FullName are masked before the value leaves this package.
type Export struct {
	AccountID       int64     `json:"account_id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	UploadsDisabled bool      `json:"uploads_disabled"`
	UploadCount     int       `json:"upload_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// AccountSummary is the listing row for managed accounts.
type AccountSummary struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	UploadsDisabled bool      `json:"uploads_disabled"`
	CreatedAt       time.Time `json:"created_at"`
}

// RoleSummary is the roster row for admin role assignments.
type RoleSummary struct {
	AccountID              int64      `json:"account_id"`
	Role                   string     `json:"role"`
	IsActive               bool       `json:"is_active"`
	LastCredentialChangeAt *time.Time `json:"last_credential_change_at,omitempty"`
}

// ActorStatus is the self-service view returned by the status endpoint,
// reachable before MFA or credential setup is complete.
type ActorStatus struct {
	AccountID       int64      `json:"account_id"`
	Email           string     `json:"email"`
	Role            string     `json:"role,omitempty"`
	RoleActive      bool       `json:"role_active"`
	MFAEnabled      bool       `json:"mfa_enabled"`
	CredentialAgeOK bool       `json:"credential_age_ok"`
	LastCredential  *time.Time `json:"last_credential_change_at,omitempty"`
}
