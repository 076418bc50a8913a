// Package guard evaluates whether an admin principal may perform a
// privileged action. Evaluation is a pure function of the supplied role
// record and principal facts; the guard never touches storage and never
// writes audit entries itself.
package guard

import "time"

// Role is an admin role. The three roles form a total order used for
// coarse-grained hierarchy checks.
type Role string

const (
	RoleSupportReadonly     Role = "support_readonly"
	RoleSupportWriteLimited Role = "support_write_limited"
	RoleAdmin               Role = "admin"
)

// roleOrder maps each role to its position in the hierarchy.
var roleOrder = map[Role]int{
	RoleSupportReadonly:     0,
	RoleSupportWriteLimited: 1,
	RoleAdmin:               2,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleOrder[r]
	return ok
}

// AtLeast reports whether r sits at or above required in the hierarchy.
// Unknown roles always rank below every valid role.
func (r Role) AtLeast(required Role) bool {
	ri, ok := roleOrder[r]
	if !ok {
		return false
	}
	qi, ok := roleOrder[required]
	if !ok {
		return false
	}
	return ri >= qi
}

// Action is a fine-grained permission tag.
type Action string

const (
	ActionView           Action = "view"
	ActionEditProfile    Action = "edit_profile"
	ActionDisableUploads Action = "disable_uploads"
	ActionDeleteUser     Action = "delete_user"
	ActionExportData     Action = "export_data"
	ActionManageRoles    Action = "manage_roles"
)

// WriteSensitive reports whether the action must be gated behind MFA and
// credential freshness. Everything except a pure read is write-sensitive.
func (a Action) WriteSensitive() bool {
	return a != ActionView
}

// Record carries the role store facts for a principal. A nil *Record
// passed to Authorize means the principal has no admin role at all.
type Record struct {
	AccountID              int64
	Role                   Role
	IsActive               bool
	LastCredentialChangeAt *time.Time
}

// Facts carries identity-provider facts about the principal that are not
// part of the role record.
type Facts struct {
	MFAEnabled bool
}

// Options tweaks evaluation for the limited flows that must run before
// MFA or credential setup is complete, such as the setup endpoints.
type Options struct {
	RequiredRole           Role
	AllowPendingMFA        bool
	AllowExpiredCredential bool
}

// Decision is the outcome of one evaluation. Reason is set only on
// denial and is safe to surface to the caller.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}
