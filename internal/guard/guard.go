package guard

import (
	"fmt"
	"time"
)

// DefaultCredentialMaxAge is the rotation window applied when the guard
// is constructed without an explicit value.
const DefaultCredentialMaxAge = 180 * 24 * time.Hour

// Guard evaluates authorization decisions.
type Guard struct {
	credentialMaxAge time.Duration
	now              func() time.Time
}

// New constructs a Guard. A non-positive maxAge falls back to the
// 180-day default.
func New(maxAge time.Duration) *Guard {
	if maxAge <= 0 {
		maxAge = DefaultCredentialMaxAge
	}
	return &Guard{credentialMaxAge: maxAge, now: time.Now}
}

// WithClock overrides the guard's clock. Intended for tests.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// Authorize runs the ordered checks and returns the first failure, or an
// allow decision when every applicable check passes. The order matters:
// account-state checks come before MFA and freshness (no point demanding
// MFA from a disabled account), and those come before the fine-grained
// permission lookup so the caller gets the most actionable reason.
func (g *Guard) Authorize(rec *Record, facts Facts, action Action, opts Options) Decision {
	if rec == nil {
		return deny("not admin")
	}
	if !rec.IsActive {
		return deny("inactive")
	}
	if opts.RequiredRole != "" && !rec.Role.AtLeast(opts.RequiredRole) {
		return deny(fmt.Sprintf("requires role %s or above", opts.RequiredRole))
	}
	if action.WriteSensitive() && !facts.MFAEnabled && !opts.AllowPendingMFA {
		return deny("MFA required")
	}
	if action.WriteSensitive() && !opts.AllowExpiredCredential && g.credentialStale(rec.LastCredentialChangeAt) {
		return deny("credential rotation required")
	}
	if !Permits(rec.Role, action) {
		return deny(fmt.Sprintf("role %s cannot %s", rec.Role, action))
	}
	return allow()
}

// credentialStale reports whether the last credential change is older
// than the configured window. A missing timestamp is treated as fresh;
// it covers principals on non-password identity methods.
func (g *Guard) credentialStale(changedAt *time.Time) bool {
	if changedAt == nil {
		return false
	}
	return g.now().Sub(*changedAt) > g.credentialMaxAge
}
