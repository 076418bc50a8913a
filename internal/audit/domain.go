// Package audit is the append-only trail behind every privileged action.
// Entries are written exactly once per attempt and are never updated or
// deleted here; retention is an external policy concern.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Outcome suffix appended to action names for failed attempts.
const FailedSuffix = "_FAILED"

// Entry is one immutable audit record. ActorID is nil for system
// actions; TargetID is nil when the action has no single target.
type Entry struct {
	ID        uuid.UUID
	CreatedAt time.Time
	ActorID   *int64
	ActorRole string
	Action    string
	TargetID  *int64
	Metadata  map[string]any
	IPHash    string
	UserAgent string
}

// Filters narrows timeline reads.
type Filters struct {
	From     time.Time
	To       time.Time
	ActorID  *int64
	Action   string
	Page     int
	PageSize int
}

// PagingInfo carries simple pagination metadata.
type PagingInfo struct {
	Page     int
	PageSize int
	HasNext  bool
	PrevPage int
	NextPage int
}

// Result bundles timeline rows with paging information.
type Result struct {
	Entries []Entry
	Paging  PagingInfo
}
