// Package accounts is the data-store collaborator for the managed user
// base. The admin core treats it as an opaque CRUD surface; failures here
// surface to callers as generic external errors while the raw message is
// preserved in audit metadata.
package accounts

import "time"

// Account is one managed user record.
type Account struct {
	ID              int64
	Email           string
	FullName        string
	HasMFA          bool
	UploadsDisabled bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Snapshot is the read-only view assembled for data export. It carries
// raw values; redaction happens in the export action, never here.
type Snapshot struct {
	Account   Account
	UploadIDs []int64
}
