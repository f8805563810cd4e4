// Package models defines the data models persisted in the database.
package models

import "time"

// ArchiveEntry is a snapshot of a record of any kind, parked in the single
// heterogeneous archive table. The payload is the self-describing JSON
// serialization of the record at the moment of archiving and is never
// mutated after insert; an entry is created once and deleted once (by a
// successful restore or by a permanent delete).
//
// At most one entry exists per (UserID, Kind, OriginalID) at any time.
// Summary is the kind's one-line describe output rendered at archive time.
// The payload is immutable, so the summary never goes stale; listings filter
// free text against it.
type ArchiveEntry struct {
	ID         string
	UserID     string
	Kind       string
	OriginalID string
	Payload    []byte
	Summary    string
	ArchivedAt time.Time
}
