// Package common defines shared sentinel errors used across the archive
// engine, repositories and the CLI. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// ErrorNotFound is returned when a live record or archive entry does not
	// exist or is owned by another user. Ownership mismatches deliberately
	// report not-found so that existence under another owner is not revealed.
	ErrorNotFound = errors.New("not found")

	// ErrorConflict is returned when archiving a record that already has a
	// live archive entry, or when restoring into an identifier slot that is
	// occupied by an unrelated live record.
	ErrorConflict = errors.New("conflict")

	// ErrorMalformedPayload is returned when a stored snapshot cannot be
	// decoded as its declared kind. It is entry-specific: other entries
	// remain usable.
	ErrorMalformedPayload = errors.New("malformed payload")

	// ErrorAdapterFailure wraps opaque storage-level failures of a live-table
	// operation. Always propagated, never swallowed.
	ErrorAdapterFailure = errors.New("adapter failure")

	// ErrorUnknownKind is returned for a kind tag outside the closed set.
	ErrorUnknownKind = errors.New("unknown record kind")
)
