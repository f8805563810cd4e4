package archive

import (
	"context"
	"time"

	"github.com/orgvault/orgvault/internal/models"
)

// ListFilter narrows a listing. Zero values mean "no constraint".
type ListFilter struct {
	// Kind restricts results to one record kind.
	Kind string
	// Text is a case-insensitive substring match against the summary stored
	// at archive time, so filtering sees the same text a listing shows.
	Text string
	// From/To bound ArchivedAt (inclusive).
	From *time.Time
	To   *time.Time
}

// Page is a LIMIT/OFFSET window. Results are ordered by ArchivedAt
// descending (ties broken by id), so a fixed window is stable absent
// concurrent mutation.
type Page struct {
	Limit  int
	Offset int
}

// Repository is the single heterogeneous archive store. Entries are
// immutable: inserted once, deleted once, never updated.
type Repository interface {
	// Insert stores a new entry. Returns common.ErrorConflict when an entry
	// for the same (user, kind, original id) already exists.
	Insert(ctx context.Context, e *models.ArchiveEntry) error

	// Get returns the entry, or common.ErrorNotFound when it is absent or
	// owned by another user.
	Get(ctx context.Context, userID, entryID string) (*models.ArchiveEntry, error)

	// ExistsForRecord reports whether an entry already holds the given
	// record. The engine uses it to tell "already archived" (conflict)
	// apart from "never existed" (not found).
	ExistsForRecord(ctx context.Context, userID, kind, originalID string) (bool, error)

	// List returns one page of matching entries plus the total match count.
	List(ctx context.Context, userID string, f ListFilter, p Page) ([]*models.ArchiveEntry, int, error)

	// Delete removes the entry. Returns common.ErrorNotFound when no row
	// matched, which is how the loser of a concurrent restore race learns
	// the winner already consumed the entry.
	Delete(ctx context.Context, userID, entryID string) error
}
