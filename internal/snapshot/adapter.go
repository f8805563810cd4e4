package snapshot

import "context"

// LiveAdapter is the narrow contract a kind's native-table repository
// exposes to the archive engine. Whether a kind removes rows or flags them
// is the adapter's choice and opaque to the engine.
type LiveAdapter interface {
	// LoadLive returns the live record, or common.ErrorNotFound when it does
	// not exist or belongs to another user.
	LoadLive(ctx context.Context, userID, originalID string) (any, error)

	// RemoveLive takes the record out of the live table (hard delete or
	// soft flag). Returns common.ErrorNotFound when no live row matched.
	RemoveLive(ctx context.Context, userID, originalID string) error

	// ReinsertLive puts a previously archived record back under its original
	// identifier. Returns common.ErrorConflict when the identifier is
	// occupied by an unrelated live record; it never silently overwrites.
	ReinsertLive(ctx context.Context, record any) error
}
