package notes

import (
	"context"

	"github.com/orgvault/orgvault/internal/models"
	"github.com/orgvault/orgvault/internal/snapshot"
)

// Repository is the native-table contract for notes: ordinary creation plus
// the live-table adapter used by the archive engine.
type Repository interface {
	Create(ctx context.Context, n *models.Note) error
	snapshot.LiveAdapter
}
