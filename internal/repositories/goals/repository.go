package goals

import (
	"context"

	"github.com/orgvault/orgvault/internal/models"
	"github.com/orgvault/orgvault/internal/snapshot"
)

// Repository is the native-table contract for savings goals.
type Repository interface {
	Create(ctx context.Context, g *models.Goal) error
	snapshot.LiveAdapter
}
