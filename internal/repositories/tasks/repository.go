package tasks

import (
	"context"

	"github.com/orgvault/orgvault/internal/models"
	"github.com/orgvault/orgvault/internal/snapshot"
)

// Repository is the native-table contract for tasks.
type Repository interface {
	Create(ctx context.Context, t *models.Task) error
	snapshot.LiveAdapter
}
