package budgets

import (
	"context"

	"github.com/orgvault/orgvault/internal/models"
	"github.com/orgvault/orgvault/internal/snapshot"
)

// Repository is the native-table contract for budgets.
type Repository interface {
	Create(ctx context.Context, b *models.Budget) error
	snapshot.LiveAdapter
}
