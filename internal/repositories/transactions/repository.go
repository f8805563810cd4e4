package transactions

import (
	"context"

	"github.com/orgvault/orgvault/internal/models"
	"github.com/orgvault/orgvault/internal/snapshot"
)

// Repository is the native-table contract for financial transactions.
type Repository interface {
	Create(ctx context.Context, t *models.Transaction) error
	snapshot.LiveAdapter
}
