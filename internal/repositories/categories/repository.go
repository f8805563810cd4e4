package categories

import (
	"context"

	"github.com/orgvault/orgvault/internal/models"
)

// Repository manages the categories table. The archive engine uses Exists
// to detect dangling references at restore time; Create and Delete serve
// the ordinary CRUD layer and tests.
type Repository interface {
	Create(ctx context.Context, c *models.Category) error
	Exists(ctx context.Context, userID, categoryID string) (bool, error)
	Delete(ctx context.Context, userID, categoryID string) error
}
