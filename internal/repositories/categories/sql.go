// Package categories provides the SQL-backed repository for the categories
// table referenced (softly) by tasks, transactions and budgets.
package categories

import (
	"context"
	"fmt"

	"github.com/orgvault/orgvault/internal/common"
	"github.com/orgvault/orgvault/internal/dbx"
	"github.com/orgvault/orgvault/internal/models"
	"github.com/orgvault/orgvault/internal/timex"
)

// SQLRepository implements category storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// Create inserts a new category. Returns common.ErrorConflict when the
// identifier is already occupied.
func (r *SQLRepository) Create(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING;
	`
	res, err := r.db.ExecContext(ctx, query, c.ID, c.UserID, c.Name, timex.Format(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if affected == 0 {
		return common.ErrorConflict
	}
	return nil
}

// Exists reports whether the category is present for the given user.
func (r *SQLRepository) Exists(ctx context.Context, userID, categoryID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE id=$1 AND user_id=$2;`, categoryID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

// Delete removes the category. Returns common.ErrorNotFound when no row
// matched. Records referencing the category keep their raw identifier.
func (r *SQLRepository) Delete(ctx context.Context, userID, categoryID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id=$1 AND user_id=$2;`, categoryID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}
