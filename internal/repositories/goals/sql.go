// Package goals provides the SQL-backed repository for the goals live table.
package goals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/orgvault/orgvault/internal/common"
	"github.com/orgvault/orgvault/internal/dbx"
	"github.com/orgvault/orgvault/internal/models"
	"github.com/orgvault/orgvault/internal/timex"
)

// SQLRepository implements goal storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) insert(ctx context.Context, g *models.Goal) error {
	query := `
		INSERT INTO goals (id, user_id, name, target_amount, saved_amount, currency, deadline, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING;
	`
	res, err := r.db.ExecContext(ctx, query,
		g.ID, g.UserID, g.Name, g.TargetAmount, g.SavedAmount, g.Currency,
		timex.FormatPtr(g.Deadline), timex.Format(g.CreatedAt))
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

// Create inserts a new goal. Returns common.ErrorConflict when the
// identifier is already occupied.
func (r *SQLRepository) Create(ctx context.Context, g *models.Goal) error {
	return r.insert(ctx, g)
}

// LoadLive returns the live goal, or common.ErrorNotFound.
func (r *SQLRepository) LoadLive(ctx context.Context, userID, originalID string) (any, error) {
	query := `
		SELECT id, user_id, name, target_amount, saved_amount, currency, deadline, created_at
		FROM goals WHERE id=$1 AND user_id=$2;
	`
	var (
		g         models.Goal
		deadline  string
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, query, originalID, userID).Scan(
		&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.SavedAmount, &g.Currency,
		&deadline, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if g.Deadline, err = timex.ParsePtr(deadline); err != nil {
		return nil, err
	}
	if g.CreatedAt, err = timex.Parse(createdAt); err != nil {
		return nil, err
	}
	return &g, nil
}

// RemoveLive deletes the goal row. Returns common.ErrorNotFound when no
// live row matched.
func (r *SQLRepository) RemoveLive(ctx context.Context, userID, originalID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id=$1 AND user_id=$2;`, originalID, userID)
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

// ReinsertLive puts an archived goal back under its original identifier.
func (r *SQLRepository) ReinsertLive(ctx context.Context, record any) error {
	g, ok := record.(*models.Goal)
	if !ok {
		return fmt.Errorf("%w: unexpected record type %T", common.ErrorMalformedPayload, record)
	}
	return r.insert(ctx, g)
}
