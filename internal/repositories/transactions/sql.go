// Package transactions provides the SQL-backed repository for the
// transactions live table.
package transactions

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

// SQLRepository implements transaction storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) insert(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, amount, currency, direction, category_id, note, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING;
	`
	res, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Amount, t.Currency, t.Direction, t.CategoryID, t.Note,
		timex.Format(t.OccurredAt), timex.Format(t.CreatedAt))
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

// Create inserts a new transaction. Returns common.ErrorConflict when the
// identifier is already occupied.
func (r *SQLRepository) Create(ctx context.Context, t *models.Transaction) error {
	return r.insert(ctx, t)
}

// LoadLive returns the live transaction, or common.ErrorNotFound.
func (r *SQLRepository) LoadLive(ctx context.Context, userID, originalID string) (any, error) {
	query := `
		SELECT id, user_id, amount, currency, direction, category_id, note, occurred_at, created_at
		FROM transactions WHERE id=$1 AND user_id=$2;
	`
	var (
		t          models.Transaction
		occurredAt string
		createdAt  string
	)
	err := r.db.QueryRowContext(ctx, query, originalID, userID).Scan(
		&t.ID, &t.UserID, &t.Amount, &t.Currency, &t.Direction, &t.CategoryID, &t.Note,
		&occurredAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if t.OccurredAt, err = timex.Parse(occurredAt); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = timex.Parse(createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// RemoveLive deletes the transaction row. Returns common.ErrorNotFound when
// no live row matched.
func (r *SQLRepository) RemoveLive(ctx context.Context, userID, originalID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id=$1 AND user_id=$2;`, originalID, userID)
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

// ReinsertLive puts an archived transaction back under its original
// identifier. The category reference is reinserted verbatim even when the
// category no longer exists.
func (r *SQLRepository) ReinsertLive(ctx context.Context, record any) error {
	t, ok := record.(*models.Transaction)
	if !ok {
		return fmt.Errorf("%w: unexpected record type %T", common.ErrorMalformedPayload, record)
	}
	return r.insert(ctx, t)
}
