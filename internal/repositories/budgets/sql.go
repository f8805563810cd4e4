// Package budgets provides the SQL-backed repository for the budgets
// live table.
package budgets

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

// SQLRepository implements budget storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) insert(ctx context.Context, b *models.Budget) error {
	query := `
		INSERT INTO budgets (id, user_id, name, category_id, limit_amount, currency, period_start, period_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING;
	`
	res, err := r.db.ExecContext(ctx, query,
		b.ID, b.UserID, b.Name, b.CategoryID, b.LimitAmount, b.Currency,
		timex.Format(b.PeriodStart), timex.Format(b.PeriodEnd), timex.Format(b.CreatedAt))
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

// Create inserts a new budget. Returns common.ErrorConflict when the
// identifier is already occupied.
func (r *SQLRepository) Create(ctx context.Context, b *models.Budget) error {
	return r.insert(ctx, b)
}

// LoadLive returns the live budget, or common.ErrorNotFound.
func (r *SQLRepository) LoadLive(ctx context.Context, userID, originalID string) (any, error) {
	query := `
		SELECT id, user_id, name, category_id, limit_amount, currency, period_start, period_end, created_at
		FROM budgets WHERE id=$1 AND user_id=$2;
	`
	var (
		b           models.Budget
		periodStart string
		periodEnd   string
		createdAt   string
	)
	err := r.db.QueryRowContext(ctx, query, originalID, userID).Scan(
		&b.ID, &b.UserID, &b.Name, &b.CategoryID, &b.LimitAmount, &b.Currency,
		&periodStart, &periodEnd, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if b.PeriodStart, err = timex.Parse(periodStart); err != nil {
		return nil, err
	}
	if b.PeriodEnd, err = timex.Parse(periodEnd); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = timex.Parse(createdAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// RemoveLive deletes the budget row. Returns common.ErrorNotFound when no
// live row matched.
func (r *SQLRepository) RemoveLive(ctx context.Context, userID, originalID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id=$1 AND user_id=$2;`, originalID, userID)
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

// ReinsertLive puts an archived budget back under its original identifier.
func (r *SQLRepository) ReinsertLive(ctx context.Context, record any) error {
	b, ok := record.(*models.Budget)
	if !ok {
		return fmt.Errorf("%w: unexpected record type %T", common.ErrorMalformedPayload, record)
	}
	return r.insert(ctx, b)
}
