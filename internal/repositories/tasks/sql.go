// Package tasks provides the SQL-backed repository for the tasks live table.
package tasks

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

// SQLRepository implements task storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) insert(ctx context.Context, t *models.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, title, details, category_id, done, priority, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING;
	`
	res, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Details, t.CategoryID, t.Done, t.Priority,
		timex.FormatPtr(t.DueDate), timex.Format(t.CreatedAt), timex.FormatPtr(t.UpdatedAt))
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

// Create inserts a new task. Returns common.ErrorConflict when the
// identifier is already occupied.
func (r *SQLRepository) Create(ctx context.Context, t *models.Task) error {
	return r.insert(ctx, t)
}

// LoadLive returns the live task, or common.ErrorNotFound.
func (r *SQLRepository) LoadLive(ctx context.Context, userID, originalID string) (any, error) {
	query := `
		SELECT id, user_id, title, details, category_id, done, priority, due_date, created_at, updated_at
		FROM tasks WHERE id=$1 AND user_id=$2;
	`
	var (
		t         models.Task
		dueDate   string
		createdAt string
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx, query, originalID, userID).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Details, &t.CategoryID, &t.Done, &t.Priority,
		&dueDate, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if t.DueDate, err = timex.ParsePtr(dueDate); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = timex.Parse(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = timex.ParsePtr(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// RemoveLive deletes the task row. Returns common.ErrorNotFound when no
// live row matched.
func (r *SQLRepository) RemoveLive(ctx context.Context, userID, originalID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=$1 AND user_id=$2;`, originalID, userID)
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

// ReinsertLive puts an archived task back under its original identifier.
func (r *SQLRepository) ReinsertLive(ctx context.Context, record any) error {
	t, ok := record.(*models.Task)
	if !ok {
		return fmt.Errorf("%w: unexpected record type %T", common.ErrorMalformedPayload, record)
	}
	return r.insert(ctx, t)
}
