// Package notes provides the SQL-backed repository for the notes live table.
package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/orgvault/orgvault/internal/common"
	"github.com/orgvault/orgvault/internal/dbx"
	"github.com/orgvault/orgvault/internal/models"
	"github.com/orgvault/orgvault/internal/timex"
)

// SQLRepository implements note storage over a dbx.DBTX (*sql.DB or *sql.Tx).
// The SQL is dialect-neutral and runs on both PostgreSQL and SQLite.
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) insert(ctx context.Context, n *models.Note) error {
	tags, err := json.Marshal(n.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	query := `
		INSERT INTO notes (id, user_id, title, body, tags, pinned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING;
	`
	res, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.Title, n.Body, string(tags), n.Pinned,
		timex.Format(n.CreatedAt), timex.FormatPtr(n.UpdatedAt))
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

// Create inserts a new note. Returns common.ErrorConflict when the
// identifier is already occupied.
func (r *SQLRepository) Create(ctx context.Context, n *models.Note) error {
	return r.insert(ctx, n)
}

// LoadLive returns the live note, or common.ErrorNotFound.
func (r *SQLRepository) LoadLive(ctx context.Context, userID, originalID string) (any, error) {
	query := `
		SELECT id, user_id, title, body, tags, pinned, created_at, updated_at
		FROM notes WHERE id=$1 AND user_id=$2;
	`
	var (
		n         models.Note
		tags      string
		createdAt string
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx, query, originalID, userID).Scan(
		&n.ID, &n.UserID, &n.Title, &n.Body, &tags, &n.Pinned, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &n.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if n.CreatedAt, err = timex.Parse(createdAt); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = timex.ParsePtr(updatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

// RemoveLive deletes the note row. Returns common.ErrorNotFound when no
// live row matched.
func (r *SQLRepository) RemoveLive(ctx context.Context, userID, originalID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id=$1 AND user_id=$2;`, originalID, userID)
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

// ReinsertLive puts an archived note back under its original identifier.
func (r *SQLRepository) ReinsertLive(ctx context.Context, record any) error {
	n, ok := record.(*models.Note)
	if !ok {
		return fmt.Errorf("%w: unexpected record type %T", common.ErrorMalformedPayload, record)
	}
	return r.insert(ctx, n)
}
