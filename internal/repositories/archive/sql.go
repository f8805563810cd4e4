// Package archive provides the SQL-backed repository for the single
// heterogeneous archive_entries table.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/orgvault/orgvault/internal/common"
	"github.com/orgvault/orgvault/internal/dbx"
	"github.com/orgvault/orgvault/internal/models"
	"github.com/orgvault/orgvault/internal/timex"
)

// SQLRepository implements the archive store over a dbx.DBTX
// (*sql.DB or *sql.Tx). The SQL runs on both PostgreSQL and SQLite.
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// Insert stores a new archive entry. The unique index on
// (user_id, kind, original_id) guarantees at most one live entry per
// archived record; a second insert reports common.ErrorConflict.
func (r *SQLRepository) Insert(ctx context.Context, e *models.ArchiveEntry) error {
	query := `
		INSERT INTO archive_entries (id, user_id, kind, original_id, payload, summary, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, kind, original_id) DO NOTHING;
	`
	res, err := r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.Kind, e.OriginalID, string(e.Payload), e.Summary, timex.Format(e.ArchivedAt))
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

// Get returns the entry, or common.ErrorNotFound when it is absent or owned
// by another user.
func (r *SQLRepository) Get(ctx context.Context, userID, entryID string) (*models.ArchiveEntry, error) {
	query := `
		SELECT id, user_id, kind, original_id, payload, archived_at
		FROM archive_entries WHERE id=$1 AND user_id=$2;
	`
	var (
		e          models.ArchiveEntry
		payload    string
		archivedAt string
	)
	err := r.db.QueryRowContext(ctx, query, entryID, userID).Scan(
		&e.ID, &e.UserID, &e.Kind, &e.OriginalID, &payload, &archivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	e.Payload = []byte(payload)
	if e.ArchivedAt, err = timex.Parse(archivedAt); err != nil {
		return nil, fmt.Errorf("parse archived_at: %w", err)
	}
	return &e, nil
}

// ExistsForRecord reports whether an entry already holds the given record.
func (r *SQLRepository) ExistsForRecord(ctx context.Context, userID, kind, originalID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM archive_entries WHERE user_id=$1 AND kind=$2 AND original_id=$3;`,
		userID, kind, originalID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

// buildFilter renders the WHERE clause for userID plus the optional filter
// constraints. Placeholders are numbered in order of appearance so the same
// clause works on PostgreSQL and SQLite.
func buildFilter(userID string, f ListFilter) (string, []any) {
	clauses := []string{"user_id=$1"}
	args := []any{userID}

	next := func() string { return fmt.Sprintf("$%d", len(args)+1) }

	if f.Kind != "" {
		clauses = append(clauses, "kind="+next())
		args = append(args, f.Kind)
	}
	if f.Text != "" {
		clauses = append(clauses, "lower(summary) LIKE "+next())
		args = append(args, "%"+strings.ToLower(f.Text)+"%")
	}
	if f.From != nil {
		clauses = append(clauses, "archived_at>="+next())
		args = append(args, timex.Format(*f.From))
	}
	if f.To != nil {
		clauses = append(clauses, "archived_at<="+next())
		args = append(args, timex.Format(*f.To))
	}

	return strings.Join(clauses, " AND "), args
}

// List returns one page of matching entries ordered by archived_at
// descending (newest first, ties broken by id), plus the total match count.
func (r *SQLRepository) List(ctx context.Context, userID string, f ListFilter, p Page) ([]*models.ArchiveEntry, int, error) {
	where, args := buildFilter(userID, f)

	var total int
	countQuery := "SELECT COUNT(*) FROM archive_entries WHERE " + where + ";"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, kind, original_id, payload, archived_at
		FROM archive_entries WHERE %s
		ORDER BY archived_at DESC, id DESC
		LIMIT $%d OFFSET $%d;`, where, len(args)+1, len(args)+2)
	args = append(args, p.Limit, p.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ArchiveEntry
	for rows.Next() {
		var (
			e          models.ArchiveEntry
			payload    string
			archivedAt string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.OriginalID, &payload, &archivedAt); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		e.Payload = []byte(payload)
		if e.ArchivedAt, err = timex.Parse(archivedAt); err != nil {
			return nil, 0, fmt.Errorf("parse archived_at: %w", err)
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return result, total, nil
}

// Delete removes the entry. Zero affected rows report common.ErrorNotFound.
func (r *SQLRepository) Delete(ctx context.Context, userID, entryID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM archive_entries WHERE id=$1 AND user_id=$2;`, entryID, userID)
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
