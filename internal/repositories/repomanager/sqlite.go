package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/orgvault/orgvault/internal/dbx"
	"github.com/orgvault/orgvault/internal/repositories/archive"
	"github.com/orgvault/orgvault/internal/repositories/budgets"
	"github.com/orgvault/orgvault/internal/repositories/categories"
	"github.com/orgvault/orgvault/internal/repositories/goals"
	"github.com/orgvault/orgvault/internal/repositories/notes"
	"github.com/orgvault/orgvault/internal/repositories/tasks"
	"github.com/orgvault/orgvault/internal/repositories/transactions"
	_ "modernc.org/sqlite"
)

// sqliteSchema mirrors the PostgreSQL migrations. SQLite is used for the
// single-user local mode and for integration tests, so the schema is
// bootstrapped inline instead of through goose.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS categories (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL,
    name       TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_categories_user_id ON categories (user_id);

CREATE TABLE IF NOT EXISTS notes (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL,
    title      TEXT NOT NULL,
    body       TEXT NOT NULL,
    tags       TEXT NOT NULL,
    pinned     BOOLEAN NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_user_id ON notes (user_id);

CREATE TABLE IF NOT EXISTS tasks (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL,
    title       TEXT NOT NULL,
    details     TEXT NOT NULL,
    category_id TEXT NOT NULL,
    done        BOOLEAN NOT NULL,
    priority    INTEGER NOT NULL,
    due_date    TEXT NOT NULL,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks (user_id);

CREATE TABLE IF NOT EXISTS transactions (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL,
    amount      BIGINT NOT NULL,
    currency    TEXT NOT NULL,
    direction   TEXT NOT NULL,
    category_id TEXT NOT NULL,
    note        TEXT NOT NULL,
    occurred_at TEXT NOT NULL,
    created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions (user_id);

CREATE TABLE IF NOT EXISTS budgets (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL,
    name         TEXT NOT NULL,
    category_id  TEXT NOT NULL,
    limit_amount BIGINT NOT NULL,
    currency     TEXT NOT NULL,
    period_start TEXT NOT NULL,
    period_end   TEXT NOT NULL,
    created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_budgets_user_id ON budgets (user_id);

CREATE TABLE IF NOT EXISTS goals (
    id            TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL,
    name          TEXT NOT NULL,
    target_amount BIGINT NOT NULL,
    saved_amount  BIGINT NOT NULL,
    currency      TEXT NOT NULL,
    deadline      TEXT NOT NULL,
    created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_goals_user_id ON goals (user_id);

CREATE TABLE IF NOT EXISTS archive_entries (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL,
    kind        TEXT NOT NULL,
    original_id TEXT NOT NULL,
    payload     TEXT NOT NULL,
    summary     TEXT NOT NULL,
    archived_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_archive_entries_owner_record ON archive_entries (user_id, kind, original_id);
CREATE INDEX IF NOT EXISTS idx_archive_entries_user_id ON archive_entries (user_id);
CREATE INDEX IF NOT EXISTS idx_archive_entries_kind ON archive_entries (kind);
CREATE INDEX IF NOT EXISTS idx_archive_entries_archived_at ON archive_entries (archived_at);
`

// SQLiteRepositoryManager vends SQLite-backed repositories. The repository
// SQL itself is shared with the PostgreSQL backend.
type SQLiteRepositoryManager struct{}

// NewSQLiteRepositoryManager constructs a SQLite-backed manager.
func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

// RunMigrations bootstraps the schema. Safe to call repeatedly.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}
	return nil
}

func (m *SQLiteRepositoryManager) Archive(db dbx.DBTX) archive.Repository {
	return archive.NewSQLRepository(db)
}

func (m *SQLiteRepositoryManager) Categories(db dbx.DBTX) categories.Repository {
	return categories.NewSQLRepository(db)
}

func (m *SQLiteRepositoryManager) Notes(db dbx.DBTX) notes.Repository {
	return notes.NewSQLRepository(db)
}

func (m *SQLiteRepositoryManager) Tasks(db dbx.DBTX) tasks.Repository {
	return tasks.NewSQLRepository(db)
}

func (m *SQLiteRepositoryManager) Transactions(db dbx.DBTX) transactions.Repository {
	return transactions.NewSQLRepository(db)
}

func (m *SQLiteRepositoryManager) Budgets(db dbx.DBTX) budgets.Repository {
	return budgets.NewSQLRepository(db)
}

func (m *SQLiteRepositoryManager) Goals(db dbx.DBTX) goals.Repository {
	return goals.NewSQLRepository(db)
}
