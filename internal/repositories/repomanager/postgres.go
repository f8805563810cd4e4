// Package repomanager provides concrete RepositoryManager implementations
// for PostgreSQL (goose migrations) and SQLite (inline schema bootstrap).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/orgvault/orgvault/internal/dbx"
	"github.com/orgvault/orgvault/internal/migrations"
	"github.com/orgvault/orgvault/internal/repositories/archive"
	"github.com/orgvault/orgvault/internal/repositories/budgets"
	"github.com/orgvault/orgvault/internal/repositories/categories"
	"github.com/orgvault/orgvault/internal/repositories/goals"
	"github.com/orgvault/orgvault/internal/repositories/notes"
	"github.com/orgvault/orgvault/internal/repositories/tasks"
	"github.com/orgvault/orgvault/internal/repositories/transactions"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories and runs
// the embedded goose migrations.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed manager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func (m *PostgresRepositoryManager) Archive(db dbx.DBTX) archive.Repository {
	return archive.NewSQLRepository(db)
}

func (m *PostgresRepositoryManager) Categories(db dbx.DBTX) categories.Repository {
	return categories.NewSQLRepository(db)
}

func (m *PostgresRepositoryManager) Notes(db dbx.DBTX) notes.Repository {
	return notes.NewSQLRepository(db)
}

func (m *PostgresRepositoryManager) Tasks(db dbx.DBTX) tasks.Repository {
	return tasks.NewSQLRepository(db)
}

func (m *PostgresRepositoryManager) Transactions(db dbx.DBTX) transactions.Repository {
	return transactions.NewSQLRepository(db)
}

func (m *PostgresRepositoryManager) Budgets(db dbx.DBTX) budgets.Repository {
	return budgets.NewSQLRepository(db)
}

func (m *PostgresRepositoryManager) Goals(db dbx.DBTX) goals.Repository {
	return goals.NewSQLRepository(db)
}
