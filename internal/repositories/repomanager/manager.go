package repomanager

import (
	"context"
	"database/sql"

	"github.com/orgvault/orgvault/internal/dbx"
	"github.com/orgvault/orgvault/internal/repositories/archive"
	"github.com/orgvault/orgvault/internal/repositories/budgets"
	"github.com/orgvault/orgvault/internal/repositories/categories"
	"github.com/orgvault/orgvault/internal/repositories/goals"
	"github.com/orgvault/orgvault/internal/repositories/notes"
	"github.com/orgvault/orgvault/internal/repositories/tasks"
	"github.com/orgvault/orgvault/internal/repositories/transactions"
)

// RepositoryManager vends repositories bound to a DBTX, so a caller can run
// several repositories inside one transaction, and owns schema setup for
// its backend.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Archive(db dbx.DBTX) archive.Repository
	Categories(db dbx.DBTX) categories.Repository
	Notes(db dbx.DBTX) notes.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	Transactions(db dbx.DBTX) transactions.Repository
	Budgets(db dbx.DBTX) budgets.Repository
	Goals(db dbx.DBTX) goals.Repository
}
