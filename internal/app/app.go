// Package app wires the orgvault maintenance CLI: it opens the configured
// database backend, runs schema setup and dispatches one archive-engine
// operation per invocation.
package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/orgvault/orgvault/internal/config"
	"github.com/orgvault/orgvault/internal/flagx"
	"github.com/orgvault/orgvault/internal/logging"
	"github.com/orgvault/orgvault/internal/repositories/archive"
	"github.com/orgvault/orgvault/internal/repositories/repomanager"
	"github.com/orgvault/orgvault/internal/services"
	"github.com/orgvault/orgvault/internal/snapshot"
)

// App is the CLI application.
type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	repos   repomanager.RepositoryManager
	service *services.ArchiveService
}

// NewApp opens the configured backend and constructs the archive engine.
func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	var repos repomanager.RepositoryManager
	switch cfg.DatabaseDriver {
	case "pgx":
		repos = repomanager.NewPostgresRepositoryManager()
	case "sqlite":
		repos = repomanager.NewSQLiteRepositoryManager()
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.DatabaseDriver)
	}

	db, err := sql.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	service := services.NewArchiveService(db, repos, services.DefaultRegistry(repos), nil, logger)

	return &App{config: cfg, logger: logger, db: db, repos: repos, service: service}, nil
}

// Close releases the database connection.
func (a *App) Close() error {
	return a.db.Close()
}

type cmdArgs struct {
	owner string
	kind  string
	id    string
	text  string
	page  int
}

func parseCmdArgs() *cmdArgs {
	args := flagx.FilterArgs(os.Args[1:], []string{"-owner", "-kind", "-id", "-text", "-page"})

	fs := flag.NewFlagSet("cmd", flag.ContinueOnError)
	a := &cmdArgs{}
	fs.StringVar(&a.owner, "owner", "", "owner (user) identifier")
	fs.StringVar(&a.kind, "kind", "", "record kind")
	fs.StringVar(&a.id, "id", "", "record or archive entry identifier")
	fs.StringVar(&a.text, "text", "", "free-text listing filter")
	fs.IntVar(&a.page, "page", 1, "listing page number (1-based)")
	if err := fs.Parse(args); err != nil {
		panic(err)
	}
	return a
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Run executes one subcommand: archive, restore, list, detail or purge.
func (a *App) Run(ctx context.Context) error {
	if err := a.repos.RunMigrations(ctx, a.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	if len(os.Args) < 2 {
		return fmt.Errorf("usage: orgvault <archive|restore|list|detail|purge> [flags]")
	}
	cmd := os.Args[1]
	args := parseCmdArgs()
	if args.owner == "" {
		return fmt.Errorf("-owner is required")
	}

	switch cmd {
	case "archive":
		kind, err := snapshot.ParseKind(args.kind)
		if err != nil {
			return err
		}
		entryID, err := a.service.Archive(ctx, args.owner, kind, args.id)
		if err != nil {
			return err
		}
		return printJSON(map[string]string{"entry_id": entryID})

	case "restore":
		result, err := a.service.Restore(ctx, args.owner, args.id)
		if err != nil {
			return err
		}
		return printJSON(result)

	case "list":
		f := archive.ListFilter{Kind: args.kind, Text: args.text}
		p := archive.Page{Limit: a.config.PageSize, Offset: (args.page - 1) * a.config.PageSize}
		listing, err := a.service.ListArchived(ctx, args.owner, f, p)
		if err != nil {
			return err
		}
		return printJSON(listing)

	case "detail":
		detail, err := a.service.GetDetail(ctx, args.owner, args.id)
		if err != nil {
			return err
		}
		return printJSON(detail)

	case "purge":
		if err := a.service.PermanentDelete(ctx, args.owner, args.id); err != nil {
			return err
		}
		return printJSON(map[string]string{"deleted": args.id})

	default:
		return fmt.Errorf("unknown command: %q", cmd)
	}
}

// timeout guards a single CLI invocation; no operation carries a
// background continuation.
const timeout = 30 * time.Second

// RunWithTimeout wraps Run with the per-invocation deadline.
func (a *App) RunWithTimeout(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return a.Run(ctx)
}
