package config

import (
	"flag"
	"os"

	"github.com/orgvault/orgvault/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-b string   database driver ("pgx" or "sqlite")
//	-d string   database DSN
//	-p int      default listing page size
//
// The function filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, so subcommand arguments pass through untouched.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-d", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDriver, "b", config.DatabaseDriver, "database driver (pgx or sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.PageSize, "p", config.PageSize, "default listing page size")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
