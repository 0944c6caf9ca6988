// Package commands implements the forumd command tree.
package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/config"
	"github.com/tbourn/go-forum-backend/internal/repo"
	"github.com/tbourn/go-forum-backend/internal/sysutil"
)

// Version is stamped at build time with -ldflags "-X ...commands.Version=v1.2.3".
var Version = "dev"

// app carries what PersistentPreRunE resolved to the subcommands.
type app struct {
	envFile string
	cfg     config.Config
}

// NewRootCmd builds the command tree. Each call returns a fresh tree so
// tests can execute it repeatedly.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "forumd",
		Short: "Forum API server",
		Long: `forumd serves the Q&A forum API: question drafts and publishing,
voting and rankings, response-gated threads, and chat invitations.

Configuration comes from the environment; a .env file is loaded first
when present.`,
		Version:       sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), Version),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment (empty to skip)")

	root.AddCommand(newServeCmd(a), newMigrateCmd(a), newUserCmd(a))
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) load(cmd *cobra.Command) error {
	if a.envFile != "" {
		// A missing file is normal outside development.
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg
	sysutil.ConfigureLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogPretty)
	return nil
}

// openDB connects to the configured store and brings the schema up to date.
func (a *app) openDB() (*gorm.DB, error) {
	dsn := a.cfg.DBPath
	if a.cfg.DBDriver == repo.DriverPostgres {
		dsn = a.cfg.DatabaseURL
	}
	db, err := repo.Open(a.cfg.DBDriver, dsn, a.cfg.OTEL.Enabled)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", a.cfg.DBDriver, err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
