// Package cli implements journalctl, the maintenance tool for the journal:
// password hashing, migrations, export and import.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/learning-journal/journal/internal/logging"
	"github.com/learning-journal/journal/internal/server/config"
	"github.com/learning-journal/journal/internal/server/repositories/repomanager"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// seams for tests
var (
	openDB         = repomanager.OpenPostgres
	newRepoManager = repomanager.NewPostgresRepositoryManager
)

// NewRootCommand creates the root journalctl command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "journalctl",
		Short:         "Learning journal maintenance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to JSON config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewHashPasswordCommand())
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

// session bundles what the database-backed commands need.
type session struct {
	cfg    *config.Config
	db     *sql.DB
	rm     repomanager.RepositoryManager
	logger logging.Logger
}

func (s *session) Close() error {
	return s.db.Close()
}

func openSession(ctx context.Context, opts *RootOptions, errOut io.Writer) (*session, error) {
	cfg, err := config.LoadFile(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:    cfg,
		db:     db,
		rm:     newRepoManager(),
		logger: logging.NewJSONLogger(errOut, opts.Verbose),
	}, nil
}
