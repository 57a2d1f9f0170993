package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/learning-journal/journal/internal/server/archive"
	"github.com/learning-journal/journal/internal/server/services"
)

// NewImportCommand creates the import command. Every *.md file in the
// directory becomes a new entry.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Import markdown documents with front matter as new entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if fi, err := os.Stat(dir); err != nil {
				return err
			} else if !fi.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}

			ctx := cmd.Context()
			s, err := openSession(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			es := services.NewEntryService(s.db, s.rm)
			res, err := archive.ImportDir(ctx, os.DirFS(dir), es, s.logger)
			if res != nil {
				out := cmd.OutOrStdout()
				for _, e := range res.Imported {
					fmt.Fprintf(out, "imported %d: %s\n", e.ID, e.Title)
				}
				for _, sk := range res.Skipped {
					fmt.Fprintf(out, "skipped %s: %v\n", sk.Path, sk.Reason)
				}
			}
			return err
		},
	}
}
