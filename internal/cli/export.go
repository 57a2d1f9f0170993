package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/learning-journal/journal/internal/server/archive"
	"github.com/learning-journal/journal/internal/server/config"
	"github.com/learning-journal/journal/internal/server/services"
)

var newS3Client = func(ctx context.Context, cfg *config.Config) (archive.ObjectPutter, error) {
	return archive.NewS3Client(ctx, cfg)
}

// NewExportCommand creates the export command, which uploads every entry as
// a markdown document to the configured bucket, or writes them into a local
// directory when --dir is given.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var bucket, dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all entries to S3-compatible storage or a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := services.NewEntryService(s.db, s.rm).List(ctx)
			if err != nil {
				return err
			}

			if dir != "" {
				n, err := archive.ExportDir(ctx, dir, entries)
				if err != nil {
					return fmt.Errorf("exported %d of %d entries: %w", n, len(entries), err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %d entries to %s\n", n, dir)
				return err
			}

			if bucket == "" {
				bucket = s.cfg.S3Bucket
			}

			client, err := newS3Client(ctx, s.cfg)
			if err != nil {
				return err
			}

			n, err := archive.NewS3Exporter(client, bucket, s.logger).Export(ctx, entries)
			if err != nil {
				return fmt.Errorf("exported %d of %d entries: %w", n, len(entries), err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %d entries to s3://%s/entries/\n", n, bucket)
			return err
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "target bucket (defaults to s3_bucket from config)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "write documents to this directory instead of S3")
	cmd.MarkFlagsMutuallyExclusive("bucket", "dir")
	return cmd
}
