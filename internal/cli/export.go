package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"zookeeper/internal/export"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		format string
		out    string
	)
	names := make([]string, 0, len(export.Formats))
	for _, f := range export.Formats {
		names = append(names, string(f))
	}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole collection to a file or stdout",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "export", Err: err}
			}
			if f == export.FormatXLSX && out == "" {
				return &ExitError{Code: ExitCommandError, Message: "export", Err: fmt.Errorf("--out is required for xlsx")}
			}
			store, err := rootOpts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if out == "" {
				_, err = export.Write(cmd.OutOrStdout(), f, store.List())
				return err
			}
			dest, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			artifact, err := export.Write(dest, f, store.List())
			if closeErr := dest.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			rootOpts.logger.Info("export written", "path", out, "format", f, "rows", artifact.Rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(export.FormatJSON), "export format ("+strings.Join(names, "|")+")")
	cmd.Flags().StringVar(&out, "out", "", "destination file (default stdout)")
	return cmd
}
