// Package cli implements the zookeeper command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"zookeeper/internal/config"
	"zookeeper/internal/core"
	"zookeeper/internal/logging"
	"zookeeper/pkg/domain"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // validation or lookup failure
	ExitCommandError = 2 // bad configuration or unreachable backend
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// GetExitCode extracts the exit code from an error. Non-ExitError values map
// to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Output     string // "json" | "text"

	cfg    *config.Config
	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the zookeeper CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "zookeeper",
		Short: "Zookeeper animal registry",
		Long:  "Serve, query and extend the zookeeper animal registry.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Output) {
				return &ExitError{
					Code:    ExitCommandError,
					Message: fmt.Sprintf("invalid output %q: must be one of %v", opts.Output, ValidFormats),
				}
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "load config", Err: err}
			}
			opts.cfg = cfg
			opts.logger = logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitCommandError, Message: "usage", Err: err}
	})
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to zookeeper.yaml")
	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewAnimalsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// openStore opens the configured backend and loads the collection.
func (o *RootOptions) openStore(ctx context.Context) (*core.Store, error) {
	store, err := core.Open(ctx, o.cfg)
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, Message: "open store", Err: err}
	}
	return store, nil
}

// usageArgs maps positional argument errors to ExitCommandError.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &ExitError{Code: ExitCommandError, Message: "usage", Err: err}
		}
		return nil
	}
}

// commandFailure classifies a service error: validation and lookup failures
// exit 1, persistence failures exit 2.
func commandFailure(message string, err error) error {
	var (
		nf domain.ErrNotFound
		ve *domain.ValidationError
		pe *domain.PersistenceError
	)
	switch {
	case errors.As(err, &nf), errors.As(err, &ve):
		return &ExitError{Code: ExitFailure, Message: message, Err: err}
	case errors.As(err, &pe):
		return &ExitError{Code: ExitCommandError, Message: "persist", Err: err}
	default:
		return err
	}
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
