// Package cli implements the hydrodiff command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/hydrodiff/internal/config"
	"github.com/sprite-ai/hydrodiff/internal/log"
)

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

var rootCmd = &cobra.Command{
	Use:   "hydrodiff",
	Short: "Detect hydration mismatches in a built web app",
	Long: `hydrodiff serves a built HTML folder, loads it in a headless browser
and compares the server markup against the DOM after hydration.

Exit codes:
  0  no relevant mismatch
  1  mismatches found, or the check could not run`,
	Args:          usageArgs(cobra.NoArgs),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
		return &ExitError{Code: 1}
	},
}

// usageError is a command-line mistake; it is reported with the usage text
// of the command it concerns.
type usageError struct {
	cmd *cobra.Command
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// usageArgs wraps a positional argument validator so its failures carry
// usage text.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{cmd: cmd, err: err}
		}
		return nil
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a hydrodiff.yaml config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log progress to stderr")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{cmd: cmd, err: err}
	})

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return exitCode(rootCmd.Execute(), os.Stderr)
}

// exitCode maps a command error to a process exit status, reporting
// anything other than an ExitError on w.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	var usage *usageError
	if errors.As(err, &usage) {
		fmt.Fprintf(w, "hydrodiff: %v\n\n%s", err, usage.cmd.UsageString())
		return 1
	}
	fmt.Fprintf(w, "hydrodiff: %v\n", err)
	return 1
}

// loadConfig reads configuration with cmd's flags layered on top and sets
// up logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	log.Init(cmd.ErrOrStderr(), cfg.Verbose)
	return cfg, nil
}
