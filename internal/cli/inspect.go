package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/hydrodiff/internal/check"
	"github.com/sprite-ai/hydrodiff/internal/model"
	"github.com/sprite-ai/hydrodiff/internal/report"
	"github.com/sprite-ai/hydrodiff/internal/tui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [folder]",
	Short: "Browse mismatches interactively",
	Long: `Open an interactive viewer over a mismatch report. The report is read
from a JSON file written by "check --format json", from stdin with
--report -, or produced by checking a folder first.

Examples:
  hydrodiff check dist -f json > report.json; hydrodiff inspect --report report.json
  hydrodiff check dist -f json | hydrodiff inspect --report -
  hydrodiff inspect dist`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringP("report", "r", "", "JSON report to open (- for stdin)")
	addPipelineFlags(inspectCmd)
	inspectCmd.Flags().StringSlice("root-marker", nil, "substring marking a relevant line (repeatable)")
	inspectCmd.Flags().Bool("no-filter", false, "show every mismatch, not only those touching the root")
	inspectCmd.Flags().Bool("keep-meta", false, "do not canonicalize self-closing <meta/> tags")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("report")

	var rep *model.MismatchReport
	switch {
	case path != "" && len(args) > 0:
		return errors.New("pass either --report or a folder, not both")
	case path != "":
		rep, err = readReport(cmd.InOrStdin(), path)
	case len(args) == 1:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		rep, err = check.Run(ctx, target(cfg, args[0]), hydrator(cfg), checkOptions(cfg))
	default:
		return errors.New("nothing to inspect: pass --report or a folder")
	}
	if err != nil {
		return err
	}

	if err := tui.Run(rep); err != nil {
		return err
	}
	if code := report.ExitCode(rep); code != report.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}

// readReport decodes a JSON report from path, or from stdin when path is "-".
func readReport(stdin io.Reader, path string) (*model.MismatchReport, error) {
	if path == "-" {
		return report.Decode(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()
	return report.Decode(f)
}
