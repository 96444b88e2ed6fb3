package cli

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/sprite-ai/hydrodiff/internal/browser"
	"github.com/sprite-ai/hydrodiff/internal/check"
	"github.com/sprite-ai/hydrodiff/internal/config"
	"github.com/sprite-ai/hydrodiff/internal/model"
	"github.com/sprite-ai/hydrodiff/internal/normalize"
	"github.com/sprite-ai/hydrodiff/internal/report"
)

var checkCmd = &cobra.Command{
	Use:   "check <folder>",
	Short: "Check a built folder for hydration mismatches",
	Long: `Serve the folder on localhost, load its index page in headless Chrome,
wait for hydration and compare the served markup with the live DOM.
Only mismatches touching the app root are reported unless --no-filter is set.

Examples:
  hydrodiff check dist
  hydrodiff check build --format json --ready-expr window.__HYDRATED__
  hydrodiff check out --root-marker 'id="app"' --no-sandbox`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runCheck,
}

func init() {
	addPipelineFlags(checkCmd)
	addReportFlags(checkCmd)
}

// addPipelineFlags declares the flags that control serving and hydrating an
// artifact folder.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().String("index", "index.html", "page to load, relative to the folder")
	cmd.Flags().IntP("port", "p", 0, "port for the artifact server (0 picks a free one)")
	cmd.Flags().Duration("wait", time.Second, "grace delay after the document is ready")
	cmd.Flags().String("ready-expr", "", "JavaScript expression polled until truthy before capture")
	cmd.Flags().Duration("timeout", 30*time.Second, "upper bound on page load and hydration")
	cmd.Flags().String("chrome-path", "", "Chrome binary to launch")
	cmd.Flags().Bool("no-sandbox", false, "disable the Chrome sandbox (needed as root in CI)")
}

// addReportFlags declares the flags shared by every command that prints a
// report.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "text", "output format: text, json")
	cmd.Flags().StringSlice("root-marker", nil, "substring marking a relevant line (repeatable)")
	cmd.Flags().Bool("no-filter", false, "report every mismatch, not only those touching the root")
	cmd.Flags().Bool("keep-meta", false, "do not canonicalize self-closing <meta/> tags")
	cmd.Flags().Bool("no-color", false, "disable colors in text output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := check.Run(ctx, target(cfg, args[0]), hydrator(cfg), checkOptions(cfg))
	if err != nil {
		return err
	}
	return emit(cmd, cfg, rep)
}

func target(cfg *config.Config, folder string) check.Target {
	return check.Target{Folder: folder, Index: cfg.Index, Port: cfg.Port}
}

func hydrator(cfg *config.Config) *browser.Browser {
	return browser.New(browser.Options{
		Wait:      cfg.Wait,
		ReadyExpr: cfg.ReadyExpr,
		Timeout:   cfg.Timeout,
		ExecPath:  cfg.ChromePath,
		NoSandbox: cfg.NoSandbox,
		OnConsole: func(level, text string) {
			log.WithField("level", level).Warnf("page console: %s", text)
		},
	})
}

func checkOptions(cfg *config.Config) check.Options {
	return check.Options{
		Normalize: normalize.Policy{CanonicalMeta: !cfg.KeepMeta},
		Predicate: cfg.Predicate(),
	}
}

// emit renders rep to stdout and turns a dirty report into an ExitError.
func emit(cmd *cobra.Command, cfg *config.Config, rep *model.MismatchReport) error {
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	opts := report.Options{Color: report.ColorAuto, Highlight: true}
	if cfg.NoColor {
		opts = report.Options{Color: report.ColorNever}
	}

	code, err := report.Render(cmd.OutOrStdout(), rep, format, opts)
	if err != nil {
		return err
	}
	if code != report.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}
