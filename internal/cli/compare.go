package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/hydrodiff/internal/check"
)

var compareCmd = &cobra.Command{
	Use:   "compare <server.html> <client.html>",
	Short: "Compare two saved HTML snapshots",
	Long: `Compare a server-rendered HTML file with a saved post-hydration DOM
without launching a browser. Output and exit codes match check.`,
	Args: usageArgs(cobra.ExactArgs(2)),
	RunE: runCompare,
}

func init() {
	addReportFlags(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	serverHTML, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading server snapshot: %w", err)
	}
	clientHTML, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading client snapshot: %w", err)
	}

	rep := check.Compare(string(serverHTML), string(clientHTML), checkOptions(cfg))
	return emit(cmd, cfg, rep)
}
