package commands

import (
	"context"
	"fmt"
	"io"

	"graphlearn/internal/router"

	"github.com/spf13/cobra"
)

var checkParallel int

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load every view template and report failures",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().IntVar(&checkParallel, "parallel", 4, "Templates loaded at once")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	container, cleanup, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return checkTemplates(cmd.Context(), container.Loader, container.App.Table, checkParallel, cmd.OutOrStdout())
}

// checkTemplates prints one line per template and fails when any is missing.
func checkTemplates(ctx context.Context, loader router.TemplateLoader, table *router.RouteTable, parallel int, out io.Writer) error {
	results, err := router.Prefetch(ctx, loader, table, parallel)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", r.Template, r.Err)
			continue
		}
		fmt.Fprintf(out, "ok   %s (%d bytes)\n", r.Template, r.Size)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d templates failed to load", failed, len(results))
	}
	return nil
}
