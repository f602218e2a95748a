package app

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/recipeops/internal/config"
	"github.com/blackwell-systems/recipeops/internal/smoke"
)

var (
	smokeCmd = &cobra.Command{
		Use:   "smoke",
		Short: "Send smoke test requests to a running server",
		Long: `Send requests to a running instance of the application and report the
status code, body length and whether the expected marker text was found.

Connection errors are reported and the remaining requests still run; the
command always exits 0.`,
	}

	smokePagesCmd = &cobra.Command{
		Use:   "pages",
		Short: "GET the home page and the inventory staging page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmoke(cmd.Context(), cmd.OutOrStdout(), cfg, smoke.PageChecks())
		},
	}

	smokeBulkUpdateCmd = &cobra.Command{
		Use:   "bulk-update",
		Short: "POST a test item to the menu bulk update endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			check, err := smoke.BulkUpdateCheck()
			if err != nil {
				return err
			}
			return runSmoke(cmd.Context(), cmd.OutOrStdout(), cfg, []smoke.Check{check})
		},
	}
)

func init() {
	smokeCmd.PersistentFlags().String("base-url", config.DefaultBaseURL, "base URL of the running server")
	smokeCmd.PersistentFlags().Duration("timeout", config.DefaultHTTPTimeout, "timeout per request")

	smokeCmd.AddCommand(smokePagesCmd)
	smokeCmd.AddCommand(smokeBulkUpdateCmd)
}

func runSmoke(ctx context.Context, w io.Writer, cfg *config.Config, checks []smoke.Check) error {
	smoke.NewRunner(cfg.BaseURL, cfg.HTTPTimeout, w).Run(ctx, checks)
	return nil
}
