package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/recipeops/internal/config"
	"github.com/blackwell-systems/recipeops/internal/patcher"
)

var patchRoutesCmd = &cobra.Command{
	Use:   "patch-routes",
	Short: "Point the bulk update handler at menu_assignments",
	Long: `Rewrite the SQL inside the bulk update handler of the application source
so it uses the menu_assignments table and its column names.

Only the body of the handler is changed. Running the command again is a
no-op and leaves the file untouched.`,
	Example: `  recipeops patch-routes
  recipeops patch-routes --app-source src/app.py --handler bulk_update_menu_items`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPatchRoutes(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	patchRoutesCmd.Flags().String("app-source", config.DefaultAppSource, "application source file to patch")
	patchRoutesCmd.Flags().String("handler", config.DefaultHandler, "name of the handler function to patch")
}

func runPatchRoutes(w io.Writer, cfg *config.Config) error {
	res, err := patcher.PatchFile(cfg.AppSource, cfg.Handler)
	switch {
	case errors.Is(err, os.ErrNotExist):
		printMissingFile(w, cfg.AppSource)
		return nil
	case errors.Is(err, patcher.ErrHandlerNotFound):
		fmt.Fprintf(w, "ERROR: Could not find %s in %s\n", cfg.Handler, cfg.AppSource)
		return nil
	case err != nil:
		return err
	}

	if !res.Changed() {
		fmt.Fprintf(w, "No changes needed: %s is already patched\n", cfg.Handler)
		return nil
	}

	for _, a := range res.Applied {
		if a.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "  %s -> %s (%d)\n", a.From, a.To, a.Count)
	}
	fmt.Fprintf(w, "✓ Patched %s in %s (lines %d-%d)\n", cfg.Handler, cfg.AppSource, res.StartLine, res.EndLine)
	return nil
}
