package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/recipeops/internal/config"
	"github.com/blackwell-systems/recipeops/internal/inspect"
	"github.com/blackwell-systems/recipeops/internal/output"
	"github.com/blackwell-systems/recipeops/internal/store"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Count rows with a positive price or cost",
	Long: `Count inventory items with a positive current or last purchased price,
recipes with a positive food cost and recipe ingredients with a positive
cost. Up to five sample rows are shown for every non-empty category.

The database is opened read-only.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd.Context(), cmd.OutOrStdout(), cfg)
	},
}

func runInspect(ctx context.Context, w io.Writer, cfg *config.Config) error {
	if !store.Exists(cfg.DBPath) {
		printMissingDatabase(w, cfg.DBPath)
		return nil
	}

	st, err := store.OpenReadOnly(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	categories, err := inspect.Run(ctx, st)
	if err != nil {
		return err
	}

	for _, c := range categories {
		fmt.Fprintf(w, "%s: %d\n", c.Title, c.Count)
	}

	for _, c := range categories {
		if c.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s (first %d):\n", c.Title, len(c.Samples))
		fmt.Fprint(w, output.RenderColumns(c.Header, c.Samples))
	}
	return nil
}
