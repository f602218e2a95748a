package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/recipeops/internal/config"
	"github.com/blackwell-systems/recipeops/internal/output"
	"github.com/blackwell-systems/recipeops/internal/staging"
	"github.com/blackwell-systems/recipeops/internal/store"
)

var (
	stagingLimit int

	clearStagingCmd = &cobra.Command{
		Use:   "clear-staging",
		Short: "Delete every row of the inventory staging table",
		Long: `Delete all rows of stg_inventory_items in a single transaction.

On failure the transaction is rolled back, the error is printed and the
table is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClearStaging(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	inspectStagingCmd = &cobra.Command{
		Use:   "inspect-staging",
		Short: "Show sample rows of the PDF recipe staging table",
		Long: `Print sample rows of stg_pdf_recipes from the staging database, followed
by the number of rows flagged for review and the number of rows whose cost
is missing or zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspectStaging(cmd.Context(), cmd.OutOrStdout(), cfg, stagingLimit)
		},
	}
)

func init() {
	inspectStagingCmd.Flags().String("staging-db", config.DefaultStagingDB, "staging database path")
	inspectStagingCmd.Flags().IntVar(&stagingLimit, "limit", staging.DefaultSampleSize, "number of sample rows to show")
}

func runClearStaging(ctx context.Context, w io.Writer, cfg *config.Config) error {
	if !store.Exists(cfg.DBPath) {
		printMissingDatabase(w, cfg.DBPath)
		return nil
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := staging.ClearInventory(ctx, st)
	if err != nil {
		fmt.Fprintf(w, "Error clearing staging table: %v\n", err)
		return nil
	}

	fmt.Fprintf(w, "Cleared %d rows from staging table\n", n)
	return nil
}

func runInspectStaging(ctx context.Context, w io.Writer, cfg *config.Config, limit int) error {
	if !store.Exists(cfg.StagingDBPath) {
		printMissingDatabase(w, cfg.StagingDBPath)
		return nil
	}

	st, err := store.OpenReadOnly(cfg.StagingDBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	report, err := staging.InspectPDFRecipes(ctx, st, limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Sample rows from %s:\n\n", staging.PDFRecipesTable)
	fmt.Fprint(w, output.RenderPDFStagingTable(report.Samples))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Rows needing review: %d\n", report.NeedsReview)
	fmt.Fprintf(w, "Missing/zero costs: %d\n", report.MissingCost)
	return nil
}
