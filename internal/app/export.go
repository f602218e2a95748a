package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/recipeops/internal/config"
	"github.com/blackwell-systems/recipeops/internal/exporter"
	"github.com/blackwell-systems/recipeops/internal/output"
	"github.com/blackwell-systems/recipeops/internal/store"
)

var (
	exportProgress bool
	verifyFile     string

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export the database to a timestamped SQL dump",
		Long: `Write a complete SQL dump of the database to
exports/database_export_YYYYMMDD_HHMMSS.sql, copy it to exports/latest.sql
and print the row count of every table.

The dump replays into an empty SQLite database with
  sqlite3 new.db < exports/latest.sql

A missing database is reported and nothing is written.`,
		Example: `  recipeops export
  recipeops export --db data/restaurant_calculator.db --export-dir backups`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), cfg, exportProgress)
		},
	}

	exportListCmd = &cobra.Command{
		Use:   "list",
		Short: "List existing exports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportList(cmd.OutOrStdout(), cfg)
		},
	}

	exportVerifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Replay an export and compare row counts with the database",
		Long: `Replay an export into a scratch database and compare the row count of
every table with the live database. Defaults to exports/latest.sql.

Exits non-zero when any table differs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportVerify(cmd.Context(), cmd.OutOrStdout(), cfg, verifyFile)
		},
	}
)

func init() {
	exportCmd.PersistentFlags().String("export-dir", config.DefaultExportDir, "directory for export files")
	exportCmd.Flags().BoolVar(&exportProgress, "progress", false, "show a progress bar while dumping tables")
	exportVerifyCmd.Flags().StringVar(&verifyFile, "file", "", "export to verify (default: <export-dir>/latest.sql)")

	exportCmd.AddCommand(exportListCmd)
	exportCmd.AddCommand(exportVerifyCmd)
}

func runExport(ctx context.Context, w io.Writer, cfg *config.Config, showProgress bool) error {
	e := exporter.New(cfg.DBPath, cfg.ExportDir)

	var progress *output.ProgressBar
	if showProgress {
		progress = output.NewProgress("Dumping tables", w)
		e.Progress = progress
	}

	res, err := e.Export(ctx)
	if errors.Is(err, store.ErrNotExist) {
		printMissingDatabase(w, cfg.DBPath)
		return nil
	}
	if err != nil {
		return err
	}

	if progress != nil {
		progress.Finish()
	}
	exporter.WriteSummary(w, res)
	return nil
}

func runExportList(w io.Writer, cfg *config.Config) error {
	files, err := exporter.New(cfg.DBPath, cfg.ExportDir).List()
	if err != nil {
		return err
	}
	fmt.Fprint(w, output.RenderExportTable(files))
	return nil
}

func runExportVerify(ctx context.Context, w io.Writer, cfg *config.Config, file string) error {
	if file == "" {
		file = filepath.Join(cfg.ExportDir, exporter.LatestName)
	}

	if !store.Exists(cfg.DBPath) {
		printMissingDatabase(w, cfg.DBPath)
		return nil
	}
	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		printMissingFile(w, file)
		return nil
	}

	var checks []exporter.TableCheck
	err := output.NewSpinner("Replaying "+file, w).Run(func() error {
		var err error
		checks, err = exporter.Verify(ctx, cfg.DBPath, file)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprint(w, output.RenderVerifyTable(checks))
	fmt.Fprintln(w)

	var drifted int
	for _, c := range checks {
		if !c.Match() {
			drifted++
		}
	}
	if drifted > 0 {
		return fmt.Errorf("%d of %d tables differ between %s and %s", drifted, len(checks), file, cfg.DBPath)
	}

	fmt.Fprintf(w, "✓ %s matches %s (%d tables)\n", file, cfg.DBPath, len(checks))
	return nil
}
