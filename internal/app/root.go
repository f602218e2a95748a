package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blackwell-systems/recipeops/internal/config"
	"github.com/blackwell-systems/recipeops/internal/logger"
)

var (
	cfgFile string
	cfg     = config.Default()

	// RootCmd is the root command for recipeops
	RootCmd = &cobra.Command{
		Use:   "recipeops",
		Short: "Maintenance tools for the recipe cost calculator",
		Long: `recipeops bundles the operational tools of the recipe cost calculator:
database export, staging table maintenance, data inspection, route
patching and HTTP smoke tests.

Every command works on files relative to the working directory unless
configured otherwise. Settings are read from recipeops.yaml (working
directory or $XDG_CONFIG_HOME/recipeops), RECIPEOPS_* environment
variables and flags, later sources winning.

Examples:
  # Export the database to exports/
  recipeops export

  # Check that the latest export replays cleanly
  recipeops export verify

  # Empty the inventory staging table
  recipeops clear-staging

  # Smoke test a running server
  recipeops smoke pages --base-url http://localhost:8888`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
	}
)

// flagKeys maps flag names to config keys. Flags not present on the
// running command are skipped.
var flagKeys = map[string]string{
	"db":         config.KeyDB,
	"staging-db": config.KeyStagingDB,
	"export-dir": config.KeyExportDir,
	"app-source": config.KeyAppSource,
	"handler":    config.KeyHandler,
	"base-url":   config.KeyBaseURL,
	"timeout":    config.KeyHTTPTimeout,
	"verbose":    config.KeyVerbose,
}

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./recipeops.yaml, then $XDG_CONFIG_HOME/recipeops/recipeops.yaml)")
	RootCmd.PersistentFlags().String("db", config.DefaultDB, "primary database path")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2

	// Register subcommands
	RootCmd.AddCommand(exportCmd)
	RootCmd.AddCommand(clearStagingCmd)
	RootCmd.AddCommand(inspectCmd)
	RootCmd.AddCommand(inspectStagingCmd)
	RootCmd.AddCommand(patchRoutesCmd)
	RootCmd.AddCommand(smokeCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every subcommand.
func ExecuteContext(ctx context.Context) error {
	return RootCmd.ExecuteContext(ctx)
}

// loadConfig resolves the configuration for the command about to run.
func loadConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(config.DotEnvFile); err != nil {
		return err
	}

	v := config.NewViper()
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(key, f)
	})
	if bindErr != nil {
		return fmt.Errorf("failed to bind flags: %w", bindErr)
	}

	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	logger.SetVerbose(cfg.Verbose)
	if cfg.File != "" {
		logger.Debug("loaded config", "file", cfg.File)
	}
	return nil
}
