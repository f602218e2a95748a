// Package config resolves recipeops settings.
//
// Values are layered with viper: built-in defaults, then an optional
// recipeops.yaml (working directory first, then the user config directory),
// then RECIPEOPS_* environment variables, then command-line flags.
// Environment variables may also come from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config keys.
const (
	KeyDB          = "db"
	KeyStagingDB   = "staging_db"
	KeyExportDir   = "export_dir"
	KeyAppSource   = "app_source"
	KeyHandler     = "handler"
	KeyBaseURL     = "base_url"
	KeyHTTPTimeout = "http_timeout"
	KeyVerbose     = "verbose"
)

// Defaults, all relative to the working directory.
const (
	DefaultDB          = "restaurant_calculator.db"
	DefaultStagingDB   = "recipe_cost_app.db"
	DefaultExportDir   = "exports"
	DefaultAppSource   = "app.py"
	DefaultHandler     = "bulk_update_menu_items"
	DefaultBaseURL     = "http://localhost:8888"
	DefaultHTTPTimeout = 10 * time.Second

	// DotEnvFile is the optional env file shared with the Application.
	DotEnvFile = ".env"

	configName = "recipeops"
	configType = "yaml"
	envPrefix  = "RECIPEOPS"
)

// Config holds the resolved settings for one invocation.
type Config struct {
	DBPath        string
	StagingDBPath string
	ExportDir     string
	AppSource     string
	Handler       string
	BaseURL       string
	HTTPTimeout   time.Duration
	Verbose       bool

	// File is the config file that was read, empty when none was found.
	File string
}

// Dir returns the recipeops config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/recipeops if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, configName), nil
}

// LoadDotEnv copies the variables of an env file into the process
// environment. Variables that are already set are kept. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDB, DefaultDB)
	v.SetDefault(KeyStagingDB, DefaultStagingDB)
	v.SetDefault(KeyExportDir, DefaultExportDir)
	v.SetDefault(KeyAppSource, DefaultAppSource)
	v.SetDefault(KeyHandler, DefaultHandler)
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyHTTPTimeout, DefaultHTTPTimeout)
	v.SetDefault(KeyVerbose, false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file into v and returns the resolved Config.
// An explicit file must exist; otherwise a missing recipeops.yaml is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		DBPath:        v.GetString(KeyDB),
		StagingDBPath: v.GetString(KeyStagingDB),
		ExportDir:     v.GetString(KeyExportDir),
		AppSource:     v.GetString(KeyAppSource),
		Handler:       v.GetString(KeyHandler),
		BaseURL:       v.GetString(KeyBaseURL),
		HTTPTimeout:   v.GetDuration(KeyHTTPTimeout),
		Verbose:       v.GetBool(KeyVerbose),
		File:          v.ConfigFileUsed(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing overrides the defaults.
func Default() *Config {
	return &Config{
		DBPath:        DefaultDB,
		StagingDBPath: DefaultStagingDB,
		ExportDir:     DefaultExportDir,
		AppSource:     DefaultAppSource,
		Handler:       DefaultHandler,
		BaseURL:       DefaultBaseURL,
		HTTPTimeout:   DefaultHTTPTimeout,
	}
}

// Validate rejects settings no command can work with.
func (c *Config) Validate() error {
	switch {
	case c.DBPath == "":
		return fmt.Errorf("config: %s must not be empty", KeyDB)
	case c.ExportDir == "":
		return fmt.Errorf("config: %s must not be empty", KeyExportDir)
	case c.Handler == "":
		return fmt.Errorf("config: %s must not be empty", KeyHandler)
	case c.HTTPTimeout <= 0:
		return fmt.Errorf("config: %s must be positive", KeyHTTPTimeout)
	}
	return nil
}
