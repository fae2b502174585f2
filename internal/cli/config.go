package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/roach88/ensure-schema/internal/store"
)

// EnvConfig holds settings read from the environment. Flags override it.
type EnvConfig struct {
	Database          string `env:"ENSURE_SCHEMA_DB"`
	Driver            string `env:"ENSURE_SCHEMA_DRIVER" envDefault:"sqlite3"`
	WAL               bool   `env:"ENSURE_SCHEMA_WAL"`
	BusyTimeoutMillis int    `env:"ENSURE_SCHEMA_BUSY_TIMEOUT_MS" envDefault:"5000"`
}

// LoadEnvConfig parses EnvConfig from the process environment.
func LoadEnvConfig() (EnvConfig, error) {
	cfg, err := env.ParseAs[EnvConfig]()
	if err != nil {
		return EnvConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// DatabaseOptions holds the flags shared by commands that open a database.
type DatabaseOptions struct {
	Database string
	Driver   string
	WAL      bool
}

func (o *DatabaseOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Database, "db", "", "path to SQLite database (or ENSURE_SCHEMA_DB)")
	cmd.Flags().StringVar(&o.Driver, "driver", store.DriverMattn, "database driver (sqlite3|sqlite)")
}

// addWALFlag is only registered by commands that may write to the database.
func (o *DatabaseOptions) addWALFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.WAL, "wal", false, "enable WAL journal mode")
}

// storeConfig merges flags over the environment. A readOnly config never
// changes the journal mode or creates the database file.
func (o *DatabaseOptions) storeConfig(cmd *cobra.Command, readOnly bool) (store.Config, error) {
	envCfg, err := LoadEnvConfig()
	if err != nil {
		return store.Config{}, err
	}

	cfg := store.Config{
		Path:              o.Database,
		Driver:            o.Driver,
		WAL:               o.WAL,
		BusyTimeoutMillis: envCfg.BusyTimeoutMillis,
		ReadOnly:          readOnly,
	}
	if !cmd.Flags().Changed("db") {
		cfg.Path = envCfg.Database
	}
	if !cmd.Flags().Changed("driver") {
		cfg.Driver = envCfg.Driver
	}
	if !cmd.Flags().Changed("wal") {
		cfg.WAL = envCfg.WAL
	}

	if cfg.Path == "" {
		return store.Config{}, fmt.Errorf("database path is required (--db or ENSURE_SCHEMA_DB)")
	}
	return cfg, nil
}

// newLogger configures logging based on the verbose flag.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}
