package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/clubportal/internal/config"
	"github.com/mmynk/clubportal/internal/storage/sqlite"
	"github.com/mmynk/clubportal/pkg/logging"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "clubportal",
	Short: "Club billing and membership portal",
	Long: `clubportal serves the admin API of a club: family-grouped invoices,
payments, HTML documents from editable templates, membership fees and
email campaigns.

Configuration is read from the environment and from a .env file in the
working directory.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadDotEnv()
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logging.SetupWith(os.Stderr, cfg.LogLevelValue(), cfg.LogFormatValue())
		cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
		return nil
	},
}

type configKey struct{}

// configFrom returns the configuration loaded by the root command.
func configFrom(cmd *cobra.Command) *config.Config {
	return cmd.Context().Value(configKey{}).(*config.Config)
}

// openStore opens the SQLite database named by the configuration.
func openStore(cfg *config.Config) (*sqlite.SQLiteStore, error) {
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Info("Storage initialized", "database", cfg.DBPath)
	return store, nil
}

func main() {
	rootCmd.AddCommand(serveCmd, renderCmd, exportCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("Command failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
