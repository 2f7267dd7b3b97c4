package cmd

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/incidentlab/internal/logging"
	"github.com/abhisek/incidentlab/internal/store"
)

// settings are the global options. Flags override INCIDENTLAB_ variables.
type settings struct {
	DB       string `env:"DB"`
	Player   string `env:"PLAYER"`
	LogLevel string `env:"LOG_LEVEL"`
}

var (
	cfg    settings
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "incidentlab",
	Short: "Diagnose simulated production incidents",
	Long: "incidentlab - a terminal game: read the evidence of a production incident,\n" +
		"name the root cause, then propose the fix.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "INCIDENTLAB_"}); err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
		flags := cmd.Flags()
		if flags.Changed("db") {
			cfg.DB, _ = flags.GetString("db")
		}
		if flags.Changed("player") {
			cfg.Player, _ = flags.GetString("player")
		}
		if flags.Changed("log-level") {
			cfg.LogLevel, _ = flags.GetString("log-level")
		}

		l, err := logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCases(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides INCIDENTLAB_DB env var)")
	rootCmd.PersistentFlags().String("player", "", "Player id (overrides INCIDENTLAB_PLAYER env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default warn)")

	rootCmd.AddCommand(casesCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(clueCmd)
	rootCmd.AddCommand(hintCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(giveUpCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then INCIDENTLAB_DB env var, then the default XDG path.
func resolveDBPath() (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}
