package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/acheron/internal/cli"
	"github.com/aretw0/acheron/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "acheron",
	Short: "Acheron is a narrative graph engine for red-team simulations",
	Long: `Acheron plays branching red-team scenarios from JSON or YAML documents.
Settings come from ACHERON_* environment variables; flags override them.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	f := rootCmd.PersistentFlags()
	f.StringP("scenario", "s", "", "Scenario or mission pack document (.json, .yaml)")
	f.String("store", "", "Session store: memory, file or redis")
	f.String("store-dir", "", "Directory of the file store")
	f.String("redis-addr", "", "Redis address for the redis store")
	f.String("state-key", "", "Key of the saved session record")
	f.String("log-level", "", "Log level: debug, info, warn, error")
	f.Int("hints", 0, "Hints per session")
	f.Int64("seed", 0, "Seed for mission rotation (0 is random)")
}

// loadConfig reads the environment and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}

	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	str("scenario", &cfg.Scenario)
	str("store", &cfg.Store)
	str("store-dir", &cfg.StoreDir)
	str("redis-addr", &cfg.RedisAddr)
	str("state-key", &cfg.StateKey)
	str("log-level", &cfg.LogLevel)
	if flags.Changed("hints") {
		cfg.Hints, _ = flags.GetInt("hints")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	logger, err := cli.NewLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
