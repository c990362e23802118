package main

import (
	"github.com/spf13/cobra"

	"bankist.org/internal/config"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "bankist",
	Short:         "Single-user banking demo",
	Long:          `bankist serves a small set of demo accounts over a local HTTP API: log in, transfer, request loans, close the account.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading BANKIST_* variables")
}

// loadConfig reads env settings and applies flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.FromEnv(envFile)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.SeedFile, _ = flags.GetString("seed")
	}
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("idle-ticks") {
		cfg.IdleTicks, _ = flags.GetInt("idle-ticks")
	}
	if flags.Changed("loan-delay") {
		cfg.LoanDelay, _ = flags.GetDuration("loan-delay")
	}
	return cfg, cfg.Validate()
}
