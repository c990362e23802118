package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"bankist.org/internal/config"
	"bankist.org/internal/directory"
	"bankist.org/internal/obs"
	"bankist.org/internal/schedule"
	"bankist.org/internal/session"
	"bankist.org/internal/sim"
)

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().String("seed", "", "TOML seed file (default: built-in demo accounts)")
	simulateCmd.Flags().Int("steps", 100, "number of simulated actions")
	simulateCmd.Flags().Int64("rand-seed", 1, "random seed (0 = time based)")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay random customer traffic on a simulated clock and print a summary",
	RunE:  runSimulate,
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	steps, _ := cmd.Flags().GetInt("steps")
	randSeed, _ := cmd.Flags().GetInt64("rand-seed")

	seed, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		return err
	}
	dir, err := seed.Directory(bcrypt.MinCost)
	if err != nil {
		return err
	}
	customers := make([]sim.Customer, 0, len(seed.Accounts))
	for _, a := range seed.Accounts {
		customers = append(customers, sim.Customer{UserName: directory.DeriveUserName(a.Owner), PIN: a.PIN})
	}
	if len(customers) < 2 {
		return fmt.Errorf("simulation needs at least 2 accounts, seed has %d", len(customers))
	}

	// Keep the audit trail off stdout so the summary stays readable.
	obs.Logger().SetOutput(cmd.ErrOrStderr())

	clock := schedule.NewManual(time.Now().UTC())
	ctrl := session.New(dir,
		session.WithScheduler(clock),
		session.WithIdleTicks(cfg.IdleTicks),
		session.WithTickInterval(cfg.TickInterval),
		session.WithLoanDelay(cfg.LoanDelay),
	)
	defer ctrl.Close()

	runner := sim.Runner{Ctrl: ctrl, Clock: clock, Tick: cfg.TickInterval, Settle: cfg.LoanDelay}
	gen := sim.NewGenerator(randSeed, customers, sim.DefaultMix, cfg.IdleTicks+2)
	counter, err := runner.Run(cmd.Context(), gen, steps)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), sim.Summarize(counter))
	return nil
}
