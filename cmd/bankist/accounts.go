package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"bankist.org/internal/config"
	"bankist.org/internal/presenter"
)

func init() {
	rootCmd.AddCommand(accountsCmd)
	accountsCmd.Flags().String("seed", "", "TOML seed file (default: built-in demo accounts)")
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the seed accounts with their usernames and balances",
	RunE:  runAccounts,
}

func runAccounts(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	seed, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		return err
	}
	// Hashes are thrown away here, so the cheapest cost is enough.
	dir, err := seed.Directory(bcrypt.MinCost)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tOWNER\tMOVEMENTS\tBALANCE\tINTEREST")
	for _, acc := range dir.List() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			acc.UserName,
			acc.Owner,
			acc.Len(),
			presenter.FormatCurrency(acc.Balance(), acc.Currency, acc.Locale),
			presenter.FormatCurrency(acc.Interest(), acc.Currency, acc.Locale),
		)
	}
	return tw.Flush()
}
