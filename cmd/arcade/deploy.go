package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/apple-arcade/internal/ledger"
)

var flagFee string

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy a new leaderboard ledger",
	Long: `Create a new leaderboard ledger in the scores database and print its
address. Players pay the registration fee once to publish scores to it.

New ledgers become the default for play, serve and leaderboard unless a
ledger address is pinned in the config or on the command line.

Examples:
  arcade deploy
  arcade deploy --fee 0.25`,
	Args: cobra.NoArgs,
	Run:  runDeploy,
}

func init() {
	deployCmd.Flags().StringVar(&flagFee, "fee", "", "Registration fee in "+ledger.Symbol+" (default: config registration_fee)")
}

func runDeploy(_ *cobra.Command, _ []string) {
	cfg := loadConfig("")
	logger := newLogger(os.Stderr)

	feeText := flagFee
	if feeText == "" {
		feeText = cfg.Ledger.RegistrationFee
	}
	fee, err := ledger.ParseAmount(feeText)
	if err != nil {
		fail(err)
	}

	store := openStore()
	defer store.Close()

	l, err := ledger.Deploy(context.Background(), store, fee)
	if err != nil {
		fail(fmt.Errorf("deploying leaderboard: %w", err))
	}

	logger.Info("leaderboard deployed", "address", l.Address(), "fee", ledger.FormatAmount(fee))
	fmt.Println("Leaderboard deployed to:", l.Address())
}
