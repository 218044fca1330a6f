package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/apple-arcade/internal/ledger"
)

var (
	flagRegPlayer string
	flagRegLedger string
	flagPay       string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a player on a leaderboard ledger",
	Long: `Register a player so their best scores are published to the ledger.
Registration costs the ledger's fee, paid once.

The player is --player when given, otherwise the address of the local
identity key (~/.arcade/identity.key, created on first use).

Examples:
  arcade register
  arcade register --player alice
  arcade register --pay 0.1 --ledger 0x5fbdb2315678afecb367f032d93f642f64180aa3`,
	Args: cobra.NoArgs,
	Run:  runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&flagRegPlayer, "player", "", "Player name (default: address of ~/.arcade/identity.key)")
	registerCmd.Flags().StringVar(&flagRegLedger, "ledger", "", "Ledger address (default: config, then latest deployed)")
	registerCmd.Flags().StringVar(&flagPay, "pay", "", "Amount to pay in "+ledger.Symbol+" (default: the ledger's fee)")
}

func runRegister(_ *cobra.Command, _ []string) {
	cfg := loadConfig("")
	logger := newLogger(os.Stderr)
	ctx := context.Background()

	player, err := ledger.LocalAddress(flagRegPlayer, ledger.DefaultKeyPath)
	if err != nil {
		fail(fmt.Errorf("resolving player identity: %w", err))
	}

	store := openStore()
	defer store.Close()

	addr := flagRegLedger
	if addr == "" {
		addr = cfg.Ledger.Address
	}
	l, _, err := openLedger(ctx, store, addr)
	if err != nil {
		fail(err)
	}
	if l == nil {
		fail(errNoLedger)
	}

	paid := l.Fee()
	if flagPay != "" {
		if paid, err = ledger.ParseAmount(flagPay); err != nil {
			fail(err)
		}
	}

	err = l.Register(ctx, player, paid)
	switch {
	case errors.Is(err, ledger.ErrAlreadyRegistered):
		fmt.Printf("%s is already registered on %s\n", player.Short(), l.Address().Short())
		return
	case err != nil:
		fail(err)
	}

	logger.Info("player registered", "player", player, "ledger", l.Address(), "paid", ledger.FormatAmount(paid))
	fmt.Printf("You are now registered! Paid %s %s\n", ledger.FormatAmount(paid), ledger.Symbol)
	fmt.Printf("Player: %s\n", player)
}
