package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/apple-arcade/internal/ledger"
)

var (
	flagBoardLedger string
	flagTop         int
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the top players of a ledger",
	Long: `Display the highest registered scores on a leaderboard ledger.

Without --ledger the address from the config is used, then the most
recently deployed ledger.

Examples:
  arcade leaderboard
  arcade leaderboard --top 3
  arcade leaderboard --ledger 0x5fbdb2315678afecb367f032d93f642f64180aa3`,
	Args: cobra.NoArgs,
	Run:  runLeaderboard,
}

func init() {
	leaderboardCmd.Flags().StringVar(&flagBoardLedger, "ledger", "", "Ledger address")
	leaderboardCmd.Flags().IntVar(&flagTop, "top", 0, "Number of players to show (default: config top_n)")
}

func runLeaderboard(_ *cobra.Command, _ []string) {
	cfg := loadConfig("")
	ctx := context.Background()

	store := openStore()
	defer store.Close()

	addr := flagBoardLedger
	if addr == "" {
		addr = cfg.Ledger.Address
	}
	l, _, err := openLedger(ctx, store, addr)
	if err != nil {
		fail(err)
	}
	if l == nil {
		fmt.Println("No leaderboard deployed yet. Run: arcade deploy")
		return
	}

	n := flagTop
	if n <= 0 {
		n = cfg.Ledger.TopN
	}
	top, err := l.Top(ctx, n)
	if err != nil {
		fail(fmt.Errorf("reading leaderboard: %w", err))
	}

	fmt.Printf("🏆 Top %d Players\n", n)
	fmt.Printf("Ledger %s  fee %s %s\n", l.Address(), ledger.FormatAmount(l.Fee()), ledger.Symbol)
	fmt.Println()

	if len(top) == 0 {
		fmt.Println("No scores yet. Register with 'arcade register' and play!")
		return
	}

	fmt.Printf("  %-6s  %-13s  %s\n", "Rank", "Player", "Score")
	fmt.Printf("  %-6s  %-13s  %s\n", "----", "------", "-----")
	for _, e := range top {
		fmt.Printf("  %-6s  %-13s  %d\n", ledger.RankLabel(e.Rank), e.Player.Short(), e.Score)
	}
}
