package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/apple-arcade/internal/ledger"
	"github.com/vovakirdan/apple-arcade/internal/registry"
)

var flagScoresLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores <game>",
	Short: "Show local score history for a game",
	Long: `Display the best games recorded on this machine for the specified game,
whether or not they reached a leaderboard.

Examples:
  arcade scores apples
  arcade scores apples --limit 25`,
	Args: cobra.ExactArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores to show")
}

func runScores(cmd *cobra.Command, args []string) {
	gameID := args[0]

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'arcade list' to see available games.")
		os.Exit(1)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fail(err)
	}

	store := openStore()
	defer store.Close()

	scores, err := store.TopScores(gameID, flagScoresLimit)
	if err != nil {
		fail(fmt.Errorf("retrieving scores: %w", err))
	}

	fmt.Printf("High Scores - %s\n", game.Title())
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'arcade play %s' to set the first high score!\n", gameID)
		return
	}

	fmt.Printf("  %-4s  %-8s  %-13s  %-16s  %s\n", "Rank", "Score", "Player", "Date", "Ledger")
	fmt.Printf("  %-4s  %-8s  %-13s  %-16s  %s\n", "----", "-----", "------", "----", "------")

	for i, entry := range scores {
		player := "-"
		if entry.Player != "" {
			player = ledger.Address(entry.Player).Short()
		}
		submitted := ""
		if entry.Submitted {
			submitted = "✓"
		}
		fmt.Printf("  %-4d  %-8d  %-13s  %-16s  %s\n",
			i+1, entry.Score, player, entry.CreatedAt.Format("2006-01-02 15:04"), submitted)
	}

	fmt.Println()
	stats, err := store.GetGameStats(gameID)
	if err == nil {
		fmt.Printf("Best: %d  Games: %d  Average: %.1f\n", stats.HighScore, stats.GamesCount, stats.AvgScore)
	}
}
