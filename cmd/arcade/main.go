// arcade is a terminal arcade built around Falling Apples, with a local
// leaderboard ledger that players register on to publish their best scores.
//
// Usage:
//
//	arcade list                   - List available games
//	arcade play [game]            - Play a game (default: apples)
//	arcade serve                  - Start the SSH and websocket servers
//	arcade scores <game>          - Show local score history for a game
//	arcade leaderboard            - Show the top players of a ledger
//	arcade deploy                 - Deploy a new leaderboard ledger
//	arcade register               - Register a player on a ledger
//
// Global flags:
//
//	--fps <rate>    - Set tick rate (default: 60)
//	--seed <value>  - Set RNG seed for reproducible gameplay
//	--db <path>     - Set database path (default: ~/.arcade/scores.db)
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/apple-arcade/internal/config"
	"github.com/vovakirdan/apple-arcade/internal/ledger"
	"github.com/vovakirdan/apple-arcade/internal/storage"

	// Import games to register them
	_ "github.com/vovakirdan/apple-arcade/internal/games/apples"
)

var (
	// Global flags
	flagFPS    int
	flagSeed   int64
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arcade",
	Short: "Apple Arcade - catch falling apples in your terminal",
	Long: `Apple Arcade is a terminal game of catching falling apples, with a
leaderboard ledger that registered players publish their best scores to.

Available commands:
  list         - Show all available games
  play         - Play a game in the dashboard or a bare tcell screen
  serve        - Serve dashboards over SSH and the leaderboard over websocket
  scores       - View local score history
  leaderboard  - View the top players of a ledger
  deploy       - Deploy a new leaderboard ledger
  register     - Register a player on a ledger

Examples:
  arcade deploy --fee 0.1
  arcade register --player alice
  arcade play --player alice
  arcade serve --ssh :2222 --ws :8080
  arcade leaderboard --top 5`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.arcade/scores.db", "Path to scores database")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(registerCmd)
}

// fail prints an error and exits with status 1.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// loadConfig reads the game config, failing on a broken custom file.
func loadConfig(path string) config.ApplesConfig {
	cfg, err := config.LoadApples(path)
	if err != nil {
		fail(err)
	}
	return cfg
}

func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "arcade",
	})
}

// fileLogger logs to ~/.arcade/arcade.log so full-screen hosts keep the
// terminal to themselves. It discards output if the file cannot be opened.
func fileLogger() (*log.Logger, func()) {
	home, err := os.UserHomeDir()
	if err != nil {
		return newLogger(io.Discard), func() {}
	}

	dir := filepath.Join(home, ".arcade")
	//nolint:errcheck // OpenFile below reports the failure that matters
	os.MkdirAll(dir, 0o755)

	f, err := os.OpenFile(filepath.Join(dir, "arcade.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return newLogger(io.Discard), func() {}
	}
	return newLogger(f), func() { f.Close() }
}

// openStore opens the scores database named by --db.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail(fmt.Errorf("opening scores database: %w", err))
	}
	return store
}

// errNoLedger is returned by commands that need a deployed ledger.
var errNoLedger = errors.New("no leaderboard deployed yet (run: arcade deploy)")

// openLedger resolves the ledger to use. An explicit address pins it and must
// exist; otherwise the latest deployed ledger is used when there is one.
func openLedger(ctx context.Context, store *storage.Store, addr string) (l *ledger.Ledger, pinned bool, err error) {
	if addr != "" {
		l, err = ledger.Resolve(ctx, store, addr)
		return l, true, err
	}
	l, err = ledger.OpenLatest(ctx, store)
	if errors.Is(err, ledger.ErrUnknownLedger) {
		return nil, false, nil
	}
	return l, false, err
}
