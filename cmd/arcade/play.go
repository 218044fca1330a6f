package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/apple-arcade/internal/core"
	"github.com/vovakirdan/apple-arcade/internal/games/apples"
	"github.com/vovakirdan/apple-arcade/internal/ledger"
	"github.com/vovakirdan/apple-arcade/internal/platform/sound"
	platformterm "github.com/vovakirdan/apple-arcade/internal/platform/term"
	"github.com/vovakirdan/apple-arcade/internal/platform/tui"
	"github.com/vovakirdan/apple-arcade/internal/registry"
)

const (
	hostBubbleTea = "bubbletea"
	hostTcell     = "tcell"
)

var (
	flagConfig     string
	flagDifficulty string
	flagPlayer     string
	flagLedger     string
	flagHost       string
	flagSound      bool
)

var playCmd = &cobra.Command{
	Use:   "play [game]",
	Short: "Play a game",
	Long: `Start playing a game. Without an argument this plays Falling Apples.

The default host is a dashboard with Play, Leaderboard, Profile and History
tabs. --host tcell runs the bare game on a tcell screen instead.

Controls:
  Left/Right, A/D, J/L  - Move the basket
  Mouse click/drag      - Move the basket to the pointer
  Enter/Space           - Start
  P                     - Pause
  R                     - Restart
  Q/Ctrl+C              - Quit

Difficulty options:
  easy   - Start at the first tier, progresses over time
  normal - Start at the first tier, progresses over time
  hard   - Start at the second tier, progresses over time
  fixed  - No progression, stays at config's initial tier

Finished games are saved locally. Registered players also publish scores
that beat their best to the leaderboard ledger.

Examples:
  arcade play
  arcade play --player alice --difficulty hard
  arcade play --host tcell --sound
  arcade play --config ./my-apples.yaml
  arcade play --ledger 0x5fbdb2315678afecb367f032d93f642f64180aa3`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().StringVar(&flagPlayer, "player", "", "Player name (default: address of ~/.arcade/identity.key)")
	playCmd.Flags().StringVar(&flagLedger, "ledger", "", "Ledger address (default: config, then latest deployed)")
	playCmd.Flags().StringVar(&flagHost, "host", hostBubbleTea, "Terminal host: bubbletea or tcell")
	playCmd.Flags().BoolVar(&flagSound, "sound", false, "Play sound effects")
}

func runPlay(cmd *cobra.Command, args []string) {
	gameID := apples.GameID
	if len(args) > 0 {
		gameID = args[0]
	}

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'arcade list' to see available games.")
		os.Exit(1)
	}
	if flagHost != hostBubbleTea && flagHost != hostTcell {
		fail(fmt.Errorf("unknown host %q (want %s or %s)", flagHost, hostBubbleTea, hostTcell))
	}
	if err := apples.SetDifficultyPreset(flagDifficulty); err != nil {
		fail(err)
	}

	if err := play(gameID); err != nil {
		fail(err)
	}
}

func play(gameID string) error {
	cfg := loadConfig(flagConfig)
	apples.SetConfigPath(flagConfig)

	logger, closeLog := fileLogger()
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openStore()
	defer store.Close()

	player, err := ledger.LocalAddress(flagPlayer, ledger.DefaultKeyPath)
	if err != nil {
		return fmt.Errorf("resolving player identity: %w", err)
	}

	addr := flagLedger
	if addr == "" {
		addr = cfg.Ledger.Address
	}
	l, pinned, err := openLedger(ctx, store, addr)
	if err != nil {
		return err
	}

	game, err := registry.Create(gameID)
	if err != nil {
		return err
	}

	if flagSound {
		sp := sound.NewPlayer(logger)
		defer sp.Close()
		if g, ok := game.(*apples.Game); ok {
			g.OnEvent(sp.HandleEvent)
		}
	}

	// Get terminal size
	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}
	runtime := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}

	logger.Info("session started", "game", gameID, "player", player, "host", flagHost, "ledger", l != nil)
	defer logger.Info("session ended", "game", gameID, "player", player)

	if flagHost == hostTcell {
		return platformterm.Run(ctx, game, platformterm.Options{
			Runtime:   runtime,
			Submitter: ledger.NewSubmitter(store, l, gameID, logger),
			Player:    player,
			Logger:    logger,
		})
	}

	return tui.Run(tui.DashboardConfig{
		Game:         game,
		Runtime:      runtime,
		Store:        store,
		Player:       player,
		Ledger:       l,
		LedgerPinned: pinned,
		Refresh:      cfg.Ledger.RefreshInterval(),
		TopN:         cfg.Ledger.TopN,
		Context:      ctx,
		Logger:       logger,
	})
}
