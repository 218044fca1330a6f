package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/apple-arcade/internal/games/apples"
	"github.com/vovakirdan/apple-arcade/internal/platform/tui"
	"github.com/vovakirdan/apple-arcade/internal/platform/web"
)

var (
	flagSSHAddr     string
	flagWSAddr      string
	flagHostKey     string
	flagIdleTimeout int
	flagServeLedger string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the arcade SSH server and leaderboard feed",
	Long: `Start an SSH server that gives every connection its own dashboard, and
optionally a websocket feed of the leaderboard.

SSH players are identified by the address derived from their public key,
or by their username when they connect without one.

The feed serves /leaderboard: the current top players on connect, then again
every refresh interval. Add ?encoding=msgpack for binary frames.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.arcade/host_key

Examples:
  arcade serve                           # SSH on :23234
  arcade serve --ssh :2222 --ws :8080    # SSH on 2222, feed on 8080
  arcade serve --ssh "" --ws :8080       # Feed only
  arcade serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (empty to disable)")
	serveCmd.Flags().StringVar(&flagWSAddr, "ws", "", "Websocket feed address, e.g. :8080 (empty to disable)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagServeLedger, "ledger", "", "Ledger address (default: config, then latest deployed)")
}

func runServe(_ *cobra.Command, _ []string) {
	if flagSSHAddr == "" && flagWSAddr == "" {
		fail(errors.New("nothing to serve: set --ssh or --ws"))
	}
	if err := serve(); err != nil {
		fail(err)
	}
}

func serve() error {
	cfg := loadConfig("")
	logger := newLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openStore()
	defer store.Close()

	addr := flagServeLedger
	if addr == "" {
		addr = cfg.Ledger.Address
	}
	l, pinned, err := openLedger(ctx, store, addr)
	if err != nil {
		return err
	}
	if l == nil {
		logger.Warn("no leaderboard deployed yet; scores stay local until one is", "hint", "arcade deploy")
	}

	g, gctx := errgroup.WithContext(ctx)

	if flagSSHAddr != "" {
		sshCfg := tui.DefaultSSHServerConfig()
		sshCfg.Address = flagSSHAddr
		sshCfg.HostKeyPath = flagHostKey
		sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
		sshCfg.GameID = apples.GameID
		sshCfg.TickRate = flagFPS
		sshCfg.Refresh = cfg.Ledger.RefreshInterval()
		sshCfg.TopN = cfg.Ledger.TopN
		sshCfg.LedgerPinned = pinned

		server, err := tui.NewSSHServer(sshCfg, store, l, logger.WithPrefix("ssh"))
		if err != nil {
			return fmt.Errorf("creating SSH server: %w", err)
		}
		fmt.Printf("Connect with: ssh localhost -p %s\n", port(flagSSHAddr))
		g.Go(func() error { return server.Run(gctx) })
	}

	if flagWSAddr != "" {
		feed := web.NewServer(web.Config{
			Address: flagWSAddr,
			Refresh: cfg.Ledger.RefreshInterval(),
			TopN:    cfg.Ledger.TopN,
		}, store, l, logger.WithPrefix("feed"))
		fmt.Printf("Leaderboard feed: ws://localhost:%s/leaderboard\n", port(flagWSAddr))
		g.Go(func() error { return feed.Run(gctx) })
	}

	fmt.Println("Press Ctrl+C to stop")
	return g.Wait()
}

// port returns the port part of a listen address.
func port(addr string) string {
	if _, p, err := net.SplitHostPort(addr); err == nil {
		return p
	}
	return addr
}
