// Package web serves a live leaderboard feed over websockets.
//
// Clients connect to /leaderboard and receive the current top-N right
// away, then a fresh frame every refresh interval. Frames are JSON text
// messages, or msgpack binary messages with ?encoding=msgpack.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/apple-arcade/internal/ledger"
)

// Frame is one snapshot of the leaderboard.
type Frame struct {
	Ledger    ledger.Address `json:"ledger" msgpack:"ledger"`
	Fee       string         `json:"fee" msgpack:"fee"`
	Top       []ledger.Entry `json:"top" msgpack:"top"`
	UpdatedAt int64          `json:"updated_at" msgpack:"updated_at"` // unix millis
}

// Config holds configuration for the feed server.
type Config struct {
	// Address is the host:port to listen on (e.g., ":8080").
	Address string
	Refresh time.Duration
	TopN    int
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address: ":8080",
		Refresh: 10 * time.Second,
		TopN:    ledger.DefaultTop,
	}
}

// Server publishes leaderboard frames to websocket clients.
type Server struct {
	cfg      Config
	store    ledger.Store
	ledger   *ledger.Ledger
	pinned   bool
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewServer creates a feed server. With l nil the feed follows the latest
// deployed ledger.
func NewServer(cfg Config, store ledger.Store, l *ledger.Ledger, logger *log.Logger) *Server {
	if cfg.Refresh <= 0 {
		cfg.Refresh = DefaultConfig().Refresh
	}
	if cfg.TopN <= 0 {
		cfg.TopN = ledger.DefaultTop
	}
	return &Server{
		cfg:    cfg,
		store:  store,
		ledger: l,
		pinned: l != nil,
		hub:    NewHub(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The feed is public and read-only.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Handler returns the HTTP routes of the feed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/leaderboard", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) //nolint:errcheck
	})
	return mux
}

// Start runs the hub and the refresh loop until ctx is cancelled.
// Run calls it; call it directly when serving Handler elsewhere.
func (s *Server) Start(ctx context.Context) {
	go s.hub.Run(ctx)
	go s.poll(ctx)
}

// Run serves the feed on cfg.Address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.Start(ctx)
	s.logger.Info("starting leaderboard feed", "address", s.cfg.Address)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down leaderboard feed...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Snapshot reads the current top-N.
func (s *Server) Snapshot(ctx context.Context) (Frame, error) {
	f := Frame{UpdatedAt: time.Now().UnixMilli(), Top: []ledger.Entry{}}

	l := s.ledger
	if !s.pinned {
		latest, err := ledger.OpenLatest(ctx, s.store)
		if errors.Is(err, ledger.ErrUnknownLedger) {
			return f, nil
		}
		if err != nil {
			return f, err
		}
		l = latest
	}

	top, err := l.Top(ctx, s.cfg.TopN)
	if err != nil {
		return f, err
	}
	f.Ledger = l.Address()
	f.Fee = ledger.FormatAmount(l.Fee())
	f.Top = top
	return f, nil
}

// poll re-broadcasts the leaderboard every refresh interval.
func (s *Server) poll(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f, err := s.Snapshot(ctx)
			if err != nil {
				s.logger.Warn("leaderboard snapshot failed", "err", err)
				continue
			}
			s.hub.Broadcast(ctx, f)
		}
	}
}

// serveWS upgrades the request and sends the current frame right away.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	enc, ok := ParseEncoding(r.URL.Query().Get("encoding"))
	if !ok {
		http.Error(w, "unsupported encoding", http.StatusBadRequest)
		return
	}

	f, err := s.Snapshot(r.Context())
	if err != nil {
		s.logger.Error("leaderboard snapshot failed", "err", err)
		http.Error(w, "leaderboard unavailable", http.StatusServiceUnavailable)
		return
	}
	first, err := enc.Encode(f)
	if err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &client{hub: s.hub, conn: conn, encoding: enc, send: make(chan []byte, sendBuffer)}
	c.send <- first
	if !s.hub.add(c) {
		conn.Close()
		return
	}
	s.logger.Info("feed client connected", "remote", r.RemoteAddr, "encoding", r.URL.Query().Get("encoding"))

	go c.writePump()
	go c.readPump()
}
