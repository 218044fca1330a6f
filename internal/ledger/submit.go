package ledger

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Status is the outcome of submitting a finished game.
type Status int

const (
	// Submitted means the score became the player's new high score.
	Submitted Status = iota
	// NotHigher means the score did not beat the recorded high score.
	NotHigher
	// NotRegistered means the player has not registered with the ledger.
	NotRegistered
	// NoLedger means no ledger is configured; only history was written.
	NoLedger
)

func (s Status) String() string {
	switch s {
	case Submitted:
		return "submitted"
	case NotHigher:
		return "not higher"
	case NotRegistered:
		return "not registered"
	case NoLedger:
		return "no ledger"
	default:
		return "unknown"
	}
}

// History records every finished game. *storage.Store implements it.
type History interface {
	SaveScore(gameID, player string, score int) (int64, error)
	MarkSubmitted(id int64) error
}

// Result describes what happened to one finished game.
type Result struct {
	Status    Status
	Player    Address
	Score     int
	HighScore int   // high score on the ledger after submission
	HistoryID int64 // row id in the score history
}

// Message is a one-line summary for status bars.
func (r Result) Message() string {
	switch r.Status {
	case Submitted:
		return fmt.Sprintf("New high score %d saved to the leaderboard", r.Score)
	case NotHigher:
		return fmt.Sprintf("Score %d did not beat your best (%d)", r.Score, r.HighScore)
	case NotRegistered:
		return fmt.Sprintf("Score %d saved locally; register to join the leaderboard", r.Score)
	case NoLedger:
		return fmt.Sprintf("Score %d saved locally", r.Score)
	default:
		return ""
	}
}

// Submitter turns game-over callbacks into history rows and ledger updates.
type Submitter struct {
	history History
	ledger  *Ledger
	gameID  string
	log     *log.Logger
}

// NewSubmitter builds a submitter. l may be nil when no ledger is deployed;
// logger may be nil to discard logs.
func NewSubmitter(history History, l *Ledger, gameID string, logger *log.Logger) *Submitter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Submitter{history: history, ledger: l, gameID: gameID, log: logger}
}

// Ledger returns the ledger scores are submitted to, or nil.
func (s *Submitter) Ledger() *Ledger {
	return s.ledger
}

// Submit stores the game in history and, for a registered player whose
// score beats the recorded high score, on the ledger.
func (s *Submitter) Submit(ctx context.Context, player Address, score int) (Result, error) {
	res := Result{Player: player, Score: score}

	id, err := s.history.SaveScore(s.gameID, player.String(), score)
	if err != nil {
		s.log.Error("failed to save score", "player", player.Short(), "score", score, "err", err)
		return res, err
	}
	res.HistoryID = id

	if s.ledger == nil {
		res.Status = NoLedger
		s.log.Info("score saved", "player", player.Short(), "score", score)
		return res, nil
	}

	info, err := s.ledger.Player(ctx, player)
	if err != nil {
		s.log.Error("failed to read player", "player", player.Short(), "err", err)
		return res, err
	}
	res.HighScore = info.HighScore

	if !info.Registered {
		res.Status = NotRegistered
		s.log.Info("player not registered, score kept local", "player", player.Short(), "score", score)
		return res, nil
	}
	if score <= info.HighScore {
		res.Status = NotHigher
		s.log.Info("score not higher than best", "player", player.Short(), "score", score, "best", info.HighScore)
		return res, nil
	}

	updated, err := s.ledger.UpdateScore(ctx, player, score)
	if err != nil {
		s.log.Error("failed to submit score", "player", player.Short(), "score", score, "err", err)
		return res, err
	}
	if !updated {
		// Another session raised the score in between.
		res.Status = NotHigher
		if cur, err := s.ledger.Player(ctx, player); err == nil {
			res.HighScore = cur.HighScore
		}
		return res, nil
	}

	res.Status = Submitted
	res.HighScore = score
	if err := s.history.MarkSubmitted(id); err != nil {
		s.log.Warn("failed to flag history row", "id", id, "err", err)
	}
	s.log.Info("new high score submitted", "player", player.Short(), "score", score, "ledger", s.ledger.Address().Short())
	return res, nil
}
