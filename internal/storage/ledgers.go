package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LedgerRecord is a deployed leaderboard ledger.
type LedgerRecord struct {
	ID         int64
	Address    string
	Fee        int64 // registration fee in milli-tokens
	DeployedAt time.Time
}

// LedgerPlayerRecord is one player's row in a ledger.
type LedgerPlayerRecord struct {
	ID           int64
	Ledger       string
	Address      string
	HighScore    int
	Registered   bool
	RegisteredAt time.Time
	UpdatedAt    time.Time
}

// CreateLedger stores a newly deployed ledger.
// Returns ErrDuplicate if the address is taken.
func (s *Store) CreateLedger(ctx context.Context, address string, fee int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO ledgers (address, fee) VALUES (?, ?)",
		address, fee,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("storage: ledger %s: %w", address, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("storage: cannot create ledger: %w", err)
	}
	return nil
}

// Ledger looks up a ledger by address.
func (s *Store) Ledger(ctx context.Context, address string) (*LedgerRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, address, fee, deployed_at FROM ledgers WHERE address = ?",
		address,
	)
	return scanLedger(row)
}

// LatestLedger returns the most recently deployed ledger.
func (s *Store) LatestLedger(ctx context.Context) (*LedgerRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, address, fee, deployed_at FROM ledgers ORDER BY id DESC LIMIT 1",
	)
	return scanLedger(row)
}

func scanLedger(row *sql.Row) (*LedgerRecord, error) {
	var l LedgerRecord
	var deployedAt any
	err := row.Scan(&l.ID, &l.Address, &l.Fee, &deployedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: ledger: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query ledger: %w", err)
	}
	l.DeployedAt = parseTime(deployedAt)
	return &l, nil
}

// InsertLedgerPlayer registers a player in a ledger with a zero high score.
// Returns ErrDuplicate if the player is already present.
func (s *Store) InsertLedgerPlayer(ctx context.Context, ledger, address string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO ledger_players (ledger, address) VALUES (?, ?)",
		ledger, address,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("storage: player %s: %w", address, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("storage: cannot insert ledger player: %w", err)
	}
	return nil
}

// LedgerPlayer returns one player's row.
func (s *Store) LedgerPlayer(ctx context.Context, ledger, address string) (*LedgerPlayerRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, ledger, address, high_score, registered, registered_at, updated_at
		 FROM ledger_players
		 WHERE ledger = ? AND address = ?`,
		ledger, address,
	)

	var p LedgerPlayerRecord
	var registeredAt, updatedAt any
	err := row.Scan(&p.ID, &p.Ledger, &p.Address, &p.HighScore, &p.Registered, &registeredAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: player %s: %w", address, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query ledger player: %w", err)
	}
	p.RegisteredAt = parseTime(registeredAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

// SetLedgerHighScore raises a registered player's high score.
// It reports false when the stored score is already at least as high.
// Returns ErrNotFound if the player is not in the ledger.
func (s *Store) SetLedgerHighScore(ctx context.Context, ledger, address string, score int) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ledger_players
		 SET high_score = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE ledger = ? AND address = ? AND registered = 1 AND high_score < ?`,
		score, ledger, address, score,
	)
	if err != nil {
		return false, fmt.Errorf("storage: cannot update high score: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: cannot update high score: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	// Distinguish "not higher" from "no such player"
	if _, err := s.LedgerPlayer(ctx, ledger, address); err != nil {
		return false, err
	}
	return false, nil
}

// LedgerPlayers returns every player of a ledger in registration order.
func (s *Store) LedgerPlayers(ctx context.Context, ledger string) ([]LedgerPlayerRecord, error) {
	return s.queryLedgerPlayers(ctx,
		`SELECT id, ledger, address, high_score, registered, registered_at, updated_at
		 FROM ledger_players
		 WHERE ledger = ?
		 ORDER BY id ASC`,
		ledger,
	)
}

// LedgerTop returns the n best registered players, highest score first.
// Equal scores keep registration order.
func (s *Store) LedgerTop(ctx context.Context, ledger string, n int) ([]LedgerPlayerRecord, error) {
	if n <= 0 {
		n = 10
	}
	return s.queryLedgerPlayers(ctx,
		`SELECT id, ledger, address, high_score, registered, registered_at, updated_at
		 FROM ledger_players
		 WHERE ledger = ? AND registered = 1
		 ORDER BY high_score DESC, id ASC
		 LIMIT ?`,
		ledger, n,
	)
}

func (s *Store) queryLedgerPlayers(ctx context.Context, query string, args ...any) ([]LedgerPlayerRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query ledger players: %w", err)
	}
	defer rows.Close()

	var players []LedgerPlayerRecord
	for rows.Next() {
		var p LedgerPlayerRecord
		var registeredAt, updatedAt any
		if err := rows.Scan(&p.ID, &p.Ledger, &p.Address, &p.HighScore, &p.Registered, &registeredAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		p.RegisteredAt = parseTime(registeredAt)
		p.UpdatedAt = parseTime(updatedAt)
		players = append(players, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return players, nil
}
