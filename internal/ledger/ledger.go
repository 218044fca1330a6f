// Package ledger implements the pay-to-register leaderboard: a deployed
// ledger has a fixed registration fee, registered players keep a single
// high score, and the top of the board is read sorted by score.
//
// Ledgers live in the local sqlite store; addresses have the same shape
// as wallet addresses so they can be shared and pasted around.
package ledger

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/vovakirdan/apple-arcade/internal/storage"
)

// DefaultTop is the number of entries Top returns for n <= 0.
const DefaultTop = 10

var (
	ErrNotRegistered      = errors.New("ledger: player not registered")
	ErrAlreadyRegistered  = errors.New("ledger: player already registered")
	ErrWrongFee           = errors.New("ledger: wrong registration fee")
	ErrUnknownLedger      = errors.New("ledger: unknown ledger")
	ErrInvalidScore       = errors.New("ledger: score must not be negative")
	errEmptyPlayerAddress = errors.New("ledger: empty player address")
)

// Store is the persistence a ledger needs. *storage.Store implements it.
type Store interface {
	CreateLedger(ctx context.Context, address string, fee int64) error
	Ledger(ctx context.Context, address string) (*storage.LedgerRecord, error)
	LatestLedger(ctx context.Context) (*storage.LedgerRecord, error)
	InsertLedgerPlayer(ctx context.Context, ledger, address string) error
	LedgerPlayer(ctx context.Context, ledger, address string) (*storage.LedgerPlayerRecord, error)
	SetLedgerHighScore(ctx context.Context, ledger, address string, score int) (bool, error)
	LedgerPlayers(ctx context.Context, ledger string) ([]storage.LedgerPlayerRecord, error)
	LedgerTop(ctx context.Context, ledger string, n int) ([]storage.LedgerPlayerRecord, error)
}

// PlayerInfo is what the board knows about one address.
type PlayerInfo struct {
	Address    Address
	HighScore  int
	Registered bool
}

// Entry is one row of the leaderboard. Rank starts at 1.
type Entry struct {
	Rank   int     `json:"rank" msgpack:"rank"`
	Player Address `json:"player" msgpack:"player"`
	Score  int     `json:"score" msgpack:"score"`
}

// Ledger is a handle to one deployed leaderboard.
type Ledger struct {
	store   Store
	address Address
	fee     int64
}

// Deploy creates a new ledger with the given registration fee (milli-tokens).
func Deploy(ctx context.Context, store Store, fee int64) (*Ledger, error) {
	if fee < 0 {
		return nil, fmt.Errorf("ledger: negative fee %d", fee)
	}

	for attempt := 0; attempt < 2; attempt++ {
		addr, err := randomAddress()
		if err != nil {
			return nil, err
		}
		err = store.CreateLedger(ctx, addr.String(), fee)
		if errors.Is(err, storage.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("ledger: deploy: %w", err)
		}
		return &Ledger{store: store, address: addr, fee: fee}, nil
	}
	return nil, fmt.Errorf("ledger: deploy: could not allocate an address")
}

// Open returns the ledger deployed at addr.
func Open(ctx context.Context, store Store, addr Address) (*Ledger, error) {
	rec, err := store.Ledger(ctx, addr.String())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLedger, addr)
	}
	if err != nil {
		return nil, err
	}
	return fromRecord(store, rec), nil
}

// OpenLatest returns the most recently deployed ledger.
func OpenLatest(ctx context.Context, store Store) (*Ledger, error) {
	rec, err := store.LatestLedger(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: none deployed", ErrUnknownLedger)
	}
	if err != nil {
		return nil, err
	}
	return fromRecord(store, rec), nil
}

// Resolve opens addr when set and the latest ledger otherwise.
func Resolve(ctx context.Context, store Store, addr string) (*Ledger, error) {
	if addr == "" {
		return OpenLatest(ctx, store)
	}
	a, err := ParseAddress(addr)
	if err != nil {
		return nil, err
	}
	return Open(ctx, store, a)
}

func fromRecord(store Store, rec *storage.LedgerRecord) *Ledger {
	return &Ledger{store: store, address: Address(rec.Address), fee: rec.Fee}
}

// Address returns the ledger's own address.
func (l *Ledger) Address() Address {
	return l.address
}

// Fee returns the registration fee in milli-tokens.
func (l *Ledger) Fee() int64 {
	return l.fee
}

// Register adds player to the board. The payment must match the fee exactly.
func (l *Ledger) Register(ctx context.Context, player Address, paid int64) error {
	if player.IsZero() {
		return errEmptyPlayerAddress
	}
	if paid != l.fee {
		return fmt.Errorf("%w: paid %s, fee is %s %s", ErrWrongFee, FormatAmount(paid), FormatAmount(l.fee), Symbol)
	}

	err := l.store.InsertLedgerPlayer(ctx, l.address.String(), player.String())
	if errors.Is(err, storage.ErrDuplicate) {
		return ErrAlreadyRegistered
	}
	return err
}

// UpdateScore records score for a registered player if it beats the stored
// high score. It reports whether the board changed.
func (l *Ledger) UpdateScore(ctx context.Context, player Address, score int) (bool, error) {
	if score < 0 {
		return false, ErrInvalidScore
	}
	updated, err := l.store.SetLedgerHighScore(ctx, l.address.String(), player.String(), score)
	if errors.Is(err, storage.ErrNotFound) {
		return false, ErrNotRegistered
	}
	return updated, err
}

// Player returns the stored high score and registration flag.
// Unknown addresses are reported as unregistered with score 0.
func (l *Ledger) Player(ctx context.Context, player Address) (PlayerInfo, error) {
	info := PlayerInfo{Address: player}
	rec, err := l.store.LedgerPlayer(ctx, l.address.String(), player.String())
	if errors.Is(err, storage.ErrNotFound) {
		return info, nil
	}
	if err != nil {
		return info, err
	}
	info.HighScore = rec.HighScore
	info.Registered = rec.Registered
	return info, nil
}

// Players lists every registered address in registration order.
func (l *Ledger) Players(ctx context.Context) ([]Address, error) {
	recs, err := l.store.LedgerPlayers(ctx, l.address.String())
	if err != nil {
		return nil, err
	}
	out := make([]Address, 0, len(recs))
	for _, r := range recs {
		out = append(out, Address(r.Address))
	}
	return out, nil
}

// Top returns the best n players by score, highest first.
// Equal scores keep registration order.
func (l *Ledger) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = DefaultTop
	}
	recs, err := l.store.LedgerTop(ctx, l.address.String(), n)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(recs))
	for i, r := range recs {
		entries = append(entries, Entry{Rank: i + 1, Player: Address(r.Address), Score: r.HighScore})
	}
	return entries, nil
}

func randomAddress() (Address, error) {
	var b [AddressLen]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("ledger: cannot generate address: %w", err)
	}
	return addressFromDigest(b[:]), nil
}
