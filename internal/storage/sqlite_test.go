package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := store.SaveScore("apples", "0xabc", 12); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()

	high, err := store.HighScore("apples")
	if err != nil || high != 12 {
		t.Errorf("HighScore after reopen = %d, %v; expected 12", high, err)
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	for _, sc := range []int{100, 50, 200} {
		if _, err := store.SaveScore("apples", "0xaaa", sc); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	// Different game
	if _, err := store.SaveScore("other", "0xaaa", 500); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	scores, err := store.TopScores("apples", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(scores))
	}

	// Should be sorted descending
	if scores[0].Score != 200 || scores[1].Score != 100 || scores[2].Score != 50 {
		t.Errorf("Scores not in expected order: %v", scores)
	}
	if scores[0].Player != "0xaaa" || scores[0].Submitted {
		t.Errorf("unexpected entry: %+v", scores[0])
	}
	if scores[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be populated")
	}
}

func TestStoreTopScoresLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		store.SaveScore("test", "", (i+1)*100) //nolint:errcheck
	}

	scores, err := store.TopScores("test", 3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores with limit, got %d", len(scores))
	}
	if scores[0].Score != 500 || scores[1].Score != 400 || scores[2].Score != 300 {
		t.Errorf("Scores not in expected order: %v", scores)
	}
}

func TestStoreMarkSubmitted(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveScore("apples", "0xaaa", 9)
	if err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}
	if err := store.MarkSubmitted(id); err != nil {
		t.Fatalf("MarkSubmitted() failed: %v", err)
	}

	history, err := store.PlayerHistory("apples", "0xaaa", 10)
	if err != nil {
		t.Fatalf("PlayerHistory() failed: %v", err)
	}
	if len(history) != 1 || !history[0].Submitted {
		t.Errorf("expected a submitted entry, got %+v", history)
	}

	if err := store.MarkSubmitted(id + 100); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkSubmitted(unknown) = %v, expected ErrNotFound", err)
	}
}

func TestStorePlayerHistory(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore("apples", "0xaaa", 1) //nolint:errcheck
	store.SaveScore("apples", "0xbbb", 2) //nolint:errcheck
	store.SaveScore("apples", "0xaaa", 3) //nolint:errcheck
	store.SaveScore("apples", "0xaaa", 4) //nolint:errcheck

	history, err := store.PlayerHistory("apples", "0xaaa", 2)
	if err != nil {
		t.Fatalf("PlayerHistory() failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	// Newest first
	if history[0].Score != 4 || history[1].Score != 3 {
		t.Errorf("history order = %d, %d; expected 4, 3", history[0].Score, history[1].Score)
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openTestStore(t)

	high, err := store.HighScore("apples")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected high score of 0 for empty game, got %d", high)
	}

	store.SaveScore("apples", "", 100) //nolint:errcheck
	store.SaveScore("apples", "", 300) //nolint:errcheck
	store.SaveScore("apples", "", 200) //nolint:errcheck

	high, err = store.HighScore("apples")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 300 {
		t.Errorf("Expected high score of 300, got %d", high)
	}
}

func TestStoreClearScores(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore("apples", "", 100) //nolint:errcheck
	store.SaveScore("apples", "", 200) //nolint:errcheck
	store.SaveScore("other", "", 300)  //nolint:errcheck

	if err := store.ClearScores("apples"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	if scores, _ := store.TopScores("apples", 10); len(scores) != 0 {
		t.Errorf("Expected 0 scores after clear, got %d", len(scores))
	}
	if scores, _ := store.TopScores("other", 10); len(scores) != 1 {
		t.Errorf("Other game scores should not be affected by clearing apples")
	}
}

func TestStoreAllScores(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 20; i++ {
		store.SaveScore("test", "", i*10) //nolint:errcheck
	}

	scores, err := store.AllScores("test")
	if err != nil {
		t.Fatalf("AllScores() failed: %v", err)
	}
	if len(scores) != 20 {
		t.Errorf("Expected 20 scores, got %d", len(scores))
	}
}

func TestStoreStats(t *testing.T) {
	store := openTestStore(t)

	id, _ := store.SaveScore("apples", "0xaaa", 10)
	store.SaveScore("apples", "0xaaa", 20) //nolint:errcheck
	store.SaveScore("apples", "0xbbb", 60) //nolint:errcheck
	store.MarkSubmitted(id)                //nolint:errcheck

	gs, err := store.GetGameStats("apples")
	if err != nil {
		t.Fatalf("GetGameStats() failed: %v", err)
	}
	if gs.GamesCount != 3 || gs.HighScore != 60 || gs.TotalScore != 90 || gs.AvgScore != 30 {
		t.Errorf("unexpected game stats: %+v", gs)
	}
	if gs.LastPlayed.IsZero() {
		t.Error("LastPlayed should be set")
	}

	ps, err := store.GetPlayerStats("apples", "0xaaa")
	if err != nil {
		t.Fatalf("GetPlayerStats() failed: %v", err)
	}
	if ps.GamesCount != 2 || ps.HighScore != 20 || ps.AvgScore != 15 || ps.Submitted != 1 {
		t.Errorf("unexpected player stats: %+v", ps)
	}

	empty, err := store.GetPlayerStats("apples", "0xnobody")
	if err != nil {
		t.Fatalf("GetPlayerStats() for unknown player failed: %v", err)
	}
	if empty.GamesCount != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("unknown player should have empty stats: %+v", empty)
	}

	all, err := store.GetAllGamesStats()
	if err != nil {
		t.Fatalf("GetAllGamesStats() failed: %v", err)
	}
	if all["apples"] == nil || all["apples"].GamesCount != 3 {
		t.Errorf("unexpected all-games stats: %+v", all)
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestLedgerRows(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if _, err := store.LatestLedger(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LatestLedger on empty db = %v, expected ErrNotFound", err)
	}

	if err := store.CreateLedger(ctx, "0x01", 100); err != nil {
		t.Fatalf("CreateLedger() failed: %v", err)
	}
	if err := store.CreateLedger(ctx, "0x02", 250); err != nil {
		t.Fatalf("CreateLedger() failed: %v", err)
	}
	if err := store.CreateLedger(ctx, "0x01", 100); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate CreateLedger = %v, expected ErrDuplicate", err)
	}

	latest, err := store.LatestLedger(ctx)
	if err != nil || latest.Address != "0x02" || latest.Fee != 250 {
		t.Errorf("LatestLedger = %+v, %v", latest, err)
	}

	l, err := store.Ledger(ctx, "0x01")
	if err != nil || l.Fee != 100 || l.DeployedAt.IsZero() {
		t.Errorf("Ledger(0x01) = %+v, %v", l, err)
	}
	if _, err := store.Ledger(ctx, "0x99"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Ledger(unknown) = %v, expected ErrNotFound", err)
	}
}

func TestLedgerPlayers(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	store.CreateLedger(ctx, "0xL", 100) //nolint:errcheck

	for _, p := range []string{"0xa", "0xb", "0xc"} {
		if err := store.InsertLedgerPlayer(ctx, "0xL", p); err != nil {
			t.Fatalf("InsertLedgerPlayer(%s) failed: %v", p, err)
		}
	}
	if err := store.InsertLedgerPlayer(ctx, "0xL", "0xa"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate InsertLedgerPlayer = %v, expected ErrDuplicate", err)
	}
	// The same address may join another ledger
	if err := store.InsertLedgerPlayer(ctx, "0xOther", "0xa"); err != nil {
		t.Errorf("InsertLedgerPlayer into another ledger failed: %v", err)
	}

	updated, err := store.SetLedgerHighScore(ctx, "0xL", "0xb", 30)
	if err != nil || !updated {
		t.Fatalf("SetLedgerHighScore(30) = %v, %v", updated, err)
	}
	updated, err = store.SetLedgerHighScore(ctx, "0xL", "0xb", 20)
	if err != nil || updated {
		t.Errorf("lower score should not update: %v, %v", updated, err)
	}
	updated, err = store.SetLedgerHighScore(ctx, "0xL", "0xb", 30)
	if err != nil || updated {
		t.Errorf("equal score should not update: %v, %v", updated, err)
	}
	store.SetLedgerHighScore(ctx, "0xL", "0xc", 30) //nolint:errcheck

	if _, err := store.SetLedgerHighScore(ctx, "0xL", "0xnobody", 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetLedgerHighScore(unknown) = %v, expected ErrNotFound", err)
	}

	p, err := store.LedgerPlayer(ctx, "0xL", "0xb")
	if err != nil || p.HighScore != 30 || !p.Registered {
		t.Errorf("LedgerPlayer(0xb) = %+v, %v", p, err)
	}

	all, err := store.LedgerPlayers(ctx, "0xL")
	if err != nil || len(all) != 3 || all[0].Address != "0xa" || all[2].Address != "0xc" {
		t.Errorf("LedgerPlayers = %+v, %v", all, err)
	}

	top, err := store.LedgerTop(ctx, "0xL", 2)
	if err != nil {
		t.Fatalf("LedgerTop() failed: %v", err)
	}
	// Ties keep registration order
	if len(top) != 2 || top[0].Address != "0xb" || top[1].Address != "0xc" {
		t.Errorf("LedgerTop = %+v", top)
	}
}
