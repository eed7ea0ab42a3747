package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// openTestStore creates a store backed by a temp database.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.sqlite")
	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return st
}

// testCapture describes one capture to seed, with pre-computed rarity flags.
type testCapture struct {
	player    string
	species   string
	legendary bool
	mythical  bool
	ts        int64
	shiny     bool
}

// seedCaptures runs a full rebuild inserting the given captures.
func seedCaptures(t *testing.T, st *Store, captures []testCapture) {
	t.Helper()

	ctx := context.Background()
	rebuild, err := st.BeginRebuild(ctx)
	if err != nil {
		t.Fatalf("BeginRebuild: %v", err)
	}

	for _, c := range captures {
		if err := rebuild.UpsertPlayer(ctx, c.player, c.ts); err != nil {
			t.Fatalf("UpsertPlayer(%q): %v", c.player, err)
		}
		if err := rebuild.UpsertSpecies(ctx, c.species, c.legendary, c.mythical); err != nil {
			t.Fatalf("UpsertSpecies(%q): %v", c.species, err)
		}
		if err := rebuild.InsertCapture(ctx, c.player, c.species, c.ts, c.shiny); err != nil {
			t.Fatalf("InsertCapture: %v", err)
		}
	}

	if err := rebuild.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.sqlite")

	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}

	journalMode, err := st.journalMode()
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %q, want %q", journalMode, "wal")
	}
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.sqlite")

	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	seedCaptures(t, st, []testCapture{
		{player: "p1", species: "cobblemon:geodude", ts: 100},
	})
	st.Close()

	// Migrations are idempotent; reopening keeps the data.
	st, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer st.Close()

	count, err := st.CountCaptures(context.Background())
	if err != nil {
		t.Fatalf("CountCaptures: %v", err)
	}
	if count != 1 {
		t.Errorf("captures after reopen = %d, want 1", count)
	}
}

func TestPing(t *testing.T) {
	st := openTestStore(t)
	defer st.Close()

	if err := st.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestVacuum(t *testing.T) {
	st := openTestStore(t)
	defer st.Close()

	seedCaptures(t, st, []testCapture{
		{player: "p1", species: "cobblemon:geodude", ts: 1},
	})

	if err := st.Vacuum(context.Background()); err != nil {
		t.Errorf("Vacuum: %v", err)
	}

	count, err := st.CountCaptures(context.Background())
	if err != nil {
		t.Fatalf("CountCaptures: %v", err)
	}
	if count != 1 {
		t.Errorf("captures after vacuum = %d, want 1", count)
	}
}
