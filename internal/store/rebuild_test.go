package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func TestBeginRebuild_WipesPriorContent(t *testing.T) {
	st := openTestStore(t)
	defer st.Close()

	ctx := context.Background()
	seedCaptures(t, st, []testCapture{
		{player: "p1", species: "cobblemon:geodude", ts: 100},
		{player: "p2", species: "cobblemon:mew", mythical: true, ts: 200},
	})

	// A rebuild that commits nothing leaves the store empty: counts are a
	// function of the current sources only, never of prior store state.
	rebuild, err := st.BeginRebuild(ctx)
	if err != nil {
		t.Fatalf("BeginRebuild: %v", err)
	}
	if err := rebuild.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	for name, count := range map[string]func(context.Context) (int64, error){
		"players":  st.CountPlayers,
		"species":  st.CountSpecies,
		"captures": st.CountCaptures,
	} {
		n, err := count(ctx)
		if err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if n != 0 {
			t.Errorf("%s after empty rebuild = %d, want 0", name, n)
		}
	}
}

func TestBeginRebuild_ResetVisibleBeforeCommit(t *testing.T) {
	st := openTestStore(t)
	defer st.Close()

	ctx := context.Background()
	seedCaptures(t, st, []testCapture{
		{player: "p1", species: "cobblemon:geodude", ts: 100},
	})

	// The wipe commits as its own unit before any new rows are written, so
	// a reader racing the rebuild can observe the empty store.
	rebuild, err := st.BeginRebuild(ctx)
	if err != nil {
		t.Fatalf("BeginRebuild: %v", err)
	}
	defer rebuild.Rollback()

	count, err := st.CountCaptures(ctx)
	if err != nil {
		t.Fatalf("CountCaptures: %v", err)
	}
	if count != 0 {
		t.Errorf("captures mid-rebuild = %d, want 0 (reset committed first)", count)
	}
}

func TestUpsertPlayer_LastSeenBump(t *testing.T) {
	st := openTestStore(t)
	defer st.Close()

	ctx := context.Background()
	rebuild, err := st.BeginRebuild(ctx)
	if err != nil {
		t.Fatalf("BeginRebuild: %v", err)
	}

	// last_seen only moves forward: 100, then 50 (ignored), then 200.
	for _, ts := range []int64{100, 50, 200} {
		if err := rebuild.UpsertPlayer(ctx, "p1", ts); err != nil {
			t.Fatalf("UpsertPlayer(ts=%d): %v", ts, err)
		}
	}
	if err := rebuild.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	var lastSeen sql.NullInt64
	if err := st.db.QueryRowContext(ctx,
		`SELECT last_seen_timestamp FROM players WHERE id = ?`, "p1",
	).Scan(&lastSeen); err != nil {
		t.Fatalf("query last_seen: %v", err)
	}
	if !lastSeen.Valid || lastSeen.Int64 != 200 {
		t.Errorf("last_seen_timestamp = %+v, want 200", lastSeen)
	}

	players, err := st.CountPlayers(ctx)
	if err != nil {
		t.Fatalf("CountPlayers: %v", err)
	}
	if players != 1 {
		t.Errorf("players = %d, want 1 (dedupe cache must prevent duplicates)", players)
	}
}

func TestUpsertSpecies_FlagsFixedAtCreation(t *testing.T) {
	st := openTestStore(t)
	defer st.Close()

	ctx := context.Background()
	rebuild, err := st.BeginRebuild(ctx)
	if err != nil {
		t.Fatalf("BeginRebuild: %v", err)
	}

	if err := rebuild.UpsertSpecies(ctx, "cobblemon:mew", false, true); err != nil {
		t.Fatalf("first UpsertSpecies: %v", err)
	}
	// Later upserts are no-ops regardless of the flags passed.
	if err := rebuild.UpsertSpecies(ctx, "cobblemon:mew", true, false); err != nil {
		t.Fatalf("second UpsertSpecies: %v", err)
	}
	if err := rebuild.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	var legendary, mythical int
	if err := st.db.QueryRowContext(ctx,
		`SELECT is_legendary, is_mythical FROM species WHERE id = ?`, "cobblemon:mew",
	).Scan(&legendary, &mythical); err != nil {
		t.Fatalf("query species: %v", err)
	}
	if legendary != 0 || mythical != 1 {
		t.Errorf("flags = (%d, %d), want (0, 1): fixed at creation", legendary, mythical)
	}
}

func TestInsertCapture_RequiresUpsertedEntities(t *testing.T) {
	st := openTestStore(t)
	defer st.Close()

	ctx := context.Background()
	rebuild, err := st.BeginRebuild(ctx)
	if err != nil {
		t.Fatalf("BeginRebuild: %v", err)
	}
	defer rebuild.Rollback()

	err = rebuild.InsertCapture(ctx, "ghost", "cobblemon:geodude", 1, false)
	if !errors.Is(err, ErrInvalidEntity) {
		t.Errorf("capture with unknown player: got %v, want ErrInvalidEntity", err)
	}

	if err := rebuild.UpsertPlayer(ctx, "p1", 1); err != nil {
		t.Fatalf("UpsertPlayer: %v", err)
	}
	err = rebuild.InsertCapture(ctx, "p1", "cobblemon:geodude", 1, false)
	if !errors.Is(err, ErrInvalidEntity) {
		t.Errorf("capture with unknown species: got %v, want ErrInvalidEntity", err)
	}
}

func TestRebuild_EmptyIdentifiersRejected(t *testing.T) {
	st := openTestStore(t)
	defer st.Close()

	ctx := context.Background()
	rebuild, err := st.BeginRebuild(ctx)
	if err != nil {
		t.Fatalf("BeginRebuild: %v", err)
	}
	defer rebuild.Rollback()

	if err := rebuild.UpsertPlayer(ctx, "", 1); !errors.Is(err, ErrInvalidEntity) {
		t.Errorf("empty player id: got %v, want ErrInvalidEntity", err)
	}
	if err := rebuild.UpsertSpecies(ctx, "", false, false); !errors.Is(err, ErrInvalidEntity) {
		t.Errorf("empty species key: got %v, want ErrInvalidEntity", err)
	}
}

func TestRebuild_ClosedAfterCommit(t *testing.T) {
	st := openTestStore(t)
	defer st.Close()

	ctx := context.Background()
	rebuild, err := st.BeginRebuild(ctx)
	if err != nil {
		t.Fatalf("BeginRebuild: %v", err)
	}
	if err := rebuild.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := rebuild.Commit(); !errors.Is(err, ErrRebuildClosed) {
		t.Errorf("second Commit: got %v, want ErrRebuildClosed", err)
	}
	if err := rebuild.UpsertPlayer(ctx, "p1", 1); !errors.Is(err, ErrRebuildClosed) {
		t.Errorf("UpsertPlayer after Commit: got %v, want ErrRebuildClosed", err)
	}
	if err := rebuild.Rollback(); err != nil {
		t.Errorf("Rollback after Commit should be a no-op, got %v", err)
	}
}

func TestRebuild_RollbackDiscardsRun(t *testing.T) {
	st := openTestStore(t)
	defer st.Close()

	ctx := context.Background()
	rebuild, err := st.BeginRebuild(ctx)
	if err != nil {
		t.Fatalf("BeginRebuild: %v", err)
	}
	if err := rebuild.UpsertPlayer(ctx, "p1", 1); err != nil {
		t.Fatalf("UpsertPlayer: %v", err)
	}
	if err := rebuild.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	players, err := st.CountPlayers(ctx)
	if err != nil {
		t.Fatalf("CountPlayers: %v", err)
	}
	if players != 0 {
		t.Errorf("players after rollback = %d, want 0", players)
	}
}

func TestCaptureIDsNeverReused(t *testing.T) {
	st := openTestStore(t)
	defer st.Close()

	ctx := context.Background()
	seedCaptures(t, st, []testCapture{
		{player: "p1", species: "cobblemon:geodude", ts: 1},
		{player: "p1", species: "cobblemon:geodude", ts: 2},
	})
	seedCaptures(t, st, []testCapture{
		{player: "p1", species: "cobblemon:geodude", ts: 3},
	})

	// The second rebuild wiped the first two rows; its row's id must still
	// come after theirs.
	var maxID int64
	if err := st.db.QueryRowContext(ctx, `SELECT MAX(id) FROM captures`).Scan(&maxID); err != nil {
		t.Fatalf("query max id: %v", err)
	}
	if maxID < 3 {
		t.Errorf("max capture id = %d, want >= 3 (ids are never reused)", maxID)
	}
}

func TestRebuild_Tallies(t *testing.T) {
	st := openTestStore(t)
	defer st.Close()

	ctx := context.Background()
	rebuild, err := st.BeginRebuild(ctx)
	if err != nil {
		t.Fatalf("BeginRebuild: %v", err)
	}
	defer rebuild.Rollback()

	for _, c := range []testCapture{
		{player: "p1", species: "cobblemon:geodude", ts: 1},
		{player: "p1", species: "cobblemon:pidgey", ts: 2},
		{player: "p2", species: "cobblemon:geodude", ts: 3},
	} {
		if err := rebuild.UpsertPlayer(ctx, c.player, c.ts); err != nil {
			t.Fatalf("UpsertPlayer: %v", err)
		}
		if err := rebuild.UpsertSpecies(ctx, c.species, false, false); err != nil {
			t.Fatalf("UpsertSpecies: %v", err)
		}
		if err := rebuild.InsertCapture(ctx, c.player, c.species, c.ts, false); err != nil {
			t.Fatalf("InsertCapture: %v", err)
		}
	}

	if got := rebuild.Captures(); got != 3 {
		t.Errorf("Captures() = %d, want 3", got)
	}
	if got := rebuild.Players(); got != 2 {
		t.Errorf("Players() = %d, want 2", got)
	}
	if got := rebuild.Species(); got != 2 {
		t.Errorf("Species() = %d, want 2", got)
	}
}
