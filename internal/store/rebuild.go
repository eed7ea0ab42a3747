package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Rebuild is one reset-then-reload run against the store. It wraps a single
// write transaction plus the two in-run dedupe caches, so an identifier
// already seen earlier in the run attaches to the pending row without a
// redundant existence check. A Rebuild must not be shared across goroutines,
// and at most one Rebuild may run against a store at a time; concurrent runs
// must be prevented by the caller (see runlock).
type Rebuild struct {
	tx *sql.Tx

	// players maps raw player id to the highest capture timestamp seen in
	// this run. Membership doubles as the creation dedupe check.
	players map[string]int64

	// species holds the canonical keys created in this run.
	species map[string]struct{}

	captures int64
	done     bool
}

// BeginRebuild wipes the store and opens the rebuild transaction.
//
// The wipe deletes all captures, then all species, then all players, and
// commits as its own unit before any new data is written. Readers racing
// the rebuild can therefore observe an empty or partially repopulated
// store; read-your-writes across a rebuild boundary is not guaranteed.
func (s *Store) BeginRebuild(ctx context.Context) (*Rebuild, error) {
	if err := s.reset(ctx); err != nil {
		return nil, fmt.Errorf("reset store: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin rebuild: %w", err)
	}

	return &Rebuild{
		tx:      tx,
		players: make(map[string]int64),
		species: make(map[string]struct{}),
	}, nil
}

// reset deletes all rows in dependency order within one transaction.
func (s *Store) reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM captures`,
		`DELETE FROM species`,
		`DELETE FROM players`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// UpsertPlayer creates the player on first sight in this run, or bumps
// last_seen_timestamp when ts exceeds the highest value seen so far.
func (r *Rebuild) UpsertPlayer(ctx context.Context, id string, ts int64) error {
	if r.done {
		return ErrRebuildClosed
	}
	if id == "" {
		return fmt.Errorf("%w: player id is required", ErrInvalidEntity)
	}

	last, seen := r.players[id]
	if !seen {
		const query = `INSERT INTO players (id, last_seen_timestamp) VALUES (?, ?)`
		if _, err := r.tx.ExecContext(ctx, query, id, ts); err != nil {
			return fmt.Errorf("insert player: %w", err)
		}
		r.players[id] = ts
		return nil
	}

	if ts > last {
		const query = `UPDATE players SET last_seen_timestamp = ? WHERE id = ?`
		if _, err := r.tx.ExecContext(ctx, query, ts, id); err != nil {
			return fmt.Errorf("update player: %w", err)
		}
		r.players[id] = ts
	}
	return nil
}

// UpsertSpecies creates the species on first sight in this run. The rarity
// flags are fixed at creation and never recomputed afterward; later calls
// with the same key are no-ops regardless of the flags passed.
func (r *Rebuild) UpsertSpecies(ctx context.Context, key string, legendary, mythical bool) error {
	if r.done {
		return ErrRebuildClosed
	}
	if key == "" {
		return fmt.Errorf("%w: species key is required", ErrInvalidEntity)
	}

	if _, seen := r.species[key]; seen {
		return nil
	}

	const query = `INSERT INTO species (id, is_legendary, is_mythical) VALUES (?, ?, ?)`
	if _, err := r.tx.ExecContext(ctx, query, key, boolToInt(legendary), boolToInt(mythical)); err != nil {
		return fmt.Errorf("insert species: %w", err)
	}
	r.species[key] = struct{}{}
	return nil
}

// InsertCapture records one capture event. Both referenced entities must
// have been upserted earlier in this run.
func (r *Rebuild) InsertCapture(ctx context.Context, playerID, speciesKey string, ts int64, shiny bool) error {
	if r.done {
		return ErrRebuildClosed
	}
	if _, ok := r.players[playerID]; !ok {
		return fmt.Errorf("%w: capture references unknown player %q", ErrInvalidEntity, playerID)
	}
	if _, ok := r.species[speciesKey]; !ok {
		return fmt.Errorf("%w: capture references unknown species %q", ErrInvalidEntity, speciesKey)
	}

	const query = `INSERT INTO captures (player_id, species_id, timestamp, is_shiny) VALUES (?, ?, ?, ?)`
	if _, err := r.tx.ExecContext(ctx, query, playerID, speciesKey, ts, boolToInt(shiny)); err != nil {
		return fmt.Errorf("insert capture: %w", err)
	}
	r.captures++
	return nil
}

// Captures returns the number of capture rows inserted so far in this run.
func (r *Rebuild) Captures() int64 { return r.captures }

// Players returns the number of distinct players seen so far in this run.
func (r *Rebuild) Players() int { return len(r.players) }

// Species returns the number of distinct species seen so far in this run.
func (r *Rebuild) Species() int { return len(r.species) }

// Commit commits all rows written during the run as a single unit.
func (r *Rebuild) Commit() error {
	if r.done {
		return ErrRebuildClosed
	}
	r.done = true
	if err := r.tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	return nil
}

// Rollback abandons the run. Safe to call after Commit.
func (r *Rebuild) Rollback() error {
	if r.done {
		return nil
	}
	r.done = true
	return r.tx.Rollback()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
