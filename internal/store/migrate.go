package store

import (
	"context"
	"fmt"
)

// migrate runs database migrations.
func (s *Store) migrate(ctx context.Context) error {
	if err := s.createPlayersTable(ctx); err != nil {
		return err
	}
	if err := s.createSpeciesTable(ctx); err != nil {
		return err
	}
	if err := s.createCapturesTable(ctx); err != nil {
		return err
	}
	return nil
}

func (s *Store) createPlayersTable(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS players (
		id                  TEXT PRIMARY KEY,
		last_seen_timestamp INTEGER
	);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create players table: %w", err)
	}
	return nil
}

func (s *Store) createSpeciesTable(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS species (
		id           TEXT PRIMARY KEY,
		is_legendary INTEGER NOT NULL DEFAULT 0,
		is_mythical  INTEGER NOT NULL DEFAULT 0
	);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create species table: %w", err)
	}
	return nil
}

func (s *Store) createCapturesTable(ctx context.Context) error {
	// AUTOINCREMENT keeps capture ids monotonic and never reused, even
	// across the destructive reset at the start of each rebuild.
	const schema = `
	CREATE TABLE IF NOT EXISTS captures (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		player_id  TEXT NOT NULL REFERENCES players(id),
		species_id TEXT NOT NULL REFERENCES species(id),
		timestamp  INTEGER NOT NULL,
		is_shiny   INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_captures_player ON captures(player_id);
	CREATE INDEX IF NOT EXISTS idx_captures_species ON captures(species_id);
	CREATE INDEX IF NOT EXISTS idx_captures_shiny ON captures(is_shiny);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create captures table: %w", err)
	}
	return nil
}
