package store

import (
	"context"
	"fmt"
)

// SpeciesDetailTopPlayers is the fixed per-species leaderboard size.
const SpeciesDetailTopPlayers = 10

// Summary holds store-wide capture counts.
type Summary struct {
	TotalCaptures  int64 `json:"total_captures"`
	TotalShiny     int64 `json:"total_shiny"`
	TotalLegendary int64 `json:"total_legendaries"`
	TotalMythical  int64 `json:"total_mythicals"`
}

// PlayerCount is one leaderboard row keyed by raw player id.
// The raw id never leaves the process; callers anonymize before output.
type PlayerCount struct {
	PlayerID string
	Count    int64
}

// SpeciesCount is one leaderboard row keyed by canonical species key.
type SpeciesCount struct {
	SpeciesID string
	Count     int64
}

// SpeciesDetail holds per-species totals and its player leaderboard.
type SpeciesDetail struct {
	SpeciesID  string
	Total      int64
	Shiny      int64
	TopPlayers []PlayerCount
}

// Summary returns counts over all captures. The legendary and mythical
// totals join to the species rarity flags fixed at rebuild time.
func (s *Store) Summary(ctx context.Context) (*Summary, error) {
	const query = `
	SELECT
		COUNT(c.id),
		COALESCE(SUM(c.is_shiny), 0),
		COALESCE(SUM(s.is_legendary), 0),
		COALESCE(SUM(s.is_mythical), 0)
	FROM captures c
	JOIN species s ON s.id = c.species_id
	`

	sum := &Summary{}
	err := s.db.QueryRowContext(ctx, query).
		Scan(&sum.TotalCaptures, &sum.TotalShiny, &sum.TotalLegendary, &sum.TotalMythical)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	return sum, nil
}

// Leaderboard queries order by count descending with the raw id ascending
// as the tie-break, so equal counts rank deterministically.

// TopCaptures returns the per-player capture leaderboard.
func (s *Store) TopCaptures(ctx context.Context, limit int) ([]PlayerCount, error) {
	const query = `
	SELECT player_id, COUNT(*) AS n
	FROM captures
	GROUP BY player_id
	ORDER BY n DESC, player_id ASC
	LIMIT ?
	`
	return s.queryPlayerCounts(ctx, query, limit)
}

// TopShiny returns the per-player leaderboard over shiny captures only.
func (s *Store) TopShiny(ctx context.Context, limit int) ([]PlayerCount, error) {
	const query = `
	SELECT player_id, COUNT(*) AS n
	FROM captures
	WHERE is_shiny = 1
	GROUP BY player_id
	ORDER BY n DESC, player_id ASC
	LIMIT ?
	`
	return s.queryPlayerCounts(ctx, query, limit)
}

// TopLegendary returns the per-player leaderboard over legendary captures.
func (s *Store) TopLegendary(ctx context.Context, limit int) ([]PlayerCount, error) {
	const query = `
	SELECT c.player_id, COUNT(*) AS n
	FROM captures c
	JOIN species s ON s.id = c.species_id
	WHERE s.is_legendary = 1
	GROUP BY c.player_id
	ORDER BY n DESC, c.player_id ASC
	LIMIT ?
	`
	return s.queryPlayerCounts(ctx, query, limit)
}

// TopMythical returns the per-player leaderboard over mythical captures.
func (s *Store) TopMythical(ctx context.Context, limit int) ([]PlayerCount, error) {
	const query = `
	SELECT c.player_id, COUNT(*) AS n
	FROM captures c
	JOIN species s ON s.id = c.species_id
	WHERE s.is_mythical = 1
	GROUP BY c.player_id
	ORDER BY n DESC, c.player_id ASC
	LIMIT ?
	`
	return s.queryPlayerCounts(ctx, query, limit)
}

// TopSpecies returns the most-captured species, excluding legendary and
// mythical species. Together with TopLegendary and TopMythical this
// partitions all captures with no overlap.
func (s *Store) TopSpecies(ctx context.Context, limit int) ([]SpeciesCount, error) {
	const query = `
	SELECT c.species_id, COUNT(*) AS n
	FROM captures c
	JOIN species s ON s.id = c.species_id
	WHERE s.is_legendary = 0 AND s.is_mythical = 0
	GROUP BY c.species_id
	ORDER BY n DESC, c.species_id ASC
	LIMIT ?
	`
	return s.querySpeciesCounts(ctx, query, limit)
}

// TopShinySpecies returns the most-captured species over shiny captures
// only, with no rarity filter.
func (s *Store) TopShinySpecies(ctx context.Context, limit int) ([]SpeciesCount, error) {
	const query = `
	SELECT species_id, COUNT(*) AS n
	FROM captures
	WHERE is_shiny = 1
	GROUP BY species_id
	ORDER BY n DESC, species_id ASC
	LIMIT ?
	`
	return s.querySpeciesCounts(ctx, query, limit)
}

// SpeciesDetail returns totals and the top-10 player leaderboard for one
// species. The key must already be canonical. A species with no captures
// yields zero totals and an empty leaderboard, not an error.
func (s *Store) SpeciesDetail(ctx context.Context, key string) (*SpeciesDetail, error) {
	detail := &SpeciesDetail{SpeciesID: key}

	const totals = `
	SELECT COUNT(id), COALESCE(SUM(is_shiny), 0)
	FROM captures
	WHERE species_id = ?
	`
	if err := s.db.QueryRowContext(ctx, totals, key).Scan(&detail.Total, &detail.Shiny); err != nil {
		return nil, fmt.Errorf("query species totals: %w", err)
	}

	const top = `
	SELECT player_id, COUNT(*) AS n
	FROM captures
	WHERE species_id = ?
	GROUP BY player_id
	ORDER BY n DESC, player_id ASC
	LIMIT ?
	`
	rows, err := s.queryPlayerCountsArgs(ctx, top, key, SpeciesDetailTopPlayers)
	if err != nil {
		return nil, err
	}
	detail.TopPlayers = rows

	return detail, nil
}

func (s *Store) queryPlayerCounts(ctx context.Context, query string, limit int) ([]PlayerCount, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return s.queryPlayerCountsArgs(ctx, query, limit)
}

func (s *Store) queryPlayerCountsArgs(ctx context.Context, query string, args ...any) ([]PlayerCount, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query player counts: %w", err)
	}
	defer rows.Close()

	out := []PlayerCount{}
	for rows.Next() {
		var pc PlayerCount
		if err := rows.Scan(&pc.PlayerID, &pc.Count); err != nil {
			return nil, fmt.Errorf("scan player count: %w", err)
		}
		out = append(out, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (s *Store) querySpeciesCounts(ctx context.Context, query string, limit int) ([]SpeciesCount, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query species counts: %w", err)
	}
	defer rows.Close()

	out := []SpeciesCount{}
	for rows.Next() {
		var sc SpeciesCount
		if err := rows.Scan(&sc.SpeciesID, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan species count: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// CountPlayers returns the number of player rows.
func (s *Store) CountPlayers(ctx context.Context) (int64, error) {
	return s.countTable(ctx, `SELECT COUNT(*) FROM players`)
}

// CountSpecies returns the number of species rows.
func (s *Store) CountSpecies(ctx context.Context) (int64, error) {
	return s.countTable(ctx, `SELECT COUNT(*) FROM species`)
}

// CountCaptures returns the number of capture rows.
func (s *Store) CountCaptures(ctx context.Context) (int64, error) {
	return s.countTable(ctx, `SELECT COUNT(*) FROM captures`)
}

func (s *Store) countTable(ctx context.Context, query string) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return count, nil
}
