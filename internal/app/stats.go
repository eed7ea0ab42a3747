// Package app provides the read-only aggregation services consumed by the
// HTTP layer. Raw player identifiers never cross this package boundary:
// every player-identifying value is anonymized here, at final output time.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/tropimon/tropimon-stats/internal/anonymize"
	"github.com/tropimon/tropimon-stats/internal/species"
	"github.com/tropimon/tropimon-stats/internal/store"
)

// ErrInvalidLimit is returned for negative leaderboard limits.
var ErrInvalidLimit = errors.New("limit must be non-negative")

// StatsStore defines the store operations the stats service needs.
type StatsStore interface {
	Summary(ctx context.Context) (*store.Summary, error)
	TopCaptures(ctx context.Context, limit int) ([]store.PlayerCount, error)
	TopShiny(ctx context.Context, limit int) ([]store.PlayerCount, error)
	TopLegendary(ctx context.Context, limit int) ([]store.PlayerCount, error)
	TopMythical(ctx context.Context, limit int) ([]store.PlayerCount, error)
	TopSpecies(ctx context.Context, limit int) ([]store.SpeciesCount, error)
	TopShinySpecies(ctx context.Context, limit int) ([]store.SpeciesCount, error)
	SpeciesDetail(ctx context.Context, key string) (*store.SpeciesDetail, error)
}

// PlayerRank is one anonymized leaderboard entry.
type PlayerRank struct {
	Player string `json:"player"`
	Count  int64  `json:"count"`
}

// SpeciesRank is one species leaderboard entry.
type SpeciesRank struct {
	Species string `json:"species"`
	Count   int64  `json:"count"`
}

// SpeciesDetail holds per-species totals and the top-10 player leaderboard.
type SpeciesDetail struct {
	Species    string       `json:"species"`
	Total      int64        `json:"total"`
	Shiny      int64        `json:"shiny"`
	TopPlayers []PlayerRank `json:"top_players"`
}

// StatsService computes the fixed set of read-only reports. Stateless;
// safe for concurrent use. Queries are independent reads and are not
// isolated from a concurrently running rebuild.
type StatsService struct {
	Store StatsStore
}

// Summary returns store-wide capture counts.
func (s *StatsService) Summary(ctx context.Context) (*store.Summary, error) {
	return s.Store.Summary(ctx)
}

// TopCaptures returns the per-player capture leaderboard, anonymized.
func (s *StatsService) TopCaptures(ctx context.Context, limit int) ([]PlayerRank, error) {
	return s.playerBoard(ctx, limit, s.Store.TopCaptures)
}

// TopShiny returns the per-player shiny-capture leaderboard, anonymized.
func (s *StatsService) TopShiny(ctx context.Context, limit int) ([]PlayerRank, error) {
	return s.playerBoard(ctx, limit, s.Store.TopShiny)
}

// TopLegendary returns the per-player legendary-capture leaderboard.
func (s *StatsService) TopLegendary(ctx context.Context, limit int) ([]PlayerRank, error) {
	return s.playerBoard(ctx, limit, s.Store.TopLegendary)
}

// TopMythical returns the per-player mythical-capture leaderboard.
func (s *StatsService) TopMythical(ctx context.Context, limit int) ([]PlayerRank, error) {
	return s.playerBoard(ctx, limit, s.Store.TopMythical)
}

// TopSpecies returns the most-captured non-legendary, non-mythical species.
func (s *StatsService) TopSpecies(ctx context.Context, limit int) ([]SpeciesRank, error) {
	return s.speciesBoard(ctx, limit, s.Store.TopSpecies)
}

// TopShinySpecies returns the most shiny-captured species.
func (s *StatsService) TopShinySpecies(ctx context.Context, limit int) ([]SpeciesRank, error) {
	return s.speciesBoard(ctx, limit, s.Store.TopShinySpecies)
}

// SpeciesDetail returns totals and the top-10 player leaderboard for one
// species. The identifier is normalized here, so any casing or prefix
// variant of a species resolves to the same detail.
func (s *StatsService) SpeciesDetail(ctx context.Context, rawSpecies string) (*SpeciesDetail, error) {
	key := species.Normalize(rawSpecies)

	detail, err := s.Store.SpeciesDetail(ctx, key)
	if err != nil {
		return nil, err
	}

	top := make([]PlayerRank, 0, len(detail.TopPlayers))
	for _, pc := range detail.TopPlayers {
		top = append(top, PlayerRank{Player: anonymize.Label(pc.PlayerID), Count: pc.Count})
	}

	return &SpeciesDetail{
		Species:    detail.SpeciesID,
		Total:      detail.Total,
		Shiny:      detail.Shiny,
		TopPlayers: top,
	}, nil
}

func (s *StatsService) playerBoard(ctx context.Context, limit int, query func(context.Context, int) ([]store.PlayerCount, error)) ([]PlayerRank, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	counts, err := query(ctx, limit)
	if err != nil {
		return nil, err
	}

	// Labels can collide across distinct players; the grouping above is
	// by raw id, so collisions never merge counts.
	out := make([]PlayerRank, 0, len(counts))
	for _, pc := range counts {
		out = append(out, PlayerRank{Player: anonymize.Label(pc.PlayerID), Count: pc.Count})
	}
	return out, nil
}

func (s *StatsService) speciesBoard(ctx context.Context, limit int, query func(context.Context, int) ([]store.SpeciesCount, error)) ([]SpeciesRank, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	counts, err := query(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]SpeciesRank, 0, len(counts))
	for _, sc := range counts {
		out = append(out, SpeciesRank{Species: sc.SpeciesID, Count: sc.Count})
	}
	return out, nil
}
