// Package genlogs writes synthetic capture log trees in both supported
// source formats, for demos and manual load testing.
package genlogs

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tropimon/tropimon-stats/internal/ingest"
)

// Options controls the shape of the generated log tree.
type Options struct {
	// Players is the total number of synthetic players. Roughly half end
	// up in the legacy aggregate file, the rest in per-player folders.
	Players int

	// MaxCaptures is the per-player capture count upper bound.
	MaxCaptures int

	// Seed drives capture placement so reruns produce comparable trees.
	Seed int64
}

// speciesPool mixes casings and prefixes on purpose; ingestion must
// collapse the variants into canonical keys. Includes a few rare species
// so leaderboards have legendary and mythical rows.
var speciesPool = []string{
	"geodude",
	"Pidgey",
	"COBBLEMON:magikarp",
	"rattata",
	"zubat",
	"Eevee",
	"cobblemon:snorlax",
	"ditto",
	"articuno",
	"Rayquaza",
	"cobblemon:mew",
	"celebi",
}

type pokemonPayload struct {
	Species string `json:"Species"`
	Shiny   bool   `json:"Shiny"`
}

type legacyEntry struct {
	Pokemon          pokemonPayload `json:"pokemon"`
	CaptureTimestamp int64          `json:"captureTimestamp"`
}

type catchLogEntry struct {
	Player    string         `json:"player"`
	Timestamp int64          `json:"timestamp"`
	Datas     pokemonPayload `json:"datas"`
}

// Generate writes a log tree under root. The directory is created when
// missing; existing files with the generated names are overwritten.
func Generate(root string, opts Options) error {
	if opts.Players <= 0 {
		opts.Players = 10
	}
	if opts.MaxCaptures <= 0 {
		opts.MaxCaptures = 25
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create log root: %w", err)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	legacy := make(map[string][]legacyEntry)

	for i := 0; i < opts.Players; i++ {
		playerID := uuid.New().String()
		captures := 1 + rng.Intn(opts.MaxCaptures)

		if i%2 == 0 {
			entries := make([]legacyEntry, 0, captures)
			for c := 0; c < captures; c++ {
				entries = append(entries, legacyEntry{
					Pokemon:          randomPayload(rng),
					CaptureTimestamp: randomTimestamp(rng),
				})
			}
			legacy[playerID] = entries
			continue
		}

		entries := make([]catchLogEntry, 0, captures)
		for c := 0; c < captures; c++ {
			entries = append(entries, catchLogEntry{
				Player:    playerID,
				Timestamp: randomTimestamp(rng),
				Datas:     randomPayload(rng),
			})
		}
		if err := writeJSON(filepath.Join(root, playerID, ingest.CatchLogFileName), entries); err != nil {
			return err
		}
	}

	if len(legacy) > 0 {
		if err := writeJSON(filepath.Join(root, ingest.LegacyFileName), legacy); err != nil {
			return err
		}
	}
	return nil
}

func randomPayload(rng *rand.Rand) pokemonPayload {
	return pokemonPayload{
		Species: speciesPool[rng.Intn(len(speciesPool))],
		Shiny:   rng.Intn(20) == 0,
	}
}

func randomTimestamp(rng *rand.Rand) int64 {
	// Arbitrary window of recent-looking unix millisecond timestamps.
	const base = int64(1700000000000)
	return base + rng.Int63n(90*24*60*60*1000)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
