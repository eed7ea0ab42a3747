package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// LegacyFileName is the aggregate log file written by old server versions.
const LegacyFileName = "pokemon_logs.json"

// legacySource reads the legacy aggregate format: a single JSON object
// mapping player UUIDs to ordered arrays of capture entries.
type legacySource struct {
	path string
}

// NewLegacySource returns a Source for the legacy aggregate file at path.
func NewLegacySource(path string) Source {
	return &legacySource{path: path}
}

func (s *legacySource) Name() string { return s.path }

// legacyEntry is one capture in the legacy format, e.g.
//
//	{"pokemon": {"Species": "geodude", "Shiny": true}, "captureTimestamp": 100}
type legacyEntry struct {
	Pokemon struct {
		Species string `json:"Species"`
		Shiny   bool   `json:"Shiny"`
	} `json:"pokemon"`
	CaptureTimestamp int64 `json:"captureTimestamp"`
}

func (s *legacySource) Records() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	var byPlayer map[string][]legacyEntry
	if err := json.Unmarshal(data, &byPlayer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnparseable, err)
	}

	var records []Record
	for playerID, entries := range byPlayer {
		for _, e := range entries {
			records = append(records, Record{
				PlayerID:  playerID,
				Species:   e.Pokemon.Species,
				Timestamp: e.CaptureTimestamp,
				Shiny:     e.Pokemon.Shiny,
			})
		}
	}
	return records, nil
}
