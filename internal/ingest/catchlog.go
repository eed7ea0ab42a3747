package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// CatchLogFileName is the capture log each per-player folder contains.
const CatchLogFileName = "POKEMON_CATCH.json"

// catchLogSource reads the per-player folder format: one JSON array per
// file, each element carrying the player UUID, a timestamp, and a nested
// data payload with the species name and shiny flag.
type catchLogSource struct {
	path string
}

// NewCatchLogSource returns a Source for the catch-log file at path.
func NewCatchLogSource(path string) Source {
	return &catchLogSource{path: path}
}

func (s *catchLogSource) Name() string { return s.path }

// catchLogEntry is one capture in the per-player format, e.g.
//
//	{"player": "<uuid>", "timestamp": 100, "datas": {"Species": "mew", "Shiny": false}}
type catchLogEntry struct {
	Player    string `json:"player"`
	Timestamp int64  `json:"timestamp"`
	Datas     struct {
		Species string `json:"Species"`
		Shiny   bool   `json:"Shiny"`
	} `json:"datas"`
}

func (s *catchLogSource) Records() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	var entries []catchLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnparseable, err)
	}

	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, Record{
			PlayerID:  e.Player,
			Species:   e.Datas.Species,
			Timestamp: e.Timestamp,
			Shiny:     e.Datas.Shiny,
		})
	}
	return records, nil
}
