// Package ingest rebuilds the entity store from on-disk capture logs.
//
// Two source formats are supported and merged into one rebuild: the legacy
// aggregate file keyed by player UUID, and per-player folders each holding
// one catch-log file. Every format parses into the canonical Record; the
// merge point is the only code path that touches the store.
package ingest

import "errors"

// Record is one capture event in canonical form, independent of the source
// format it was parsed from.
type Record struct {
	// PlayerID is the raw player UUID. Records without one are dropped.
	PlayerID string

	// Species is the raw species string as written by the game; it is
	// normalized at the merge point, never by the parsers.
	Species string

	// Timestamp is the source-reported event time. Zero when absent;
	// not validated.
	Timestamp int64

	// Shiny defaults to false when absent from the source.
	Shiny bool
}

// Source is one discovered log source.
type Source interface {
	// Name identifies the source in diagnostics.
	Name() string

	// Records parses the whole source. On error the source contributes
	// zero records; there is no partial-file recovery.
	Records() ([]Record, error)
}

// Sentinel errors classifying why a source contributed nothing.
var (
	// ErrSourceUnavailable means the log file or expected subpath is missing.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSourceUnparseable means the file exists but is not valid JSON of
	// the expected shape.
	ErrSourceUnparseable = errors.New("source unparseable")
)
