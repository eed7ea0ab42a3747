package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tropimon/tropimon-stats/internal/metrics"
	"github.com/tropimon/tropimon-stats/internal/species"
	"github.com/tropimon/tropimon-stats/internal/store"
)

// Ingester drives one full reset-then-rebuild run from the log root into
// the store. It is a batch job: invoke Run once, on demand. Two concurrent
// runs against the same store are not supported; callers serialize them
// (see runlock).
type Ingester struct {
	store   *store.Store
	root    string
	logger  *slog.Logger
	metrics *metrics.Ingest
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithLogger sets the logger for the Ingester.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Ingester) { i.logger = logger }
}

// WithMetrics sets the Prometheus instruments for the Ingester.
func WithMetrics(m *metrics.Ingest) Option {
	return func(i *Ingester) { i.metrics = m }
}

// New creates an Ingester reading logs under root.
func New(st *store.Store, root string, opts ...Option) *Ingester {
	i := &Ingester{
		store:  st,
		root:   root,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Result tallies what one rebuild run did. Per-source and per-record
// failures are absorbed into these counts; they never fail the run.
type Result struct {
	Sources        int   `json:"sources"`
	SourcesSkipped int   `json:"sources_skipped"`
	Records        int64 `json:"records"`
	RecordsSkipped int64 `json:"records_skipped"`
	Players        int   `json:"players"`
	Species        int   `json:"species"`
}

// DiscoverSources lists the log sources under root: the legacy aggregate
// file plus every directory containing a catch-log file. Directories
// without one are skipped silently. An unreadable root yields only the
// legacy source; rebuilding from zero sources is valid and empties the
// store.
func DiscoverSources(root string) []Source {
	sources := []Source{NewLegacySource(filepath.Join(root, LegacyFileName))}

	entries, err := os.ReadDir(root)
	if err != nil {
		return sources
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name(), CatchLogFileName)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		sources = append(sources, NewCatchLogSource(path))
	}
	return sources
}

// Run performs one full rebuild: wipe the store, parse every source, and
// commit all new rows as a single unit. Source and record failures are
// absorbed with diagnostics; only store-level failures return an error, in
// which case nothing from this run is committed beyond the initial wipe.
func (i *Ingester) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{}

	rebuild, err := i.store.BeginRebuild(ctx)
	if err != nil {
		return nil, err
	}
	defer rebuild.Rollback()

	i.logger.Info("rebuild started", "root", i.root)

	for _, src := range DiscoverSources(i.root) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, err := src.Records()
		if err != nil {
			res.SourcesSkipped++
			if i.metrics != nil {
				i.metrics.SourcesSkipped.Inc()
			}
			i.logger.Warn("source skipped", "source", src.Name(), "error", err)
			continue
		}

		res.Sources++
		for _, rec := range records {
			if err := i.apply(ctx, rebuild, rec, res); err != nil {
				return nil, err
			}
		}
		i.logger.Debug("source processed", "source", src.Name(), "records", len(records))
	}

	res.Players = rebuild.Players()
	res.Species = rebuild.Species()

	if err := rebuild.Commit(); err != nil {
		return nil, err
	}

	if i.metrics != nil {
		i.metrics.Rebuilds.Inc()
		i.metrics.RebuildSeconds.Observe(time.Since(start).Seconds())
	}
	i.logger.Info("rebuild complete",
		"sources", res.Sources,
		"sources_skipped", res.SourcesSkipped,
		"records", res.Records,
		"records_skipped", res.RecordsSkipped,
		"players", res.Players,
		"species", res.Species,
		"elapsed", time.Since(start),
	)
	return res, nil
}

// apply is the format-agnostic merge point: it upserts the referenced
// entities and inserts the capture row. Records missing a player or
// species identifier are dropped; store errors propagate and fail the run.
func (i *Ingester) apply(ctx context.Context, rebuild *store.Rebuild, rec Record, res *Result) error {
	if rec.PlayerID == "" || strings.TrimSpace(rec.Species) == "" {
		res.RecordsSkipped++
		if i.metrics != nil {
			i.metrics.RecordsSkipped.Inc()
		}
		return nil
	}

	// Normalization is applied uniformly here, regardless of which format
	// produced the record, so casing and prefix variants of one species
	// collapse into a single row.
	key := species.Normalize(rec.Species)

	if err := rebuild.UpsertPlayer(ctx, rec.PlayerID, rec.Timestamp); err != nil {
		return err
	}

	legendary, mythical := species.Classify(key)
	if err := rebuild.UpsertSpecies(ctx, key, legendary, mythical); err != nil {
		return err
	}

	if err := rebuild.InsertCapture(ctx, rec.PlayerID, key, rec.Timestamp, rec.Shiny); err != nil {
		return err
	}

	res.Records++
	if i.metrics != nil {
		i.metrics.RecordsIngested.Inc()
	}
	return nil
}
