package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Vacuum reclaims space freed by the destructive reset that starts every
// rebuild. Intended to run after a successful rebuild commit.
func (s *Store) Vacuum(ctx context.Context) error {
	start := time.Now()

	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}

	slog.Debug("vacuum completed", "elapsed", time.Since(start))
	return nil
}
