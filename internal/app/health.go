package app

import (
	"context"
	"fmt"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResult is the health check response.
type HealthResult struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HealthService implements the health check.
type HealthService struct {
	Store   Pinger
	Version string
}

// Handle returns the service health. A store that cannot be reached is a
// hard failure, matching the query-side contract.
func (s HealthService) Handle(ctx context.Context) (HealthResult, error) {
	if s.Store != nil {
		if err := s.Store.Ping(ctx); err != nil {
			return HealthResult{}, fmt.Errorf("store unreachable: %w", err)
		}
	}
	return HealthResult{Status: "ok", Version: s.Version}, nil
}
