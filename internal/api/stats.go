package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tropimon/tropimon-stats/internal/app"
)

// Default limits matching the original service's query defaults.
const (
	defaultBoardLimit   = 10
	defaultSpeciesLimit = 50
)

// handleSummary handles GET /api/summary.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.stats.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleSpeciesDetail handles GET /api/species/{species}. Any casing or
// prefix variant of the species identifier resolves to the same detail.
func (s *Server) handleSpeciesDetail(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "species")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "species is required", nil)
		return
	}

	detail, err := s.stats.SpeciesDetail(r.Context(), raw)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handlePlayerBoard builds a handler for one anonymized player leaderboard.
func (s *Server) handlePlayerBoard(query func(context.Context, int) ([]app.PlayerRank, error), defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := parseLimit(r, defaultLimit)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit", nil)
			return
		}

		board, err := query(r.Context(), limit)
		if errors.Is(err, app.ErrInvalidLimit) {
			writeError(w, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error", err)
			return
		}
		writeJSON(w, http.StatusOK, board)
	}
}

// handleSpeciesBoard builds a handler for one species leaderboard.
func (s *Server) handleSpeciesBoard(query func(context.Context, int) ([]app.SpeciesRank, error), defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := parseLimit(r, defaultLimit)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit", nil)
			return
		}

		board, err := query(r.Context(), limit)
		if errors.Is(err, app.ErrInvalidLimit) {
			writeError(w, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error", err)
			return
		}
		writeJSON(w, http.StatusOK, board)
	}
}

// parseLimit reads the limit query parameter, falling back to def when
// absent. Non-numeric values are an error; negative values are passed
// through so the service layer rejects them uniformly.
func parseLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
