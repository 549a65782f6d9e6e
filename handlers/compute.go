package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"nfl-pickem-go/logging"
	"nfl-pickem-go/models"
	"nfl-pickem-go/services"
)

// WinnersComputer computes weekly winners on demand
type WinnersComputer interface {
	ComputeWeek(ctx context.Context, year int, season string, week int) (*services.ComputeOutcome, error)
	ComputeSeason(ctx context.Context, year int, season string) ([]services.WeekOutcome, error)
}

// WeeklyResultReader reads stored weekly results
type WeeklyResultReader interface {
	GetByKey(ctx context.Context, key string) (*models.WeeklyResult, error)
}

// LedgerReader reads the cumulative season leaderboard
type LedgerReader interface {
	Get(ctx context.Context, seasonKey string) (*models.SeasonLedger, error)
}

// Defaults supplies the year/season/week used when query params are omitted
type Defaults struct {
	Year   int
	Season string
	Week   int
}

// ComputeHandler exposes the on-demand compute trigger and result reads
type ComputeHandler struct {
	computer WinnersComputer
	results  WeeklyResultReader
	ledger   LedgerReader
	defaults Defaults
	logger   *logging.Logger
}

// NewComputeHandler creates a new compute handler
func NewComputeHandler(computer WinnersComputer, results WeeklyResultReader, ledger LedgerReader, defaults Defaults) *ComputeHandler {
	return &ComputeHandler{
		computer: computer,
		results:  results,
		ledger:   ledger,
		defaults: defaults,
		logger:   logging.WithPrefix("ComputeHandler"),
	}
}

// ComputeWeek handles GET /api/compute-week. Defaults are supplied for any
// omitted parameter; mode=backfill runs the bulk driver instead of a single
// week. The endpoint is public, so CORS is wide open like the rest of the
// trigger surface.
func (h *ComputeHandler) ComputeWeek(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	query := r.URL.Query()

	season := h.defaults.Season
	if value := query.Get("season"); value != "" {
		season = strings.ToLower(value)
	}
	year := h.defaults.Year
	if value := query.Get("year"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			year = parsed
		}
	}
	week := h.defaults.Week
	if value := query.Get("week"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			week = parsed
		}
	}

	if query.Get("mode") == "backfill" {
		outcomes, err := h.computer.ComputeSeason(r.Context(), year, season)
		if err != nil {
			h.logger.Errorf("Backfill failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"ok":    false,
				"error": err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":      true,
			"mode":    "backfill",
			"results": outcomes,
			"defaults": map[string]interface{}{
				"year":   year,
				"season": season,
			},
		})
		return
	}

	outcome, err := h.computer.ComputeWeek(r.Context(), year, season, week)
	if err != nil {
		h.logger.Errorf("Compute %d-%s-W%d failed: %v", year, season, week, err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}

	defaultsUsed := query.Get("week") == "" && query.Get("year") == "" && query.Get("season") == ""
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":           true,
		"computed":     outcome.Computed,
		"reason":       outcome.Reason,
		"winners":      outcome.Winners,
		"year":         year,
		"season":       season,
		"week":         week,
		"defaultsUsed": defaultsUsed,
	})
}

// GetWeeklyResult handles GET /api/weekly-results. Returns the stored result
// for the requested (defaulted) year/season/week, or 404 if that week has
// not been computed.
func (h *ComputeHandler) GetWeeklyResult(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	query := r.URL.Query()

	season := h.defaults.Season
	if value := query.Get("season"); value != "" {
		season = strings.ToLower(value)
	}
	year := h.defaults.Year
	if value := query.Get("year"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			year = parsed
		}
	}
	week := h.defaults.Week
	if value := query.Get("week"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			week = parsed
		}
	}

	key := models.WeekKey(year, season, week)
	result, err := h.results.GetByKey(r.Context(), key)
	if err != nil {
		h.logger.Errorf("Loading %s failed: %v", key, err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}
	if result == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"ok":    false,
			"error": "no result for " + key,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"result": result,
	})
}

// GetLeaderboard handles GET /api/leaderboard. Returns the cumulative season
// ledger for the requested (defaulted) year/season, or 404 if no week has
// been computed yet.
func (h *ComputeHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	query := r.URL.Query()

	season := h.defaults.Season
	if value := query.Get("season"); value != "" {
		season = strings.ToLower(value)
	}
	year := h.defaults.Year
	if value := query.Get("year"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			year = parsed
		}
	}

	key := models.SeasonKey(year, season)
	ledger, err := h.ledger.Get(r.Context(), key)
	if err != nil {
		h.logger.Errorf("Loading leaderboard %s failed: %v", key, err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}
	if ledger == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"ok":    false,
			"error": "no leaderboard for " + key,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":          true,
		"leaderboard": ledger,
	})
}

// Health handles GET /healthz
func (h *ComputeHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Errorf("Failed to encode response: %v", err)
	}
}
