// Package handlers provides HTTP handlers for stress-test operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/akentari/vigil/internal/domain"
	"github.com/akentari/vigil/internal/modules/scenarios"
	"github.com/akentari/vigil/internal/modules/stress"
)

// Handler handles stress-test HTTP requests.
type Handler struct {
	service *stress.Service
	log     zerolog.Logger
}

// NewHandler creates a new stress-test handler.
func NewHandler(service *stress.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "stress").Logger(),
	}
}

// HandleListScenarios handles GET /api/stress/scenarios
func (h *Handler) HandleListScenarios(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, h.service.ListScenarios())
}

// HandleRegisterScenario handles POST /api/stress/scenarios
func (h *Handler) HandleRegisterScenario(w http.ResponseWriter, r *http.Request) {
	var sc scenarios.Scenario
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		http.Error(w, "Invalid scenario payload", http.StatusBadRequest)
		return
	}
	if err := h.service.RegisterScenario(sc); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, map[string]string{"name": sc.Name, "status": "registered"})
}

// HandleRunStressTest handles POST /api/stress/portfolios/{id}/run/{scenario}
func (h *Handler) HandleRunStressTest(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "id")
	scenario := chi.URLParam(r, "scenario")

	result, err := h.service.RunStressTestForPortfolio(r.Context(), portfolioID, scenario)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, result)
}

// HandleRunMonteCarlo handles POST /api/stress/portfolios/{id}/montecarlo
func (h *Handler) HandleRunMonteCarlo(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "id")

	var config stress.MonteCarloConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, "Invalid simulation config", http.StatusBadRequest)
		return
	}

	results, err := h.service.RunMonteCarloForPortfolio(r.Context(), portfolioID, config)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, map[string]interface{}{
		"iterations": len(results),
		"results":    results,
	})
}

// HandleRunBacktest handles POST /api/stress/portfolios/{id}/backtest
func (h *Handler) HandleRunBacktest(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "id")

	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, "Invalid start date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err != nil {
		http.Error(w, "Invalid end date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	result, err := h.service.RunBacktestForPortfolio(r.Context(), portfolioID, start, end)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, result)
}

// HandleGetAlerts handles GET /api/stress/alerts
func (h *Handler) HandleGetAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.Alerts(r.URL.Query().Get("position"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, alerts)
}

// HandleCacheStats handles GET /api/stress/cache
func (h *Handler) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, h.service.CacheStats())
}

// HandleClearCache handles DELETE /api/stress/cache
func (h *Handler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	h.service.ClearCache()
	h.writeData(w, map[string]string{"status": "cleared"})
}

// HandleRecentResults handles GET /api/stress/results
func (h *Handler) HandleRecentResults(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	results, err := h.service.RecentResults(limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, results)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPortfolioNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrEmptyPortfolio), errors.Is(err, domain.ErrInvalidConfiguration):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error().Err(err).Msg("Stress-test request failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeData(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
