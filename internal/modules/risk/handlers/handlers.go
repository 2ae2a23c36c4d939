// Package handlers provides HTTP handlers for risk metrics operations.
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
	"github.com/akentari/vigil/internal/modules/portfolio"
	"github.com/akentari/vigil/internal/modules/risk"
)

// Handler handles risk metrics HTTP requests.
type Handler struct {
	service  *risk.Service
	registry *portfolio.Registry
	log      zerolog.Logger
}

// NewHandler creates a new risk metrics handler.
func NewHandler(service *risk.Service, registry *portfolio.Registry, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		registry: registry,
		log:      log.With().Str("handler", "risk").Logger(),
	}
}

// HandleGetMetrics handles GET /api/risk/portfolios/{id}/metrics
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "id")

	metrics, err := h.service.CalculateRiskMetrics(portfolioID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, metrics)
}

// HandleGetVaR handles GET /api/risk/portfolios/{id}/var
func (h *Handler) HandleGetVaR(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "id")

	positions, err := h.registry.Get(portfolioID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	breakdowns, err := h.service.VaRBreakdowns(positions)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, map[string]interface{}{
		"portfolio_value": domain.TotalValue(positions),
		"breakdowns":      breakdowns,
	})
}

// HandleGetComponentVaR handles GET /api/risk/portfolios/{id}/components
func (h *Handler) HandleGetComponentVaR(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "id")

	confidence := 0.95
	if raw := r.URL.Query().Get("confidence"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 || parsed >= 1 {
			http.Error(w, "Invalid confidence, expected a value in (0, 1)", http.StatusBadRequest)
			return
		}
		confidence = parsed
	}

	positions, err := h.registry.Get(portfolioID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	components, err := h.service.ComponentVaR(positions, confidence)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, map[string]interface{}{
		"confidence": confidence,
		"components": components,
	})
}

// HandleSetCorrelations handles PUT /api/risk/correlations
func (h *Handler) HandleSetCorrelations(w http.ResponseWriter, r *http.Request) {
	var matrix domain.CorrelationMatrix
	if err := json.NewDecoder(r.Body).Decode(&matrix); err != nil {
		http.Error(w, "Invalid correlation matrix payload", http.StatusBadRequest)
		return
	}
	if err := h.service.SetCorrelationMatrix(&matrix); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, map[string]string{"status": "updated"})
}

// HandleGetCorrelations handles GET /api/risk/correlations
func (h *Handler) HandleGetCorrelations(w http.ResponseWriter, r *http.Request) {
	matrix := h.service.CorrelationMatrix()
	if matrix == nil {
		http.Error(w, "No correlation matrix configured", http.StatusNotFound)
		return
	}
	h.writeData(w, matrix)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPortfolioNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrEmptyPortfolio), errors.Is(err, domain.ErrInvalidConfiguration):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error().Err(err).Msg("Risk request failed")
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
