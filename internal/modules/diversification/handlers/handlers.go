// Package handlers provides HTTP handlers for diversification analytics.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/akentari/vigil/internal/domain"
	"github.com/akentari/vigil/internal/modules/diversification"
)

// Handler handles diversification HTTP requests.
type Handler struct {
	service *diversification.Service
	log     zerolog.Logger
}

// NewHandler creates a new diversification handler.
func NewHandler(service *diversification.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "diversification").Logger(),
	}
}

// HandleGetMetrics handles GET /api/diversification/portfolios/{id}/metrics
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "id")

	metrics, err := h.service.CalculateMetrics(portfolioID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, metrics)
}

// HandleGetConcentration handles GET /api/diversification/portfolios/{id}/concentration
func (h *Handler) HandleGetConcentration(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "id")

	analysis, err := h.service.AnalyzeConcentration(portfolioID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, analysis)
}

// HandleGetRecommendations handles GET /api/diversification/portfolios/{id}/recommendations
func (h *Handler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "id")

	recs, err := h.service.GenerateRecommendations(portfolioID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, recs)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPortfolioNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrEmptyPortfolio), errors.Is(err, domain.ErrInvalidConfiguration):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error().Err(err).Msg("Diversification request failed")
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
