// Package handlers provides HTTP handlers for portfolio registration.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/akentari/vigil/internal/domain"
	"github.com/akentari/vigil/internal/modules/portfolio"
)

// Handler handles portfolio registry HTTP requests.
type Handler struct {
	registry *portfolio.Registry
	log      zerolog.Logger
}

// NewHandler creates a new portfolio handler.
func NewHandler(registry *portfolio.Registry, log zerolog.Logger) *Handler {
	return &Handler{
		registry: registry,
		log:      log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleRegister handles PUT /api/portfolios/{id}
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var positions []domain.Position
	if err := json.NewDecoder(r.Body).Decode(&positions); err != nil {
		http.Error(w, "Invalid positions payload", http.StatusBadRequest)
		return
	}
	if len(positions) == 0 {
		http.Error(w, "Portfolio must contain at least one position", http.StatusBadRequest)
		return
	}

	// Derive collateral value and health factor from the submitted price so
	// callers only need to supply quantity, price and debt.
	for i, pos := range positions {
		positions[i] = pos.Reprice(pos.CurrentPrice)
	}

	h.registry.Register(id, positions)
	h.writeData(w, map[string]interface{}{
		"portfolio_id": id,
		"positions":    len(positions),
	})
}

// HandleGet handles GET /api/portfolios/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	positions, err := h.registry.Get(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, map[string]interface{}{
		"portfolio_id": id,
		"total_value":  domain.TotalValue(positions),
		"positions":    positions,
	})
}

// HandleList handles GET /api/portfolios
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, h.registry.IDs())
}

// HandleRemove handles DELETE /api/portfolios/{id}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.registry.Remove(id)
	h.writeData(w, map[string]string{"portfolio_id": id, "status": "removed"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPortfolioNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.log.Error().Err(err).Msg("Portfolio request failed")
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
