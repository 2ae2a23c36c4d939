// Package handlers provides HTTP handlers for the price archive.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/akentari/vigil/internal/domain"
	"github.com/akentari/vigil/internal/modules/history"
)

// Handler handles price archive HTTP requests.
type Handler struct {
	archive *history.Archive
	log     zerolog.Logger
}

// NewHandler creates a new price archive handler.
func NewHandler(archive *history.Archive, log zerolog.Logger) *Handler {
	return &Handler{
		archive: archive,
		log:     log.With().Str("handler", "history").Logger(),
	}
}

// HandleListAssets handles GET /api/history
func (h *Handler) HandleListAssets(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, h.archive.Assets())
}

// HandlePutSeries handles PUT /api/history/{asset}
func (h *Handler) HandlePutSeries(w http.ResponseWriter, r *http.Request) {
	asset := chi.URLParam(r, "asset")

	var points []domain.PricePoint
	if err := json.NewDecoder(r.Body).Decode(&points); err != nil {
		http.Error(w, "Invalid price series payload", http.StatusBadRequest)
		return
	}
	if len(points) == 0 {
		http.Error(w, "Price series must contain at least one point", http.StatusBadRequest)
		return
	}

	h.archive.Put(asset, points)
	h.writeData(w, map[string]interface{}{
		"asset":  asset,
		"points": len(points),
	})
}

// HandleGetSeries handles GET /api/history/{asset}
func (h *Handler) HandleGetSeries(w http.ResponseWriter, r *http.Request) {
	asset := chi.URLParam(r, "asset")

	points, err := h.archive.GetPriceHistory(asset)
	if err != nil {
		h.log.Error().Err(err).Str("asset", asset).Msg("Failed to read price history")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	h.writeData(w, map[string]interface{}{
		"asset":      asset,
		"points":     points,
		"volatility": h.archive.EstimateVolatility(asset),
	})
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
