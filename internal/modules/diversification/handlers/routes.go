package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all diversification routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/diversification", func(r chi.Router) {
		r.Route("/portfolios/{id}", func(r chi.Router) {
			r.Get("/metrics", h.HandleGetMetrics)
			r.Get("/concentration", h.HandleGetConcentration)
			r.Get("/recommendations", h.HandleGetRecommendations)
		})
	})
}
