package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all risk metrics routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/risk", func(r chi.Router) {
		r.Route("/portfolios/{id}", func(r chi.Router) {
			r.Get("/metrics", h.HandleGetMetrics)
			r.Get("/var", h.HandleGetVaR)
			r.Get("/components", h.HandleGetComponentVaR)
		})

		r.Get("/correlations", h.HandleGetCorrelations)
		r.Put("/correlations", h.HandleSetCorrelations)
	})
}
