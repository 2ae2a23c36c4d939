package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all price archive routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/history", func(r chi.Router) {
		r.Get("/", h.HandleListAssets)
		r.Put("/{asset}", h.HandlePutSeries)
		r.Get("/{asset}", h.HandleGetSeries)
	})
}
