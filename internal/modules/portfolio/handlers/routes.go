package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio registry routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolios", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Put("/{id}", h.HandleRegister)
		r.Get("/{id}", h.HandleGet)
		r.Delete("/{id}", h.HandleRemove)
	})
}
