package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all stress-test routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stress", func(r chi.Router) {
		r.Get("/scenarios", h.HandleListScenarios)
		r.Post("/scenarios", h.HandleRegisterScenario)

		r.Route("/portfolios/{id}", func(r chi.Router) {
			r.Post("/run/{scenario}", h.HandleRunStressTest)
			r.Post("/montecarlo", h.HandleRunMonteCarlo)
			r.Post("/backtest", h.HandleRunBacktest)
		})

		r.Get("/alerts", h.HandleGetAlerts)
		r.Get("/cache", h.HandleCacheStats)
		r.Delete("/cache", h.HandleClearCache)
		r.Get("/results", h.HandleRecentResults)
	})
}
