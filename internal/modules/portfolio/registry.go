// Package portfolio provides the registry of position snapshots the
// portfolio-id based operations resolve against.
package portfolio

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/akentari/vigil/internal/domain"
)

// Registry maps portfolio ids to position snapshots. A reader-writer lock
// guards the map; lookups take the reader side so concurrent stress tests
// against the same or different portfolios never serialize on each other.
type Registry struct {
	mu         sync.RWMutex
	portfolios map[string][]domain.Position

	log zerolog.Logger
}

// NewRegistry creates an empty portfolio registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		portfolios: make(map[string][]domain.Position),
		log:        log.With().Str("component", "portfolio_registry").Logger(),
	}
}

// Register stores a snapshot under the given id, replacing any previous
// snapshot. Positions are copied; the registry never aliases caller memory.
func (r *Registry) Register(id string, positions []domain.Position) {
	snapshot := make([]domain.Position, len(positions))
	copy(snapshot, positions)

	r.mu.Lock()
	r.portfolios[id] = snapshot
	r.mu.Unlock()

	r.log.Debug().Str("portfolio_id", id).Int("positions", len(snapshot)).Msg("Registered portfolio")
}

// Get returns a copy of the snapshot for a portfolio id, or
// ErrPortfolioNotFound for an unregistered id.
func (r *Registry) Get(id string) ([]domain.Position, error) {
	r.mu.RLock()
	snapshot, ok := r.portfolios[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPortfolioNotFound, id)
	}

	out := make([]domain.Position, len(snapshot))
	copy(out, snapshot)
	return out, nil
}

// Remove deletes a snapshot. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.portfolios, id)
	r.mu.Unlock()
}

// IDs returns the registered portfolio ids.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.portfolios))
	for id := range r.portfolios {
		ids = append(ids, id)
	}
	return ids
}
