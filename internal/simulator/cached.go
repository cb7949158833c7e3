package simulator

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/safetystock/internal/cache"
	"github.com/andresuchdata/safetystock/internal/domain"
)

// Backend is anything that can run a simulation.
type Backend interface {
	Simulate(ctx context.Context, req domain.SimulationRequest) (domain.SimulationResult, error)
}

// Cached serves seeded requests from a replay cache before calling next.
type Cached struct {
	next  Backend
	cache cache.SimulationCache
}

func NewCached(next Backend, cacheImpl cache.SimulationCache) *Cached {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopSimulationCache()
	}
	return &Cached{next: next, cache: cacheImpl}
}

func (c *Cached) Simulate(ctx context.Context, req domain.SimulationRequest) (domain.SimulationResult, error) {
	if result, ok, err := c.cache.Get(ctx, req); err == nil && ok {
		log.Debug().Msg("simulator: replay served from cache")
		return result, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("simulator: cache get failed")
	}

	result, err := c.next.Simulate(ctx, req)
	if err != nil {
		return domain.SimulationResult{}, err
	}

	if err := c.cache.Set(ctx, req, result); err != nil {
		log.Warn().Err(err).Msg("simulator: cache set failed")
	}

	return result, nil
}

// Invalidate drops every cached replay, for example after the simulator's
// model changed.
func (c *Cached) Invalidate(ctx context.Context) error {
	if err := c.cache.InvalidateAll(ctx); err != nil {
		return err
	}
	log.Info().Msg("simulator: replay cache cleared")
	return nil
}
