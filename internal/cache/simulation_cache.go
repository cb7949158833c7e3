package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/safetystock/internal/config"
	"github.com/andresuchdata/safetystock/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	simulationKeyPrefix     = "whatif:simulation"
	simulationScanBatchSize = 100
	defaultSimulationTTL    = time.Hour
)

// SimulationCache stores simulator responses for seeded requests. A seeded
// request replays deterministically, so the same request always maps to the
// same result. Unseeded requests are never cached.
type SimulationCache interface {
	Get(ctx context.Context, req domain.SimulationRequest) (domain.SimulationResult, bool, error)
	Set(ctx context.Context, req domain.SimulationRequest, result domain.SimulationResult) error
	InvalidateAll(ctx context.Context) error
}

type redisSimulationCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSimulationCache struct{}

func NewSimulationCache(cfg config.CacheConfig) (SimulationCache, error) {
	if !cfg.Enabled {
		return &noopSimulationCache{}, nil
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(cfg.SimulationTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultSimulationTTL
	}

	return NewRedisSimulationCache(client, ttl), nil
}

// NewRedisSimulationCache wraps an existing client.
func NewRedisSimulationCache(client *redis.Client, ttl time.Duration) SimulationCache {
	return &redisSimulationCache{client: client, ttl: ttl}
}

func NewNoopSimulationCache() SimulationCache {
	return &noopSimulationCache{}
}

func (c *redisSimulationCache) Get(ctx context.Context, req domain.SimulationRequest) (domain.SimulationResult, bool, error) {
	key, ok := SimulationKey(req)
	if !ok {
		return domain.SimulationResult{}, false, nil
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return domain.SimulationResult{}, false, nil
	}
	if err != nil {
		return domain.SimulationResult{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result domain.SimulationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return domain.SimulationResult{}, false, fmt.Errorf("decode simulation cache: %w", err)
	}

	return result, true, nil
}

func (c *redisSimulationCache) Set(ctx context.Context, req domain.SimulationRequest, result domain.SimulationResult) error {
	key, ok := SimulationKey(req)
	if !ok {
		return nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode simulation cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisSimulationCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, simulationKeyPrefix, simulationScanBatchSize)
}

func (n *noopSimulationCache) Get(ctx context.Context, req domain.SimulationRequest) (domain.SimulationResult, bool, error) {
	return domain.SimulationResult{}, false, nil
}

func (n *noopSimulationCache) Set(ctx context.Context, req domain.SimulationRequest, result domain.SimulationResult) error {
	return nil
}

func (n *noopSimulationCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// SimulationKey returns the cache key of a request, or false when the request
// has no seed and therefore cannot be replayed.
func SimulationKey(req domain.SimulationRequest) (string, bool) {
	if req.Seed == nil {
		return "", false
	}
	return fmt.Sprintf("%s:%s", simulationKeyPrefix, simulationRequestHash(req)), true
}

func simulationRequestHash(req domain.SimulationRequest) string {
	demand := make([]string, len(req.DemandProfile))
	for i, d := range req.DemandProfile {
		demand[i] = formatKeyFloat(d)
	}

	// Order matters: the demand profile is a time series.
	parts := []string{
		"demand=" + strings.Join(demand, ","),
		"initial_inventory=" + formatKeyFloat(req.InitialInventory),
		"reorder_point=" + formatKeyFloat(req.ReorderPoint),
		"order_quantity=" + formatKeyFloat(req.OrderQuantity),
		"lead_time=" + strconv.Itoa(req.LeadTime),
		"seed=" + strconv.FormatInt(*req.Seed, 10),
	}

	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func formatKeyFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
