// Package simulator talks to the external discrete-event inventory simulator.
package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/andresuchdata/safetystock/internal/config"
	"github.com/andresuchdata/safetystock/internal/domain"
)

const (
	simulatePath     = "/inventory/simulate"
	maxErrorBodySize = 4 << 10
	defaultTimeout   = 30 * time.Second
	defaultInFlight  = 8
)

// Client calls the simulator over HTTP. Timeouts live here, on the transport,
// and there is no retry: a failed call must be re-triggered by the user.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sem        *semaphore.Weighted
}

// NewClient builds a client from the simulator configuration.
func NewClient(cfg config.SimulatorConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("simulator url must be provided")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	inFlight := cfg.MaxInFlight
	if inFlight <= 0 {
		inFlight = defaultInFlight
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		sem:        semaphore.NewWeighted(inFlight),
	}, nil
}

// Simulate sends one request and decodes the trace. Every failure is returned
// as a *domain.TransportFailure.
func (c *Client) Simulate(ctx context.Context, req domain.SimulationRequest) (domain.SimulationResult, error) {
	// Acquire semaphore
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return domain.SimulationResult{}, failure("acquire", 0, errors.Wrap(err, "could not acquire simulator slot"))
	}
	defer c.sem.Release(1)

	body, err := json.Marshal(req)
	if err != nil {
		return domain.SimulationResult{}, failure("encode", 0, errors.WithStack(err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+simulatePath, bytes.NewReader(body))
	if err != nil {
		return domain.SimulationResult{}, failure("build request", 0, errors.WithStack(err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.SimulationResult{}, failure("post", 0, errors.WithStack(err))
	}
	defer resp.Body.Close()

	log.Debug().
		Str("url", httpReq.URL.String()).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("simulator responded")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return domain.SimulationResult{}, failure("post", resp.StatusCode, errors.Errorf("unexpected response: %s", strings.TrimSpace(string(snippet))))
	}

	var result domain.SimulationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.SimulationResult{}, failure("decode", resp.StatusCode, errors.Wrap(err, "malformed simulator response"))
	}
	if err := result.Validate(); err != nil {
		return domain.SimulationResult{}, failure("decode", resp.StatusCode, errors.Wrap(err, "invalid simulator totals"))
	}
	if result.Stockouts == nil {
		result.Stockouts = []domain.StockoutEvent{}
	}

	return result, nil
}

func failure(op string, status int, err error) *domain.TransportFailure {
	return &domain.TransportFailure{Op: op, StatusCode: status, Err: err}
}
