// Package scenario composes the analytical model with the external simulator
// for a single planning session.
package scenario

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/safetystock/internal/domain"
	"github.com/andresuchdata/safetystock/internal/metrics"
	"github.com/andresuchdata/safetystock/internal/reconcile"
	"github.com/andresuchdata/safetystock/internal/safetystock"
)

// ErrSuperseded is returned to the caller of a simulation whose response
// arrived after a newer request had been issued. The response is discarded.
var ErrSuperseded = errors.New("simulation superseded by a newer request")

// ErrNoSimulator is returned when the composer was built without a simulator.
var ErrNoSimulator = errors.New("no simulator configured")

// Simulator runs one discrete-event simulation.
type Simulator interface {
	Simulate(ctx context.Context, req domain.SimulationRequest) (domain.SimulationResult, error)
}

// Snapshot is a copy of the session state at one instant.
type Snapshot struct {
	Inputs     domain.ScenarioInputs     `json:"inputs"`
	Outputs    domain.AnalyticalOutputs  `json:"outputs"`
	Simulation *domain.SimulationOutcome `json:"simulation,omitempty"`
}

type inflight struct {
	id     string
	cancel context.CancelFunc
}

// Composer recomputes the analytical outputs whenever the inputs change and
// runs simulations on demand. At most one simulation is in flight; issuing a
// new one cancels and supersedes the previous.
type Composer struct {
	model   *safetystock.Model
	sim     Simulator
	metrics *metrics.Metrics
	now     func() time.Time

	mu      sync.Mutex
	inputs  domain.ScenarioInputs
	outputs domain.AnalyticalOutputs
	pending *inflight
	latest  *domain.SimulationOutcome
}

// NewComposer evaluates the initial inputs and returns a ready composer.
// sim and m may be nil.
func NewComposer(model *safetystock.Model, sim Simulator, m *metrics.Metrics, initial domain.ScenarioInputs) (*Composer, error) {
	if model == nil {
		var err error
		if model, err = safetystock.NewModel(safetystock.DefaultFloors()); err != nil {
			return nil, err
		}
	}

	c := &Composer{
		model:   model,
		sim:     sim,
		metrics: m,
		now:     time.Now,
	}
	if _, err := c.Update(initial); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the inputs and recomputes every output. On a domain error
// the previous state is kept. Concurrent updates commit in lock order.
func (c *Composer) Update(in domain.ScenarioInputs) (domain.AnalyticalOutputs, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out, err := c.model.Evaluate(in)
	c.metrics.ObserveEvaluation(err)
	if err != nil {
		return domain.AnalyticalOutputs{}, err
	}

	c.inputs = in
	c.outputs = out
	return out, nil
}

// Simulate validates req, sends it to the simulator and reconciles the
// response. A transport failure is recorded as a failed outcome and returned
// as a *domain.TransportFailure.
func (c *Composer) Simulate(ctx context.Context, req domain.SimulationRequest) (domain.SimulationOutcome, error) {
	if err := req.Validate(); err != nil {
		return domain.SimulationOutcome{}, err
	}
	if c.sim == nil {
		return domain.SimulationOutcome{}, ErrNoSimulator
	}

	id := uuid.NewString()
	simCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	requestedAt := c.now()

	c.mu.Lock()
	if c.pending != nil {
		log.Debug().Str("request_id", c.pending.id).Str("superseded_by", id).Msg("scenario: superseding simulation")
		c.pending.cancel()
	}
	c.pending = &inflight{id: id, cancel: cancel}
	c.latest = &domain.SimulationOutcome{
		RequestID:   id,
		Status:      domain.SimulationPending,
		Request:     req,
		RequestedAt: requestedAt,
	}
	c.mu.Unlock()

	result, err := c.sim.Simulate(simCtx, req)
	completedAt := c.now()
	elapsed := completedAt.Sub(requestedAt)

	c.mu.Lock()
	defer c.mu.Unlock()

	outcome := domain.SimulationOutcome{
		RequestID:   id,
		Request:     req,
		RequestedAt: requestedAt,
		CompletedAt: &completedAt,
	}

	if c.pending == nil || c.pending.id != id {
		outcome.Status = domain.SimulationSuperseded
		c.metrics.ObserveSimulation(outcome.Status.String(), elapsed, 0)
		return outcome, ErrSuperseded
	}
	c.pending = nil

	if err != nil {
		var tf *domain.TransportFailure
		if !errors.As(err, &tf) {
			tf = &domain.TransportFailure{Op: "simulate", Err: err}
		}
		outcome.Status = domain.SimulationFailed
		outcome.Error = tf.Error()
		c.latest = &outcome
		c.metrics.ObserveSimulation(outcome.Status.String(), elapsed, 0)
		log.Warn().Err(err).Str("request_id", id).Msg("scenario: simulation failed")
		return outcome, tf
	}

	report := reconcile.Reconcile(req.DemandProfile, result)
	outcome.Status = domain.SimulationSucceeded
	outcome.Report = &report
	c.latest = &outcome
	c.metrics.ObserveSimulation(outcome.Status.String(), elapsed, report.DroppedStockouts)

	if report.DroppedStockouts > 0 {
		log.Warn().Str("request_id", id).Int("dropped", report.DroppedStockouts).Msg("scenario: malformed stockout entries dropped")
	}

	return outcome, nil
}

// Cancel aborts the in-flight simulation, if any.
func (c *Composer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return
	}
	c.pending.cancel()
	if c.latest != nil && c.latest.RequestID == c.pending.id {
		c.latest.Status = domain.SimulationSuperseded
	}
	c.pending = nil
}

// Snapshot returns the current inputs, outputs and latest simulation outcome.
func (c *Composer) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{Inputs: c.inputs, Outputs: c.outputs}
	if c.latest != nil {
		latest := *c.latest
		snap.Simulation = &latest
	}
	return snap
}
