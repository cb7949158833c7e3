// Package sweep compares the analytical recommendation with simulated replays
// across a range of target service levels.
package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/safetystock/internal/domain"
	"github.com/andresuchdata/safetystock/internal/reconcile"
	"github.com/andresuchdata/safetystock/internal/safetystock"
)

const (
	DefaultWorkers   = 4
	DefaultMaxPoints = 50
)

// Simulator runs one discrete-event simulation.
type Simulator interface {
	Simulate(ctx context.Context, req domain.SimulationRequest) (domain.SimulationResult, error)
}

// Request describes a sweep. Simulation is a template: its reorder point is
// replaced at each point by the one the model recommends. Leave it empty to
// skip the simulator.
type Request struct {
	Inputs        domain.ScenarioInputs    `json:"inputs"`
	ServiceLevels []float64                `json:"service_levels"`
	Simulation    domain.SimulationRequest `json:"simulation"`
}

// Point is the outcome for one target service level. A failed simulation is
// reported in Error and does not abort the sweep.
type Point struct {
	ServiceLevel float64                      `json:"service_level"`
	Outputs      domain.AnalyticalOutputs     `json:"outputs"`
	Report       *domain.ReconciliationReport `json:"report,omitempty"`
	Error        string                       `json:"error,omitempty"`
}

// Runner fans sweep points out to a fixed pool of workers.
type Runner struct {
	model     *safetystock.Model
	sim       Simulator
	workers   int
	maxPoints int
}

// NewRunner builds a runner. sim may be nil, in which case only the
// analytical outputs are computed.
func NewRunner(model *safetystock.Model, sim Simulator, workers, maxPoints int) *Runner {
	if model == nil {
		model, _ = safetystock.NewModel(safetystock.DefaultFloors())
	}
	if workers < 1 {
		workers = DefaultWorkers
	}
	if maxPoints < 1 {
		maxPoints = DefaultMaxPoints
	}
	return &Runner{model: model, sim: sim, workers: workers, maxPoints: maxPoints}
}

// Run evaluates every point and returns them in request order.
func (r *Runner) Run(ctx context.Context, req Request) ([]Point, error) {
	if err := r.validate(req); err != nil {
		return nil, err
	}

	start := time.Now()
	points := make([]Point, len(req.ServiceLevels))
	jobChan := make(chan int, len(req.ServiceLevels))
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range jobChan {
				points[idx] = r.runPoint(ctx, req, req.ServiceLevels[idx])
				if points[idx].Error != "" {
					log.Warn().
						Int("worker", workerID).
						Float64("service_level", req.ServiceLevels[idx]).
						Str("error", points[idx].Error).
						Msg("sweep: point failed")
				}
			}
		}(i)
	}

	// Enqueue jobs
	for idx := range req.ServiceLevels {
		select {
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return nil, ctx.Err()
		case jobChan <- idx:
		}
	}
	close(jobChan)

	// Wait for all workers
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Debug().
		Int("points", len(points)).
		Dur("elapsed", time.Since(start)).
		Msg("sweep: completed")

	return points, nil
}

func (r *Runner) validate(req Request) error {
	var errs domain.ValidationErrors

	switch n := len(req.ServiceLevels); {
	case n == 0:
		errs = append(errs, domain.ValidationError{Index: -1, Field: "service_levels", Reason: "provide at least one service level"})
	case n > r.maxPoints:
		errs = append(errs, domain.ValidationError{Index: -1, Field: "service_levels", Value: float64(n), Reason: fmt.Sprintf("at most %d service levels per sweep", r.maxPoints)})
	}

	if len(errs) > 0 {
		return errs
	}

	if _, err := r.model.Evaluate(req.Inputs); err != nil {
		return err
	}
	if r.simulates(req) {
		return req.Simulation.Validate()
	}
	return nil
}

// simulates reports whether points are replayed through the simulator. A
// template without a demand profile asks for analytical outputs only.
func (r *Runner) simulates(req Request) bool {
	return r.sim != nil && len(req.Simulation.DemandProfile) > 0
}

func (r *Runner) runPoint(ctx context.Context, req Request, level float64) Point {
	in := req.Inputs
	in.ServiceLevel = level

	point := Point{ServiceLevel: level}
	out, err := r.model.Evaluate(in)
	if err != nil {
		point.Error = err.Error()
		return point
	}
	point.Outputs = out

	if !r.simulates(req) {
		return point
	}

	simReq := req.Simulation
	simReq.ReorderPoint = out.ReorderPoint
	result, err := r.sim.Simulate(ctx, simReq)
	if err != nil {
		point.Error = err.Error()
		return point
	}

	report := reconcile.Reconcile(simReq.DemandProfile, result)
	point.Report = &report
	return point
}
