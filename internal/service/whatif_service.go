package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/safetystock/internal/domain"
	"github.com/andresuchdata/safetystock/internal/metrics"
	"github.com/andresuchdata/safetystock/internal/quantile"
	"github.com/andresuchdata/safetystock/internal/reconcile"
	"github.com/andresuchdata/safetystock/internal/safetystock"
	"github.com/andresuchdata/safetystock/internal/scenario"
	"github.com/andresuchdata/safetystock/internal/sweep"
)

var ErrSessionNotFound = errors.New("scenario session not found")

// QuantileResult is a z-score together with the approximation regime used.
type QuantileResult struct {
	P      float64 `json:"p"`
	Z      float64 `json:"z"`
	Regime string  `json:"regime"`
}

// ReconcileResult is a reconciliation report plus its display lines.
type ReconcileResult struct {
	domain.ReconciliationReport
	Summary []string `json:"summary"`
}

// SessionView is what callers see of a scenario session.
type SessionView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	scenario.Snapshot
}

// replayCache is implemented by simulators that keep deterministic replays.
type replayCache interface {
	Invalidate(ctx context.Context) error
}

type session struct {
	createdAt time.Time
	composer  *scenario.Composer
}

// WhatIfService exposes the analytical model statelessly and keeps
// in-memory scenario sessions. Sessions are lost when the process exits.
type WhatIfService struct {
	model   *safetystock.Model
	sim     scenario.Simulator
	metrics *metrics.Metrics
	sweeper *sweep.Runner

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewWhatIfService(model *safetystock.Model, sim scenario.Simulator, m *metrics.Metrics) *WhatIfService {
	if model == nil {
		model, _ = safetystock.NewModel(safetystock.DefaultFloors())
	}
	return &WhatIfService{
		model:    model,
		sim:      sim,
		metrics:  m,
		sweeper:  sweep.NewRunner(model, sim, sweep.DefaultWorkers, sweep.DefaultMaxPoints),
		sessions: make(map[string]*session),
	}
}

// WithSweepLimits replaces the sweep worker count and point limit.
func (s *WhatIfService) WithSweepLimits(workers, maxPoints int) *WhatIfService {
	s.sweeper = sweep.NewRunner(s.model, s.sim, workers, maxPoints)
	return s
}

func (s *WhatIfService) Quantile(p float64) (QuantileResult, error) {
	z, err := quantile.Normal(p)
	if err != nil {
		return QuantileResult{}, err
	}
	return QuantileResult{P: p, Z: z, Regime: quantile.RegimeOf(p).String()}, nil
}

func (s *WhatIfService) Evaluate(in domain.ScenarioInputs) (domain.AnalyticalOutputs, error) {
	out, err := s.model.Evaluate(in)
	s.metrics.ObserveEvaluation(err)
	return out, err
}

// Reconcile rejects negative or non-finite demand and totals before
// comparing them.
func (s *WhatIfService) Reconcile(demandProfile []float64, result domain.SimulationResult) (ReconcileResult, error) {
	errs := domain.ValidateDemandProfile(demandProfile)
	var totals domain.ValidationErrors
	if errors.As(result.Validate(), &totals) {
		errs = append(errs, totals...)
	}
	if len(errs) > 0 {
		return ReconcileResult{}, errs
	}

	report := reconcile.Reconcile(demandProfile, result)
	return ReconcileResult{ReconciliationReport: report, Summary: reconcile.Summary(report)}, nil
}

// Sweep compares analytical and simulated service levels over several targets.
func (s *WhatIfService) Sweep(ctx context.Context, req sweep.Request) ([]sweep.Point, error) {
	return s.sweeper.Run(ctx, req)
}

// ClearReplayCache drops cached simulator replays. It is a no-op when the
// simulator keeps none.
func (s *WhatIfService) ClearReplayCache(ctx context.Context) error {
	rc, ok := s.sim.(replayCache)
	if !ok {
		return nil
	}
	return rc.Invalidate(ctx)
}

func (s *WhatIfService) CreateSession(in domain.ScenarioInputs) (SessionView, error) {
	composer, err := scenario.NewComposer(s.model, s.sim, s.metrics, in)
	if err != nil {
		return SessionView{}, err
	}

	id := uuid.NewString()
	sess := &session{createdAt: time.Now().UTC(), composer: composer}

	s.mu.Lock()
	s.sessions[id] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetActiveSessions(count)
	log.Info().Str("session_id", id).Msg("what-if: session created")

	return view(id, sess), nil
}

func (s *WhatIfService) GetSession(id string) (SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	return view(id, sess), nil
}

func (s *WhatIfService) UpdateInputs(id string, in domain.ScenarioInputs) (SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	if _, err := sess.composer.Update(in); err != nil {
		return SessionView{}, err
	}
	return view(id, sess), nil
}

func (s *WhatIfService) Simulate(ctx context.Context, id string, req domain.SimulationRequest) (domain.SimulationOutcome, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.SimulationOutcome{}, err
	}
	return sess.composer.Simulate(ctx, req)
}

// DeleteSession drops a session and cancels its in-flight simulation.
func (s *WhatIfService) DeleteSession(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	sess.composer.Cancel()
	s.metrics.SetActiveSessions(count)
	log.Info().Str("session_id", id).Msg("what-if: session deleted")
	return nil
}

func (s *WhatIfService) lookup(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func view(id string, sess *session) SessionView {
	return SessionView{ID: id, CreatedAt: sess.createdAt, Snapshot: sess.composer.Snapshot()}
}
