// Package safetystock sizes safety stock and reorder points under a
// normal-demand assumption.
package safetystock

import (
	"fmt"
	"math"

	"github.com/andresuchdata/safetystock/internal/domain"
	"github.com/andresuchdata/safetystock/internal/quantile"
)

// MaxFillRate caps the estimated fill rate.
const MaxFillRate = 0.999

// Floors bound the scenario inputs before evaluation. They are policy, loaded
// from configuration, and mirror the limits of the planner's input form.
type Floors struct {
	MinServiceLevel float64
	MaxServiceLevel float64
	MinDemandRate   float64
	MinLeadTime     float64
}

// DefaultFloors returns the limits used by the What-If planner.
func DefaultFloors() Floors {
	return Floors{
		MinServiceLevel: 0.5,
		MaxServiceLevel: 0.999,
		MinDemandRate:   1,
		MinLeadTime:     0.5,
	}
}

// Validate checks that the floors themselves describe a usable range.
func (f Floors) Validate() error {
	if !(f.MinServiceLevel > 0 && f.MinServiceLevel <= f.MaxServiceLevel && f.MaxServiceLevel < 1) {
		return fmt.Errorf("service level bounds must satisfy 0 < min <= max < 1, got [%v, %v]", f.MinServiceLevel, f.MaxServiceLevel)
	}
	if !(f.MinDemandRate > 0) {
		return fmt.Errorf("minimum demand rate must be positive, got %v", f.MinDemandRate)
	}
	if !(f.MinLeadTime > 0) {
		return fmt.Errorf("minimum lead time must be positive, got %v", f.MinLeadTime)
	}
	return nil
}

// Model evaluates analytical safety-stock outputs. It holds no mutable state.
type Model struct {
	floors Floors
}

// NewModel creates a model with the given floors.
func NewModel(floors Floors) (*Model, error) {
	if err := floors.Validate(); err != nil {
		return nil, fmt.Errorf("invalid safety stock floors: %w", err)
	}
	return &Model{floors: floors}, nil
}

// Floors returns the limits the model clamps to.
func (m *Model) Floors() Floors {
	return m.floors
}

// Evaluate computes all analytical outputs for a scenario.
func (m *Model) Evaluate(in domain.ScenarioInputs) (domain.AnalyticalOutputs, error) {
	if err := checkFinite(in); err != nil {
		return domain.AnalyticalOutputs{}, err
	}
	if in.DemandStd < 0 {
		return domain.AnalyticalOutputs{}, &domain.DomainError{Field: "demand_std", Value: in.DemandStd, Reason: "standard deviation cannot be negative"}
	}

	// 1. Clamp to the configured floors
	serviceLevel := math.Min(m.floors.MaxServiceLevel, math.Max(m.floors.MinServiceLevel, in.ServiceLevel))
	demandRate := math.Max(m.floors.MinDemandRate, in.DemandRate)
	leadTime := math.Max(m.floors.MinLeadTime, in.LeadTime)

	// 2. z-score of the target service level
	z, err := quantile.Normal(serviceLevel)
	if err != nil {
		return domain.AnalyticalOutputs{}, err
	}

	// 3. Safety stock = z × σ × √L (i.i.d. period demand over the lead time)
	safetyStock := z * in.DemandStd * math.Sqrt(leadTime)

	// 4. Reorder point = expected lead-time demand + safety stock
	reorderPoint := demandRate*leadTime + safetyStock

	// 5. Cycle service level is the target itself
	cycleServiceLevel := serviceLevel

	return domain.AnalyticalOutputs{
		Z:                 z,
		SafetyStock:       safetyStock,
		ReorderPoint:      reorderPoint,
		CycleServiceLevel: cycleServiceLevel,
		EstimatedFillRate: EstimatedFillRate(cycleServiceLevel, in.DemandStd, demandRate),
	}, nil
}

// EstimatedFillRate nudges the cycle service level toward a fill rate using the
// coefficient of variation. It is a coarse heuristic with no statistical
// derivation; its constants are kept as-is until requirements say otherwise.
func EstimatedFillRate(cycleServiceLevel, demandStd, demandRate float64) float64 {
	return math.Min(MaxFillRate, cycleServiceLevel-0.01+0.05*(demandStd/math.Max(demandRate, 1)))
}

// Evaluate runs a model built from DefaultFloors.
func Evaluate(in domain.ScenarioInputs) (domain.AnalyticalOutputs, error) {
	return defaultModel.Evaluate(in)
}

var defaultModel = &Model{floors: DefaultFloors()}

func checkFinite(in domain.ScenarioInputs) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"service_level", in.ServiceLevel},
		{"demand_rate", in.DemandRate},
		{"demand_std", in.DemandStd},
		{"lead_time", in.LeadTime},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &domain.DomainError{Field: f.name, Value: f.value, Reason: "must be a finite number"}
		}
	}
	return nil
}
