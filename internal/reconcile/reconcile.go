// Package reconcile turns a raw simulation trace into service-level metrics
// that can be compared with the analytical recommendation.
package reconcile

import (
	"math"

	"github.com/andresuchdata/safetystock/internal/domain"
)

// MinServiceDenominator floors served+lost when computing the achieved service
// level so an all-zero run yields 0 instead of dividing by zero. It is a guard,
// not a statistically meaningful denominator.
const MinServiceDenominator = 1.0

// Reconcile compares a simulation result with the demand profile it replayed.
// Malformed stockout entries are dropped and reported, never fatal.
func Reconcile(demandProfile []float64, result domain.SimulationResult) domain.ReconciliationReport {
	totalDemand := 0.0
	for _, d := range demandProfile {
		totalDemand += d
	}

	metrics := domain.ReconciledMetrics{
		TotalDemand:          totalDemand,
		AchievedServiceLevel: result.DemandServed / math.Max(result.DemandServed+result.DemandLost, MinServiceDenominator),
	}
	if totalDemand > 0 {
		ratio := result.DemandServed / totalDemand
		metrics.ServedRatio = &ratio
	}

	stockouts, issues := ValidateStockouts(result.Stockouts)

	return domain.ReconciliationReport{
		Metrics:          metrics,
		DemandServed:     result.DemandServed,
		DemandLost:       result.DemandLost,
		Stockouts:        stockouts,
		DroppedStockouts: len(issues),
		Issues:           issues,
	}
}

// ValidateStockouts keeps the well-formed events in their original order and
// describes every dropped one.
func ValidateStockouts(events []domain.StockoutEvent) ([]domain.StockoutEvent, []domain.ValidationError) {
	kept := make([]domain.StockoutEvent, 0, len(events))
	var issues []domain.ValidationError

	for i, ev := range events {
		if issue, ok := checkStockout(i, ev); !ok {
			issues = append(issues, issue)
			continue
		}
		kept = append(kept, ev)
	}

	return kept, issues
}

func checkStockout(i int, ev domain.StockoutEvent) (domain.ValidationError, bool) {
	switch {
	case math.IsNaN(ev.Time) || math.IsInf(ev.Time, 0):
		return domain.ValidationError{Index: i, Field: "time", Value: ev.Time, Reason: "time must be finite"}, false
	case ev.Time < 0:
		return domain.ValidationError{Index: i, Field: "time", Value: ev.Time, Reason: "time must be non-negative"}, false
	case ev.Time != math.Trunc(ev.Time):
		return domain.ValidationError{Index: i, Field: "time", Value: ev.Time, Reason: "time must be an integer period"}, false
	case ev.Time >= float64(math.MaxInt64):
		return domain.ValidationError{Index: i, Field: "time", Value: ev.Time, Reason: "time exceeds the largest period"}, false
	case math.IsNaN(ev.Shortfall) || math.IsInf(ev.Shortfall, 0):
		return domain.ValidationError{Index: i, Field: "shortfall", Value: ev.Shortfall, Reason: "shortfall must be finite"}, false
	case ev.Shortfall <= 0:
		return domain.ValidationError{Index: i, Field: "shortfall", Value: ev.Shortfall, Reason: "shortfall must be positive"}, false
	}
	return domain.ValidationError{}, true
}
