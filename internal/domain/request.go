package domain

import (
	"math"
	"strconv"
	"strings"
)

// Validate performs the caller-side checks required before a request may be
// sent to the simulator. All problems are reported together.
func (r SimulationRequest) Validate() error {
	var errs ValidationErrors

	if len(r.DemandProfile) == 0 {
		errs = append(errs, ValidationError{Index: -1, Field: "demand_profile", Reason: "provide at least one demand value"})
	}
	errs = append(errs, ValidateDemandProfile(r.DemandProfile)...)

	if !isFinite(r.InitialInventory) {
		errs = append(errs, ValidationError{Index: -1, Field: "initial_inventory", Value: r.InitialInventory, Reason: "must be finite"})
	}
	if !isFinite(r.ReorderPoint) {
		errs = append(errs, ValidationError{Index: -1, Field: "reorder_point", Value: r.ReorderPoint, Reason: "must be finite"})
	}
	if !isFinite(r.OrderQuantity) || r.OrderQuantity <= 0 {
		errs = append(errs, ValidationError{Index: -1, Field: "order_quantity", Value: r.OrderQuantity, Reason: "order quantity must be greater than zero"})
	}
	if r.LeadTime < 0 {
		errs = append(errs, ValidationError{Index: -1, Field: "lead_time", Value: float64(r.LeadTime), Reason: "lead time must be >= 0 periods"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateDemandProfile checks every entry is a finite value >= 0. An empty
// profile is valid here.
func ValidateDemandProfile(profile []float64) ValidationErrors {
	var errs ValidationErrors
	for i, d := range profile {
		if !isFinite(d) || d < 0 {
			errs = append(errs, ValidationError{Index: i, Field: "demand_profile", Value: d, Reason: "demand must be a finite value >= 0"})
		}
	}
	return errs
}

// Validate checks the run totals. Stockout entries are not checked here; the
// reconciler drops malformed ones individually.
func (r SimulationResult) Validate() error {
	var errs ValidationErrors

	if !isFinite(r.DemandServed) || r.DemandServed < 0 {
		errs = append(errs, ValidationError{Index: -1, Field: "demand_served", Value: r.DemandServed, Reason: "must be a finite value >= 0"})
	}
	if !isFinite(r.DemandLost) || r.DemandLost < 0 {
		errs = append(errs, ValidationError{Index: -1, Field: "demand_lost", Value: r.DemandLost, Reason: "must be a finite value >= 0"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParseDemandProfile reads a comma-separated list of demand values. Entries
// that are not finite numbers >= 0 are skipped; an empty result is an error.
func ParseDemandProfile(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || !isFinite(v) || v < 0 {
			continue
		}
		values = append(values, v)
	}

	if len(values) == 0 {
		return nil, ValidationErrors{{Index: -1, Field: "demand_profile", Reason: "provide at least one demand value"}}
	}
	return values, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
