// internal/domain/models.go
package domain

import "time"

// ScenarioInputs are the planner-controlled parameters of the analytical model.
type ScenarioInputs struct {
	ServiceLevel float64 `json:"service_level"`
	DemandRate   float64 `json:"demand_rate"`
	DemandStd    float64 `json:"demand_std"`
	LeadTime     float64 `json:"lead_time"`
}

// AnalyticalOutputs is recomputed wholesale from ScenarioInputs; it is never patched.
type AnalyticalOutputs struct {
	Z                 float64 `json:"z"`
	SafetyStock       float64 `json:"safety_stock"`
	ReorderPoint      float64 `json:"reorder_point"`
	CycleServiceLevel float64 `json:"cycle_service_level"`
	EstimatedFillRate float64 `json:"estimated_fill_rate"`
}

// SimulationRequest is the payload sent to the external discrete-event simulator.
type SimulationRequest struct {
	DemandProfile    []float64 `json:"demand_profile"`
	InitialInventory float64   `json:"initial_inventory"`
	ReorderPoint     float64   `json:"reorder_point"`
	OrderQuantity    float64   `json:"order_quantity"`
	LeadTime         int       `json:"lead_time"`
	Seed             *int64    `json:"seed,omitempty"`
}

// StockoutEvent is a single period in which demand exceeded stock on hand.
// Time is decoded as a JSON number so malformed periods can be dropped
// individually instead of failing the whole response.
type StockoutEvent struct {
	Time      float64 `json:"time"`
	Shortfall float64 `json:"shortfall"`
}

// SimulationResult is the raw trace returned by the simulator.
type SimulationResult struct {
	DemandServed float64         `json:"demand_served"`
	DemandLost   float64         `json:"demand_lost"`
	Stockouts    []StockoutEvent `json:"stockouts"`
}

// ReconciledMetrics compares a simulation trace with the demand that was replayed.
// ServedRatio is nil when the profile carried no demand at all.
type ReconciledMetrics struct {
	TotalDemand          float64  `json:"total_demand"`
	ServedRatio          *float64 `json:"served_ratio"`
	AchievedServiceLevel float64  `json:"achieved_service_level"`
}

// ReconciliationReport is what the reconciler hands to the presentation layer.
type ReconciliationReport struct {
	Metrics          ReconciledMetrics `json:"metrics"`
	DemandServed     float64           `json:"demand_served"`
	DemandLost       float64           `json:"demand_lost"`
	Stockouts        []StockoutEvent   `json:"stockouts"`
	DroppedStockouts int               `json:"dropped_stockouts"`
	Issues           []ValidationError `json:"issues,omitempty"`
}

// SimulationOutcome is the latest simulation state of a scenario session.
type SimulationOutcome struct {
	RequestID   string                `json:"request_id"`
	Status      SimulationStatus      `json:"status"`
	Request     SimulationRequest     `json:"request"`
	Report      *ReconciliationReport `json:"report,omitempty"`
	Error       string                `json:"error,omitempty"`
	RequestedAt time.Time             `json:"requested_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
}
