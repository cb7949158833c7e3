package domain

import (
	"encoding/json"
	"strings"
)

// SimulationStatus is the lifecycle state of a simulation request.
type SimulationStatus int

const (
	SimulationPending SimulationStatus = iota
	SimulationSucceeded
	SimulationFailed
	SimulationSuperseded
)

var simulationStatusLabels = map[SimulationStatus]string{
	SimulationPending:    "pending",
	SimulationSucceeded:  "succeeded",
	SimulationFailed:     "failed",
	SimulationSuperseded: "superseded",
}

var simulationStatusCodes = map[string]SimulationStatus{
	"pending":    SimulationPending,
	"succeeded":  SimulationSucceeded,
	"failed":     SimulationFailed,
	"superseded": SimulationSuperseded,
}

// String returns a human-readable label for a simulation status.
func (s SimulationStatus) String() string {
	if label, ok := simulationStatusLabels[s]; ok {
		return label
	}

	return "unknown"
}

// ParseSimulationStatus returns the status for a given label (case-insensitive).
func ParseSimulationStatus(label string) (SimulationStatus, bool) {
	status, ok := simulationStatusCodes[strings.ToLower(strings.TrimSpace(label))]

	return status, ok
}

func (s SimulationStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SimulationStatus) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	status, ok := ParseSimulationStatus(label)
	if !ok {
		return ValidationError{Index: -1, Field: "status", Reason: "unknown simulation status " + label}
	}
	*s = status
	return nil
}
