package safetystock

import (
	"errors"
	"math"
	"testing"

	"github.com/andresuchdata/safetystock/internal/domain"
)

func TestEvaluate_ReferenceScenario(t *testing.T) {
	out, err := Evaluate(domain.ScenarioInputs{ServiceLevel: 0.95, DemandRate: 400, DemandStd: 35, LeadTime: 2})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	z := 1.6448536269514722
	tests := []struct {
		name     string
		got      float64
		expected float64
		tol      float64
	}{
		{"Z", out.Z, z, 1e-6},
		{"SafetyStock", out.SafetyStock, z * 35 * math.Sqrt2, 1e-5},
		{"ReorderPoint", out.ReorderPoint, 800 + z*35*math.Sqrt2, 1e-5},
		{"CycleServiceLevel", out.CycleServiceLevel, 0.95, 0},
		{"EstimatedFillRate", out.EstimatedFillRate, 0.944375, 1e-9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.expected) > tt.tol {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	if math.Abs(out.SafetyStock-81.4) > 0.05 {
		t.Errorf("SafetyStock = %v, want about 81.4", out.SafetyStock)
	}
	if math.Abs(out.ReorderPoint-881.4) > 0.05 {
		t.Errorf("ReorderPoint = %v, want about 881.4", out.ReorderPoint)
	}
}

func TestEvaluate_Clamping(t *testing.T) {
	tests := []struct {
		name     string
		in       domain.ScenarioInputs
		wantCSL  float64
		wantROP  float64
		checkROP bool
	}{
		{"ServiceLevelBelowFloor", domain.ScenarioInputs{ServiceLevel: 0.1, DemandRate: 100, DemandStd: 10, LeadTime: 1}, 0.5, 100, true},
		{"ServiceLevelAboveCeiling", domain.ScenarioInputs{ServiceLevel: 0.99999, DemandRate: 100, DemandStd: 10, LeadTime: 1}, 0.999, 0, false},
		{"DemandRateFloor", domain.ScenarioInputs{ServiceLevel: 0.5, DemandRate: 0, DemandStd: 0, LeadTime: 2}, 0.5, 2, true},
		{"LeadTimeFloor", domain.ScenarioInputs{ServiceLevel: 0.5, DemandRate: 10, DemandStd: 0, LeadTime: 0}, 0.5, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Evaluate(tt.in)
			if err != nil {
				t.Fatalf("Evaluate returned error: %v", err)
			}
			if out.CycleServiceLevel != tt.wantCSL {
				t.Errorf("CycleServiceLevel = %v, want %v", out.CycleServiceLevel, tt.wantCSL)
			}
			if tt.checkROP && math.Abs(out.ReorderPoint-tt.wantROP) > 1e-9 {
				t.Errorf("ReorderPoint = %v, want %v", out.ReorderPoint, tt.wantROP)
			}
		})
	}
}

func TestEvaluate_DomainErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    domain.ScenarioInputs
		field string
	}{
		{"NegativeStd", domain.ScenarioInputs{ServiceLevel: 0.95, DemandRate: 400, DemandStd: -1, LeadTime: 2}, "demand_std"},
		{"NaNServiceLevel", domain.ScenarioInputs{ServiceLevel: math.NaN(), DemandRate: 400, DemandStd: 1, LeadTime: 2}, "service_level"},
		{"InfLeadTime", domain.ScenarioInputs{ServiceLevel: 0.95, DemandRate: 400, DemandStd: 1, LeadTime: math.Inf(1)}, "lead_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.in)
			var domainErr *domain.DomainError
			if !errors.As(err, &domainErr) {
				t.Fatalf("error = %v, want *domain.DomainError", err)
			}
			if domainErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", domainErr.Field, tt.field)
			}
		})
	}
}

func TestEvaluate_FillRateCapped(t *testing.T) {
	out, err := Evaluate(domain.ScenarioInputs{ServiceLevel: 0.99, DemandRate: 10, DemandStd: 50, LeadTime: 1})
	if err != nil {
		t.Fatal(err)
	}
	if out.EstimatedFillRate != MaxFillRate {
		t.Errorf("EstimatedFillRate = %v, want cap %v", out.EstimatedFillRate, MaxFillRate)
	}
}

func TestNewModel_CustomFloors(t *testing.T) {
	floors := Floors{MinServiceLevel: 0.8, MaxServiceLevel: 0.95, MinDemandRate: 5, MinLeadTime: 1}
	m, err := NewModel(floors)
	if err != nil {
		t.Fatal(err)
	}
	if m.Floors() != floors {
		t.Errorf("Floors() = %+v, want %+v", m.Floors(), floors)
	}
	out, err := m.Evaluate(domain.ScenarioInputs{ServiceLevel: 0.6, DemandRate: 1, DemandStd: 0, LeadTime: 0.25})
	if err != nil {
		t.Fatal(err)
	}
	if out.CycleServiceLevel != 0.8 {
		t.Errorf("CycleServiceLevel = %v, want 0.8", out.CycleServiceLevel)
	}
	if out.ReorderPoint != 5 {
		t.Errorf("ReorderPoint = %v, want 5", out.ReorderPoint)
	}
}

func TestNewModel_RejectsInvalidFloors(t *testing.T) {
	tests := []struct {
		name   string
		floors Floors
	}{
		{"InvertedServiceLevel", Floors{MinServiceLevel: 0.9, MaxServiceLevel: 0.8, MinDemandRate: 1, MinLeadTime: 0.5}},
		{"ServiceLevelAtOne", Floors{MinServiceLevel: 0.5, MaxServiceLevel: 1, MinDemandRate: 1, MinLeadTime: 0.5}},
		{"ZeroDemandRate", Floors{MinServiceLevel: 0.5, MaxServiceLevel: 0.999, MinDemandRate: 0, MinLeadTime: 0.5}},
		{"ZeroLeadTime", Floors{MinServiceLevel: 0.5, MaxServiceLevel: 0.999, MinDemandRate: 1, MinLeadTime: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewModel(tt.floors); err == nil {
				t.Error("expected error for invalid floors")
			}
		})
	}
}
