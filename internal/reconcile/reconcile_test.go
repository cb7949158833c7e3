package reconcile

import (
	"math"
	"strings"
	"testing"

	"github.com/andresuchdata/safetystock/internal/domain"
)

func TestReconcile_ReferenceRun(t *testing.T) {
	report := Reconcile([]float64{40, 60, 80, 100}, domain.SimulationResult{
		DemandServed: 270,
		DemandLost:   10,
		Stockouts:    []domain.StockoutEvent{{Time: 3, Shortfall: 10}},
	})

	if report.Metrics.TotalDemand != 280 {
		t.Errorf("TotalDemand = %v, want 280", report.Metrics.TotalDemand)
	}
	if report.Metrics.ServedRatio == nil {
		t.Fatal("ServedRatio is nil, want a value")
	}
	if math.Abs(*report.Metrics.ServedRatio-0.9643) > 1e-4 {
		t.Errorf("ServedRatio = %v, want about 0.9643", *report.Metrics.ServedRatio)
	}
	if math.Abs(report.Metrics.AchievedServiceLevel-0.9643) > 1e-4 {
		t.Errorf("AchievedServiceLevel = %v, want about 0.9643", report.Metrics.AchievedServiceLevel)
	}
	if len(report.Stockouts) != 1 || report.Stockouts[0] != (domain.StockoutEvent{Time: 3, Shortfall: 10}) {
		t.Errorf("Stockouts = %+v, want the single event unchanged", report.Stockouts)
	}
	if report.DroppedStockouts != 0 {
		t.Errorf("DroppedStockouts = %d, want 0", report.DroppedStockouts)
	}
}

func TestReconcile_DegenerateRun(t *testing.T) {
	report := Reconcile(nil, domain.SimulationResult{})

	if report.Metrics.ServedRatio != nil {
		t.Errorf("ServedRatio = %v, want nil (not applicable)", *report.Metrics.ServedRatio)
	}
	if report.Metrics.AchievedServiceLevel != 0 {
		t.Errorf("AchievedServiceLevel = %v, want 0", report.Metrics.AchievedServiceLevel)
	}
	if math.IsNaN(report.Metrics.AchievedServiceLevel) || math.IsInf(report.Metrics.AchievedServiceLevel, 0) {
		t.Error("AchievedServiceLevel must be finite")
	}
	if report.Stockouts == nil || len(report.Stockouts) != 0 {
		t.Errorf("Stockouts = %#v, want empty non-nil slice", report.Stockouts)
	}
}

func TestReconcile_ZeroDemandProfile(t *testing.T) {
	report := Reconcile([]float64{0, 0, 0}, domain.SimulationResult{})
	if report.Metrics.ServedRatio != nil {
		t.Error("ServedRatio should be nil when total demand is zero")
	}
}

func TestReconcile_SmallDenominatorIsFloored(t *testing.T) {
	report := Reconcile([]float64{0.5}, domain.SimulationResult{DemandServed: 0.25, DemandLost: 0.25})
	if report.Metrics.AchievedServiceLevel != 0.25 {
		t.Errorf("AchievedServiceLevel = %v, want 0.25 (denominator floored at 1)", report.Metrics.AchievedServiceLevel)
	}
	if *report.Metrics.ServedRatio != 0.5 {
		t.Errorf("ServedRatio = %v, want 0.5", *report.Metrics.ServedRatio)
	}
}

func TestValidateStockouts(t *testing.T) {
	events := []domain.StockoutEvent{
		{Time: 1, Shortfall: 5},
		{Time: 2, Shortfall: -5},
		{Time: -1, Shortfall: 3},
		{Time: 2.5, Shortfall: 3},
		{Time: 4, Shortfall: 0},
		{Time: math.NaN(), Shortfall: 1},
		{Time: 5, Shortfall: math.Inf(1)},
		{Time: 0, Shortfall: 7},
	}

	kept, issues := ValidateStockouts(events)

	wantKept := []domain.StockoutEvent{{Time: 1, Shortfall: 5}, {Time: 0, Shortfall: 7}}
	if len(kept) != len(wantKept) {
		t.Fatalf("kept %d events, want %d: %+v", len(kept), len(wantKept), kept)
	}
	for i := range wantKept {
		if kept[i] != wantKept[i] {
			t.Errorf("kept[%d] = %+v, want %+v", i, kept[i], wantKept[i])
		}
	}

	wantIndexes := []int{1, 2, 3, 4, 5, 6}
	if len(issues) != len(wantIndexes) {
		t.Fatalf("got %d issues, want %d", len(issues), len(wantIndexes))
	}
	for i, idx := range wantIndexes {
		if issues[i].Index != idx {
			t.Errorf("issues[%d].Index = %d, want %d", i, issues[i].Index, idx)
		}
	}
}

func TestValidateStockouts_HugePeriodIsDropped(t *testing.T) {
	kept, issues := ValidateStockouts([]domain.StockoutEvent{
		{Time: 1e19, Shortfall: 4},
		{Time: 9007199254740992, Shortfall: 2},
	})
	if len(kept) != 1 || kept[0].Time != 9007199254740992 {
		t.Errorf("kept = %+v", kept)
	}
	if len(issues) != 1 || issues[0].Index != 0 || issues[0].Field != "time" {
		t.Errorf("issues = %+v", issues)
	}

	lines := Summary(Reconcile([]float64{10}, domain.SimulationResult{DemandServed: 6, DemandLost: 4, Stockouts: kept}))
	if !strings.Contains(strings.Join(lines, "\n"), "Period 9007199254740992: shortfall 2.0") {
		t.Errorf("summary = %q", lines)
	}
}

func TestReconcile_NegativeShortfallIsDroppedAndCounted(t *testing.T) {
	report := Reconcile([]float64{10}, domain.SimulationResult{
		DemandServed: 5,
		DemandLost:   5,
		Stockouts:    []domain.StockoutEvent{{Time: 1, Shortfall: -5}},
	})

	if len(report.Stockouts) != 0 {
		t.Errorf("Stockouts = %+v, want none", report.Stockouts)
	}
	if report.DroppedStockouts != 1 {
		t.Errorf("DroppedStockouts = %d, want 1", report.DroppedStockouts)
	}
	if len(report.Issues) != 1 || report.Issues[0].Field != "shortfall" {
		t.Errorf("Issues = %+v, want one shortfall issue", report.Issues)
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name     string
		report   domain.ReconciliationReport
		expected []string
	}{
		{
			"WithStockouts",
			Reconcile([]float64{40, 60, 80, 100}, domain.SimulationResult{
				DemandServed: 270,
				DemandLost:   10,
				Stockouts:    []domain.StockoutEvent{{Time: 3, Shortfall: 10}},
			}),
			[]string{
				"Demand served: 270.0 units of 280.0 (96.4% of demand)",
				"Demand lost: 10.0 units | Service level: 96.4%",
				"Period 3: shortfall 10.0",
			},
		},
		{
			"NoDemand",
			Reconcile(nil, domain.SimulationResult{}),
			[]string{
				"Demand served: 0.0 units",
				"Demand lost: 0.0 units | Service level: 0.0%",
				NoStockoutsMessage,
			},
		},
		{
			"DroppedEntries",
			Reconcile([]float64{10}, domain.SimulationResult{
				DemandServed: 10,
				Stockouts:    []domain.StockoutEvent{{Time: 1, Shortfall: -1}},
			}),
			[]string{
				"Demand served: 10.0 units of 10.0 (100.0% of demand)",
				"Demand lost: 0.0 units | Service level: 100.0%",
				NoStockoutsMessage,
				"1 malformed stockout entries dropped",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summary(tt.report)
			if len(got) != len(tt.expected) {
				t.Fatalf("Summary() = %q, want %q", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}
