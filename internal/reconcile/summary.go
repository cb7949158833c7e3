package reconcile

import (
	"fmt"
	"math"
	"strconv"

	"github.com/andresuchdata/safetystock/internal/domain"
)

// NoStockoutsMessage is shown for a successful run without stockouts. It is
// deliberately different from any failure text.
const NoStockoutsMessage = "No stockouts recorded for this run."

// Summary renders a report as the lines shown to the planner.
func Summary(report domain.ReconciliationReport) []string {
	m := report.Metrics

	served := "Demand served: " + formatFloat(report.DemandServed, 1) + " units"
	if m.ServedRatio != nil {
		served += fmt.Sprintf(" of %s (%s%% of demand)", formatFloat(m.TotalDemand, 1), formatFloat(*m.ServedRatio*100, 1))
	}

	lines := []string{
		served,
		fmt.Sprintf("Demand lost: %s units | Service level: %s%%", formatFloat(report.DemandLost, 1), formatFloat(m.AchievedServiceLevel*100, 1)),
	}

	if len(report.Stockouts) == 0 {
		lines = append(lines, NoStockoutsMessage)
	}
	for _, ev := range report.Stockouts {
		lines = append(lines, fmt.Sprintf("Period %d: shortfall %s", int64(ev.Time), formatFloat(ev.Shortfall, 1)))
	}
	if report.DroppedStockouts > 0 {
		lines = append(lines, fmt.Sprintf("%d malformed stockout entries dropped", report.DroppedStockouts))
	}

	return lines
}

// roundFloat rounds v to the given number of decimal places.
func roundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

// formatFloat prints v with a fixed number of decimals.
func formatFloat(v float64, decimals int) string {
	return strconv.FormatFloat(roundFloat(v, decimals), 'f', decimals, 64)
}
