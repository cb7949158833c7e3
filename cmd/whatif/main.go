package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/safetystock/internal/config"
	"github.com/andresuchdata/safetystock/internal/domain"
	"github.com/andresuchdata/safetystock/internal/quantile"
	"github.com/andresuchdata/safetystock/internal/reconcile"
	"github.com/andresuchdata/safetystock/internal/safetystock"
	"github.com/andresuchdata/safetystock/internal/simulator"
	"github.com/andresuchdata/safetystock/pkg/logger"
)

func newJSONFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the result as JSON",
	}
}

func newDemandFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "demand",
		Usage:    "Comma-separated demand profile, one value per period",
		Required: true,
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "whatif",
		Usage: "Size safety stock and reconcile it against simulated demand",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "quantile",
				Usage: "Standard-normal quantile (z-score) of a probability",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "p", Usage: "Probability in (0, 1)", Required: true},
					newJSONFlag(),
				},
				Action: runQuantile,
			},
			{
				Name:  "evaluate",
				Usage: "Safety stock, reorder point and estimated fill rate for a scenario",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "service-level", Usage: "Target cycle service level", Value: 0.95},
					&cli.Float64Flag{Name: "demand-rate", Usage: "Mean demand per period", Required: true},
					&cli.Float64Flag{Name: "demand-std", Usage: "Standard deviation of demand per period", Required: true},
					&cli.Float64Flag{Name: "lead-time", Usage: "Replenishment lead time in periods", Required: true},
					newJSONFlag(),
				},
				Action: runEvaluate,
			},
			{
				Name:  "reconcile",
				Usage: "Reconcile a simulator response (JSON file) against its demand profile",
				Flags: []cli.Flag{
					newDemandFlag(),
					&cli.PathFlag{Name: "result", Usage: "Simulator response JSON file, - for stdin", Required: true},
					newJSONFlag(),
				},
				Action: runReconcile,
			},
			{
				Name:  "simulate",
				Usage: "Run the external simulator and reconcile its response",
				Flags: []cli.Flag{
					newDemandFlag(),
					&cli.StringFlag{
						Name:    "simulator-url",
						Usage:   "Base URL of the inventory simulator",
						Value:   "http://localhost:8000",
						EnvVars: []string{"SIMULATOR_URL"},
					},
					&cli.Float64Flag{Name: "initial-inventory", Usage: "Stock on hand at period 0"},
					&cli.Float64Flag{Name: "reorder-point", Usage: "Inventory position that triggers an order", Required: true},
					&cli.Float64Flag{Name: "order-quantity", Usage: "Units per replenishment order", Required: true},
					&cli.IntFlag{Name: "lead-time", Usage: "Replenishment lead time in whole periods"},
					&cli.Int64Flag{Name: "seed", Usage: "Random seed for deterministic replay"},
					newJSONFlag(),
				},
				Action: runSimulate,
			},
		},
	}
}

func runQuantile(c *cli.Context) error {
	p := c.Float64("p")
	z, err := quantile.Normal(p)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, map[string]interface{}{"p": p, "z": z, "regime": quantile.RegimeOf(p).String()})
	}
	fmt.Fprintf(c.App.Writer, "z(%g) = %.6f [%s]\n", p, z, quantile.RegimeOf(p))
	return nil
}

func runEvaluate(c *cli.Context) error {
	cfg := config.LoadFresh(viper.New())
	model, err := safetystock.NewModel(cfg.Model.Floors())
	if err != nil {
		return err
	}

	out, err := model.Evaluate(domain.ScenarioInputs{
		ServiceLevel: c.Float64("service-level"),
		DemandRate:   c.Float64("demand-rate"),
		DemandStd:    c.Float64("demand-std"),
		LeadTime:     c.Float64("lead-time"),
	})
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, out)
	}
	w := c.App.Writer
	fmt.Fprintf(w, "z-score:             %.3f\n", out.Z)
	fmt.Fprintf(w, "Safety stock:        %.1f units\n", out.SafetyStock)
	fmt.Fprintf(w, "Reorder point:       %.1f units\n", out.ReorderPoint)
	fmt.Fprintf(w, "Cycle service level: %.1f%%\n", out.CycleServiceLevel*100)
	fmt.Fprintf(w, "Est. fill rate:      %.1f%%\n", out.EstimatedFillRate*100)
	return nil
}

func runReconcile(c *cli.Context) error {
	profile, err := domain.ParseDemandProfile(c.String("demand"))
	if err != nil {
		return err
	}

	result, err := readResult(c.App.Reader, c.Path("result"))
	if err != nil {
		return err
	}

	return printReport(c, reconcile.Reconcile(profile, result))
}

func runSimulate(c *cli.Context) error {
	profile, err := domain.ParseDemandProfile(c.String("demand"))
	if err != nil {
		return err
	}

	req := domain.SimulationRequest{
		DemandProfile:    profile,
		InitialInventory: c.Float64("initial-inventory"),
		ReorderPoint:     c.Float64("reorder-point"),
		OrderQuantity:    c.Float64("order-quantity"),
		LeadTime:         c.Int("lead-time"),
	}
	if c.IsSet("seed") {
		seed := c.Int64("seed")
		req.Seed = &seed
	}
	if err := req.Validate(); err != nil {
		return err
	}

	cfg := config.LoadFresh(viper.New())
	cfg.Simulator.BaseURL = c.String("simulator-url")
	client, err := simulator.NewClient(cfg.Simulator)
	if err != nil {
		return err
	}

	result, err := client.Simulate(c.Context, req)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	return printReport(c, reconcile.Reconcile(profile, result))
}

func printReport(c *cli.Context, report domain.ReconciliationReport) error {
	if c.Bool("json") {
		return writeJSON(c.App.Writer, report)
	}
	for _, line := range reconcile.Summary(report) {
		fmt.Fprintln(c.App.Writer, line)
	}
	return nil
}

func readResult(stdin io.Reader, path string) (domain.SimulationResult, error) {
	var r io.Reader
	if strings.TrimSpace(path) == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return domain.SimulationResult{}, fmt.Errorf("failed to open result file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var result domain.SimulationResult
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return domain.SimulationResult{}, fmt.Errorf("failed to decode result: %w", err)
	}
	if err := result.Validate(); err != nil {
		return domain.SimulationResult{}, err
	}
	return result, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
