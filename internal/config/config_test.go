package config

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func TestLoadFresh_Defaults(t *testing.T) {
	cfg := LoadFresh(viper.New())

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Simulator.Timeout().Seconds() != 30 {
		t.Errorf("Simulator.Timeout = %v, want 30s", cfg.Simulator.Timeout())
	}
	floors := cfg.Model.Floors()
	if floors.MinServiceLevel != 0.5 || floors.MaxServiceLevel != 0.999 {
		t.Errorf("service level floors = [%v, %v], want [0.5, 0.999]", floors.MinServiceLevel, floors.MaxServiceLevel)
	}
	if floors.MinDemandRate != 1 || floors.MinLeadTime != 0.5 {
		t.Errorf("floors = %+v, want demand rate 1 and lead time 0.5", floors)
	}
	if err := floors.Validate(); err != nil {
		t.Errorf("default floors invalid: %v", err)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should be disabled by default")
	}
	if cfg.Sweep.Workers != 4 || cfg.Sweep.MaxPoints != 50 {
		t.Errorf("Sweep = %+v, want 4 workers and 50 points", cfg.Sweep)
	}
}

func TestLoadFresh_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SIMULATOR_URL", "http://sim.internal:9000")
	t.Setenv("MODEL_MIN_LEAD_TIME", "1.5")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("SIMULATOR_MAX_INFLIGHT", "2")

	cfg := LoadFresh(viper.New())

	if cfg.Simulator.BaseURL != "http://sim.internal:9000" {
		t.Errorf("Simulator.BaseURL = %q", cfg.Simulator.BaseURL)
	}
	if cfg.Model.MinLeadTime != 1.5 {
		t.Errorf("Model.MinLeadTime = %v, want 1.5", cfg.Model.MinLeadTime)
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled = false, want true")
	}
	if cfg.Simulator.MaxInFlight != 2 {
		t.Errorf("Simulator.MaxInFlight = %d, want 2", cfg.Simulator.MaxInFlight)
	}
}

func TestGodotenvQuoting(t *testing.T) {
	content := `SIMULATOR_URL='http://localhost:8000/"quoted"'`
	tmpfile, err := os.CreateTemp("", ".env.test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(tmpfile.Name())
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	expected := `http://localhost:8000/"quoted"`
	if env["SIMULATOR_URL"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["SIMULATOR_URL"])
	}
}
