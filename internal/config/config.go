// internal/config/config.go
package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/andresuchdata/safetystock/internal/safetystock"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Simulator SimulatorConfig
	Model     ModelConfig
	Cache     CacheConfig
	Metrics   MetricsConfig
	Sweep     SweepConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type LogConfig struct {
	Level string
	File  string
}

type SimulatorConfig struct {
	BaseURL        string
	TimeoutSeconds int
	MaxInFlight    int64
}

// Timeout returns the transport timeout for a single simulator call.
func (c SimulatorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ModelConfig holds the clamping policy of the safety stock model.
type ModelConfig struct {
	MinServiceLevel float64
	MaxServiceLevel float64
	MinDemandRate   float64
	MinLeadTime     float64
}

// Floors converts the model configuration into safety stock floors.
func (c ModelConfig) Floors() safetystock.Floors {
	return safetystock.Floors{
		MinServiceLevel: c.MinServiceLevel,
		MaxServiceLevel: c.MaxServiceLevel,
		MinDemandRate:   c.MinDemandRate,
		MinLeadTime:     c.MinLeadTime,
	}
}

type CacheConfig struct {
	Enabled              bool
	RedisURL             string
	RedisHost            string
	RedisPort            string
	RedisPassword        string
	RedisDB              int
	SimulationTTLSeconds int
}

type MetricsConfig struct {
	Enabled bool
}

// SweepConfig bounds service-level sweeps.
type SweepConfig struct {
	Workers   int
	MaxPoints int
}

var (
	once     sync.Once
	instance *Config
)

// Load returns the process-wide configuration, reading it on first use.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()
		instance = LoadFresh(viper.GetViper())
	})

	return instance
}

// LoadFresh builds a configuration from v without touching the singleton.
func LoadFresh(v *viper.Viper) *Config {
	defaults := safetystock.DefaultFloors()

	// Set default values
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("SIMULATOR_URL", "http://localhost:8000")
	v.SetDefault("SIMULATOR_TIMEOUT_SECONDS", 30)
	v.SetDefault("SIMULATOR_MAX_INFLIGHT", 8)
	v.SetDefault("MODEL_MIN_SERVICE_LEVEL", defaults.MinServiceLevel)
	v.SetDefault("MODEL_MAX_SERVICE_LEVEL", defaults.MaxServiceLevel)
	v.SetDefault("MODEL_MIN_DEMAND_RATE", defaults.MinDemandRate)
	v.SetDefault("MODEL_MIN_LEAD_TIME", defaults.MinLeadTime)
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_SIMULATION_TTL_SECONDS", 3600)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("SWEEP_WORKERS", 4)
	v.SetDefault("SWEEP_MAX_POINTS", 50)

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("LOG_FILE"),
		},
		Simulator: SimulatorConfig{
			BaseURL:        v.GetString("SIMULATOR_URL"),
			TimeoutSeconds: v.GetInt("SIMULATOR_TIMEOUT_SECONDS"),
			MaxInFlight:    v.GetInt64("SIMULATOR_MAX_INFLIGHT"),
		},
		Model: ModelConfig{
			MinServiceLevel: v.GetFloat64("MODEL_MIN_SERVICE_LEVEL"),
			MaxServiceLevel: v.GetFloat64("MODEL_MAX_SERVICE_LEVEL"),
			MinDemandRate:   v.GetFloat64("MODEL_MIN_DEMAND_RATE"),
			MinLeadTime:     v.GetFloat64("MODEL_MIN_LEAD_TIME"),
		},
		Cache: CacheConfig{
			Enabled:              v.GetBool("CACHE_ENABLED"),
			RedisURL:             v.GetString("REDIS_URL"),
			RedisHost:            v.GetString("REDIS_HOST"),
			RedisPort:            v.GetString("REDIS_PORT"),
			RedisPassword:        v.GetString("REDIS_PASSWORD"),
			RedisDB:              v.GetInt("REDIS_DB"),
			SimulationTTLSeconds: v.GetInt("CACHE_SIMULATION_TTL_SECONDS"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
		Sweep: SweepConfig{
			Workers:   v.GetInt("SWEEP_WORKERS"),
			MaxPoints: v.GetInt("SWEEP_MAX_POINTS"),
		},
	}
}
