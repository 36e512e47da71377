package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Valid ranges for user-tunable AI settings. Out-of-range values are
// clamped rather than rejected so a bad setting degrades instead of
// breaking the engine.
const (
	MinIntervalMinutes = 5
	MaxIntervalMinutes = 30

	MinConfidencePercentFloor = 50
	MinConfidencePercentCeil  = 90
)

// Thresholds holds the numeric cutoffs applied by the heuristic evaluator
type Thresholds struct {
	// HighRestartCount is the restart count at which a pod becomes a
	// warning. CriticalRestartCount escalates to critical and is an
	// independent knob, not a multiple of the warning threshold.
	HighRestartCount     int32 `yaml:"high_restart_count"`
	CriticalRestartCount int32 `yaml:"critical_restart_count"`

	CPUPressurePercent       float64 `yaml:"cpu_pressure_percent"`
	MemoryPressurePercent    float64 `yaml:"memory_pressure_percent"`
	GPUMemoryPressurePercent float64 `yaml:"gpu_memory_pressure_percent"`
}

// Config holds application configuration
type Config struct {
	Thresholds Thresholds `yaml:"thresholds"`

	// AI analysis
	AIEnabled            bool          `yaml:"ai_enabled"`
	AIProviders          []string      `yaml:"ai_providers"`
	AIIntervalMinutes    int           `yaml:"ai_interval_minutes"`
	MinConfidencePercent int           `yaml:"min_confidence_percent"`
	ConsensusMode        bool          `yaml:"consensus_mode"`
	ProviderTimeout      time.Duration `yaml:"provider_timeout"`

	// Engine
	PollInterval    time.Duration `yaml:"poll_interval"`
	DisplayLimit    int           `yaml:"display_limit"`
	SnoozeDuration  time.Duration `yaml:"snooze_duration"`
	RetentionCycles int           `yaml:"retention_cycles"`

	// Telemetry
	PrometheusURL string   `yaml:"prometheus_url"`
	KubeContexts  []string `yaml:"kube_contexts"`

	// Storage
	StorageEnabled bool   `yaml:"storage_enabled"`
	DatabaseURL    string `yaml:"database_url"`

	// Output
	OutputFormat string `yaml:"output_format"`
	Verbose      bool   `yaml:"verbose"`
}

// NewConfig creates a new configuration with defaults overridden by env vars
func NewConfig() *Config {
	return &Config{
		Thresholds: Thresholds{
			HighRestartCount:         int32(getEnvInt("HIGH_RESTART_COUNT", 3)),
			CriticalRestartCount:     int32(getEnvInt("CRITICAL_RESTART_COUNT", 5)),
			CPUPressurePercent:       getEnvFloat("CPU_PRESSURE_PERCENT", 80),
			MemoryPressurePercent:    getEnvFloat("MEMORY_PRESSURE_PERCENT", 85),
			GPUMemoryPressurePercent: getEnvFloat("GPU_MEMORY_PRESSURE_PERCENT", 90),
		},

		AIEnabled:            getEnvBool("AI_ENABLED", false),
		AIProviders:          getEnvList("AI_PROVIDERS", nil),
		AIIntervalMinutes:    getEnvInt("AI_INTERVAL_MINUTES", 15),
		MinConfidencePercent: getEnvInt("MIN_CONFIDENCE_PERCENT", 70),
		ConsensusMode:        getEnvBool("CONSENSUS_MODE", true),
		ProviderTimeout:      time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 15)) * time.Second,

		PollInterval:    time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 30)) * time.Second,
		DisplayLimit:    getEnvInt("DISPLAY_LIMIT", 3),
		SnoozeDuration:  time.Duration(getEnvInt("SNOOZE_MINUTES", 60)) * time.Minute,
		RetentionCycles: getEnvInt("RETENTION_CYCLES", 2),

		PrometheusURL: getEnv("PROMETHEUS_URL", ""),
		KubeContexts:  getEnvList("KUBE_CONTEXTS", nil),

		StorageEnabled: getEnvBool("STORAGE_ENABLED", false),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		OutputFormat: getEnv("OUTPUT_FORMAT", "text"),
		Verbose:      getEnvBool("VERBOSE", false),
	}
}

// LoadFile overlays settings from a YAML file onto the config
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks hard requirements and clamps tunables to their
// documented ranges. It never rejects an out-of-range tunable.
func (c *Config) Validate() error {
	if c.StorageEnabled && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set when storage is enabled")
	}
	if c.AIEnabled && len(c.AIProviders) == 0 {
		return fmt.Errorf("AI_PROVIDERS must be set when AI analysis is enabled")
	}

	c.AIIntervalMinutes = clampInt(c.AIIntervalMinutes, MinIntervalMinutes, MaxIntervalMinutes)
	c.MinConfidencePercent = clampInt(c.MinConfidencePercent, MinConfidencePercentFloor, MinConfidencePercentCeil)

	if c.Thresholds.HighRestartCount < 1 {
		c.Thresholds.HighRestartCount = 1
	}
	if c.Thresholds.CriticalRestartCount < c.Thresholds.HighRestartCount {
		c.Thresholds.CriticalRestartCount = c.Thresholds.HighRestartCount
	}
	if c.DisplayLimit < 1 {
		c.DisplayLimit = 1
	}
	if c.RetentionCycles < 1 {
		c.RetentionCycles = 1
	}
	if c.PollInterval < time.Second {
		c.PollInterval = time.Second
	}
	if c.ProviderTimeout < time.Second {
		c.ProviderTimeout = time.Second
	}
	if c.SnoozeDuration < time.Minute {
		c.SnoozeDuration = time.Minute
	}

	return nil
}

// AIInterval returns the effective AI analysis interval
func (c *Config) AIInterval() time.Duration {
	return time.Duration(c.AIIntervalMinutes) * time.Minute
}

// MinConfidence returns the provider confidence floor as a [0,1] fraction
func (c *Config) MinConfidence() float64 {
	return float64(c.MinConfidencePercent) / 100.0
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
