package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	os.Unsetenv("HIGH_RESTART_COUNT")
	os.Unsetenv("CPU_PRESSURE_PERCENT")
	os.Unsetenv("AI_INTERVAL_MINUTES")

	cfg := NewConfig()

	if cfg.Thresholds.HighRestartCount != 3 {
		t.Errorf("Expected default restart threshold 3, got %d", cfg.Thresholds.HighRestartCount)
	}

	if cfg.Thresholds.CriticalRestartCount != 5 {
		t.Errorf("Expected default critical restart count 5, got %d", cfg.Thresholds.CriticalRestartCount)
	}

	if cfg.Thresholds.CPUPressurePercent != 80 {
		t.Errorf("Expected default CPU pressure 80, got %.1f", cfg.Thresholds.CPUPressurePercent)
	}

	if cfg.DisplayLimit != 3 {
		t.Errorf("Expected default display limit 3, got %d", cfg.DisplayLimit)
	}

	if cfg.SnoozeDuration != time.Hour {
		t.Errorf("Expected default snooze duration 1h, got %v", cfg.SnoozeDuration)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	os.Setenv("HIGH_RESTART_COUNT", "4")
	os.Setenv("MEMORY_PRESSURE_PERCENT", "75")
	os.Setenv("AI_PROVIDERS", "openai, anthropic")
	defer os.Unsetenv("HIGH_RESTART_COUNT")
	defer os.Unsetenv("MEMORY_PRESSURE_PERCENT")
	defer os.Unsetenv("AI_PROVIDERS")

	cfg := NewConfig()

	if cfg.Thresholds.HighRestartCount != 4 {
		t.Errorf("Expected restart threshold 4 from env, got %d", cfg.Thresholds.HighRestartCount)
	}

	if cfg.Thresholds.MemoryPressurePercent != 75 {
		t.Errorf("Expected memory pressure 75 from env, got %.1f", cfg.Thresholds.MemoryPressurePercent)
	}

	if len(cfg.AIProviders) != 2 || cfg.AIProviders[0] != "openai" || cfg.AIProviders[1] != "anthropic" {
		t.Errorf("Expected providers [openai anthropic], got %v", cfg.AIProviders)
	}
}

func TestValidateClampsRanges(t *testing.T) {
	cfg := NewConfig()
	cfg.AIIntervalMinutes = 2
	cfg.MinConfidencePercent = 99
	cfg.Thresholds.HighRestartCount = 6
	cfg.Thresholds.CriticalRestartCount = 2

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}

	if cfg.AIIntervalMinutes != MinIntervalMinutes {
		t.Errorf("Expected interval clamped to %d, got %d", MinIntervalMinutes, cfg.AIIntervalMinutes)
	}

	if cfg.MinConfidencePercent != MinConfidencePercentCeil {
		t.Errorf("Expected min confidence clamped to %d, got %d", MinConfidencePercentCeil, cfg.MinConfidencePercent)
	}

	// Critical cutoff can never sit below the warning threshold
	if cfg.Thresholds.CriticalRestartCount != 6 {
		t.Errorf("Expected critical restart count raised to 6, got %d", cfg.Thresholds.CriticalRestartCount)
	}
}

func TestValidateStorageRequiresURL(t *testing.T) {
	cfg := NewConfig()
	cfg.StorageEnabled = true
	cfg.DatabaseURL = ""

	if err := cfg.Validate(); err == nil {
		t.Error("Expected error when storage enabled without DATABASE_URL")
	}
}

func TestValidateAIRequiresProviders(t *testing.T) {
	cfg := NewConfig()
	cfg.AIEnabled = true
	cfg.AIProviders = nil

	if err := cfg.Validate(); err == nil {
		t.Error("Expected error when AI enabled without providers")
	}
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte(`
thresholds:
  high_restart_count: 7
ai_enabled: true
ai_providers: ["local"]
display_limit: 5
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg := NewConfig()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}

	if cfg.Thresholds.HighRestartCount != 7 {
		t.Errorf("Expected restart threshold 7 from file, got %d", cfg.Thresholds.HighRestartCount)
	}

	if !cfg.AIEnabled {
		t.Error("Expected AI enabled from file")
	}

	if cfg.DisplayLimit != 5 {
		t.Errorf("Expected display limit 5 from file, got %d", cfg.DisplayLimit)
	}

	// Values not present in the file keep their defaults
	if cfg.Thresholds.CPUPressurePercent != 80 {
		t.Errorf("Expected CPU pressure default 80, got %.1f", cfg.Thresholds.CPUPressurePercent)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing config file")
	}
}
