package config_test

import (
	"testing"

	"github.com/iho/bankcore/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DataDir != "data" {
		t.Fatalf("expected default data dir, got %q", cfg.DataDir)
	}

	if cfg.HistoryWindow != 500 {
		t.Fatalf("expected default history window 500, got %d", cfg.HistoryWindow)
	}

	if cfg.MinAccountNumber != 100001 || cfg.MaxAccountNumber != 999999 {
		t.Fatalf("unexpected account number range %d-%d", cfg.MinAccountNumber, cfg.MaxAccountNumber)
	}

	if cfg.MaxPinAttempts != 3 || cfg.PinLength != 4 {
		t.Fatalf("unexpected security defaults: attempts %d, pin length %d", cfg.MaxPinAttempts, cfg.PinLength)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/var/lib/bankcore")
	t.Setenv("HISTORY_WINDOW", "50")
	t.Setenv("MAX_PIN_ATTEMPTS", "5")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DataDir != "/var/lib/bankcore" {
		t.Fatalf("expected custom data dir, got %s", cfg.DataDir)
	}

	if cfg.HistoryWindow != 50 {
		t.Fatalf("expected history window override, got %d", cfg.HistoryWindow)
	}

	if cfg.MaxPinAttempts != 5 {
		t.Fatalf("expected pin attempts override, got %d", cfg.MaxPinAttempts)
	}

	if cfg.LogFormat != "json" {
		t.Fatalf("expected log format override, got %s", cfg.LogFormat)
	}
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("HISTORY_WINDOW", "lots")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid integer")
	}
}
