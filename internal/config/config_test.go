package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Scene.RateHz != 30 {
		t.Errorf("expected rate 30, got %v", cfg.Scene.RateHz)
	}
	if !cfg.Web.Enabled || cfg.Web.Port != "8090" {
		t.Errorf("unexpected web defaults: %+v", cfg.Web)
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry should be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stride.yaml")
	content := `
scene:
  rate_hz: 60
  pilot: false
web:
  port: "9999"
session:
  record: true
  label: soak-test
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Scene.RateHz != 60 {
		t.Errorf("expected rate 60 from file, got %v", cfg.Scene.RateHz)
	}
	if cfg.Scene.Pilot {
		t.Error("expected pilot disabled from file")
	}
	if cfg.Web.Port != "9999" {
		t.Errorf("expected port 9999 from file, got %q", cfg.Web.Port)
	}
	if !cfg.Session.Record || cfg.Session.Label != "soak-test" {
		t.Errorf("unexpected session config: %+v", cfg.Session)
	}

	// Keys absent from the file keep defaults
	if cfg.Scene.Body.MaxSpeed != 300 {
		t.Errorf("expected default max speed 300, got %v", cfg.Scene.Body.MaxSpeed)
	}
	if cfg.Session.Path != "stride.db" {
		t.Errorf("expected default db path, got %q", cfg.Session.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Web.Port = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty web port")
	}

	cfg = Default()
	cfg.Session.Record = true
	cfg.Session.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for recording without a path")
	}

	cfg = Default()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.MQTT.Broker = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for telemetry without a broker")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("STRIDE_PORT", "7070")
	t.Setenv("STRIDE_DB", "/tmp/override.db")
	t.Setenv("STRIDE_MQTT_BROKER", "tcp://broker:1883")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Web.Port != "7070" {
		t.Errorf("expected env port 7070, got %q", cfg.Web.Port)
	}
	if cfg.Session.Path != "/tmp/override.db" {
		t.Errorf("expected env db path, got %q", cfg.Session.Path)
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("expected env broker to enable telemetry: %+v", cfg.Telemetry)
	}
}
