// Package config loads the stride configuration file and applies
// environment overrides for the commands.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/strideworks/go-stride/pkg/scene"
	"github.com/strideworks/go-stride/pkg/telemetry"
)

// Config is the full configuration for a stride server.
type Config struct {
	Scene     scene.Config    `yaml:"scene"`
	Web       WebConfig       `yaml:"web"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Session   SessionConfig   `yaml:"session"`
}

// WebConfig configures the dashboard server.
type WebConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port"`
}

// TelemetryConfig configures the MQTT frame publisher.
type TelemetryConfig struct {
	Enabled bool             `yaml:"enabled"`
	MQTT    telemetry.Config `yaml:"mqtt"`
}

// SessionConfig configures frame recording.
type SessionConfig struct {
	Path   string `yaml:"path"`   // sqlite database file
	Record bool   `yaml:"record"` // start recording immediately
	Label  string `yaml:"label"`  // label for the recorded session
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Scene: scene.DefaultConfig(),
		Web: WebConfig{
			Enabled: true,
			Port:    "8090",
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
			MQTT:    telemetry.DefaultConfig(),
		},
		Session: SessionConfig{
			Path: "stride.db",
		},
	}
}

// Load reads a YAML config file over the defaults. Keys missing from
// the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the parts the commands cannot limp along without.
func (c *Config) Validate() error {
	if c.Web.Enabled && c.Web.Port == "" {
		return fmt.Errorf("web.port is required when the dashboard is enabled")
	}
	if c.Session.Record && c.Session.Path == "" {
		return fmt.Errorf("session.path is required when recording is enabled")
	}
	if c.Telemetry.Enabled && c.Telemetry.MQTT.Broker == "" {
		return fmt.Errorf("telemetry.mqtt.broker is required when telemetry is enabled")
	}
	return nil
}

// ApplyEnv overlays STRIDE_* environment variables on the config.
func (c *Config) ApplyEnv() {
	if port := os.Getenv("STRIDE_PORT"); port != "" {
		c.Web.Port = port
	}
	if db := os.Getenv("STRIDE_DB"); db != "" {
		c.Session.Path = db
	}
	if broker := os.Getenv("STRIDE_MQTT_BROKER"); broker != "" {
		c.Telemetry.MQTT.Broker = broker
		c.Telemetry.Enabled = true
	}
}
