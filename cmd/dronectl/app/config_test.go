package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/roman-kulish/ardrone-link/internal/command"
	"github.com/roman-kulish/ardrone-link/internal/link"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestNewConfig_Defaults(t *testing.T) {
	c := NewConfig()

	if err := c.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if got := c.Drone.CommandAddress(); got != "192.168.1.1:5556" {
		t.Errorf("CommandAddress() = %s", got)
	}
	if got := c.Drone.NavdataAddress(); got != "192.168.1.1:5554" {
		t.Errorf("NavdataAddress() = %s", got)
	}
	if got := c.Drone.LocalNavdataAddress(); got != ":5554" {
		t.Errorf("LocalNavdataAddress() = %s", got)
	}
	if c.Link.KeepAliveInterval.Duration() != link.KeepAliveInterval {
		t.Errorf("keep-alive interval = %s", c.Link.KeepAliveInterval)
	}
	if !c.Startup.NavdataDemo {
		t.Error("navdata demo should be enabled by default")
	}
	if c.Journal.Enabled {
		t.Error("journal should be disabled by default")
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
settings:
  logLevel: debug
drone:
  address: 10.0.0.2
  localNavdataPort: 0
link:
  keepAliveInterval: 100ms
  readTimeout: 1s
  strictChecksum: true
startup:
  flatTrim: true
  camera: bottom
  configuration:
    control:altitude_max: "3000"
journal:
  enabled: true
  dataDirectory: /tmp
  maxBatchSize: 10
  flushInterval: 250ms
`)

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if c.Settings.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %s", c.Settings.LogLevel)
	}
	if got := c.Drone.CommandAddress(); got != "10.0.0.2:5556" {
		t.Errorf("CommandAddress() = %s", got)
	}
	if c.Drone.LocalNavdataPort != 0 {
		t.Errorf("local navdata port = %d", c.Drone.LocalNavdataPort)
	}
	if c.Link.KeepAliveInterval.Duration() != 100*time.Millisecond {
		t.Errorf("keep-alive interval = %s", c.Link.KeepAliveInterval)
	}
	if c.Link.RepeatInterval.Duration() != link.RepeatInterval {
		t.Errorf("repeat interval should keep its default, got %s", c.Link.RepeatInterval)
	}
	if !c.Link.StrictChecksum {
		t.Error("strict checksum not set")
	}
	if mode, ok := c.Startup.CameraMode(); !ok || mode != command.CameraBottom {
		t.Errorf("CameraMode() = %v, %t", mode, ok)
	}
	if c.Startup.Configuration["control:altitude_max"] != "3000" {
		t.Errorf("configuration = %v", c.Startup.Configuration)
	}
	if c.Journal.FlushInterval.Duration() != 250*time.Millisecond {
		t.Errorf("flush interval = %s", c.Journal.FlushInterval)
	}
}

func TestLoadConfig_Empty(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("an empty file should load the defaults: %v", err)
	}
	if c.Drone.Address != defaultDroneAddress {
		t.Errorf("address = %s", c.Drone.Address)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown field", "drone:\n  addr: 10.0.0.2\n", "decoding configuration"},
		{"bad duration", "link:\n  readTimeout: soon\n", "failed to parse"},
		{"negative duration", "link:\n  repeatInterval: -1s\n", "link: invalid repeat interval"},
		{"zero keep-alive", "link:\n  keepAliveInterval: 0s\n", "keep-alive interval must be positive"},
		{"empty address", "drone:\n  address: \"\"\n", "address is required"},
		{"bad port", "drone:\n  commandPort: 70000\n", "invalid command port"},
		{"zero navdata port", "drone:\n  navdataPort: 0\n", "invalid navdata port"},
		{"bad camera", "startup:\n  camera: side\n", "invalid camera"},
		{"empty configuration key", "startup:\n  configuration:\n    \"\": x\n", "empty configuration key"},
		{"quote in configuration value", "startup:\n  configuration:\n    general:ardrone_name: 'a\"b'\n", "invalid command argument"},
		{"comma in configuration value", "startup:\n  configuration:\n    control:altitude_max: 3000,1\n", "invalid command argument"},
		{"zero errors threshold", "link:\n  readErrorsThreshold: 0\n", "threshold must be positive"},
		{"journal batch", "journal:\n  enabled: true\n  maxBatchSize: 0\n", "max batch size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error")
	}
}

func TestDurationOrDefault(t *testing.T) {
	if got := durationOrDefault(0, time.Second); got != time.Second {
		t.Errorf("got %s", got)
	}
	if got := durationOrDefault(Duration(time.Minute), time.Second); got != time.Minute {
		t.Errorf("got %s", got)
	}
}
