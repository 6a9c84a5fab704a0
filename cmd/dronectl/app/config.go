package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/ardrone-link/internal/command"
	"github.com/roman-kulish/ardrone-link/internal/link"
)

const (
	defaultDroneAddress       = "192.168.1.1"
	defaultFirstFrameAttempts = 20
	defaultFirstFramePoll     = 50 * time.Millisecond
	defaultReportInterval     = 5 * time.Second
	defaultDataDirectory      = "data"
	defaultMaxBatchSize       = 100
	defaultFlushInterval      = time.Second

	CameraFront  CameraName = "front"
	CameraBottom CameraName = "bottom"
)

var validCameras = map[CameraName]command.CameraMode{
	CameraFront:  command.CameraFront,
	CameraBottom: command.CameraBottom,
}

type CameraName string

// Duration is a time.Duration read from strings such as "200ms" or "5s"
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("app.Duration: failed to parse: %s", err)
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) Validate() error {
	if d < 0 {
		return fmt.Errorf("app.Duration: must not be negative: %s", d)
	}
	return nil
}

// Config represents the main application configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Drone    DroneConfig   `yaml:"drone"`
	Link     LinkConfig    `yaml:"link"`
	Startup  StartupConfig `yaml:"startup"`
	Journal  JournalConfig `yaml:"journal"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel slog.Level `yaml:"logLevel"`
}

// DroneConfig represents where the drone is reached
type DroneConfig struct {
	Address          string `yaml:"address"`
	CommandPort      int    `yaml:"commandPort"`
	NavdataPort      int    `yaml:"navdataPort"`
	LocalNavdataPort int    `yaml:"localNavdataPort"` // 0 binds an ephemeral port
}

// LinkConfig represents the command and telemetry link settings
type LinkConfig struct {
	KeepAliveInterval   Duration `yaml:"keepAliveInterval"`
	ReadTimeout         Duration `yaml:"readTimeout"`
	ReadErrorsThreshold uint8    `yaml:"readErrorsThreshold"`
	RepeatInterval      Duration `yaml:"repeatInterval"`
	StrictChecksum      bool     `yaml:"strictChecksum"`
	FirstFrameAttempts  int      `yaml:"firstFrameAttempts"`
	FirstFramePoll      Duration `yaml:"firstFramePoll"`
	ReportInterval      Duration `yaml:"reportInterval"`
}

// StartupConfig represents the commands sent once the link is up
type StartupConfig struct {
	NavdataDemo   bool              `yaml:"navdataDemo"`
	FlatTrim      bool              `yaml:"flatTrim"`
	Camera        CameraName        `yaml:"camera"`
	Configuration map[string]string `yaml:"configuration"` // extra AT*CONFIG key/value pairs
}

// JournalConfig represents command journal settings
type JournalConfig struct {
	Enabled       bool     `yaml:"enabled"`
	DataDirectory string   `yaml:"dataDirectory"`
	MaxBatchSize  int      `yaml:"maxBatchSize"`
	FlushInterval Duration `yaml:"flushInterval"`
}

// NewConfig returns the configuration used for zero values
func NewConfig() *Config {
	return &Config{
		Settings: Settings{LogLevel: slog.LevelInfo},
		Drone: DroneConfig{
			Address:          defaultDroneAddress,
			CommandPort:      link.CommandPort,
			NavdataPort:      link.NavdataPort,
			LocalNavdataPort: link.NavdataPort,
		},
		Link: LinkConfig{
			KeepAliveInterval:   Duration(link.KeepAliveInterval),
			ReadTimeout:         Duration(link.ReadTimeout),
			ReadErrorsThreshold: link.ReadErrorsThreshold,
			RepeatInterval:      Duration(link.RepeatInterval),
			FirstFrameAttempts:  defaultFirstFrameAttempts,
			FirstFramePoll:      Duration(defaultFirstFramePoll),
			ReportInterval:      Duration(defaultReportInterval),
		},
		Startup: StartupConfig{
			NavdataDemo: true,
		},
		Journal: JournalConfig{
			DataDirectory: defaultDataDirectory,
			MaxBatchSize:  defaultMaxBatchSize,
			FlushInterval: Duration(defaultFlushInterval),
		},
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults and validates it
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening configuration: %w", err)
	}
	defer f.Close()

	c := NewConfig()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	if err = c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) Validate() error {
	if err := c.Drone.Validate(); err != nil {
		return err
	}
	if err := c.Link.Validate(); err != nil {
		return err
	}
	if err := c.Startup.Validate(); err != nil {
		return err
	}
	return c.Journal.Validate()
}

func (c *DroneConfig) Validate() error {
	if c.Address == "" {
		return errors.New("drone: address is required")
	}

	ports := []struct {
		name      string
		port      int
		allowZero bool
	}{
		{"command port", c.CommandPort, false},
		{"navdata port", c.NavdataPort, false},
		{"local navdata port", c.LocalNavdataPort, true},
	}
	for _, p := range ports {
		if p.port < 0 || p.port > 65535 || (p.port == 0 && !p.allowZero) {
			return fmt.Errorf("drone: invalid %s: %d", p.name, p.port)
		}
	}

	return nil
}

// CommandAddress is the drone's AT command endpoint
func (c *DroneConfig) CommandAddress() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.CommandPort))
}

// NavdataAddress is the drone's navdata endpoint
func (c *DroneConfig) NavdataAddress() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.NavdataPort))
}

// LocalNavdataAddress is the local address navdata is received on
func (c *DroneConfig) LocalNavdataAddress() string {
	return net.JoinHostPort("", strconv.Itoa(c.LocalNavdataPort))
}

func (c *LinkConfig) Validate() error {
	durations := []struct {
		name string
		d    Duration
	}{
		{"keep-alive interval", c.KeepAliveInterval},
		{"read timeout", c.ReadTimeout},
		{"repeat interval", c.RepeatInterval},
		{"first frame poll", c.FirstFramePoll},
		{"report interval", c.ReportInterval},
	}
	for _, v := range durations {
		if err := v.d.Validate(); err != nil {
			return fmt.Errorf("link: invalid %s: %w", v.name, err)
		}
	}

	if c.KeepAliveInterval == 0 {
		return errors.New("link: keep-alive interval must be positive")
	}
	if c.ReadTimeout == 0 {
		return errors.New("link: read timeout must be positive")
	}
	if c.ReadErrorsThreshold == 0 {
		return errors.New("link: read errors threshold must be positive")
	}
	if c.FirstFrameAttempts < 0 {
		return fmt.Errorf("link: first frame attempts cannot be negative: %d given", c.FirstFrameAttempts)
	}

	return nil
}

func (c *StartupConfig) Validate() error {
	if c.Camera != "" {
		if _, ok := validCameras[c.Camera]; !ok {
			return fmt.Errorf("startup: invalid camera: %s", c.Camera)
		}
	}
	for key, value := range c.Configuration {
		if err := command.NewSetConfiguration(key, value).Validate(); err != nil {
			return fmt.Errorf("startup: %w", err)
		}
	}
	return nil
}

// CameraMode returns the camera to switch to, false if none is configured
func (c *StartupConfig) CameraMode() (command.CameraMode, bool) {
	mode, ok := validCameras[c.Camera]
	return mode, ok
}

func (c *JournalConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("journal: max batch size must be positive: %d given", c.MaxBatchSize)
	}
	if err := c.FlushInterval.Validate(); err != nil {
		return fmt.Errorf("journal: invalid flush interval: %w", err)
	}
	return nil
}
