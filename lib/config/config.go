// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when no --config flag is
// given.
const EnvironmentVariable = "TEL84_CONFIG"

// Config is the configuration shared by every tel84 binary. Each
// binary reads only the sections it needs.
type Config struct {
	// Server configures the simulated CCD instrument server.
	Server ServerConfig `yaml:"server"`

	// CCDClient configures how bridges and the monitor reach the
	// instrument server.
	CCDClient CCDClientConfig `yaml:"ccd_client"`

	// MQTT configures the broker connection.
	MQTT MQTTConfig `yaml:"mqtt"`

	// Topics names every MQTT topic the bridges use.
	Topics TopicsConfig `yaml:"topics"`

	// Bridge configures the CCD bridge loops.
	Bridge BridgeConfig `yaml:"bridge"`

	// Consola configures the telescope console simulator.
	Consola ConsolaConfig `yaml:"consola"`

	// Monitor configures the terminal monitor.
	Monitor MonitorConfig `yaml:"monitor"`
}

// ServerConfig configures tel84-ccd-server.
type ServerConfig struct {
	// ListenAddr is the TCP listen address.
	// Default: 127.0.0.1:8888
	ListenAddr string `yaml:"listen_addr"`

	// MaxLineLength bounds one request line in bytes.
	// Default: 4096
	MaxLineLength int `yaml:"max_line_length"`

	// TickInterval is the wait before each of the 100 progress steps.
	// Default: 300ms
	TickInterval time.Duration `yaml:"tick_interval"`

	// TemperatureMin and TemperatureMax bound the simulated sensor.
	// Default: -120 and -105
	TemperatureMin float64 `yaml:"temperature_min"`
	TemperatureMax float64 `yaml:"temperature_max"`
}

// CCDClientConfig configures the instrument protocol client.
type CCDClientConfig struct {
	// Address is the instrument server address.
	// Default: 127.0.0.1:8888
	Address string `yaml:"address"`

	// DialTimeout bounds connection establishment.
	// Default: 5s
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// RequestTimeout bounds one request/response exchange.
	// Default: 5s
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// MQTTConfig configures the broker connection.
type MQTTConfig struct {
	// Broker is the broker URL.
	// Default: tcp://127.0.0.1:1883
	Broker string `yaml:"broker"`

	// ClientID identifies this connection to the broker. Empty selects
	// a per-binary default.
	ClientID string `yaml:"client_id"`

	// Username and Password authenticate to the broker when set.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// QoS is the quality of service for publishes and subscriptions.
	// Default: 0
	QoS byte `yaml:"qos"`

	// ConnectTimeout bounds the initial broker connection.
	// Default: 10s
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// TopicsConfig names the MQTT topics.
type TopicsConfig struct {
	CCDInitialize  string `yaml:"ccd_initialize"`
	CCDExpose      string `yaml:"ccd_expose"`
	CCDProgress    string `yaml:"ccd_progress"`
	CCDTemperature string `yaml:"ccd_temperature"`
	CCDStatus      string `yaml:"ccd_status"`

	ConsolaZenith   string `yaml:"consola_zenith"`
	ConsolaMove     string `yaml:"consola_move"`
	ConsolaPosition string `yaml:"consola_position"`
}

// BridgeConfig configures the CCD bridge.
type BridgeConfig struct {
	// PollInterval is the wait between PROGRESO polls of a running
	// exposure.
	// Default: 1s
	PollInterval time.Duration `yaml:"poll_interval"`

	// TelemetryInterval is the wait between TEMP/STATUS publishes.
	// Default: 5s
	TelemetryInterval time.Duration `yaml:"telemetry_interval"`
}

// ConsolaConfig configures the telescope console simulator.
type ConsolaConfig struct {
	// Latitude and Longitude of the site in degrees, east positive.
	// Default: 31.0456, -115.4545 (San Pedro Mártir)
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`

	// Height of the site in meters.
	// Default: 2800
	Height float64 `yaml:"height"`

	// PublishInterval is the wait between position publishes.
	// Default: 700ms
	PublishInterval time.Duration `yaml:"publish_interval"`
}

// MonitorConfig configures tel84-ccd-monitor.
type MonitorConfig struct {
	// RefreshInterval is the wait between instrument polls.
	// Default: 1s
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// BinX and BinY are sent by the INIT key.
	// Default: 1, 1
	BinX int `yaml:"bin_x"`
	BinY int `yaml:"bin_y"`

	// ExposureSeconds is sent by the EXPONE key.
	// Default: 10
	ExposureSeconds int `yaml:"exposure_seconds"`
}

// Default returns the configuration every binary uses when no file is
// given. It matches the addresses and topics the observatory has
// always used.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:     "127.0.0.1:8888",
			MaxLineLength:  4096,
			TickInterval:   300 * time.Millisecond,
			TemperatureMin: -120,
			TemperatureMax: -105,
		},
		CCDClient: CCDClientConfig{
			Address:        "127.0.0.1:8888",
			DialTimeout:    5 * time.Second,
			RequestTimeout: 5 * time.Second,
		},
		MQTT: MQTTConfig{
			Broker:         "tcp://127.0.0.1:1883",
			ConnectTimeout: 10 * time.Second,
		},
		Topics: TopicsConfig{
			CCDInitialize:   "telescopio/tel84/instrumentos/ccd/inicializa",
			CCDExpose:       "telescopio/tel84/instrumentos/ccd/expone",
			CCDProgress:     "telescopio/tel84/instrumentos/ccd/progreso",
			CCDTemperature:  "telescopio/tel84/instrumentos/ccd/status/temperatura",
			CCDStatus:       "telescopio/tel84/instrumentos/ccd/status",
			ConsolaZenith:   "telescopio/tel84/instrumentos/consola/zenith",
			ConsolaMove:     "telescopio/tel84/instrumentos/consola/mueve",
			ConsolaPosition: "telescopio/tel84/instrumentos/consola/posicion",
		},
		Bridge: BridgeConfig{
			PollInterval:      time.Second,
			TelemetryInterval: 5 * time.Second,
		},
		Consola: ConsolaConfig{
			Latitude:        31.0456,
			Longitude:       -115.4545,
			Height:          2800,
			PublishInterval: 700 * time.Millisecond,
		},
		Monitor: MonitorConfig{
			RefreshInterval: time.Second,
			BinX:            1,
			BinY:            1,
			ExposureSeconds: 10,
		},
	}
}

// Load loads the file named by TEL84_CONFIG, or returns Default() when
// the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// Resolve loads flagPath when non-empty, otherwise behaves like Load.
// Commands call it with the value of their --config flag.
func Resolve(flagPath string) (*Config, error) {
	if flagPath != "" {
		return LoadFile(flagPath)
	}
	return Load()
}

// LoadFile loads configuration from path on top of Default(). Files
// ending in .json or .jsonc are read as JSON with comments and trailing
// commas; anything else is YAML. Unknown keys are errors.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// JSON is a subset of YAML, so one decoder serves both once the
		// comments are stripped.
		data = jsonc.ToJSON(data)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in address and
// credential fields.
func (c *Config) expandVariables() {
	fields := []*string{
		&c.Server.ListenAddr,
		&c.CCDClient.Address,
		&c.MQTT.Broker,
		&c.MQTT.ClientID,
		&c.MQTT.Username,
		&c.MQTT.Password,
	}
	for _, field := range fields {
		*field = expandVars(*field)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.ListenAddr == "" {
		errs = append(errs, fmt.Errorf("server.listen_addr is required"))
	}
	if c.Server.MaxLineLength < 0 {
		errs = append(errs, fmt.Errorf("server.max_line_length must not be negative"))
	}
	if c.Server.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("server.tick_interval must be positive"))
	}
	if c.Server.TemperatureMin >= c.Server.TemperatureMax {
		errs = append(errs, fmt.Errorf("server.temperature_min must be below server.temperature_max"))
	}

	if c.CCDClient.Address == "" {
		errs = append(errs, fmt.Errorf("ccd_client.address is required"))
	}
	if c.CCDClient.DialTimeout <= 0 {
		errs = append(errs, fmt.Errorf("ccd_client.dial_timeout must be positive"))
	}
	if c.CCDClient.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("ccd_client.request_timeout must be positive"))
	}

	if c.MQTT.Broker == "" {
		errs = append(errs, fmt.Errorf("mqtt.broker is required"))
	}
	if c.MQTT.QoS > 2 {
		errs = append(errs, fmt.Errorf("mqtt.qos must be 0, 1 or 2"))
	}
	if c.MQTT.ConnectTimeout <= 0 {
		errs = append(errs, fmt.Errorf("mqtt.connect_timeout must be positive"))
	}

	topics := map[string]string{
		"topics.ccd_initialize":   c.Topics.CCDInitialize,
		"topics.ccd_expose":       c.Topics.CCDExpose,
		"topics.ccd_progress":     c.Topics.CCDProgress,
		"topics.ccd_temperature":  c.Topics.CCDTemperature,
		"topics.ccd_status":       c.Topics.CCDStatus,
		"topics.consola_zenith":   c.Topics.ConsolaZenith,
		"topics.consola_move":     c.Topics.ConsolaMove,
		"topics.consola_position": c.Topics.ConsolaPosition,
	}
	for _, name := range slices.Sorted(maps.Keys(topics)) {
		topic := topics[name]
		if topic == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		} else if strings.ContainsAny(topic, "+#") {
			errs = append(errs, fmt.Errorf("%s must not contain wildcards", name))
		}
	}

	if c.Bridge.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("bridge.poll_interval must be positive"))
	}
	if c.Bridge.TelemetryInterval <= 0 {
		errs = append(errs, fmt.Errorf("bridge.telemetry_interval must be positive"))
	}

	if c.Consola.Latitude < -90 || c.Consola.Latitude > 90 {
		errs = append(errs, fmt.Errorf("consola.latitude must be within [-90, 90]"))
	}
	if c.Consola.Longitude < -180 || c.Consola.Longitude > 180 {
		errs = append(errs, fmt.Errorf("consola.longitude must be within [-180, 180]"))
	}
	if c.Consola.PublishInterval <= 0 {
		errs = append(errs, fmt.Errorf("consola.publish_interval must be positive"))
	}

	if c.Monitor.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("monitor.refresh_interval must be positive"))
	}
	if c.Monitor.BinX <= 0 || c.Monitor.BinY <= 0 {
		errs = append(errs, fmt.Errorf("monitor.bin_x and monitor.bin_y must be positive"))
	}
	if c.Monitor.ExposureSeconds < 0 {
		errs = append(errs, fmt.Errorf("monitor.exposure_seconds must not be negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
