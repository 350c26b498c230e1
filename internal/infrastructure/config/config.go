package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// Config is the root configuration structure for Andon Core.
// It is loaded from a sectioned key/value file (andon_server.conf) and can
// be overridden by environment variables. Only the [server] and [data]
// sections are required; everything else is optional and disabled by default.
type Config struct {
	Server   ServerConfig   `ini:"server"`
	Data     DataConfig     `ini:"data"`
	Logging  LoggingConfig  `ini:"logging"`
	Pins     PinsConfig     `ini:"pins"`
	Registry RegistryConfig `ini:"registry"`
	MQTT     MQTTConfig     `ini:"mqtt"`
	InfluxDB InfluxDBConfig `ini:"influxdb"`
}

// ServerConfig contains TCP listener settings.
type ServerConfig struct {
	Host string `ini:"host"`
	Port int    `ini:"port"`

	// MaxConnections caps the number of concurrently served connections.
	MaxConnections int `ini:"max_connections"`
}

// DataConfig contains per-device log output settings.
type DataConfig struct {
	// OutputDir is the directory holding the per-device CSV logs.
	// Created on first write if absent.
	OutputDir string `ini:"output_dir"`

	// ExcelPrefix is prepended to the device name to form the log filename.
	// The name is historical: the logs were originally imported into Excel.
	ExcelPrefix string `ini:"excel_prefix"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `ini:"level"`
	Format string `ini:"format"`
	Output string `ini:"output"`
}

// PinsConfig contains pin label settings.
type PinsConfig struct {
	// LabelsFile is an optional YAML file overriding the built-in pin labels.
	LabelsFile string `ini:"labels_file"`
}

// RegistryConfig contains SQLite device registry settings.
type RegistryConfig struct {
	Enabled     bool   `ini:"enabled"`
	Path        string `ini:"path"`
	WALMode     bool   `ini:"wal_mode"`
	BusyTimeout int    `ini:"busy_timeout"`
}

// MQTTConfig contains settings for the optional MQTT ingest source.
type MQTTConfig struct {
	Enabled  bool   `ini:"enabled"`
	Host     string `ini:"host"`
	Port     int    `ini:"port"`
	TLS      bool   `ini:"tls"`
	ClientID string `ini:"client_id"`
	Username string `ini:"username"`
	Password string `ini:"password"`
	QoS      int    `ini:"qos"`

	// InitialDelay and MaxDelay bound the reconnect backoff (seconds).
	InitialDelay int `ini:"initial_delay"`
	MaxDelay     int `ini:"max_delay"`
}

// InfluxDBConfig contains settings for the optional time-series mirror.
type InfluxDBConfig struct {
	Enabled       bool   `ini:"enabled"`
	URL           string `ini:"url"`
	Token         string `ini:"token"`
	Org           string `ini:"org"`
	Bucket        string `ini:"bucket"`
	BatchSize     int    `ini:"batch_size"`
	FlushInterval int    `ini:"flush_interval"`
}

// Load reads configuration from a sectioned key/value file and applies
// environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. File values (override defaults)
//  3. Environment variables (override file values)
//
// If the file does not exist, a default configuration file is written to the
// given path and the defaults are used; created reports whether this
// happened. A failure to write the default file is not fatal; the service
// still runs with defaults.
//
// Environment variables follow the pattern ANDON_SECTION_KEY, for example
// ANDON_SERVER_HOST or ANDON_DATA_OUTPUT_DIR.
//
// Parameters:
//   - path: Path to the configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - created: True if a default configuration file was generated
//   - error: If the file cannot be parsed or validation fails
func Load(path string) (cfg *Config, created bool, err error) {
	cfg = defaultConfig()

	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		// First run: persist the documented defaults so operators have a
		// file to edit. Best effort only.
		if writeErr := WriteDefault(path); writeErr == nil {
			created = true
		}
	} else {
		file, loadErr := ini.Load(path)
		if loadErr != nil {
			return nil, false, fmt.Errorf("parsing config file: %w", loadErr)
		}
		if mapErr := file.MapTo(cfg); mapErr != nil {
			return nil, false, fmt.Errorf("mapping config file: %w", mapErr)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, false, fmt.Errorf("validating config: %w", err)
	}

	return cfg, created, nil
}

// WriteDefault writes the documented default configuration to path.
// Only the [server] and [data] sections are emitted; the optional sections
// are additive and applied from code defaults when absent.
func WriteDefault(path string) error {
	content := "[server]\n" +
		"host = 0.0.0.0\n" +
		"port = 5000\n" +
		"max_connections = 50\n" +
		"\n" +
		"[data]\n" +
		"output_dir = data\n" +
		"excel_prefix = data_\n"

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           5000,
			MaxConnections: 50,
		},
		Data: DataConfig{
			OutputDir:   "data",
			ExcelPrefix: "data_",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Registry: RegistryConfig{
			Path:        "data/andon.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Host:         "localhost",
			Port:         1883,
			ClientID:     "andon-core",
			QoS:          1,
			InitialDelay: 1,
			MaxDelay:     60,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables follow the pattern ANDON_SECTION_KEY.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("ANDON_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("ANDON_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	// Data
	if v := os.Getenv("ANDON_DATA_OUTPUT_DIR"); v != "" {
		cfg.Data.OutputDir = v
	}

	// Logging
	if v := os.Getenv("ANDON_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// MQTT credentials (keep secrets out of the config file)
	if v := os.Getenv("ANDON_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("ANDON_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}

	// InfluxDB token
	if v := os.Getenv("ANDON_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if c.Server.MaxConnections < 1 {
		errs = append(errs, "server.max_connections must be at least 1")
	}

	if c.Data.OutputDir == "" {
		errs = append(errs, "data.output_dir is required")
	}

	if c.Registry.Enabled && c.Registry.Path == "" {
		errs = append(errs, "registry.path is required when registry.enabled is true")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb.enabled is true")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb.enabled is true")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
