package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
[server]
host = 192.168.1.10
port = 6000
max_connections = 10

[data]
output_dir = /var/lib/andon
excel_prefix = line_

[registry]
enabled = true
path = /var/lib/andon/registry.db
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "andon_server.conf")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, created, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if created {
		t.Error("Load() created = true, want false for existing file")
	}

	if cfg.Server.Host != "192.168.1.10" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "192.168.1.10")
	}
	if cfg.Server.Port != 6000 {
		t.Errorf("Server.Port = %d, want 6000", cfg.Server.Port)
	}
	if cfg.Server.MaxConnections != 10 {
		t.Errorf("Server.MaxConnections = %d, want 10", cfg.Server.MaxConnections)
	}
	if cfg.Data.OutputDir != "/var/lib/andon" {
		t.Errorf("Data.OutputDir = %q, want %q", cfg.Data.OutputDir, "/var/lib/andon")
	}
	if cfg.Data.ExcelPrefix != "line_" {
		t.Errorf("Data.ExcelPrefix = %q, want %q", cfg.Data.ExcelPrefix, "line_")
	}
	if !cfg.Registry.Enabled {
		t.Error("Registry.Enabled = false, want true")
	}

	// Unset sections fall back to defaults.
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, "info")
	}
	if cfg.MQTT.Enabled {
		t.Error("MQTT.Enabled = true, want default false")
	}
}

func TestLoad_MissingFileCreatesDefault(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "andon_server.conf")

	cfg, created, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !created {
		t.Error("Load() created = false, want true for missing file")
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want default 5000", cfg.Server.Port)
	}
	if cfg.Server.MaxConnections != 50 {
		t.Errorf("Server.MaxConnections = %d, want default 50", cfg.Server.MaxConnections)
	}
	if cfg.Data.OutputDir != "data" {
		t.Errorf("Data.OutputDir = %q, want default %q", cfg.Data.OutputDir, "data")
	}
	if cfg.Data.ExcelPrefix != "data_" {
		t.Errorf("Data.ExcelPrefix = %q, want default %q", cfg.Data.ExcelPrefix, "data_")
	}

	// A default file must now exist and be loadable.
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("default config file not written: %v", err)
	}
	reloaded, created, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() of generated file error = %v", err)
	}
	if created {
		t.Error("second Load() created = true, want false")
	}
	if *reloaded != *cfg {
		t.Errorf("reloaded config = %+v, want %+v", reloaded, cfg)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "andon_server.conf")
	if err := os.WriteFile(configPath, []byte("[server\nhost"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, _, err := Load(configPath); err == nil {
		t.Error("Load() expected error for malformed file, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "zero max connections",
			mutate:  func(c *Config) { c.Server.MaxConnections = 0 },
			wantErr: true,
		},
		{
			name:    "empty output dir",
			mutate:  func(c *Config) { c.Data.OutputDir = "" },
			wantErr: true,
		},
		{
			name: "registry enabled without path",
			mutate: func(c *Config) {
				c.Registry.Enabled = true
				c.Registry.Path = ""
			},
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name: "influxdb enabled without url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.Bucket = "events"
			},
			wantErr: true,
		},
		{
			name: "influxdb enabled fully configured",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = "http://localhost:8086"
				c.InfluxDB.Bucket = "events"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("ANDON_SERVER_HOST", "10.0.0.5")
	t.Setenv("ANDON_SERVER_PORT", "7000")
	t.Setenv("ANDON_DATA_OUTPUT_DIR", "/srv/andon")
	t.Setenv("ANDON_LOGGING_LEVEL", "debug")
	t.Setenv("ANDON_MQTT_USERNAME", "shopfloor")
	t.Setenv("ANDON_MQTT_PASSWORD", "secret")
	t.Setenv("ANDON_INFLUXDB_TOKEN", "tok-123")

	applyEnvOverrides(cfg)

	if cfg.Server.Host != "10.0.0.5" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "10.0.0.5")
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Data.OutputDir != "/srv/andon" {
		t.Errorf("Data.OutputDir = %q, want %q", cfg.Data.OutputDir, "/srv/andon")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.MQTT.Username != "shopfloor" {
		t.Errorf("MQTT.Username = %q, want %q", cfg.MQTT.Username, "shopfloor")
	}
	if cfg.MQTT.Password != "secret" {
		t.Errorf("MQTT.Password = %q, want %q", cfg.MQTT.Password, "secret")
	}
	if cfg.InfluxDB.Token != "tok-123" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "tok-123")
	}
}

func TestApplyEnvOverrides_InvalidPortIgnored(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("ANDON_SERVER_PORT", "not-a-port")

	applyEnvOverrides(cfg)

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000 (invalid override ignored)", cfg.Server.Port)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	cfg := ServerConfig{Host: "0.0.0.0", Port: 5000}
	if got := cfg.Addr(); got != "0.0.0.0:5000" {
		t.Errorf("Addr() = %q, want %q", got, "0.0.0.0:5000")
	}
}
