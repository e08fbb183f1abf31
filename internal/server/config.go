package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/rpsplus/internal/referee"
)

// Config represents the complete server configuration
type Config struct {
	Server  ServerSettings `hcl:"server,block"`
	Matches MatchSettings  `hcl:"matches,block"`
}

// ServerSettings contains listener and logging configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// MatchSettings bounds the hosted matches
type MatchSettings struct {
	MaxActive            int `hcl:"max_active,optional"`
	IdleTimeoutSeconds   int `hcl:"idle_timeout_seconds,optional"`
	SweepIntervalSeconds int `hcl:"sweep_interval_seconds,optional"`
}

// configFile mirrors Config with optional blocks so an empty file decodes.
type configFile struct {
	Server  *ServerSettings `hcl:"server,block"`
	Matches *MatchSettings  `hcl:"matches,block"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Matches: MatchSettings{
			MaxActive:            1000,
			IdleTimeoutSeconds:   1800,
			SweepIntervalSeconds: 60,
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields the
// defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw configFile
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config := &Config{}
	if raw.Server != nil {
		config.Server = *raw.Server
	}
	if raw.Matches != nil {
		config.Matches = *raw.Matches
	}
	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Server.Address == "" {
		c.Server.Address = defaults.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaults.Server.LogLevel
	}
	if c.Matches.MaxActive == 0 {
		c.Matches.MaxActive = defaults.Matches.MaxActive
	}
	if c.Matches.IdleTimeoutSeconds == 0 {
		c.Matches.IdleTimeoutSeconds = defaults.Matches.IdleTimeoutSeconds
	}
	if c.Matches.SweepIntervalSeconds == 0 {
		c.Matches.SweepIntervalSeconds = defaults.Matches.SweepIntervalSeconds
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Server.LogLevel, err)
	}
	if c.Matches.MaxActive < 0 {
		return fmt.Errorf("max_active must not be negative")
	}
	if c.Matches.IdleTimeoutSeconds < 0 {
		return fmt.Errorf("idle_timeout_seconds must not be negative")
	}
	if c.Matches.SweepIntervalSeconds < 0 {
		return fmt.Errorf("sweep_interval_seconds must not be negative")
	}
	if c.Matches.IdleTimeoutSeconds > 0 && c.Matches.SweepIntervalSeconds > c.Matches.IdleTimeoutSeconds {
		return fmt.Errorf("sweep_interval_seconds (%d) must not exceed idle_timeout_seconds (%d)",
			c.Matches.SweepIntervalSeconds, c.Matches.IdleTimeoutSeconds)
	}
	return nil
}

// Addr returns the full listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Referee converts the match settings for the referee service
func (c *Config) Referee() referee.Config {
	return referee.Config{
		MaxActive:     c.Matches.MaxActive,
		IdleTimeout:   time.Duration(c.Matches.IdleTimeoutSeconds) * time.Second,
		SweepInterval: time.Duration(c.Matches.SweepIntervalSeconds) * time.Second,
	}
}
