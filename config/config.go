package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/sam0x17/containerflare/command"
)

// Environment variables recognized by FromEnv and Resolve.
const (
	EnvContainerAddr = "CF_CONTAINER_ADDR"
	EnvContainerPort = "CF_CONTAINER_PORT"
	EnvCmdEndpoint   = "CF_CMD_ENDPOINT"
	EnvCmdTimeout    = "CF_CMD_TIMEOUT"
	EnvLogLevel      = "CF_LOG_LEVEL"
	EnvLogFormat     = "CF_LOG_FORMAT"
	EnvConfigFile    = "CF_CONFIG_FILE"
)

// Server contains HTTP bind configuration.
type Server struct {
	Addr string `toml:"addr"`
	Port int    `toml:"port"`
}

// Command contains host command channel configuration.
type Command struct {
	// Endpoint uses the command endpoint grammar: stdio, disabled,
	// tcp://<host:port>, unix://<path>.
	Endpoint       string `toml:"endpoint"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"` // auto, console, or json
	Level  string `toml:"level"`
}

// Config encapsulates all configuration for a containerflare runtime.
type Config struct {
	Server  Server  `toml:"server"`
	Command Command `toml:"command"`
	Logging Logging `toml:"logging"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server:  Server{Addr: "127.0.0.1", Port: 8787},
		Command: Command{Endpoint: "stdio", TimeoutSeconds: 30},
		Logging: Logging{Format: "auto", Level: "info"},
	}
}

// FromEnv builds a config from defaults plus platform environment variables.
func FromEnv() (*Config, error) {
	cfg := Default()
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resolve layers configuration sources: defaults, then the TOML file at path
// (or CF_CONFIG_FILE when path is empty), then environment variables. A
// missing file is fine; a malformed one is not.
func Resolve(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := loadInto(&cfg, path); err != nil {
			return nil, err
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile parses the TOML file at path over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := loadInto(&cfg, path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadInto(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays recognized environment variables. Malformed numeric
// values fall back silently, matching the shim contract; the endpoint string
// is validated later so a bad one aborts startup.
func applyEnv(cfg *Config) {
	if addr := os.Getenv(EnvContainerAddr); addr != "" {
		cfg.Server.Addr = addr
	}
	if raw := os.Getenv(EnvContainerPort); raw != "" {
		if port, err := strconv.Atoi(raw); err == nil && port >= 0 && port <= 65535 {
			cfg.Server.Port = port
		}
	}
	if endpoint := os.Getenv(EnvCmdEndpoint); endpoint != "" {
		cfg.Command.Endpoint = endpoint
	}
	if raw := os.Getenv(EnvCmdTimeout); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			cfg.Command.TimeoutSeconds = seconds
		}
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv(EnvLogFormat); format != "" {
		cfg.Logging.Format = format
	}
}

// Validate checks the fields that cannot be repaired by falling back.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if _, err := c.CommandEndpoint(); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("log format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

// BindAddr returns the host:port the HTTP server should listen on.
func (c *Config) BindAddr() string {
	return net.JoinHostPort(c.Server.Addr, strconv.Itoa(c.Server.Port))
}

// CommandEndpoint parses the configured endpoint string.
func (c *Config) CommandEndpoint() (command.Endpoint, error) {
	return command.ParseEndpoint(c.Command.Endpoint)
}

// CommandTimeout returns the per-send timeout as a duration.
func (c *Config) CommandTimeout() time.Duration {
	if c.Command.TimeoutSeconds <= 0 {
		return command.DefaultTimeout
	}
	return time.Duration(c.Command.TimeoutSeconds) * time.Second
}
