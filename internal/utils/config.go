package utils

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Parameter handling modes for the print route.
const (
	ParamModeLenient = "lenient"
	ParamModeStrict  = "strict"
)

// Config holds the complete service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Map    MapConfig    `yaml:"map"`
	PDF    PDFConfig    `yaml:"pdf"`
	Logger LoggerConfig `yaml:"logger"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	Prefork         bool          `yaml:"prefork"`
	EnableMonitor   bool          `yaml:"enable_monitor"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type MapConfig struct {
	PrintRoute string `yaml:"print_route"`
	ParamMode  string `yaml:"param_mode"`
}

type PDFConfig struct {
	ChromePath      string `yaml:"chrome_path"`
	ChromeNoSandbox bool   `yaml:"chrome_no_sandbox"`
	UserDataDir     string `yaml:"user_data_dir"`
	NavTimeoutSecs  int    `yaml:"nav_timeout_secs"`
	TimeoutSecs     int    `yaml:"timeout_secs"`
}

type LoggerConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            "5555",
			EnableMonitor:   true,
			ShutdownTimeout: 5 * time.Second,
		},
		Map: MapConfig{
			PrintRoute: "/print-map",
			ParamMode:  ParamModeLenient,
		},
		PDF: PDFConfig{
			NavTimeoutSecs: 30,
		},
		Logger: LoggerConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// Address returns the host:port pair the listener binds to.
func (c Config) Address() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// NavTimeout is the upper bound for a single page navigation.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.PDF.NavTimeoutSecs) * time.Second
}

// RenderTimeout bounds a whole render. Zero means no bound.
func (c Config) RenderTimeout() time.Duration {
	return time.Duration(c.PDF.TimeoutSecs) * time.Second
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is empty")
	}
	if p, err := strconv.Atoi(c.Server.Port); err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("server.port %q is not a valid port", c.Server.Port)
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.New("server.shutdown_timeout must not be negative")
	}
	if !strings.HasPrefix(c.Map.PrintRoute, "/") {
		return fmt.Errorf("map.print_route %q must start with /", c.Map.PrintRoute)
	}
	switch c.Map.ParamMode {
	case ParamModeLenient, ParamModeStrict:
	default:
		return fmt.Errorf("map.param_mode %q must be %q or %q", c.Map.ParamMode, ParamModeLenient, ParamModeStrict)
	}
	if c.PDF.NavTimeoutSecs < 0 || c.PDF.TimeoutSecs < 0 {
		return errors.New("pdf timeouts must not be negative")
	}
	return nil
}

// LoadConfig reads the file named by CONFIG_PATH (if any), applies the
// PORT, HOSTNAME and CHROME_BIN environment overrides and validates the
// result. It panics on invalid configuration so startup fails fast.
func LoadConfig() Config {
	return LoadConfigFrom(os.Getenv("CONFIG_PATH"))
}

// LoadConfigFrom is LoadConfig with an explicit file path. An empty path
// means defaults plus environment overrides.
func LoadConfigFrom(path string) Config {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			panic(fmt.Sprintf("failed to read config file %s: %v", path, err))
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			panic(fmt.Sprintf("failed to parse config file %s: %v", path, err))
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("HOSTNAME"); v != "" {
		cfg.Server.Host = v
	}
	// Allow common container env var to override chrome_path.
	if cfg.PDF.ChromePath == "" {
		if v := os.Getenv("CHROME_BIN"); v != "" {
			cfg.PDF.ChromePath = v
		}
	}
}
