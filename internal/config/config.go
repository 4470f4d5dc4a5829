package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix  = "CALCULATOR"
	envConfig  = "CALCULATOR_CONFIG"
	appDirName = "go-chi-calculator"
)

// Config holds application configuration.
type Config struct {
	Server    ServerConfig
	Tape      TapeConfig
	UI        UIConfig
	Log       LogConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr       string
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// TapeConfig holds calculation history storage settings.
type TapeConfig struct {
	Enabled bool
	Path    string
}

// UIConfig holds terminal presentation settings.
type UIConfig struct {
	Theme string
}

// LogConfig holds the terminal UI's log destination. The HTTP service always
// logs to stderr.
type LogConfig struct {
	Path string
}

// TelemetryConfig toggles OTLP export.
type TelemetryConfig struct {
	Enabled     bool
	ServiceName string `mapstructure:"service_name"`
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", appDirName)
}

// Path returns the config file location: $CALCULATOR_CONFIG when set.
func Path() string {
	if p := os.Getenv(envConfig); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", appDirName, "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix CALCULATOR_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.session_ttl", "30m")
	v.SetDefault("tape.enabled", true)
	v.SetDefault("tape.path", filepath.Join(dataDir(), "tape.db"))
	v.SetDefault("ui.theme", "light")
	v.SetDefault("log.path", filepath.Join(dataDir(), "calc.log"))
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", appDirName)

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil && !isMissingConfig(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

func isMissingConfig(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// Save writes the provided config to disk, creating the config directory if
// needed. The terminal UI uses it to persist the theme flag.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("server.session_ttl", cfg.Server.SessionTTL.String())
	v.Set("tape.enabled", cfg.Tape.Enabled)
	v.Set("tape.path", cfg.Tape.Path)
	v.Set("ui.theme", cfg.UI.Theme)
	v.Set("log.path", cfg.Log.Path)
	v.Set("telemetry.enabled", cfg.Telemetry.Enabled)
	v.Set("telemetry.service_name", cfg.Telemetry.ServiceName)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
