// Package config loads the server configuration from a YAML file with
// environment variable overrides, and builds the process logger from it.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type StorageConfig struct {
	Dir          string `yaml:"dir"`
	PollInterval string `yaml:"poll_interval"`
	Seed         bool   `yaml:"seed"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`

	// File enables rotation via lumberjack; empty logs to stdout.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Storage: StorageConfig{
			Dir:          "./data",
			PollInterval: "1s",
			Seed:         true,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// Load reads the YAML file at path (missing file is fine, defaults apply),
// applies PROMPTBOX_* environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults + env only.
		case err != nil:
			return Config{}, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PROMPTBOX_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PROMPTBOX_DATA_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("PROMPTBOX_POLL_INTERVAL"); v != "" {
		cfg.Storage.PollInterval = v
	}
	if v := os.Getenv("PROMPTBOX_SEED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Storage.Seed = b
		}
	}
	if v := os.Getenv("PROMPTBOX_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PROMPTBOX_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("PROMPTBOX_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

func (c Config) Validate() error {
	return validation.Errors{
		"server.addr":           validation.Validate(c.Server.Addr, validation.Required),
		"storage.dir":           validation.Validate(c.Storage.Dir, validation.Required),
		"storage.poll_interval": validation.Validate(c.Storage.PollInterval, validation.Required, validation.By(durationRule)),
		"log.level":             validation.Validate(c.Log.Level, validation.In("debug", "info", "warn", "error")),
		"log.format":            validation.Validate(c.Log.Format, validation.In("json", "text")),
	}.Filter()
}

func durationRule(value interface{}) error {
	s, _ := value.(string)
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("must be a duration like 500ms or 1s")
	}
	return nil
}

// PollInterval returns the parsed storage poll interval. Call after
// Validate; an unparseable value falls back to one second.
func (c Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Storage.PollInterval)
	if err != nil {
		return time.Second
	}
	return d
}

// Logger builds the process-wide slog.Logger described by the log section.
func (c Config) Logger() *slog.Logger {
	var w io.Writer = os.Stdout
	if c.Log.File != "" {
		w = &lumberjack.Logger{
			Filename:   c.Log.File,
			MaxSize:    c.Log.MaxSizeMB,
			MaxBackups: c.Log.MaxBackups,
			MaxAge:     c.Log.MaxAgeDays,
			Compress:   c.Log.Compress,
		}
	}

	var level slog.Level
	switch c.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
