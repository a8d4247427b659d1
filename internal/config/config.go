package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	EnvPrefix                = "NOTES"
	ConfigName               = "config"
	DefaultNotesDatabaseName = "notes.sqlite"
)

var NotesConfigDirectory string = filepath.Join(os.Getenv("HOME"), ".notes")

type Config struct {
	DBDir    string `mapstructure:"db_dir"`
	DBName   string `mapstructure:"db_name"`
	Strict   bool   `mapstructure:"strict"`
	LogLevel string `mapstructure:"log_level"`
}

// New returns a viper instance with defaults, NOTES_* environment variables and
// the lookup path for config.yaml already set up. Flags can be bound to it before
// calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("db_dir", NotesConfigDirectory)
	v.SetDefault("db_name", DefaultNotesDatabaseName)
	v.SetDefault("strict", false)
	v.SetDefault("log_level", "info")
	return v
}

// Load reads config.yaml from the configured notes directory if there is one.
// A missing file is fine; a malformed one is not.
func Load(v *viper.Viper) (*Config, error) {
	v.AddConfigPath(v.GetString("db_dir"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		slog.Debug("no config file found; using defaults and environment",
			"dir", v.GetString("db_dir"))
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if strings.TrimSpace(cfg.DBName) == "" {
		return nil, errors.New("db_name must not be empty")
	}
	return cfg, nil
}

// DBPath returns the database file location, creating its directory if needed.
func (c *Config) DBPath() (string, error) {
	if c.DBName == ":memory:" {
		return c.DBName, nil
	}
	if err := os.MkdirAll(c.DBDir, 0700); err != nil {
		return "", fmt.Errorf("error creating notes directory %s: %w", c.DBDir, err)
	}
	return filepath.Join(c.DBDir, c.DBName), nil
}

func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		slog.Warn("invalid log level; using info", "log_level", c.LogLevel)
		return slog.LevelInfo
	}
	return level
}
