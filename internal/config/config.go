package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jask/jaskcalc/internal/solver"
)

// Config holds application configuration.
type Config struct {
	Storage    StorageConfig
	Calculator CalculatorConfig
	Log        LogConfig
}

// StorageConfig selects and locates the key-value backend.
type StorageConfig struct {
	Backend    string // sqlite, badger or memory
	SQLitePath string `mapstructure:"sqlite_path"`
	BadgerPath string `mapstructure:"badger_path"`
}

// CalculatorConfig holds calculator defaults.
type CalculatorConfig struct {
	Variant string // drilling or milling
}

// LogConfig holds logger settings. File "-" logs to stderr.
type LogConfig struct {
	Level string
	File  string
}

const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "jaskcalc")
}

// Path returns the config file location: $JASKCALC_CONFIG or
// ~/.config/jaskcalc/config.toml.
func Path() string {
	if p := os.Getenv("JASKCALC_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "jaskcalc", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix JASKCALC_.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile is Load with an explicit config file path. A missing file is not
// an error.
func LoadFile(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.sqlite_path", filepath.Join(dataDir(), "jaskcalc.db"))
	v.SetDefault("storage.badger_path", filepath.Join(dataDir(), "badger"))
	v.SetDefault("calculator.variant", "milling")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(os.Getenv("HOME"), ".local", "state", "jaskcalc", "jaskcalc.log"))

	v.SetConfigType("toml")
	v.SetConfigFile(path)

	v.SetEnvPrefix("JASKCALC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects unknown backends, variants and log levels.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendBadger, BackendMemory:
	default:
		return fmt.Errorf("config: unknown storage.backend %q", c.Storage.Backend)
	}
	if _, err := solver.ParseVariant(c.Calculator.Variant); err != nil {
		return fmt.Errorf("config: unknown calculator.variant %q", c.Calculator.Variant)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log.level %q", c.Log.Level)
	}
	return nil
}

// SaveVariant sets calculator.variant in the config file at path, leaving
// every other key in the file as it is.
func SaveVariant(path, variant string) error {
	if _, err := solver.ParseVariant(variant); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	v.Set("calculator.variant", variant)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
