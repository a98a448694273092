package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfig      = "CASETREE_CONFIG"
	EnvDB          = "CASETREE_DB"
	EnvLogUseCases = "CASETREE_LOG_USE_CASES"
	EnvLogFormat   = "CASETREE_LOG_FORMAT"
	EnvMetricsFile = "CASETREE_METRICS_FILE"
	EnvColor       = "CASETREE_COLOR"
)

// Config holds CLI settings. Precedence is defaults, then the YAML file,
// then environment variables (including any loaded from .env).
type Config struct {
	DBPath      string `yaml:"db_path" validate:"required"`
	LogUseCases bool   `yaml:"log_use_cases"`
	LogFormat   string `yaml:"log_format" validate:"oneof=text json"`
	// MetricsFile, when set, receives a Prometheus text dump at exit.
	MetricsFile string `yaml:"metrics_file"`
	Color       string `yaml:"color" validate:"oneof=auto always never"`
}

var validate = validator.New()

// Dir is the per-user state directory, ~/.casetree.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".casetree"), nil
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig(dir string) Config {
	return Config{
		DBPath:    filepath.Join(dir, "casetree.db"),
		LogFormat: "text",
		Color:     "auto",
	}
}

// Load reads envFile (missing is fine), the YAML file named by
// CASETREE_CONFIG or <dir>/config.yaml, and the environment.
func Load(dir, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := DefaultConfig(dir)

	path, explicit := os.LookupEnv(EnvConfig)
	if !explicit {
		path = filepath.Join(dir, "config.yaml")
	}
	if err := loadFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvDB); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvLogUseCases); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLogUseCases, err)
		}
		cfg.LogUseCases = b
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv(EnvMetricsFile); v != "" {
		cfg.MetricsFile = v
	}
	if v := os.Getenv(EnvColor); v != "" {
		cfg.Color = v
	}
	return nil
}

// WriteDefault stores DefaultConfig(dir) as YAML at path, creating parents.
func WriteDefault(dir, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig(dir))
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
