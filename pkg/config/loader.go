package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "CONDENSER"
	fileName  = ".condenser"
)

// NewViper prepares a viper instance with defaults, CONDENSER_* environment
// variables and, when found, a YAML config file. An explicit path must
// exist; without one ~/.condenser.yaml and ./.condenser.yaml are tried.
// Dotenv files are loaded first and never override the environment.
func NewViper(path string, dotenv ...string) (*viper.Viper, error) {
	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("error expanding config path: %w", err)
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", expanded, err)
		}
		return v, nil
	}

	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("unit_kind", c.UnitKind)
	v.SetDefault("total_units", c.TotalUnits)
	v.SetDefault("strategy", c.Strategy)
	v.SetDefault("critical_paths", c.CriticalPaths)
	v.SetDefault("minimum_floor_units", c.MinimumFloorUnits)
	v.SetDefault("max_iterations", c.MaxIterations)
	v.SetDefault("per_file_timeout_ms", c.PerFileTimeoutMs)
	v.SetDefault("run_timeout_ms", c.RunTimeoutMs)
	v.SetDefault("workers", c.Workers)
	v.SetDefault("budget_ratio", c.BudgetRatio)
	v.SetDefault("estimator", c.Estimator)
	v.SetDefault("estimation_method", c.EstimationMethod)
	v.SetDefault("model", c.Model)
	v.SetDefault("encoding", c.Encoding)
	v.SetDefault("tokenizer_dir", c.TokenizerDir)
	v.SetDefault("dominant_languages", c.DominantLanguages)
	v.SetDefault("sample_threshold_bytes", c.SampleThresholdBytes)
	v.SetDefault("sample_bytes", c.SampleBytes)
	v.SetDefault("max_file_bytes", c.MaxFileBytes)
}

// FromViper decodes and validates the settings held by v.
func FromViper(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c.UnitKind = strings.ToLower(c.UnitKind)
	c.Strategy = strings.ToLower(c.Strategy)
	c.Estimator = strings.ToLower(c.Estimator)
	c.EstimationMethod = strings.ToLower(c.EstimationMethod)
	if err := Validate(c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads the configuration from path (or the default locations), the
// given dotenv files and the environment.
func Load(path string, dotenv ...string) (Config, error) {
	v, err := NewViper(path, dotenv...)
	if err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

// ConfigFileUsed reports the config file v read, if any.
func ConfigFileUsed(v *viper.Viper) string {
	if f := v.ConfigFileUsed(); f != "" {
		if _, err := os.Stat(f); err == nil {
			return f
		}
	}
	return ""
}
