// Package config loads and validates run configuration.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kcaldas/condenser/pkg/budget"
	"github.com/kcaldas/condenser/pkg/tokens"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full set of run settings. Zero durations disable the
// corresponding timeout; zero workers means one per CPU. A zero total
// is derived from the model's context window and BudgetRatio.
type Config struct {
	UnitKind          string   `mapstructure:"unit_kind" yaml:"unit_kind" validate:"oneof=token character"`
	TotalUnits        int      `mapstructure:"total_units" yaml:"total_units" validate:"gte=0"`
	Strategy          string   `mapstructure:"strategy" yaml:"strategy" validate:"oneof=conservative balanced aggressive"`
	CriticalPaths     []string `mapstructure:"critical_paths" yaml:"critical_paths" validate:"dive,required"`
	MinimumFloorUnits int      `mapstructure:"minimum_floor_units" yaml:"minimum_floor_units" validate:"gte=0"`
	MaxIterations     int      `mapstructure:"max_iterations" yaml:"max_iterations" validate:"gte=0,lte=64"`
	PerFileTimeoutMs  int      `mapstructure:"per_file_timeout_ms" yaml:"per_file_timeout_ms" validate:"gte=0"`
	RunTimeoutMs      int      `mapstructure:"run_timeout_ms" yaml:"run_timeout_ms" validate:"gte=0"`
	Workers           int      `mapstructure:"workers" yaml:"workers" validate:"gte=0,lte=256"`
	BudgetRatio       float64  `mapstructure:"budget_ratio" yaml:"budget_ratio" validate:"gte=0,lte=1"`

	Estimator        string `mapstructure:"estimator" yaml:"estimator" validate:"oneof=heuristic exact"`
	EstimationMethod string `mapstructure:"estimation_method" yaml:"estimation_method" validate:"oneof=conservative average optimistic"`
	Model            string `mapstructure:"model" yaml:"model"`
	Encoding         string `mapstructure:"encoding" yaml:"encoding"`
	TokenizerDir     string `mapstructure:"tokenizer_dir" yaml:"tokenizer_dir"`

	DominantLanguages    []string `mapstructure:"dominant_languages" yaml:"dominant_languages"`
	SampleThresholdBytes int      `mapstructure:"sample_threshold_bytes" yaml:"sample_threshold_bytes" validate:"gte=0"`
	SampleBytes          int      `mapstructure:"sample_bytes" yaml:"sample_bytes" validate:"gte=0"`
	MaxFileBytes         int64    `mapstructure:"max_file_bytes" yaml:"max_file_bytes" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		UnitKind:             string(tokens.UnitToken),
		TotalUnits:           100000,
		Strategy:             string(budget.Balanced),
		MinimumFloorUnits:    budget.DefaultMinimumFloorUnits,
		MaxIterations:        budget.DefaultMaxIterations,
		PerFileTimeoutMs:     2000,
		BudgetRatio:          budget.DefaultBudgetRatio,
		Estimator:            string(tokens.ModeHeuristic),
		EstimationMethod:     string(tokens.MethodAverage),
		Encoding:             tokens.DefaultEncoding,
		SampleThresholdBytes: tokens.DefaultSampleThreshold,
		SampleBytes:          tokens.DefaultSampleSize,
		MaxFileBytes:         1 << 20,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks c and reports every offending field.
func Validate(c Config) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func (c Config) PerFileTimeout() time.Duration {
	return time.Duration(c.PerFileTimeoutMs) * time.Millisecond
}

func (c Config) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutMs) * time.Millisecond
}

// WorkerCount resolves the zero value to the CPU count.
func (c Config) WorkerCount() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// TokenOptions is the estimator selection for this configuration.
func (c Config) TokenOptions() tokens.Options {
	return tokens.Options{
		Unit:         tokens.UnitKind(c.UnitKind),
		Mode:         tokens.Mode(c.Estimator),
		Method:       tokens.Method(c.EstimationMethod),
		Model:        c.Model,
		Encoding:     c.Encoding,
		TokenizerDir: c.TokenizerDir,
	}
}

// Budget is the allocation request for this configuration.
func (c Config) Budget() budget.Budget {
	total := c.TotalUnits
	if total == 0 {
		total = budget.ModelBudget(c.Model, c.BudgetRatio, tokens.UnitKind(c.UnitKind))
	}
	return budget.Budget{
		TotalUnits:        total,
		UnitKind:          tokens.UnitKind(c.UnitKind),
		Strategy:          budget.Strategy(c.Strategy),
		CriticalPaths:     c.CriticalPaths,
		MinimumFloorUnits: c.MinimumFloorUnits,
		MaxIterations:     c.MaxIterations,
	}
}
