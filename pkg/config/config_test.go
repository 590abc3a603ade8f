package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcaldas/condenser/pkg/budget"
	"github.com/kcaldas/condenser/pkg/tokens"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}

func TestValidate_ReportsFields(t *testing.T) {
	c := Default()
	c.TotalUnits = -1
	c.Strategy = "greedy"

	err := Validate(c)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "TotalUnits")
	assert.Contains(t, err.Error(), "Strategy")
}

func TestBudget_ZeroTotalDerivesFromModel(t *testing.T) {
	c := Default()
	c.TotalUnits = 0
	c.Model = "claude-sonnet-4"
	c.BudgetRatio = 0.5
	require.NoError(t, Validate(c))
	assert.Equal(t, 100000, c.Budget().TotalUnits)

	c.TotalUnits = 1234
	assert.Equal(t, 1234, c.Budget().TotalUnits)
}

func TestValidate_RejectsBudgetRatioAboveOne(t *testing.T) {
	c := Default()
	c.BudgetRatio = 1.5
	assert.ErrorIs(t, Validate(c), ErrInvalidConfig)
}

func TestValidate_RejectsEmptyCriticalPattern(t *testing.T) {
	c := Default()
	c.CriticalPaths = []string{"README.md", ""}
	assert.ErrorIs(t, Validate(c), ErrInvalidConfig)
}

func TestLoad_File(t *testing.T) {
	p := writeFile(t, "condenser.yaml", `
unit_kind: character
total_units: 5000
strategy: Aggressive
critical_paths:
  - docs/*.md
  - main.go
workers: 3
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "character", c.UnitKind)
	assert.Equal(t, 5000, c.TotalUnits)
	assert.Equal(t, "aggressive", c.Strategy)
	assert.Equal(t, []string{"docs/*.md", "main.go"}, c.CriticalPaths)
	assert.Equal(t, 3, c.WorkerCount())
	assert.Equal(t, budget.DefaultMinimumFloorUnits, c.MinimumFloorUnits)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	p := writeFile(t, "condenser.yaml", "total_units: 5000\n")
	t.Setenv("CONDENSER_TOTAL_UNITS", "7000")
	t.Setenv("CONDENSER_ESTIMATION_METHOD", "optimistic")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 7000, c.TotalUnits)
	assert.Equal(t, "optimistic", c.EstimationMethod)
}

func TestLoad_DotEnv(t *testing.T) {
	cfg := writeFile(t, "condenser.yaml", "strategy: balanced\n")
	env := writeFile(t, ".env", "CONDENSER_STRATEGY=conservative\n")
	t.Cleanup(func() { os.Unsetenv("CONDENSER_STRATEGY") })

	c, err := Load(cfg, env)
	require.NoError(t, err)
	assert.Equal(t, "conservative", c.Strategy)
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	cfg := writeFile(t, "condenser.yaml", "total_units: 10\n")
	_, err := Load(cfg, filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	p := writeFile(t, "condenser.yaml", "unit_kind: bytes\n")
	_, err := Load(p)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_Derived(t *testing.T) {
	c := Default()
	c.UnitKind = "token"
	c.Estimator = "exact"
	c.Model = "gpt-4"
	c.PerFileTimeoutMs = 250
	c.CriticalPaths = []string{"README*"}

	opts := c.TokenOptions()
	assert.Equal(t, tokens.ModeExact, opts.Mode)
	assert.Equal(t, "gpt-4", opts.Model)
	assert.Equal(t, int64(250), c.PerFileTimeout().Milliseconds())

	b := c.Budget()
	assert.Equal(t, budget.Balanced, b.Strategy)
	assert.Equal(t, []string{"README*"}, b.CriticalPaths)
	assert.NoError(t, b.Validate())
}

func TestManager_ReadsViper(t *testing.T) {
	p := writeFile(t, "condenser.yaml", "workers: 4\nmodel: gpt-4o\n")
	v, err := NewViper(p)
	require.NoError(t, err)
	m := NewManager(v)

	value, err := m.GetString("model")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", value)
	assert.Equal(t, 4, m.GetIntWithDefault("workers", 1))
	assert.Equal(t, "fallback", m.GetStringWithDefault("missing_key", "fallback"))

	_, err = m.GetString("missing_key")
	assert.Error(t, err)
	assert.Panics(t, func() { m.RequireString("missing_key") })
}

func TestManager_Environment(t *testing.T) {
	t.Setenv("CONDENSER_VERBOSE", "true")
	t.Setenv("CONDENSER_LIMIT", "12")
	t.Setenv("CONDENSER_BROKEN", "twelve")
	m := NewManager(nil)

	assert.True(t, m.GetBoolWithDefault("verbose", false))
	assert.Equal(t, 12, m.GetIntWithDefault("limit", 0))
	assert.Equal(t, 3, m.GetIntWithDefault("broken", 3))
	assert.False(t, m.GetBoolWithDefault("unset", false))
}
