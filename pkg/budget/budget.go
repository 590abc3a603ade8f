// Package budget distributes a global unit budget across prioritized files.
package budget

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kcaldas/condenser/pkg/priority"
	"github.com/kcaldas/condenser/pkg/tokens"
)

// Strategy selects a row of the tier weight table.
type Strategy string

const (
	Conservative Strategy = "conservative"
	Balanced     Strategy = "balanced"
	Aggressive   Strategy = "aggressive"
)

// ParseStrategy validates a strategy name. The empty string is Balanced.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case Conservative, Balanced, Aggressive:
		return st, nil
	case "":
		return Balanced, nil
	}
	return "", fmt.Errorf("unknown allocation strategy %q", s)
}

// Weights holds the pool share of each non-critical tier, indexed by tier.
// Critical files are reserved before the pool is split and weigh nothing.
type Weights [4]float64

// WeightTable is the share of the remaining pool each tier receives.
var WeightTable = map[Strategy]Weights{
	Balanced:     {priority.High: 0.5, priority.Medium: 0.35, priority.Low: 0.15},
	Aggressive:   {priority.High: 0.7, priority.Medium: 0.25, priority.Low: 0.05},
	Conservative: {priority.High: 0.4, priority.Medium: 0.35, priority.Low: 0.25},
}

const (
	DefaultMaxIterations     = 8
	DefaultMinimumFloorUnits = 24
)

var ErrInvalidBudget = errors.New("invalid budget")

// Budget is the allocation request of one run.
type Budget struct {
	TotalUnits        int
	UnitKind          tokens.UnitKind
	Strategy          Strategy
	CriticalPaths     []string
	MinimumFloorUnits int
	MaxIterations     int
}

// Validate rejects budgets the allocator cannot work with.
func (b Budget) Validate() error {
	if b.TotalUnits <= 0 {
		return fmt.Errorf("%w: total units must be positive, got %d", ErrInvalidBudget, b.TotalUnits)
	}
	if b.MinimumFloorUnits < 0 {
		return fmt.Errorf("%w: minimum floor must not be negative, got %d", ErrInvalidBudget, b.MinimumFloorUnits)
	}
	if _, ok := WeightTable[b.strategy()]; !ok {
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidBudget, b.Strategy)
	}
	return nil
}

func (b Budget) strategy() Strategy {
	if b.Strategy == "" {
		return Balanced
	}
	return b.Strategy
}

func (b Budget) maxIterations() int {
	if b.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return b.MaxIterations
}
