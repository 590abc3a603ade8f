package tokens

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// UnitKind is the unit a budget is expressed in.
type UnitKind string

const (
	UnitToken     UnitKind = "token"
	UnitCharacter UnitKind = "character"
)

// ParseUnitKind accepts "token", "tokens", "character", "characters" and "char".
func ParseUnitKind(s string) (UnitKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "token", "tokens", "":
		return UnitToken, nil
	case "character", "characters", "char", "chars":
		return UnitCharacter, nil
	}
	return "", fmt.Errorf("unknown unit kind %q", s)
}

// Estimator counts how many budget units a piece of text costs.
// Implementations must be deterministic and return 0 for the empty string.
type Estimator interface {
	Estimate(text string) int
	Kind() UnitKind
	Name() string
}

// Method selects the chars-per-token ratio of the heuristic estimator.
type Method string

const (
	MethodConservative Method = "conservative"
	MethodAverage      Method = "average"
	MethodOptimistic   Method = "optimistic"
)

// CharsPerToken returns the ratio used for the method. Unknown methods
// behave like MethodAverage.
func (m Method) CharsPerToken() float64 {
	switch m {
	case MethodConservative:
		return 3.0
	case MethodOptimistic:
		return 5.0
	default:
		return 4.0
	}
}

// ParseMethod validates an estimation method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodConservative, MethodAverage, MethodOptimistic:
		return m, nil
	case "":
		return MethodAverage, nil
	}
	return "", fmt.Errorf("unknown token estimation method %q", s)
}

// HeuristicEstimator approximates tokens as ceil(runes / charsPerToken).
type HeuristicEstimator struct {
	method Method
	ratio  float64
}

// NewHeuristicEstimator creates a heuristic estimator for the given method.
func NewHeuristicEstimator(method Method) *HeuristicEstimator {
	if method == "" {
		method = MethodAverage
	}
	return &HeuristicEstimator{method: method, ratio: method.CharsPerToken()}
}

func (h *HeuristicEstimator) Estimate(text string) int {
	if text == "" {
		return 0
	}
	n := utf8.RuneCountInString(text)
	return int(math.Ceil(float64(n) / h.ratio))
}

func (h *HeuristicEstimator) Kind() UnitKind { return UnitToken }

func (h *HeuristicEstimator) Name() string { return "heuristic/" + string(h.method) }

// CharacterEstimator counts runes. It backs character-denominated budgets.
type CharacterEstimator struct{}

func (CharacterEstimator) Estimate(text string) int { return utf8.RuneCountInString(text) }

func (CharacterEstimator) Kind() UnitKind { return UnitCharacter }

func (CharacterEstimator) Name() string { return "character" }
