package budget

import (
	"math"
	"sort"
	"strings"

	"github.com/kcaldas/condenser/pkg/tokens"
)

// contextWindows are known model context sizes in tokens, matched by
// longest prefix.
var contextWindows = map[string]int{
	"claude-opus-4":     200000,
	"claude-sonnet-4":   200000,
	"claude-3-5-sonnet": 200000,
	"claude-3-5-haiku":  200000,
	"claude-3-opus":     200000,
	"claude-3-haiku":    200000,

	"gpt-4o":        128000,
	"gpt-4o-mini":   128000,
	"gpt-4-turbo":   128000,
	"gpt-4.1":       1047576,
	"gpt-4":         8192,
	"gpt-3.5-turbo": 16385,
	"o1":            200000,
	"o3":            200000,
	"o4-mini":       200000,

	"gemini-2.5-flash": 1048576,
	"gemini-2.5-pro":   1048576,
	"gemini-2.0-flash": 1048576,
	"gemini-1.5-pro":   2097152,

	"llama":     8192,
	"mistral":   32768,
	"codellama": 16384,
	"deepseek":  32768,
	"qwen":      32768,
}

// prefixes holds the keys of contextWindows, longest first.
var prefixes = func() []string {
	keys := make([]string, 0, len(contextWindows))
	for k := range contextWindows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

const (
	// FallbackContextWindow applies to unknown models.
	FallbackContextWindow = 128000
	// DefaultBudgetRatio leaves room for instructions and the response.
	DefaultBudgetRatio = 0.7
)

// LookupContextWindow returns the context window of model in tokens.
func LookupContextWindow(model string) int {
	model = strings.ToLower(strings.TrimSpace(model))
	if model == "" {
		return FallbackContextWindow
	}
	for _, p := range prefixes {
		if strings.HasPrefix(model, p) {
			return contextWindows[p]
		}
	}
	return FallbackContextWindow
}

// ModelBudget derives a total from a model's context window. Character
// budgets assume the average ratio of characters per token. A ratio
// outside (0, 1] means DefaultBudgetRatio.
func ModelBudget(model string, ratio float64, unit tokens.UnitKind) int {
	if ratio <= 0 || ratio > 1 {
		ratio = DefaultBudgetRatio
	}
	units := float64(LookupContextWindow(model)) * ratio
	if unit == tokens.UnitCharacter {
		units *= tokens.MethodAverage.CharsPerToken()
	}
	return int(math.Round(units))
}
