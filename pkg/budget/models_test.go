package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kcaldas/condenser/pkg/tokens"
)

func TestLookupContextWindow(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{"claude-sonnet-4-20250514", 200000},
		{"Claude-Opus-4", 200000},
		{"gpt-4o-mini-2024-07-18", 128000},
		{"gpt-4.1-nano", 1047576},
		{"gpt-4-0613", 8192},
		{"gemini-1.5-pro-latest", 2097152},
		{"llama3.1:8b", 8192},
		{"codellama:13b", 16384},
		{"  qwen2.5-coder ", 32768},
		{"some-unknown-model", FallbackContextWindow},
		{"", FallbackContextWindow},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupContextWindow(tt.model))
		})
	}
}

func TestLookupContextWindow_LongestPrefixWins(t *testing.T) {
	// "gpt-4" is a prefix of "gpt-4o" but must not shadow it.
	assert.Equal(t, 128000, LookupContextWindow("gpt-4o"))
	assert.Equal(t, 128000, LookupContextWindow("gpt-4-turbo-preview"))
}

func TestModelBudget(t *testing.T) {
	assert.Equal(t, 140000, ModelBudget("claude-sonnet-4", 0.7, tokens.UnitToken))
	assert.Equal(t, 100000, ModelBudget("claude-sonnet-4", 0.5, tokens.UnitToken))
	assert.Equal(t, 200000, ModelBudget("claude-sonnet-4", 1, tokens.UnitToken))
}

func TestModelBudget_RatioOutOfRangeUsesDefault(t *testing.T) {
	want := ModelBudget("gpt-4", DefaultBudgetRatio, tokens.UnitToken)
	assert.Equal(t, want, ModelBudget("gpt-4", 0, tokens.UnitToken))
	assert.Equal(t, want, ModelBudget("gpt-4", -1, tokens.UnitToken))
	assert.Equal(t, want, ModelBudget("gpt-4", 1.5, tokens.UnitToken))
}

func TestModelBudget_CharactersScaleByAverageRatio(t *testing.T) {
	tok := ModelBudget("gpt-4", 0.5, tokens.UnitToken)
	chars := ModelBudget("gpt-4", 0.5, tokens.UnitCharacter)
	assert.Equal(t, int(float64(tok)*tokens.MethodAverage.CharsPerToken()), chars)
}
