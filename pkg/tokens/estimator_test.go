package tokens

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicEstimator_EmptyIsZero(t *testing.T) {
	assert.Equal(t, 0, NewHeuristicEstimator(MethodAverage).Estimate(""))
}

func TestHeuristicEstimator_RoundsUp(t *testing.T) {
	est := NewHeuristicEstimator(MethodAverage)
	assert.Equal(t, 1, est.Estimate("a"))
	assert.Equal(t, 1, est.Estimate("abcd"))
	assert.Equal(t, 2, est.Estimate("abcde"))
}

func TestHeuristicEstimator_MethodsOrdered(t *testing.T) {
	text := strings.Repeat("x", 600)
	conservative := NewHeuristicEstimator(MethodConservative).Estimate(text)
	average := NewHeuristicEstimator(MethodAverage).Estimate(text)
	optimistic := NewHeuristicEstimator(MethodOptimistic).Estimate(text)

	assert.Equal(t, 200, conservative)
	assert.Equal(t, 150, average)
	assert.Equal(t, 120, optimistic)
}

func TestHeuristicEstimator_CountsRunesNotBytes(t *testing.T) {
	est := NewHeuristicEstimator(MethodAverage)
	assert.Equal(t, 1, est.Estimate("ééé"))
}

func TestHeuristicEstimator_Deterministic(t *testing.T) {
	est := NewHeuristicEstimator(MethodAverage)
	text := strings.Repeat("func main() {}\n", 100)
	assert.Equal(t, est.Estimate(text), est.Estimate(text))
}

func TestCharacterEstimator_CountsRunes(t *testing.T) {
	est := CharacterEstimator{}
	assert.Equal(t, 0, est.Estimate(""))
	assert.Equal(t, 5, est.Estimate("héllo"))
	assert.Equal(t, UnitCharacter, est.Kind())
}

func TestParseUnitKind(t *testing.T) {
	kind, err := ParseUnitKind("characters")
	require.NoError(t, err)
	assert.Equal(t, UnitCharacter, kind)

	_, err = ParseUnitKind("bytes")
	assert.Error(t, err)
}

func TestParseMethod_RejectsUnknown(t *testing.T) {
	_, err := ParseMethod("greedy")
	assert.Error(t, err)

	m, err := ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodAverage, m)
}

// writeByteRanks writes a rank file where every single byte is its own token.
func writeByteRanks(t *testing.T, dir, name string) {
	t.Helper()
	var sb strings.Builder
	for i := 0; i < 256; i++ {
		fmt.Fprintf(&sb, "%s %d\n", base64.StdEncoding.EncodeToString([]byte{byte(i)}), i)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".tiktoken"), []byte(sb.String()), 0o644))
}

func TestTiktokenEstimator_LoadsOfflineRanks(t *testing.T) {
	dir := t.TempDir()
	writeByteRanks(t, dir, "cl100k_base")

	est, err := NewTiktokenEstimator(dir, "", "cl100k_base")
	require.NoError(t, err)

	assert.Equal(t, 11, est.Estimate("hello world"))
	assert.Equal(t, 0, est.Estimate(""))
	assert.Equal(t, "tiktoken/cl100k_base", est.Name())
}

func TestTiktokenEstimator_MissingRanks(t *testing.T) {
	_, err := NewTiktokenEstimator(t.TempDir(), "", "r50k_base")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenizerUnavailable)
}

func TestSelect_DegradesToHeuristic(t *testing.T) {
	sel := Select(Options{Unit: UnitToken, Mode: ModeExact, Encoding: "p50k_edit", TokenizerDir: t.TempDir()})

	assert.True(t, sel.Degraded)
	assert.ErrorIs(t, sel.Cause, ErrTokenizerUnavailable)
	assert.Equal(t, "heuristic/average", sel.Estimator.Name())
}

func TestSelect_CharacterUnit(t *testing.T) {
	sel := Select(Options{Unit: UnitCharacter, Mode: ModeExact})
	assert.False(t, sel.Degraded)
	assert.Equal(t, "character", sel.Estimator.Name())
}

func TestEstimateSampled_SmallInputIsExact(t *testing.T) {
	est := CharacterEstimator{}
	units, sampled := EstimateSampled(est, "short", 100, 10)
	assert.Equal(t, 5, units)
	assert.False(t, sampled)
}

func TestEstimateSampled_Extrapolates(t *testing.T) {
	est := CharacterEstimator{}
	text := strings.Repeat("a", 1000)
	units, sampled := EstimateSampled(est, text, 100, 50)
	assert.True(t, sampled)
	assert.Equal(t, 1000, units)
}

func TestEstimateSampled_CutsAtRuneBoundary(t *testing.T) {
	est := CharacterEstimator{}
	text := strings.Repeat("é", 100)
	units, sampled := EstimateSampled(est, text, 10, 5)
	assert.True(t, sampled)
	assert.Equal(t, 100, units)
}
