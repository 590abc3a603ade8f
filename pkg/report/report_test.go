package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcaldas/condenser/pkg/condense"
	"github.com/kcaldas/condenser/pkg/priority"
)

func sampleReport() *Report {
	files := []File{
		{Path: "README.md", Tier: priority.Critical, EstimatedUnits: 200, AllocatedUnits: 200, FinalUnits: 200, Level: condense.None, Fallback: "none"},
		{Path: "main.go", Tier: priority.High, EstimatedUnits: 5000, AllocatedUnits: 4449, FinalUnits: 4100, Level: condense.Light, Fallback: "none"},
		{Path: "data.json", Tier: priority.Low, EstimatedUnits: 50000, AllocatedUnits: 1351, FinalUnits: 90, Level: condense.Heavy, Fallback: "none", Sampled: true},
	}
	return &Report{
		RunID:         "run-1",
		EngineVersion: "1.2.0",
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Estimator:     "heuristic/average",
		UnitKind:      "token",
		Strategy:      "balanced",
		TotalUnits:    6000,
		Files:         files,
		Summary:       Summarize(files),
		Warnings:      []Warning{{Kind: AllocationInfeasible, Message: "floors scaled"}},
	}
}

func TestSummarize(t *testing.T) {
	s := sampleReport().Summary

	assert.Equal(t, 3, s.Files)
	assert.Equal(t, 55200, s.TotalEstimated)
	assert.Equal(t, 6000, s.TotalAllocated)
	assert.Equal(t, 4390, s.TotalConsumed)
	assert.Equal(t, 55200-4390, s.UnitsSaved)
	assert.InDelta(t, 4390.0/55200.0, s.CompressionRatio, 1e-9)
	assert.Equal(t, map[string]int{"NONE": 1, "LIGHT": 1, "MODERATE": 0, "HEAVY": 1, "MAXIMUM": 0}, s.LevelCounts)
	assert.Zero(t, s.OverBudgetCount)
}

func TestSummarize_CountsHardCutsAndOverBudget(t *testing.T) {
	s := Summarize([]File{
		{Level: condense.Maximum, OverBudget: true, Fallback: "none"},
		{Level: condense.Maximum, Fallback: FallbackName(condense.FallbackHardCut), FallbackReason: "timeout"},
	})
	assert.Equal(t, 1, s.OverBudgetCount)
	assert.Equal(t, 1, s.HardCuts)
	assert.Equal(t, 2, s.LevelCounts["MAXIMUM"])
}

func TestFallbackName(t *testing.T) {
	assert.Equal(t, "none", FallbackName(condense.FallbackNone))
	assert.Equal(t, "hard_cut", FallbackName(condense.FallbackHardCut))
}

func TestReport_YAMLRoundTrip(t *testing.T) {
	r := sampleReport()
	var buf bytes.Buffer
	require.NoError(t, r.WriteYAML(&buf))
	assert.Contains(t, buf.String(), "tier: CRITICAL")
	assert.Contains(t, buf.String(), "level: HEAVY")

	got, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestReport_JSONRoundTrip(t *testing.T) {
	r := sampleReport()
	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, FormatJSON))
	assert.Contains(t, buf.String(), `"level": "LIGHT"`)

	got, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestLoad_RejectsBrokenJSON(t *testing.T) {
	_, err := Load(bytes.NewBufferString(`{"run_id": `))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWithoutText(t *testing.T) {
	r := sampleReport()
	r.Files[0].Text = "# Readme\n"

	stripped := r.WithoutText()
	assert.Empty(t, stripped.Files[0].Text)
	assert.Equal(t, "# Readme\n", r.Files[0].Text)
}

func TestMarkdown(t *testing.T) {
	md := sampleReport().Markdown()

	assert.Contains(t, md, "# Condensing report")
	assert.Contains(t, md, "| `data.json` | LOW | 50000 | 1351 | 90 | HEAVY | sampled |")
	assert.Contains(t, md, "Levels: NONE 1, LIGHT 1, MODERATE 0, HEAVY 1, MAXIMUM 0.")
	assert.Contains(t, md, "- **AllocationInfeasible**: floors scaled")
}

func TestCompare(t *testing.T) {
	before := sampleReport()
	after := sampleReport()
	after.EngineVersion = "1.4.1"
	after.Files = append(after.Files[:1:1], File{Path: "main.go", Level: condense.Moderate, FinalUnits: 3000}, File{Path: "new.go", Level: condense.None, FinalUnits: 10})
	after.Summary = Summarize(after.Files)

	c, err := Compare(before, after)
	require.NoError(t, err)
	require.Len(t, c.Deltas, 4)

	assert.Equal(t, "README.md", c.Deltas[0].Path)
	assert.False(t, c.Deltas[0].Changed())

	assert.Equal(t, Delta{Path: "data.json", InBefore: true, LevelBefore: condense.Heavy, UnitsBefore: 90}, c.Deltas[1])
	assert.Equal(t, Delta{Path: "main.go", InBefore: true, InAfter: true, LevelBefore: condense.Light, LevelAfter: condense.Moderate, UnitsBefore: 4100, UnitsAfter: 3000}, c.Deltas[2])
	assert.True(t, c.Deltas[3].InAfter)
	assert.False(t, c.Deltas[3].InBefore)
	assert.Equal(t, 3210-4390, c.ConsumedDelta)
}

func TestCompare_Refuses(t *testing.T) {
	base := sampleReport()

	other := sampleReport()
	other.Estimator = "tiktoken/cl100k_base"
	_, err := Compare(base, other)
	assert.ErrorIs(t, err, ErrIncomparable)

	other = sampleReport()
	other.UnitKind = "character"
	_, err = Compare(base, other)
	assert.ErrorIs(t, err, ErrIncomparable)

	other = sampleReport()
	other.EngineVersion = "2.0.0"
	_, err = Compare(base, other)
	assert.ErrorIs(t, err, ErrIncomparable)

	other = sampleReport()
	other.EngineVersion = "dev"
	_, err = Compare(base, other)
	assert.ErrorIs(t, err, ErrIncomparable)
}
