// Package report describes the outcome of a condensing run.
package report

import (
	"time"

	"github.com/kcaldas/condenser/pkg/condense"
	"github.com/kcaldas/condenser/pkg/priority"
)

// WarningKind names a non-fatal degradation.
type WarningKind string

const (
	EstimationDegraded         WarningKind = "EstimationDegraded"
	AllocationInfeasible       WarningKind = "AllocationInfeasible"
	CondenseTimeout            WarningKind = "CondenseTimeout"
	StructuralBoundaryNotFound WarningKind = "StructuralBoundaryNotFound"
)

type Warning struct {
	Kind    WarningKind `yaml:"kind" json:"kind"`
	Path    string      `yaml:"path,omitempty" json:"path,omitempty"`
	Message string      `yaml:"message" json:"message"`
}

// File is the per-file outcome. Text is omitted from serialized reports
// when empty.
type File struct {
	Path           string         `yaml:"path" json:"path"`
	SizeBytes      int64          `yaml:"size_bytes" json:"size_bytes"`
	Tier           priority.Tier  `yaml:"tier" json:"tier"`
	EstimatedUnits int            `yaml:"estimated_units" json:"estimated_units"`
	Sampled        bool           `yaml:"sampled,omitempty" json:"sampled,omitempty"`
	AllocatedUnits int            `yaml:"allocated_units" json:"allocated_units"`
	FinalUnits     int            `yaml:"final_units" json:"final_units"`
	Level          condense.Level `yaml:"level" json:"level"`
	OverBudget     bool           `yaml:"over_budget" json:"over_budget"`
	Fallback       string         `yaml:"fallback" json:"fallback"`
	FallbackReason string         `yaml:"fallback_reason,omitempty" json:"fallback_reason,omitempty"`
	Text           string         `yaml:"text,omitempty" json:"text,omitempty"`
}

// FallbackName renders a condense fallback for reports.
func FallbackName(f condense.Fallback) string {
	if f == condense.FallbackNone {
		return "none"
	}
	return string(f)
}

type Summary struct {
	Files            int            `yaml:"files" json:"files"`
	TotalEstimated   int            `yaml:"total_estimated" json:"total_estimated"`
	TotalAllocated   int            `yaml:"total_allocated" json:"total_allocated"`
	TotalConsumed    int            `yaml:"total_consumed" json:"total_consumed"`
	UnitsSaved       int            `yaml:"units_saved" json:"units_saved"`
	CompressionRatio float64        `yaml:"compression_ratio" json:"compression_ratio"`
	LevelCounts      map[string]int `yaml:"level_counts" json:"level_counts"`
	OverBudgetCount  int            `yaml:"over_budget_count" json:"over_budget_count"`
	HardCuts         int            `yaml:"hard_cuts" json:"hard_cuts"`
}

// Report is everything a run produced.
type Report struct {
	RunID         string    `yaml:"run_id" json:"run_id"`
	EngineVersion string    `yaml:"engine_version" json:"engine_version"`
	CreatedAt     time.Time `yaml:"created_at" json:"created_at"`
	Estimator     string    `yaml:"estimator" json:"estimator"`
	UnitKind      string    `yaml:"unit_kind" json:"unit_kind"`
	Strategy      string    `yaml:"strategy" json:"strategy"`
	TotalUnits    int       `yaml:"total_units" json:"total_units"`
	Files         []File    `yaml:"files" json:"files"`
	Summary       Summary   `yaml:"summary" json:"summary"`
	Warnings      []Warning `yaml:"warnings,omitempty" json:"warnings,omitempty"`
}

// Summarize aggregates per-file outcomes. Every level appears in
// LevelCounts, zero or not.
func Summarize(files []File) Summary {
	s := Summary{Files: len(files), LevelCounts: make(map[string]int, len(condense.Levels))}
	for _, l := range condense.Levels {
		s.LevelCounts[l.String()] = 0
	}
	for _, f := range files {
		s.TotalEstimated += f.EstimatedUnits
		s.TotalAllocated += f.AllocatedUnits
		s.TotalConsumed += f.FinalUnits
		s.LevelCounts[f.Level.String()]++
		if f.OverBudget {
			s.OverBudgetCount++
		}
		if f.Fallback == string(condense.FallbackHardCut) {
			s.HardCuts++
		}
	}
	s.UnitsSaved = max(0, s.TotalEstimated-s.TotalConsumed)
	if s.TotalEstimated > 0 {
		s.CompressionRatio = float64(s.TotalConsumed) / float64(s.TotalEstimated)
	}
	return s
}

// WithoutText returns a copy of r with per-file text removed.
func (r *Report) WithoutText() *Report {
	c := *r
	c.Files = make([]File, len(r.Files))
	for i, f := range r.Files {
		f.Text = ""
		c.Files[i] = f
	}
	return &c
}

// Lookup returns the file with path p.
func (r *Report) Lookup(p string) (File, bool) {
	for _, f := range r.Files {
		if f.Path == p {
			return f, true
		}
	}
	return File{}, false
}
