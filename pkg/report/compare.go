package report

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kcaldas/condenser/pkg/condense"
	"github.com/kcaldas/condenser/pkg/version"
)

// ErrIncomparable is returned when two reports were produced under
// different measuring rules.
var ErrIncomparable = errors.New("reports are not comparable")

// Delta is the change of one file between two runs. Only one of Before
// and After is set for files present in a single run.
type Delta struct {
	Path        string
	InBefore    bool
	InAfter     bool
	LevelBefore condense.Level
	LevelAfter  condense.Level
	UnitsBefore int
	UnitsAfter  int
}

func (d Delta) Changed() bool {
	return d.InBefore != d.InAfter || d.LevelBefore != d.LevelAfter || d.UnitsBefore != d.UnitsAfter
}

type Comparison struct {
	Deltas        []Delta
	ConsumedDelta int
}

// Compare lines up the files of two reports by path. It refuses reports
// counted by different estimators or unit kinds, and reports from engine
// versions with different major versions.
func Compare(before, after *Report) (Comparison, error) {
	if before.Estimator != after.Estimator {
		return Comparison{}, fmt.Errorf("%w: estimator %q vs %q", ErrIncomparable, before.Estimator, after.Estimator)
	}
	if before.UnitKind != after.UnitKind {
		return Comparison{}, fmt.Errorf("%w: unit kind %q vs %q", ErrIncomparable, before.UnitKind, after.UnitKind)
	}
	if err := version.Compatible(before.EngineVersion, after.EngineVersion); err != nil {
		return Comparison{}, fmt.Errorf("%w: %v", ErrIncomparable, err)
	}

	byPath := map[string]*Delta{}
	for _, f := range before.Files {
		byPath[f.Path] = &Delta{Path: f.Path, InBefore: true, LevelBefore: f.Level, UnitsBefore: f.FinalUnits}
	}
	for _, f := range after.Files {
		d, ok := byPath[f.Path]
		if !ok {
			d = &Delta{Path: f.Path}
			byPath[f.Path] = d
		}
		d.InAfter = true
		d.LevelAfter = f.Level
		d.UnitsAfter = f.FinalUnits
	}

	c := Comparison{ConsumedDelta: after.Summary.TotalConsumed - before.Summary.TotalConsumed}
	for _, d := range byPath {
		c.Deltas = append(c.Deltas, *d)
	}
	sort.Slice(c.Deltas, func(i, j int) bool { return c.Deltas[i].Path < c.Deltas[j].Path })
	return c, nil
}
