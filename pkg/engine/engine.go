// Package engine runs the estimate, classify, allocate and condense phases
// over a set of files.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kcaldas/condenser/pkg/budget"
	"github.com/kcaldas/condenser/pkg/condense"
	"github.com/kcaldas/condenser/pkg/config"
	"github.com/kcaldas/condenser/pkg/events"
	"github.com/kcaldas/condenser/pkg/logging"
	"github.com/kcaldas/condenser/pkg/priority"
	"github.com/kcaldas/condenser/pkg/report"
	"github.com/kcaldas/condenser/pkg/tokens"
	"github.com/kcaldas/condenser/pkg/version"
)

// Input is one file handed to the engine. A zero SizeBytes means
// len(Text).
type Input struct {
	Path      string
	Text      string
	SizeBytes int64
}

// FileCandidate is the working record of one file during a run.
type FileCandidate struct {
	Path           string
	SizeBytes      int64
	EstimatedUnits int
	Sampled        bool
	Tier           priority.Tier
	Critical       bool

	AllocatedUnits int
	Reserved       bool
	Capped         bool

	Level          condense.Level
	FinalText      string
	FinalUnits     int
	OverBudget     bool
	Fallback       condense.Fallback
	FallbackReason condense.Reason
}

// Plan is the outcome of the phases before condensing.
type Plan struct {
	Files      []FileCandidate
	Allocation budget.Result
	Profile    priority.Profile
	Warnings   []report.Warning
}

// Engine is configured once and may run many times.
type Engine struct {
	cfg       config.Config
	selection tokens.Selection
	allocator *budget.Allocator
	publisher events.Publisher
	logger    logging.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Engine)

// WithPublisher sends run events to p.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithEstimator bypasses estimator selection.
func WithEstimator(est tokens.Estimator) Option {
	return func(e *Engine) { e.selection = tokens.Selection{Estimator: est} }
}

// WithClock fixes the report timestamp and run ID source.
func WithClock(now func() time.Time, newID func() string) Option {
	return func(e *Engine) {
		e.now = now
		e.newID = newID
	}
}

// New validates cfg and selects the estimator for every later run.
// Malformed configuration is rejected with config.ErrInvalidConfig.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Budget().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	e := &Engine{
		cfg:       cfg,
		publisher: events.Discard,
		logger:    logging.NewComponentLogger("engine"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.selection.Estimator == nil {
		e.selection = tokens.Select(cfg.TokenOptions())
	}
	if e.selection.Degraded {
		e.logger.Warn("exact tokenizer unavailable, using heuristic", "error", e.selection.Cause)
	}
	e.allocator = budget.NewAllocator(e.logger.With("phase", "allocate"))
	return e, nil
}

// Estimator is the estimator every run of e uses.
func (e *Engine) Estimator() tokens.Estimator { return e.selection.Estimator }

func (e *Engine) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d := e.cfg.RunTimeout(); d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// Plan estimates, classifies and allocates without condensing.
func (e *Engine) Plan(ctx context.Context, inputs []Input) (*Plan, error) {
	ctx, cancel := e.runContext(ctx)
	defer cancel()
	return e.plan(ctx, inputs)
}

func (e *Engine) plan(ctx context.Context, inputs []Input) (*Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := &Plan{Files: make([]FileCandidate, len(inputs))}
	if e.selection.Degraded {
		p.Warnings = append(p.Warnings, report.Warning{
			Kind:    report.EstimationDegraded,
			Message: fmt.Sprintf("exact tokenizer unavailable, %s used for the whole run: %v", e.selection.Estimator.Name(), e.selection.Cause),
		})
	}

	files := make([]priority.File, len(inputs))
	for i, in := range inputs {
		size := in.SizeBytes
		if size == 0 {
			size = int64(len(in.Text))
		}
		files[i] = priority.File{Path: in.Path, SizeBytes: size, Head: head(in.Text)}
	}
	p.Profile = priority.BuildProfile(files, e.cfg.DominantLanguages)
	analyzer := priority.NewAnalyzer(e.cfg.CriticalPaths, p.Profile)
	e.logger.Debug("profile built", "dominant", p.Profile.Dominant, "files", len(files))

	est := e.selection.Estimator
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.WorkerCount())
	for i := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			units, sampled := tokens.EstimateSampled(est, inputs[i].Text, e.cfg.SampleThresholdBytes, e.cfg.SampleBytes)
			p.Files[i] = FileCandidate{
				Path:           inputs[i].Path,
				SizeBytes:      files[i].SizeBytes,
				EstimatedUnits: units,
				Sampled:        sampled,
				Tier:           analyzer.Classify(files[i]),
				Critical:       analyzer.IsCritical(inputs[i].Path),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]budget.Item, len(p.Files))
	for i, f := range p.Files {
		items[i] = budget.Item{Path: f.Path, Tier: f.Tier, Estimated: f.EstimatedUnits, SizeBytes: f.SizeBytes, Critical: f.Critical}
	}
	p.Allocation = e.allocator.Allocate(items, e.cfg.Budget())
	for i, a := range p.Allocation.Allocations {
		p.Files[i].AllocatedUnits = a.Units
		p.Files[i].Reserved = a.Reserved
		p.Files[i].Capped = a.OverBudget
	}
	for _, note := range p.Allocation.Notes {
		p.Warnings = append(p.Warnings, report.Warning{Kind: report.AllocationInfeasible, Message: note})
	}
	return p, ctx.Err()
}

// Run takes inputs through every phase. On cancellation it returns the
// context error and no partial report.
func (e *Engine) Run(ctx context.Context, inputs []Input) (*report.Report, error) {
	started := e.now()
	ctx, cancel := e.runContext(ctx)
	defer cancel()

	runID := e.newID()
	b := e.cfg.Budget()
	est := e.selection.Estimator
	e.publisher.Publish(events.RunStarted{
		RunID:      runID,
		Files:      len(inputs),
		TotalUnits: b.TotalUnits,
		UnitKind:   string(est.Kind()),
		Strategy:   string(b.Strategy),
		Estimator:  est.Name(),
	})

	p, err := e.plan(ctx, inputs)
	if err != nil {
		return nil, err
	}

	results, err := e.condense(ctx, inputs, p.Files)
	if err != nil {
		return nil, err
	}

	rep := &report.Report{
		RunID:         runID,
		EngineVersion: version.GetVersion(),
		CreatedAt:     started,
		Estimator:     est.Name(),
		UnitKind:      string(est.Kind()),
		Strategy:      string(b.Strategy),
		TotalUnits:    b.TotalUnits,
		Files:         make([]report.File, len(p.Files)),
		Warnings:      p.Warnings,
	}
	for i := range p.Files {
		f := &p.Files[i]
		r := results[i]
		f.Level = r.Level
		f.FinalText = r.Text
		f.FinalUnits = r.Units
		f.OverBudget = r.OverBudget || f.Capped
		f.Fallback = r.Fallback
		f.FallbackReason = r.Reason

		rep.Files[i] = toReport(*f)
		if w, ok := fallbackWarning(*f); ok {
			rep.Warnings = append(rep.Warnings, w)
		}
		e.publisher.Publish(events.FileCondensed{
			RunID:          runID,
			Path:           f.Path,
			Tier:           f.Tier.String(),
			Level:          f.Level.String(),
			AllocatedUnits: f.AllocatedUnits,
			FinalUnits:     f.FinalUnits,
			OverBudget:     f.OverBudget,
			Fallback:       report.FallbackName(f.Fallback),
		})
	}
	rep.Summary = report.Summarize(rep.Files)
	for _, w := range rep.Warnings {
		e.publisher.Publish(events.RunWarning{RunID: runID, Kind: string(w.Kind), Path: w.Path, Message: w.Message})
	}
	e.publisher.Publish(events.RunCompleted{
		RunID:      runID,
		Files:      len(rep.Files),
		Allocated:  rep.Summary.TotalAllocated,
		Consumed:   rep.Summary.TotalConsumed,
		OverBudget: rep.Summary.OverBudgetCount,
		Duration:   e.now().Sub(started),
	})
	e.logger.Debug("run complete", "run", runID, "files", len(rep.Files),
		"allocated", rep.Summary.TotalAllocated, "consumed", rep.Summary.TotalConsumed)
	return rep, nil
}

func (e *Engine) condense(ctx context.Context, inputs []Input, files []FileCandidate) ([]condense.Result, error) {
	c := condense.New(e.selection.Estimator,
		condense.WithTimeout(e.cfg.PerFileTimeout()),
		condense.WithLogger(e.logger.With("phase", "condense")))

	results := make([]condense.Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.WorkerCount())
	for i := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := c.Condense(gctx, condense.Request{
				Path:      files[i].Path,
				Text:      inputs[i].Text,
				Allocated: files[i].AllocatedUnits,
			})
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, ctx.Err()
}

func toReport(f FileCandidate) report.File {
	return report.File{
		Path:           f.Path,
		SizeBytes:      f.SizeBytes,
		Tier:           f.Tier,
		EstimatedUnits: f.EstimatedUnits,
		Sampled:        f.Sampled,
		AllocatedUnits: f.AllocatedUnits,
		FinalUnits:     f.FinalUnits,
		Level:          f.Level,
		OverBudget:     f.OverBudget,
		Fallback:       report.FallbackName(f.Fallback),
		FallbackReason: string(f.FallbackReason),
		Text:           f.FinalText,
	}
}

func fallbackWarning(f FileCandidate) (report.Warning, bool) {
	if f.Fallback != condense.FallbackHardCut {
		return report.Warning{}, false
	}
	if f.FallbackReason == condense.ReasonTimeout {
		return report.Warning{Kind: report.CondenseTimeout, Path: f.Path, Message: "structural condensing timed out; content hard-cut"}, true
	}
	return report.Warning{Kind: report.StructuralBoundaryNotFound, Path: f.Path, Message: "no structural boundary; content hard-cut"}, true
}

func head(text string) string {
	if len(text) <= priority.HeadSize {
		return text
	}
	return text[:priority.HeadSize]
}
