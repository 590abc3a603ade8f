package condense

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kcaldas/condenser/pkg/logging"
	"github.com/kcaldas/condenser/pkg/tokens"
)

// Fallback tells structural condensing apart from byte cuts.
type Fallback string

const (
	FallbackNone    Fallback = ""
	FallbackHardCut Fallback = "hard_cut"
)

// Reason explains why a hard cut was made.
type Reason string

const (
	ReasonTimeout    Reason = "timeout"
	ReasonNoBoundary Reason = "no_boundary"
)

const truncationMarker = "\n[truncated]\n"

// Request is one file to fit into its allocation.
type Request struct {
	Path      string
	Text      string
	Allocated int
}

// Result is the condensed form of a file.
type Result struct {
	Text       string
	Units      int
	Level      Level
	OverBudget bool
	Fallback   Fallback
	Reason     Reason
	// Tried lists the levels attempted, in order.
	Tried []Level
}

// Condenser fits files into allocations one level at a time.
type Condenser struct {
	estimator tokens.Estimator
	timeout   time.Duration
	logger    logging.Logger
}

// Option configures a Condenser.
type Option func(*Condenser)

// WithTimeout bounds the structural work spent on one file.
func WithTimeout(d time.Duration) Option {
	return func(c *Condenser) { c.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Condenser) { c.logger = l }
}

// New creates a condenser that measures output with estimator.
func New(estimator tokens.Estimator, opts ...Option) *Condenser {
	c := &Condenser{estimator: estimator, logger: logging.NewDisabledLogger()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Condense returns the least condensed rendering of req.Text that fits
// req.Allocated. When even MAXIMUM does not fit the MAXIMUM rendering is
// returned over budget. The error is non-nil only when ctx is done.
//
// The per-file timeout covers every estimate made for the file. Once it
// expires the text is cut once at the position the measured density
// predicts and measured again.
func (c *Condenser) Condense(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	fileCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		fileCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	log := c.logger.With("path", req.Path)

	res := Result{Level: None, Tried: []Level{None}}
	res.Units = c.estimator.Estimate(req.Text)
	res.Text = req.Text
	if req.Text == "" || res.Units <= req.Allocated {
		return res, nil
	}
	if err := fileCtx.Err(); err != nil {
		return c.degrade(ctx, fileCtx, req, res, err, log)
	}

	t := newTransformer(fileCtx, req.Path, req.Text)
	o, err := t.base()
	if err != nil {
		return c.degrade(ctx, fileCtx, req, res, err, log)
	}
	if !o.HasBoundaries() {
		log.Debug("no structural boundary, cutting", "units", res.Units, "allocated", req.Allocated)
		return c.hardCut(fileCtx, req, res, ReasonNoBoundary), nil
	}

	full := res.Units
	for _, level := range Levels[1:] {
		text, err := t.apply(level)
		if err != nil {
			res.Units = full
			return c.degrade(ctx, fileCtx, req, res, err, log)
		}
		res.Tried = append(res.Tried, level)
		res.Level = level
		res.Text = text
		res.Units = c.estimator.Estimate(text)
		if res.Units <= req.Allocated {
			log.Debug("condensed", "level", level, "units", res.Units, "allocated", req.Allocated)
			return res, nil
		}
		if err := fileCtx.Err(); err != nil && level != Maximum {
			res.Units = full
			return c.degrade(ctx, fileCtx, req, res, err, log)
		}
	}
	res.OverBudget = true
	log.Debug("over budget at maximum", "units", res.Units, "allocated", req.Allocated)
	return res, nil
}

// degrade turns a per-file timeout into a hard cut. Cancellation of the
// run itself is returned as an error. res.Units must be the estimate of
// the full text.
func (c *Condenser) degrade(ctx, fileCtx context.Context, req Request, res Result, err error, log logging.Logger) (Result, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("condense timed out, cutting", "timeout", c.timeout)
		return c.hardCut(fileCtx, req, res, ReasonTimeout), nil
	}
	log.Warn("structure unavailable, cutting", "error", err)
	return c.hardCut(fileCtx, req, res, ReasonNoBoundary), nil
}

// hardCut keeps the longest prefix that fits together with the
// truncation marker, backing off to whitespace when one is close. The
// prefix is found by binary search while ctx allows; after that a single
// cut is made at the position res.Units predicts.
func (c *Condenser) hardCut(ctx context.Context, req Request, res Result, reason Reason) Result {
	text := req.Text
	fits := func(n int) bool {
		return c.estimator.Estimate(text[:n]+truncationMarker) <= req.Allocated
	}
	var cut int
	if ctx.Err() != nil {
		cut = c.predictCut(req, res.Units)
	} else {
		lo, hi := 0, len(text)
		for lo < hi {
			if ctx.Err() != nil {
				lo = min(lo, c.predictCut(req, res.Units))
				break
			}
			mid := runeFloor(text, lo+(hi-lo+1)/2)
			if mid <= lo {
				mid = runeCeil(text, lo+1)
				if mid > hi || !fits(mid) {
					break
				}
				lo = mid
				continue
			}
			if fits(mid) {
				lo = mid
			} else {
				hi = mid - 1
			}
		}
		cut = runeFloor(text, lo)
	}
	if ws := strings.LastIndexAny(text[:cut], " \t\n"); ws > 0 && ws >= cut-cut/5 {
		cut = ws
	}

	res.Text = strings.TrimRight(text[:cut], " \t\n") + truncationMarker
	res.Units = c.estimator.Estimate(res.Text)
	res.Level = Maximum
	res.Fallback = FallbackHardCut
	res.Reason = reason
	res.OverBudget = res.Units > req.Allocated
	return res
}

// predictCut scales the text length by the share of units that fit,
// leaving room for the marker. units is the estimate of the whole text.
func (c *Condenser) predictCut(req Request, units int) int {
	if units <= 0 {
		return 0
	}
	room := req.Allocated - len(truncationMarker)*units/max(len(req.Text), 1)
	if room <= 0 {
		return 0
	}
	n := int(int64(len(req.Text)) * int64(room) / int64(units))
	return runeFloor(req.Text, min(n, len(req.Text)))
}

func runeFloor(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func runeCeil(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
