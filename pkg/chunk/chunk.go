// Package chunk splits one file into parts that each fit a unit limit. Cuts
// fall between constructs where the outline offers them, and parts carry
// headers that say where they sit in the file.
package chunk

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/kcaldas/condenser/pkg/lang"
	"github.com/kcaldas/condenser/pkg/logging"
	"github.com/kcaldas/condenser/pkg/structure"
	"github.com/kcaldas/condenser/pkg/tokens"
)

const maxSignature = 80

// Chunk is one part of a file.
type Chunk struct {
	// Part is 1-based.
	Part  int
	Parts int
	// StartLine and EndLine are the 0-based inclusive source lines the part
	// holds.
	StartLine int
	EndLine   int
	Text      string
	Units     int
	// ContinuedFrom is the signature of the construct the part opens in
	// the middle of.
	ContinuedFrom string
	// ContinuesInto is the signature of the construct the part stops in
	// the middle of.
	ContinuesInto string
	// OverBudget is set when a single line or the frame pushed the part
	// past the limit.
	OverBudget bool
}

// Stats counts what a Chunker has done since it was created.
type Stats struct {
	// Files counts files that needed more than one part.
	Files  int
	Chunks int
	// SplitUnits counts constructs too large for one part.
	SplitUnits int
	// Continuations counts parts carrying a continuation note.
	Continuations int
}

// Chunker is safe for concurrent use.
type Chunker struct {
	estimator tokens.Estimator
	frame     bool
	logger    logging.Logger

	mu    sync.Mutex
	stats Stats
}

type Option func(*Chunker)

// WithoutFrame leaves out part headers, footers and continuation notes.
func WithoutFrame() Option {
	return func(c *Chunker) { c.frame = false }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Chunker) { c.logger = l }
}

// New creates a chunker that measures parts with estimator.
func New(estimator tokens.Estimator, opts ...Option) *Chunker {
	c := &Chunker{estimator: estimator, frame: true, logger: logging.NewDisabledLogger()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats returns a snapshot of the counters.
func (c *Chunker) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Split cuts text into parts of at most limit units. Text that already
// fits is returned as a single unframed part; blank text yields none.
func (c *Chunker) Split(ctx context.Context, filePath, text string, limit int) ([]Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("chunk limit must be positive, got %d", limit)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if units := c.estimator.Estimate(text); units <= limit {
		return []Chunk{{Part: 1, Parts: 1, EndLine: len(structure.SplitLines(text)) - 1, Text: text, Units: units}}, nil
	}

	o, err := structure.Parse(ctx, filePath, text)
	if err != nil {
		return nil, err
	}
	p := &packer{o: o, estimator: c.estimator, room: max(1, limit-c.overhead(o, filePath))}
	p.pack(p.blocks(o.Units, 0, len(o.Lines)-1, nil))
	p.flush()

	chunks := c.render(o, filePath, p.spans, limit)
	c.mu.Lock()
	c.stats.Files++
	c.stats.Chunks += len(chunks)
	c.stats.SplitUnits += p.split
	for _, ch := range chunks {
		if ch.ContinuedFrom != "" || ch.ContinuesInto != "" {
			c.stats.Continuations++
		}
	}
	c.mu.Unlock()
	c.logger.Debug("file chunked", "path", filePath, "parts", len(chunks), "split_units", p.split, "limit", limit)
	return chunks, ctx.Err()
}

// overhead is the estimated cost of the frame around one part.
func (c *Chunker) overhead(o *structure.Outline, filePath string) int {
	if !c.frame {
		return 0
	}
	frame := c.header(o.Language, filePath, 10, 10) + c.footer(o.Language, 10, 10)
	if sig := longestSignature(o); sig != "" {
		frame += commentLine(o.Language, "Continued from: "+sig) + commentLine(o.Language, "Continues: "+sig)
	}
	return c.estimator.Estimate(frame)
}

func (c *Chunker) render(o *structure.Outline, filePath string, spans []span, limit int) []Chunk {
	chunks := make([]Chunk, len(spans))
	for i, s := range spans {
		ch := Chunk{Part: i + 1, Parts: len(spans), StartLine: s.start, EndLine: s.end}
		if s.first != nil && s.first.Start < s.start {
			ch.ContinuedFrom = signature(o, s.first)
		}
		if s.last != nil && s.last.End > s.end {
			ch.ContinuesInto = signature(o, s.last)
		}
		body := structure.JoinLines(o.Lines[s.start : s.end+1])
		if !c.frame || len(spans) == 1 {
			ch.Text = body
		} else {
			var sb strings.Builder
			sb.WriteString(c.header(o.Language, filePath, ch.Part, ch.Parts))
			if ch.ContinuedFrom != "" {
				sb.WriteString(commentLine(o.Language, "Continued from: "+ch.ContinuedFrom))
			}
			sb.WriteString(body)
			if ch.ContinuesInto != "" {
				sb.WriteString(commentLine(o.Language, "Continues: "+ch.ContinuesInto))
			}
			if ch.Part < ch.Parts {
				sb.WriteString(c.footer(o.Language, ch.Part+1, ch.Parts))
			}
			ch.Text = sb.String()
		}
		ch.Units = c.estimator.Estimate(ch.Text)
		ch.OverBudget = ch.Units > limit
		chunks[i] = ch
	}
	return chunks
}

func (c *Chunker) header(l lang.Language, filePath string, part, parts int) string {
	name := path.Base(filePath)
	if part == 1 {
		return commentLine(l, fmt.Sprintf("%s (Part %d/%d)", name, part, parts))
	}
	return commentLine(l, fmt.Sprintf("Continuation of %s (Part %d/%d)", name, part, parts))
}

func (c *Chunker) footer(l lang.Language, next, parts int) string {
	return commentLine(l, fmt.Sprintf("Continues in Part %d/%d...", next, parts))
}

// commentLine renders s as a comment of l, or in brackets when l has no
// comment syntax.
func commentLine(l lang.Language, s string) string {
	switch {
	case l.LineComment != "":
		return l.LineComment + " " + s + "\n"
	case l.BlockStart != "":
		return l.BlockStart + " " + s + " " + l.BlockEnd + "\n"
	}
	return "[" + s + "]\n"
}

// signature is the header of u on one line, shortened to maxSignature
// runes.
func signature(o *structure.Outline, u *structure.Unit) string {
	end := min(max(u.HeaderEnd, u.Start), len(o.Lines)-1)
	sig := strings.Join(strings.Fields(strings.Join(o.Lines[u.Start:end+1], " ")), " ")
	if utf8.RuneCountInString(sig) > maxSignature {
		sig = string([]rune(sig)[:maxSignature-3]) + "..."
	}
	return sig
}

func longestSignature(o *structure.Outline) string {
	longest := ""
	var walk func([]structure.Unit)
	walk = func(us []structure.Unit) {
		for i := range us {
			if s := signature(o, &us[i]); len(s) > len(longest) {
				longest = s
			}
			walk(us[i].Children)
		}
	}
	walk(o.Units)
	return longest
}
