package condense

import (
	"context"
	"regexp"
	"strings"

	"github.com/kcaldas/condenser/pkg/structure"
)

const (
	summaryMarker   = "[condensed] "
	structureMarker = "[structure] "
	moderateHead    = 40
	heavyHead       = 10
	fenceKeepLines  = 3
)

// transformer renders one file at every level. Outlines are parsed on
// first use and shared between levels.
type transformer struct {
	ctx  context.Context
	path string
	text string

	outline      *structure.Outline
	lightText    string
	lightOutline *structure.Outline
	haveLight    bool
}

func newTransformer(ctx context.Context, path, text string) *transformer {
	return &transformer{ctx: ctx, path: path, text: text}
}

func (t *transformer) base() (*structure.Outline, error) {
	if t.outline != nil {
		return t.outline, nil
	}
	o, err := structure.Parse(t.ctx, t.path, t.text)
	if err != nil {
		return nil, err
	}
	t.outline = o
	return o, nil
}

func (t *transformer) light() (string, *structure.Outline, error) {
	if t.haveLight {
		return t.lightText, t.lightOutline, nil
	}
	o, err := t.base()
	if err != nil {
		return "", nil, err
	}
	t.lightText = light(o)
	if t.lightText == t.text {
		t.lightOutline = o
	} else if t.lightOutline, err = structure.Parse(t.ctx, t.path, t.lightText); err != nil {
		return "", nil, err
	}
	t.haveLight = true
	return t.lightText, t.lightOutline, nil
}

func (t *transformer) apply(level Level) (string, error) {
	if t.text == "" || level == None {
		return t.text, nil
	}
	if isSummary(t.text) {
		return t.text, nil
	}
	if level != Light && strings.HasPrefix(t.text, structureMarker) {
		return t.text, nil
	}
	switch level {
	case Light:
		text, _, err := t.light()
		return text, err
	case Moderate:
		_, o, err := t.light()
		if err != nil {
			return "", err
		}
		return moderate(o), t.ctx.Err()
	case Heavy:
		o, err := t.base()
		if err != nil {
			return "", err
		}
		return heavy(o), t.ctx.Err()
	}
	o, err := t.base()
	if err != nil {
		return "", err
	}
	return summary(o), nil
}

// Apply renders text at level. Applying the same level to its own output
// returns that output unchanged.
func Apply(ctx context.Context, path, text string, level Level) (string, error) {
	return newTransformer(ctx, path, text).apply(level)
}

func isSummary(text string) bool {
	return strings.HasPrefix(text, summaryMarker) && !strings.Contains(strings.TrimRight(text, "\n"), "\n")
}

// light strips trailing whitespace, drops comment-only lines that are not
// file headers, construct docs, directives or placeholders, and collapses
// blank runs.
func light(o *structure.Outline) string {
	docs := make([]bool, len(o.Lines))
	for s := range o.UnitStarts() {
		for j := s - 1; j >= 0 && o.CommentOnly[j]; j-- {
			docs[j] = true
		}
	}
	out := make([]string, 0, len(o.Lines))
	for i, line := range o.Lines {
		if o.CommentOnly[i] && !o.Header.Contains(i) && !docs[i] &&
			!structure.IsDirective(line) && !structure.IsPlaceholder(line) {
			continue
		}
		out = append(out, strings.TrimRight(line, " \t\r"))
	}
	return structure.JoinLines(collapseBlanks(out))
}

func collapseBlanks(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			if len(out) == 0 || out[len(out)-1] == "" {
				continue
			}
			l = ""
		}
		out = append(out, l)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func trimmed(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimRight(l, " \t\r")
	}
	return out
}

func moderate(o *structure.Outline) string {
	switch o.Parser {
	case structure.ParserProse:
		return proseModerate(o)
	case structure.ParserData:
		if o.Data.Valid {
			return describe(o, 2)
		}
		return headLines(o, moderateHead)
	case structure.ParserLines:
		if isKeyedConfig(o) {
			return configKeys(o, false)
		}
		return headLines(o, moderateHead)
	}
	return collapseBodies(o)
}

func heavy(o *structure.Outline) string {
	switch o.Parser {
	case structure.ParserProse:
		return proseHeavy(o)
	case structure.ParserData:
		if o.Data.Valid {
			return describe(o, 1)
		}
		return headLines(o, heavyHead)
	case structure.ParserLines:
		if isKeyedConfig(o) {
			return configKeys(o, true)
		}
		return headLines(o, heavyHead)
	}
	return signatures(o)
}

// headLines keeps the first n lines and a placeholder for the rest.
func headLines(o *structure.Outline, n int) string {
	lines := trimmed(o.Lines)
	if len(lines) <= n+1 {
		return structure.JoinLines(lines)
	}
	out := append(lines[:n:n], placeholder(o.Language, "", len(lines)-n))
	return structure.JoinLines(out)
}

func isKeyedConfig(o *structure.Outline) bool {
	switch o.Language.Name {
	case "toml", "ini", "dotenv":
		return true
	}
	return false
}

var (
	sectionRe = regexp.MustCompile(`^\s*\[[^\]]+\]+\s*$`)
	keyRe     = regexp.MustCompile(`^(\s*[\w.\-"']+\s*[=:])`)
)

// configKeys keeps section headers and, unless sectionsOnly, every key
// with its value elided.
func configKeys(o *structure.Outline, sectionsOnly bool) string {
	var out []string
	sections := 0
	for i, line := range o.Lines {
		line = strings.TrimRight(line, " \t\r")
		switch {
		case o.Header.Contains(i):
			out = append(out, line)
		case sectionRe.MatchString(line):
			out = append(out, line)
			sections++
		case strings.TrimSpace(line) == "":
			out = append(out, "")
		case !sectionsOnly && keyRe.MatchString(line) && !o.CommentOnly[i]:
			out = append(out, keyRe.FindString(line)+" ...")
		}
	}
	if sectionsOnly && sections == 0 {
		return headLines(o, heavyHead)
	}
	return structure.JoinLines(collapseBlanks(out))
}
