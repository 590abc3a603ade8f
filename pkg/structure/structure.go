// Package structure finds the boundaries condensing may cut at: the
// top-level constructs of source files, the blocks of prose and the shape
// of data files. Everything is expressed in 0-based line numbers.
package structure

import (
	"context"
	"regexp"
	"strings"

	"github.com/kcaldas/condenser/pkg/lang"
)

// Kind names the construct a Unit represents.
type Kind string

const (
	KindFunction Kind = "function"
	KindMethod   Kind = "method"
	KindType     Kind = "type"
	KindClass    Kind = "class"
	KindImpl     Kind = "impl"
	KindModule   Kind = "module"
)

// Unit is one construct that must never be split.
type Unit struct {
	Kind Kind
	Name string
	// Start includes decorators and export keywords.
	Start int
	// HeaderEnd is the last line of the signature.
	HeaderEnd int
	End       int
	// HasBody is set when lines HeaderEnd+1..End hold a body that can be
	// replaced by a placeholder.
	HasBody bool
	// Closing is set when line End only closes the body.
	Closing   bool
	Exported  bool
	Container bool
	// Doc is the docstring opening the body, rendered on one line.
	Doc string
	// DocLines is how many body lines the docstring spans.
	DocLines int
	Children []Unit
}

// BodyLines is the number of interior body lines.
func (u Unit) BodyLines() int {
	if !u.HasBody {
		return 0
	}
	n := u.End - u.HeaderEnd
	if u.Closing {
		n--
	}
	return max(n, 0)
}

// Span is an inclusive line range. A span with End < Start is empty.
type Span struct {
	Start, End int
}

func (s Span) Empty() bool { return s.End < s.Start }

func (s Span) Contains(line int) bool { return !s.Empty() && line >= s.Start && line <= s.End }

var noSpan = Span{Start: 0, End: -1}

// Parser names which strategy produced an outline.
type Parser string

const (
	ParserTreeSitter Parser = "tree-sitter"
	ParserHeuristic  Parser = "heuristic"
	ParserProse      Parser = "prose"
	ParserData       Parser = "data"
	ParserLines      Parser = "lines"
)

// Outline is the structural view of one file.
type Outline struct {
	Path     string
	Language lang.Language
	Parser   Parser
	Lines    []string
	Units    []Unit
	// Header is the leading block of comments and docstrings.
	Header Span
	// Package is the line of the package clause, or -1.
	Package int
	// CommentOnly marks lines holding nothing but comments.
	CommentOnly []bool
	Prose       *Prose
	Data        *Data
}

// HasBoundaries reports whether the file offers any point to cut at.
func (o *Outline) HasBoundaries() bool {
	if len(o.Lines) > 1 || len(o.Units) > 0 {
		return true
	}
	return o.Data != nil && o.Data.Valid
}

// Count returns how many units of kind k the outline holds, children included.
func (o *Outline) Count(k Kind) int {
	var walk func([]Unit) int
	walk = func(us []Unit) int {
		n := 0
		for _, u := range us {
			if u.Kind == k {
				n++
			}
			n += walk(u.Children)
		}
		return n
	}
	return walk(o.Units)
}

// ExportedNames lists exported unit names in file order.
func (o *Outline) ExportedNames() []string {
	var names []string
	var walk func([]Unit)
	walk = func(us []Unit) {
		for _, u := range us {
			if u.Exported && u.Name != "" {
				names = append(names, u.Name)
			}
			walk(u.Children)
		}
	}
	walk(o.Units)
	return names
}

// UnitStarts marks the first line of every unit, children included.
func (o *Outline) UnitStarts() map[int]bool {
	starts := map[int]bool{}
	var walk func([]Unit)
	walk = func(us []Unit) {
		for _, u := range us {
			starts[u.Start] = true
			walk(u.Children)
		}
	}
	walk(o.Units)
	return starts
}

// Parse builds the outline of text. The context bounds parser work; an
// expired context returns its error.
func Parse(ctx context.Context, path, text string) (*Outline, error) {
	l := lang.Detect(path)
	o := &Outline{
		Path:     path,
		Language: l,
		Lines:    SplitLines(text),
		Header:   noSpan,
		Package:  -1,
	}

	var err error
	switch {
	case l.Category == lang.CategoryMarkup || l.Category == lang.CategoryDocument:
		err = parseProse(ctx, o, text)
	case isStructuredData(l):
		err = parseData(ctx, o, text)
	case hasGrammar(path, l):
		err = parseTreeSitter(ctx, o, text)
	default:
		err = parseHeuristic(ctx, o)
	}
	if err != nil {
		return nil, err
	}
	if o.CommentOnly == nil {
		o.CommentOnly, _ = scanComments(o.Lines, l)
	}
	if o.Header.Empty() && o.Parser != ParserProse && o.Parser != ParserData {
		o.Header = findHeader(o.Lines, o.CommentOnly, l)
	}
	return o, ctx.Err()
}

// SplitLines splits on "\n". A trailing newline does not yield an empty
// final line and the empty string has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// JoinLines is the inverse of SplitLines for non-empty input.
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Indent returns the leading whitespace of line.
func Indent(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

var placeholderRe = regexp.MustCompile(`\.\.\.\s+(?:(?://|#|--)\s*)?\d+ lines? omitted`)

// IsPlaceholder reports whether line is a body placeholder written by the
// condensing transforms.
func IsPlaceholder(line string) bool {
	return placeholderRe.MatchString(line)
}

// directives are comment lines with meaning to tools.
var directivePrefixes = []string{"#!", "//go:", "// +build", "//nolint", "# -*-", "# type:", "# noqa", "# pragma", "// @ts-", "//#region", "//#endregion", "'use ", "\"use "}

// IsDirective reports whether a comment-only line carries a tool directive.
func IsDirective(line string) bool {
	t := strings.TrimSpace(line)
	for _, p := range directivePrefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}
