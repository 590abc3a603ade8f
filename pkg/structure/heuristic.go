package structure

import (
	"context"
	"regexp"
	"strings"
)

var endKeywordLanguages = map[string]bool{"ruby": true, "lua": true, "elixir": true}

var (
	containerWordRe = regexp.MustCompile(`\b(class|struct|interface|enum|object|namespace|trait|impl|extension|protocol|module)\b`)
	nameRe          = regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*(?:\(|<|\{|:|$)`)
	endStartRe      = regexp.MustCompile(`^\s*(?:(?:local\s+)?function|def|defp|defmacro|defmodule|class|module)\b\s*([\w.:?!]*)`)
	endLineRe       = regexp.MustCompile(`^\s*end\b`)
	privateWordRe   = regexp.MustCompile(`^\s*(?:private|static|internal|fileprivate|protected|local|defp)\b`)
)

// parseHeuristic finds units without a grammar: brace matching for C-like
// languages and end-keyword matching for Ruby-like ones.
func parseHeuristic(ctx context.Context, o *Outline) error {
	comment, literal := scanComments(o.Lines, o.Language)
	o.CommentOnly = comment
	skip := make([]bool, len(comment))
	for i := range skip {
		skip[i] = comment[i] || literal[i]
	}
	switch {
	case endKeywordLanguages[o.Language.Name]:
		o.Parser = ParserHeuristic
		o.Units = endUnits(ctx, o.Lines, 0, len(o.Lines)-1, 0)
	case o.Language.LineComment == "//" || o.Language.BlockStart == "/*" || o.Language.Name == "shell":
		o.Parser = ParserHeuristic
		o.Units = braceUnits(ctx, o.Lines, skip, 0, len(o.Lines)-1, 0, nil)
	default:
		o.Parser = ParserLines
	}
	return ctx.Err()
}

// braceDelta counts braces outside quotes and line comments.
func braceDelta(line string) int {
	delta := 0
	var quote rune
	escaped := false
	for i, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'' || r == '`':
			quote = r
		case r == '/' && strings.HasPrefix(line[i:], "//"):
			return delta
		case r == '{':
			delta++
		case r == '}':
			delta--
		}
	}
	return delta
}

// braceUnits finds brace-delimited units, ignoring skip lines.
func braceUnits(ctx context.Context, lines []string, skip []bool, from, to, depth int, parent *Unit) []Unit {
	var out []Unit
	for i := from; i <= to; i++ {
		if ctx.Err() != nil {
			return out
		}
		if skip[i] {
			continue
		}
		t := strings.TrimSpace(lines[i])
		if t == "" || !strings.HasSuffix(stripTrailingComment(t), "{") || braceDelta(lines[i]) <= 0 {
			continue
		}
		end := matchBrace(lines, skip, i, to)
		if end < 0 {
			continue
		}
		u := Unit{Start: i, HeaderEnd: i, End: end, Name: guessName(t)}
		if last := strings.TrimSpace(lines[end]); strings.HasPrefix(last, "}") && end > i {
			u.HasBody = true
			u.Closing = true
		}
		u.Exported = !privateWordRe.MatchString(t) && (parent == nil || parent.Exported)
		switch {
		case containerWordRe.MatchString(t) && !strings.Contains(beforeParen(t), "("):
			u.Kind = KindClass
			u.Container = true
			if depth < maxContainerDepth-1 {
				u.Children = braceUnits(ctx, lines, skip, i+1, end-1, depth+1, &u)
			}
		case strings.Contains(t, "("):
			u.Kind = KindFunction
			if parent != nil {
				u.Kind = KindMethod
			}
		default:
			// Initializers such as `var x = {` are not constructs.
			i = end
			continue
		}
		out = append(out, u)
		i = end
	}
	return out
}

func matchBrace(lines []string, skip []bool, start, to int) int {
	depth := 0
	for j := start; j <= to; j++ {
		if skip[j] {
			continue
		}
		depth += braceDelta(lines[j])
		if depth <= 0 {
			return j
		}
	}
	return -1
}

func stripTrailingComment(t string) string {
	if idx := strings.Index(t, " //"); idx >= 0 {
		return strings.TrimSpace(t[:idx])
	}
	return t
}

func beforeParen(t string) string {
	if idx := strings.IndexAny(t, "{"); idx >= 0 {
		t = t[:idx]
	}
	for _, w := range []string{"class ", "struct ", "interface ", "enum ", "object ", "namespace ", "trait ", "impl ", "extension ", "protocol ", "module "} {
		if idx := strings.Index(t, w); idx >= 0 {
			return t[:idx]
		}
	}
	return t
}

var ignoredNames = map[string]bool{
	"func": true, "function": true, "fn": true, "def": true, "class": true, "struct": true,
	"public": true, "private": true, "static": true, "void": true, "async": true, "export": true,
}

func guessName(t string) string {
	for _, m := range nameRe.FindAllStringSubmatch(t, -1) {
		if !ignoredNames[m[1]] {
			return m[1]
		}
	}
	return ""
}

func endUnits(ctx context.Context, lines []string, from, to, depth int) []Unit {
	var out []Unit
	for i := from; i <= to; i++ {
		if ctx.Err() != nil {
			return out
		}
		m := endStartRe.FindStringSubmatch(lines[i])
		if m == nil || strings.HasSuffix(strings.TrimSpace(lines[i]), " end") {
			continue
		}
		indent := Indent(lines[i])
		end := -1
		for j := i + 1; j <= to; j++ {
			if Indent(lines[j]) == indent && endLineRe.MatchString(lines[j]) {
				end = j
				break
			}
		}
		if end < 0 {
			continue
		}
		t := strings.TrimSpace(lines[i])
		u := Unit{
			Kind:      KindFunction,
			Name:      m[1],
			Start:     i,
			HeaderEnd: i,
			End:       end,
			HasBody:   true,
			Closing:   true,
			Exported:  !privateWordRe.MatchString(t),
		}
		if strings.HasPrefix(t, "class") || strings.HasPrefix(t, "module") || strings.HasPrefix(t, "defmodule") {
			u.Kind = KindClass
			u.Container = true
			if depth < maxContainerDepth-1 {
				u.Children = endUnits(ctx, lines, i+1, end-1, depth+1)
				for k := range u.Children {
					u.Children[k].Kind = KindMethod
				}
			}
		}
		out = append(out, u)
		i = end
	}
	return out
}
