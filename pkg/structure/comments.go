package structure

import (
	"strings"

	"github.com/kcaldas/condenser/pkg/lang"
)

// heredocLanguages open literal blocks with `<<TAG`.
var heredocLanguages = map[string]bool{"shell": true, "ruby": true, "perl": true, "php": true}

// multilineQuotes are quotes that may span lines without a trailing
// backslash, per language. Backticks and triple quotes always may.
var multilineQuotes = map[string]string{"shell": `"'`, "make": `"'`, "dockerfile": `"'`}

// lexState is what carries over from one line to the next.
type lexState struct {
	inBlock bool
	quote   string
	heredoc string
}

// scanComments marks comment-only lines using the language's comment
// syntax. Strings, backslash continuations and heredocs are tracked so
// that their lines are never taken for comments; literal reports which
// lines start inside one.
func scanComments(lines []string, l lang.Language) (comment, literal []bool) {
	comment = make([]bool, len(lines))
	literal = make([]bool, len(lines))
	var st lexState
	for i, line := range lines {
		if st.heredoc != "" {
			literal[i] = true
			if t := strings.TrimSpace(line); t == st.heredoc || strings.TrimRight(t, ";") == st.heredoc {
				st.heredoc = ""
			}
			continue
		}
		if st.quote != "" {
			literal[i] = true
		}
		t := strings.TrimSpace(line)
		opensComment := st.inBlock && st.quote == "" ||
			st.quote == "" && l.LineComment != "" && strings.HasPrefix(t, l.LineComment) ||
			st.quote == "" && l.BlockStart != "" && strings.HasPrefix(t, l.BlockStart)
		code := st.scanLine(line, l)
		comment[i] = opensComment && !code
	}
	return comment, literal
}

// scanLine advances st over one line and reports whether the line holds
// anything outside comments.
func (st *lexState) scanLine(line string, l lang.Language) bool {
	code := false
	escaped := false
	for i := 0; i < len(line); {
		rest := line[i:]
		switch {
		case st.inBlock:
			idx := strings.Index(rest, l.BlockEnd)
			if idx < 0 {
				return code
			}
			st.inBlock = false
			i += idx + len(l.BlockEnd)
		case st.quote != "":
			code = true
			switch {
			case escaped:
				escaped = false
				i++
			case line[i] == '\\' && !(st.quote == "'" && l.Name == "shell"):
				escaped = true
				i++
			case strings.HasPrefix(rest, st.quote):
				i += len(st.quote)
				st.quote = ""
			default:
				i++
			}
		case line[i] == ' ' || line[i] == '\t' || line[i] == '\r':
			i++
		case l.LineComment != "" && strings.HasPrefix(rest, l.LineComment) &&
			(l.LineComment != "#" || i == 0 || line[i-1] == ' ' || line[i-1] == '\t'):
			return code
		case l.BlockStart != "" && strings.HasPrefix(rest, l.BlockStart):
			st.inBlock = true
			i += len(l.BlockStart)
		case heredocLanguages[l.Name] && strings.HasPrefix(rest, "<<"):
			code = true
			if tag, n := heredocTag(rest, l.Name); tag != "" {
				st.heredoc = tag
				i += n
			} else {
				i += 2
			}
		case strings.HasPrefix(rest, `"""`) || strings.HasPrefix(rest, "'''"):
			code = true
			st.quote = rest[:3]
			i += 3
		case line[i] == '"' || line[i] == '\'' || line[i] == '`':
			code = true
			st.quote = line[i : i+1]
			i++
		default:
			code = true
			i++
		}
	}
	// Single-line quotes close at the end of the line unless escaped.
	if st.quote != "" && !escaped && len(st.quote) == 1 && st.quote != "`" &&
		!strings.Contains(multilineQuotes[l.Name], st.quote) {
		st.quote = ""
	}
	return code
}

// heredocTag parses `<<TAG`, `<<-TAG`, `<<~TAG`, `<<<TAG` and their quoted
// forms. It returns the terminator and the bytes consumed.
func heredocTag(s, language string) (string, int) {
	i := 2
	if language == "php" && strings.HasPrefix(s[i:], "<") {
		i++
	}
	if i < len(s) && (s[i] == '-' || s[i] == '~') {
		i++
	}
	if language == "shell" {
		for i < len(s) && s[i] == ' ' {
			i++
		}
	}
	quote := byte(0)
	if i < len(s) && (s[i] == '\'' || s[i] == '"') {
		quote = s[i]
		i++
	}
	start := i
	for i < len(s) && (s[i] == '_' || s[i] >= 'A' && s[i] <= 'Z' || s[i] >= 'a' && s[i] <= 'z' || i > start && s[i] >= '0' && s[i] <= '9') {
		i++
	}
	if i == start {
		return "", 0
	}
	tag := s[start:i]
	if quote != 0 {
		if i >= len(s) || s[i] != quote {
			return "", 0
		}
		i++
	}
	return tag, i
}

// findHeader returns the leading run of comment lines, extended by a
// module docstring for languages that have them.
func findHeader(lines []string, commentOnly []bool, l lang.Language) Span {
	last := -1
	i := 0
	for ; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		if !commentOnly[i] {
			break
		}
		last = i
	}
	if l.Docstrings && i < len(lines) {
		if end, ok := docstringEnd(lines, i); ok {
			last = end
		}
	}
	if last < 0 {
		return noSpan
	}
	return Span{Start: 0, End: last}
}

var docQuotes = []string{`"""`, `'''`, `r"""`, `r'''`, `u"""`}

// docstringEnd reports the closing line of a triple-quoted string opening
// at line i.
func docstringEnd(lines []string, i int) (int, bool) {
	t := strings.TrimSpace(lines[i])
	for _, q := range docQuotes {
		if !strings.HasPrefix(t, q) {
			continue
		}
		closer := strings.TrimLeft(q, "ru")
		if strings.Contains(t[len(q):], closer) {
			return i, true
		}
		for j := i + 1; j < len(lines); j++ {
			if strings.Contains(lines[j], closer) {
				return j, true
			}
		}
		return 0, false
	}
	return 0, false
}
