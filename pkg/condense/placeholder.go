package condense

import (
	"fmt"
	"strings"

	"github.com/kcaldas/condenser/pkg/lang"
	"github.com/kcaldas/condenser/pkg/structure"
)

func omitted(n int) string {
	if n == 1 {
		return "1 line omitted"
	}
	return fmt.Sprintf("%d lines omitted", n)
}

// placeholder renders the line that stands in for n hidden body lines.
// It is valid syntax in the file's language.
func placeholder(l lang.Language, indent string, n int) string {
	switch {
	case l.Docstrings:
		return indent + "...  # " + omitted(n)
	case l.LineComment != "":
		return indent + l.LineComment + " ... " + omitted(n)
	case l.BlockStart != "":
		return indent + l.BlockStart + " ... " + omitted(n) + " " + l.BlockEnd
	}
	return indent + "... " + omitted(n)
}

// bodyIndent is the indentation of the first non-blank body line, or one
// level deeper than the header.
func bodyIndent(lines []string, u structure.Unit, l lang.Language) string {
	for i := u.HeaderEnd + 1; i <= u.End && i < len(lines); i++ {
		if u.Closing && i == u.End {
			break
		}
		if strings.TrimSpace(lines[i]) != "" {
			return structure.Indent(lines[i])
		}
	}
	base := structure.Indent(lines[u.Start])
	if l.Name == "go" {
		return base + "\t"
	}
	return base + "    "
}
