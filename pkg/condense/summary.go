package condense

import (
	"fmt"
	"strings"

	"github.com/kcaldas/condenser/pkg/structure"
)

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	if strings.HasSuffix(word, "s") {
		return fmt.Sprintf("%d %ses", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// summary describes a file in one paragraph of counts. Only the path is
// taken from the file; no names, keys or titles are.
func summary(o *structure.Outline) string {
	parts := []string{fmt.Sprintf("%s %s, %s", o.Language.Name, o.Language.Category, plural(len(o.Lines), "line"))}

	switch {
	case o.Prose != nil:
		p := o.Prose
		if len(p.Headings) > 0 {
			parts = append(parts, plural(len(p.Headings), "heading"))
		}
		if p.CodeBlocks > 0 {
			parts = append(parts, plural(p.CodeBlocks, "code block"))
		}
		if p.Lists > 0 {
			parts = append(parts, plural(p.Lists, "list"))
		}
	case o.Data != nil && o.Data.Valid && o.Data.Root != nil:
		parts = append(parts, shapeLabel(o.Data.Root))
		if o.Data.Records > 0 {
			parts = append(parts, plural(o.Data.Records, "record"))
		}
	case o.Data != nil && o.Data.Format == "csv" && o.Data.Valid:
		parts = append(parts, plural(len(o.Data.Columns), "column"), plural(o.Data.Records, "record"))
	default:
		var counts []string
		for _, k := range []struct {
			kind structure.Kind
			word string
		}{
			{structure.KindType, "type"},
			{structure.KindClass, "class"},
			{structure.KindImpl, "impl"},
			{structure.KindModule, "module"},
			{structure.KindFunction, "function"},
			{structure.KindMethod, "method"},
		} {
			if n := o.Count(k.kind); n > 0 {
				counts = append(counts, plural(n, k.word))
			}
		}
		if len(counts) > 0 {
			parts = append(parts, strings.Join(counts, ", "))
		}
		if n := len(o.ExportedNames()); n > 0 {
			parts = append(parts, fmt.Sprintf("%d exported", n))
		}
	}
	return summaryMarker + oneLine(o.Path) + ": " + strings.Join(parts, "; ") + ".\n"
}
