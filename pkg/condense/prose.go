package condense

import (
	"strings"

	"github.com/kcaldas/condenser/pkg/structure"
)

func isFenceLine(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~")
}

// proseModerate keeps headings, the first line of every paragraph and
// list item, and short code fences. Long fences keep their delimiters.
func proseModerate(o *structure.Outline) string {
	lines := trimmed(o.Lines)
	var out []string
	prevEnd := -1
	for _, b := range o.Prose.Blocks {
		if prevEnd >= 0 && b.Start > prevEnd+1 {
			out = append(out, "")
		}
		switch b.Kind {
		case structure.BlockHeading:
			out = append(out, lines[b.Start:b.End+1]...)
		case structure.BlockFence:
			closed := b.End > b.Start && isFenceLine(lines[b.End])
			if interior := b.End - b.Start - 1; closed && interior > fenceKeepLines {
				out = append(out, lines[b.Start], "... "+omitted(interior), lines[b.End])
			} else {
				out = append(out, lines[b.Start:b.End+1]...)
			}
		default:
			out = append(out, lines[b.Start])
		}
		prevEnd = b.End
	}
	return structure.JoinLines(out)
}

// proseHeavy keeps the heading outline, or the opening line when the
// document has no headings.
func proseHeavy(o *structure.Outline) string {
	lines := trimmed(o.Lines)
	var out []string
	for _, b := range o.Prose.Blocks {
		if b.Kind == structure.BlockHeading {
			out = append(out, lines[b.Start:b.End+1]...)
		}
	}
	if len(out) == 0 {
		for _, b := range o.Prose.Blocks {
			if b.Kind != structure.BlockFence {
				out = append(out, lines[b.Start])
				break
			}
		}
	}
	if len(out) == 0 && len(lines) > 0 {
		out = append(out, lines[0])
	}
	return structure.JoinLines(out)
}
