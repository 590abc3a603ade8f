package condense

import (
	"strings"

	"github.com/kcaldas/condenser/pkg/structure"
)

// collapseBodies replaces function and method bodies with a placeholder
// when that makes them strictly shorter. Everything else is kept.
func collapseBodies(o *structure.Outline) string {
	if len(o.Units) == 0 {
		return structure.JoinLines(o.Lines)
	}
	var out []string
	cursor := 0
	for _, u := range o.Units {
		out = append(out, o.Lines[cursor:u.Start]...)
		out = append(out, collapseUnit(o, u)...)
		cursor = u.End + 1
	}
	out = append(out, o.Lines[min(cursor, len(o.Lines)):]...)
	return structure.JoinLines(out)
}

func collapseUnit(o *structure.Outline, u structure.Unit) []string {
	lines := o.Lines
	if u.Container && len(u.Children) > 0 {
		var out []string
		cursor := u.Start
		for _, c := range u.Children {
			out = append(out, lines[cursor:c.Start]...)
			out = append(out, collapseUnit(o, c)...)
			cursor = c.End + 1
		}
		return append(out, lines[cursor:u.End+1]...)
	}
	if (u.Kind != structure.KindFunction && u.Kind != structure.KindMethod) || !u.HasBody {
		return lines[u.Start : u.End+1]
	}

	body := u.BodyLines()
	shown := 1
	if u.Doc != "" {
		shown++
	}
	if shown >= body {
		return lines[u.Start : u.End+1]
	}

	indent := bodyIndent(lines, u, o.Language)
	out := append([]string(nil), lines[u.Start:u.HeaderEnd+1]...)
	hidden := body
	if u.Doc != "" {
		out = append(out, indent+u.Doc)
		hidden = body - u.DocLines
	}
	out = append(out, placeholder(o.Language, indent, hidden))
	if u.Closing {
		out = append(out, lines[u.End])
	}
	return out
}

// signatures keeps the file header, the package clause and the signature
// of every exported construct.
func signatures(o *structure.Outline) string {
	var blocks [][]string
	if !o.Header.Empty() {
		blocks = append(blocks, collapseBlanks(trimmed(o.Lines[o.Header.Start:o.Header.End+1])))
	}
	if o.Package >= 0 && !o.Header.Contains(o.Package) {
		blocks = append(blocks, []string{strings.TrimRight(o.Lines[o.Package], " \t\r")})
	}
	for _, u := range o.Units {
		if b := heavyUnit(o, u); len(b) > 0 {
			blocks = append(blocks, b)
		}
	}
	if len(blocks) == 0 {
		return headLines(o, heavyHead)
	}

	var out []string
	for i, b := range blocks {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, b...)
	}
	return structure.JoinLines(out)
}

func heavyUnit(o *structure.Outline, u structure.Unit) []string {
	lines := o.Lines
	if !u.Container {
		if !u.Exported {
			return nil
		}
		return heavyLeaf(o, u)
	}

	var children [][]string
	for _, c := range u.Children {
		if b := heavyUnit(o, c); len(b) > 0 {
			children = append(children, b)
		}
	}
	if !u.Exported && len(children) == 0 {
		return nil
	}
	if len(children) == 0 {
		return heavyLeaf(o, u)
	}
	out := trimmed(lines[u.Start : u.HeaderEnd+1])
	for _, c := range children {
		out = append(out, c...)
	}
	if u.Closing && u.End > u.HeaderEnd {
		out = append(out, strings.TrimRight(lines[u.End], " \t\r"))
	}
	return out
}

func heavyLeaf(o *structure.Outline, u structure.Unit) []string {
	lines := o.Lines
	if !u.HasBody || u.BodyLines() <= 1 {
		return trimmed(lines[u.Start : u.End+1])
	}
	out := trimmed(lines[u.Start : u.HeaderEnd+1])
	out = append(out, placeholder(o.Language, bodyIndent(lines, u, o.Language), u.BodyLines()))
	if u.Closing {
		out = append(out, strings.TrimRight(lines[u.End], " \t\r"))
	}
	return out
}
