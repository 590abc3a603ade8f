package condense

import (
	"fmt"
	"strings"

	"github.com/kcaldas/condenser/pkg/structure"
)

const sampleRows = 5

// describe renders the shape of a data file down to maxDepth levels below
// the root.
func describe(o *structure.Outline, maxDepth int) string {
	d := o.Data
	var out []string
	switch d.Format {
	case "csv":
		out = append(out, fmt.Sprintf("%s%s (csv, %d columns, %d records)", structureMarker, o.Path, len(d.Columns), d.Records))
		out = append(out, strings.TrimRight(o.Lines[0], " \t\r"))
		if maxDepth > 1 {
			rows := 0
			for _, l := range o.Lines[1:] {
				if rows == sampleRows {
					break
				}
				if strings.TrimSpace(l) != "" {
					out = append(out, strings.TrimRight(l, " \t\r"))
					rows++
				}
			}
			if d.Records > rows {
				out = append(out, fmt.Sprintf("... %d more records", d.Records-rows))
			}
		}
		return structure.JoinLines(out)
	case "jsonl":
		out = append(out, fmt.Sprintf("%s%s (jsonl, %d records)", structureMarker, o.Path, d.Records))
	case "yaml":
		out = append(out, fmt.Sprintf("%s%s (yaml, %d documents, %d lines)", structureMarker, o.Path, d.Documents, len(o.Lines)))
	default:
		out = append(out, fmt.Sprintf("%s%s (%s, %d lines)", structureMarker, o.Path, d.Format, len(o.Lines)))
	}
	out = renderShape(out, d.Root, "", 0, maxDepth)
	return structure.JoinLines(out)
}

func shapeLabel(n *structure.Node) string {
	switch n.Kind {
	case structure.NodeObject:
		if n.Len == 1 {
			return "object with 1 key"
		}
		return fmt.Sprintf("object with %d keys", n.Len)
	case structure.NodeArray:
		return fmt.Sprintf("array of %d", n.Len)
	}
	return n.Kind
}

func renderShape(out []string, n *structure.Node, indent string, depth, maxDepth int) []string {
	prefix := indent
	switch {
	case n.Key != "":
		prefix += oneLine(n.Key) + ": "
	case depth > 0:
		prefix += "- "
	}
	out = append(out, prefix+shapeLabel(n))
	if depth >= maxDepth {
		return out
	}
	for _, c := range n.Children {
		out = renderShape(out, c, indent+"  ", depth+1, maxDepth)
	}
	if n.Kind == structure.NodeObject && n.Len > len(n.Children) {
		out = append(out, fmt.Sprintf("%s  ... %d more keys", indent, n.Len-len(n.Children)))
	}
	return out
}

func oneLine(s string) string { return strings.Join(strings.Fields(s), " ") }
