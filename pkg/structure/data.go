package structure

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/kcaldas/condenser/pkg/lang"
)

// Node kinds of a data shape.
const (
	NodeObject = "object"
	NodeArray  = "array"
	NodeString = "string"
	NodeNumber = "number"
	NodeBool   = "bool"
	NodeNull   = "null"
)

const (
	shapeDepth = 3
	shapeKeys  = 5
)

// Node is the shape of one data value. Only the first few children of
// large objects are kept; Len holds the full count.
type Node struct {
	Key      string
	Kind     string
	Len      int
	Children []*Node
}

// Data is the outline of a structured data file.
type Data struct {
	Format    string
	Valid     bool
	Root      *Node
	Records   int
	Documents int
	Columns   []string
}

func isStructuredData(l lang.Language) bool {
	switch l.Name {
	case "json", "jsonl", "yaml", "csv":
		return true
	}
	return false
}

func parseData(ctx context.Context, o *Outline, src string) error {
	o.Parser = ParserData
	d := &Data{Format: o.Language.Name}
	var literal []bool
	switch d.Format {
	case "json":
		if gjson.Valid(src) {
			d.Valid = true
			d.Root = jsonShape("", gjson.Parse(src), 0)
		}
	case "jsonl":
		for _, line := range o.Lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if d.Records == 0 && gjson.Valid(line) {
				d.Valid = true
				d.Root = jsonShape("", gjson.Parse(line), 0)
			}
			d.Records++
		}
	case "yaml":
		literal = yamlData(d, src, o.Lines)
	case "csv":
		csvData(d, o.Lines)
	}
	o.Data = d
	o.CommentOnly, _ = scanComments(o.Lines, o.Language)
	for i := range literal {
		if literal[i] {
			o.CommentOnly[i] = false
		}
	}
	return ctx.Err()
}

func jsonShape(key string, r gjson.Result, depth int) *Node {
	n := &Node{Key: key}
	switch {
	case r.IsObject():
		n.Kind = NodeObject
		r.ForEach(func(k, v gjson.Result) bool {
			n.Len++
			if depth < shapeDepth && len(n.Children) < shapeKeys {
				n.Children = append(n.Children, jsonShape(k.String(), v, depth+1))
			}
			return true
		})
	case r.IsArray():
		n.Kind = NodeArray
		r.ForEach(func(_, v gjson.Result) bool {
			if n.Len == 0 && depth < shapeDepth {
				n.Children = append(n.Children, jsonShape("", v, depth+1))
			}
			n.Len++
			return true
		})
	case r.Type == gjson.String:
		n.Kind = NodeString
	case r.Type == gjson.Number:
		n.Kind = NodeNumber
	case r.Type == gjson.True || r.Type == gjson.False:
		n.Kind = NodeBool
	default:
		n.Kind = NodeNull
	}
	return n
}

// yamlData fills d from src and returns the lines that belong to block
// scalars, where `#` is content.
func yamlData(d *Data, src string, lines []string) []bool {
	literal := make([]bool, len(lines))
	dec := yaml.NewDecoder(strings.NewReader(src))
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			d.Valid = d.Documents > 0
			return literal
		}
		if d.Documents == 0 && len(doc.Content) > 0 {
			d.Root = yamlShape("", doc.Content[0], 0)
		}
		markBlockScalars(&doc, lines, literal)
		d.Documents++
	}
	d.Valid = d.Root != nil
	return literal
}

// markBlockScalars marks the content lines of `|` and `>` scalars: the
// lines after the indicator that are blank or indented deeper than it.
func markBlockScalars(y *yaml.Node, lines []string, literal []bool) {
	if y.Kind == yaml.ScalarNode && y.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
		header := y.Line - 1
		if header >= 0 && header < len(lines) {
			indent := len(Indent(lines[header]))
			for i := header + 1; i < len(lines); i++ {
				if strings.TrimSpace(lines[i]) != "" && len(Indent(lines[i])) <= indent {
					break
				}
				literal[i] = true
			}
		}
	}
	for _, c := range y.Content {
		markBlockScalars(c, lines, literal)
	}
}

func yamlShape(key string, y *yaml.Node, depth int) *Node {
	n := &Node{Key: key}
	switch y.Kind {
	case yaml.MappingNode:
		n.Kind = NodeObject
		for i := 0; i+1 < len(y.Content); i += 2 {
			n.Len++
			if depth < shapeDepth && len(n.Children) < shapeKeys {
				n.Children = append(n.Children, yamlShape(y.Content[i].Value, y.Content[i+1], depth+1))
			}
		}
	case yaml.SequenceNode:
		n.Kind = NodeArray
		n.Len = len(y.Content)
		if n.Len > 0 && depth < shapeDepth {
			n.Children = append(n.Children, yamlShape("", y.Content[0], depth+1))
		}
	case yaml.AliasNode:
		if y.Alias != nil {
			return yamlShape(key, y.Alias, depth)
		}
		n.Kind = NodeNull
	default:
		switch y.Tag {
		case "!!int", "!!float":
			n.Kind = NodeNumber
		case "!!bool":
			n.Kind = NodeBool
		case "!!null":
			n.Kind = NodeNull
		default:
			n.Kind = NodeString
		}
	}
	return n
}

func csvData(d *Data, lines []string) {
	if len(lines) == 0 {
		return
	}
	r := csv.NewReader(strings.NewReader(lines[0]))
	if strings.Contains(lines[0], "\t") && !strings.Contains(lines[0], ",") {
		r.Comma = '\t'
	}
	cols, err := r.Read()
	if err != nil {
		return
	}
	d.Valid = true
	d.Columns = cols
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) != "" {
			d.Records++
		}
	}
}
