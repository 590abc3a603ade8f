package structure

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// BlockKind classifies prose blocks.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockItem      BlockKind = "item"
	BlockFence     BlockKind = "fence"
)

// Block is a run of lines that is kept or dropped as a whole.
type Block struct {
	Kind  BlockKind
	Start int
	End   int
}

// Heading is a markdown heading.
type Heading struct {
	Line  int
	Level int
	Text  string
}

// Prose is the outline of a markup or plain-text document.
type Prose struct {
	Blocks     []Block
	Headings   []Heading
	CodeBlocks int
	Lists      int
	Links      int
}

var (
	listItemRe = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+`)
	underline  = regexp.MustCompile(`^\s*(?:=+|-+)\s*$`)
)

func parseProse(ctx context.Context, o *Outline, src string) error {
	o.Parser = ParserProse
	p := &Prose{}
	headingLines := map[int]int{}
	if o.Language.Name == "markdown" {
		if err := markdownOutline(ctx, p, []byte(src), o.Lines, headingLines); err != nil {
			return err
		}
	}
	p.Blocks = proseBlocks(o.Lines, headingLines)
	o.Prose = p
	o.CommentOnly = make([]bool, len(o.Lines))
	return ctx.Err()
}

// markdownOutline records headings and block counts from the goldmark AST.
// headingLines maps the first line of each heading to its last line.
func markdownOutline(ctx context.Context, p *Prose, src []byte, lines []string, headingLines map[int]int) error {
	starts := lineStarts(src)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	return ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if err := ctx.Err(); err != nil {
			return ast.WalkStop, err
		}
		switch node := n.(type) {
		case *ast.Heading:
			segs := node.Lines()
			if segs.Len() == 0 {
				return ast.WalkSkipChildren, nil
			}
			first := lineOf(starts, segs.At(0).Start)
			last := lineOf(starts, segs.At(segs.Len()-1).Start)
			if last+1 < len(lines) && underline.MatchString(lines[last+1]) && !strings.HasPrefix(strings.TrimSpace(lines[first]), "#") {
				last++
			}
			var sb strings.Builder
			for i := 0; i < segs.Len(); i++ {
				if i > 0 {
					sb.WriteString(" ")
				}
				seg := segs.At(i)
				sb.Write(seg.Value(src))
			}
			p.Headings = append(p.Headings, Heading{Line: first, Level: node.Level, Text: strings.TrimSpace(sb.String())})
			headingLines[first] = last
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			p.CodeBlocks++
			return ast.WalkSkipChildren, nil
		case *ast.List:
			p.Lists++
		case *ast.Link, *ast.AutoLink:
			p.Links++
		}
		return ast.WalkContinue, nil
	})
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func lineOf(starts []int, offset int) int {
	return sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
}

func fenceMarker(line string) string {
	t := strings.TrimSpace(line)
	for _, c := range []string{"```", "~~~"} {
		if strings.HasPrefix(t, c) {
			n := len(t) - len(strings.TrimLeft(t, c[:1]))
			return strings.Repeat(c[:1], n)
		}
	}
	return ""
}

// proseBlocks groups lines into headings, fences, list items and
// paragraphs. Blank lines separate blocks and belong to none.
func proseBlocks(lines []string, headingLines map[int]int) []Block {
	var blocks []Block
	cur := -1
	closeCur := func(end int) {
		if cur >= 0 {
			blocks[cur].End = end
			cur = -1
		}
	}
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if marker := fenceMarker(line); marker != "" {
			closeCur(i - 1)
			end := len(lines) - 1
			for j := i + 1; j < len(lines); j++ {
				if strings.HasPrefix(strings.TrimSpace(lines[j]), marker) && strings.Trim(strings.TrimSpace(lines[j]), marker[:1]) == "" {
					end = j
					break
				}
			}
			blocks = append(blocks, Block{Kind: BlockFence, Start: i, End: end})
			i = end
			continue
		}
		if last, ok := headingLines[i]; ok {
			closeCur(i - 1)
			blocks = append(blocks, Block{Kind: BlockHeading, Start: i, End: last})
			i = last
			continue
		}
		if strings.TrimSpace(line) == "" {
			closeCur(i - 1)
			continue
		}
		if listItemRe.MatchString(line) {
			closeCur(i - 1)
			blocks = append(blocks, Block{Kind: BlockItem, Start: i, End: i})
			cur = len(blocks) - 1
			continue
		}
		if cur < 0 {
			blocks = append(blocks, Block{Kind: BlockParagraph, Start: i, End: i})
			cur = len(blocks) - 1
		}
		blocks[cur].End = i
	}
	closeCur(len(lines) - 1)
	return blocks
}
