package chunk

import (
	"cmp"
	"slices"

	"github.com/kcaldas/condenser/pkg/structure"
	"github.com/kcaldas/condenser/pkg/tokens"
)

// block is a run of lines that should stay in one part: a unit with its
// doc comment, or a single line.
type block struct {
	start, end int
	unit       *structure.Unit
	// owner is the unit whose range the block was carved from.
	owner *structure.Unit
}

// span is the line range of one part and the owners of its first and last
// blocks.
type span struct {
	start, end  int
	first, last *structure.Unit
}

type packer struct {
	o         *structure.Outline
	estimator tokens.Estimator
	room      int

	spans []span
	cur   *span
	used  int
	split int
}

// blocks covers lines from..to with the given units and the lines between
// them. Comment lines directly above a unit join its block.
func (p *packer) blocks(units []structure.Unit, from, to int, owner *structure.Unit) []block {
	order := make([]*structure.Unit, len(units))
	for i := range units {
		order[i] = &units[i]
	}
	slices.SortStableFunc(order, func(a, b *structure.Unit) int { return cmp.Compare(a.Start, b.Start) })

	var out []block
	cursor := from
	for _, u := range order {
		if u.Start < cursor || u.End > to {
			continue
		}
		start := u.Start
		for start > cursor && p.o.CommentOnly[start-1] {
			start--
		}
		for ; cursor < start; cursor++ {
			out = append(out, block{start: cursor, end: cursor, owner: owner})
		}
		out = append(out, block{start: start, end: u.End, unit: u, owner: owner})
		cursor = u.End + 1
	}
	for ; cursor <= to; cursor++ {
		out = append(out, block{start: cursor, end: cursor, owner: owner})
	}
	return out
}

// pack adds blocks to parts in order. A block that cannot fit even an
// empty part is opened up into its children and lines.
func (p *packer) pack(blocks []block) {
	for _, b := range blocks {
		n := p.measure(b)
		switch {
		case p.cur != nil && p.used+n <= p.room:
			p.add(b, n)
		case n <= p.room || b.start == b.end || b.unit == nil:
			p.flush()
			p.add(b, n)
		default:
			p.split++
			p.pack(p.blocks(b.unit.Children, b.start, b.end, b.unit))
		}
	}
}

func (p *packer) measure(b block) int {
	return p.estimator.Estimate(structure.JoinLines(p.o.Lines[b.start : b.end+1]))
}

func (p *packer) add(b block, n int) {
	if p.cur == nil {
		p.cur = &span{start: b.start, first: b.owner}
	}
	p.cur.end = b.end
	p.cur.last = b.owner
	p.used += n
}

func (p *packer) flush() {
	if p.cur == nil {
		return
	}
	p.spans = append(p.spans, *p.cur)
	p.cur = nil
	p.used = 0
}
