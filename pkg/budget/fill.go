package budget

import (
	"container/heap"
	"math/bits"
)

// claim asks for the units base+1..cap. Unit j is priced j/weight.
type claim struct {
	base, cap, weight int64
}

func (c claim) need() int64 {
	if c.weight <= 0 {
		return 0
	}
	return max(0, c.cap-c.base)
}

// priceScale is the denominator of the threshold search.
const priceScale = 1 << 16

// fill hands out units to claims cheapest unit first, ties going to the
// earlier claim, and returns the units each claim received. The result is
// the first units of one fixed sequence, so raising units never lowers any
// claim's share.
func fill(claims []claim, units int64) []int64 {
	got := make([]int64, len(claims))
	var total int64
	for _, c := range claims {
		total += c.need()
	}
	if units <= 0 {
		return got
	}
	if units >= total {
		for i, c := range claims {
			got[i] = c.need()
		}
		return got
	}

	// Largest threshold a whose strictly cheaper units still fit. Those
	// units are a prefix of the sequence.
	var hi int64
	for _, c := range claims {
		if c.need() > 0 {
			hi = max(hi, c.cap*priceScale/c.weight+2)
		}
	}
	lo := int64(0)
	for lo < hi-1 {
		mid := lo + (hi-lo)/2
		if below(claims, mid, nil) <= units {
			lo = mid
		} else {
			hi = mid
		}
	}
	left := units - below(claims, lo, got)

	h := &unitHeap{claims: claims, got: got}
	for i, c := range claims {
		if got[i] < c.need() {
			h.idx = append(h.idx, i)
		}
	}
	heap.Init(h)
	for ; left > 0 && h.Len() > 0; left-- {
		i := h.idx[0]
		got[i]++
		if got[i] == claims[i].need() {
			heap.Pop(h)
		} else {
			heap.Fix(h, 0)
		}
	}
	return got
}

// below counts the units priced under a/priceScale, storing per-claim
// counts in out when it is not nil.
func below(claims []claim, a int64, out []int64) int64 {
	var sum int64
	for i, c := range claims {
		n := int64(0)
		if a > 0 && c.need() > 0 {
			// j*priceScale < a*weight
			n = min(c.cap, (a*c.weight-1)/priceScale) - c.base
			n = max(0, n)
		}
		if out != nil {
			out[i] = n
		}
		sum += n
	}
	return sum
}

// unitHeap orders claims by the price of their next unit.
type unitHeap struct {
	claims []claim
	got    []int64
	idx    []int
}

func (h *unitHeap) Len() int { return len(h.idx) }

func (h *unitHeap) Less(x, y int) bool {
	a, b := h.idx[x], h.idx[y]
	ja := h.claims[a].base + h.got[a] + 1
	jb := h.claims[b].base + h.got[b] + 1
	// ja/wa < jb/wb
	if c := compareProducts(ja, h.claims[b].weight, jb, h.claims[a].weight); c != 0 {
		return c < 0
	}
	return a < b
}

func (h *unitHeap) Swap(x, y int) { h.idx[x], h.idx[y] = h.idx[y], h.idx[x] }

func (h *unitHeap) Push(x any) { h.idx = append(h.idx, x.(int)) }

func (h *unitHeap) Pop() any {
	n := len(h.idx)
	v := h.idx[n-1]
	h.idx = h.idx[:n-1]
	return v
}

// compareProducts compares a*b with c*d for non-negative operands.
func compareProducts(a, b, c, d int64) int {
	h1, l1 := bits.Mul64(uint64(a), uint64(b))
	h2, l2 := bits.Mul64(uint64(c), uint64(d))
	switch {
	case h1 < h2 || (h1 == h2 && l1 < l2):
		return -1
	case h1 == h2 && l1 == l2:
		return 0
	}
	return 1
}
