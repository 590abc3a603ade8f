package budget

import (
	"fmt"
	"math"

	"github.com/kcaldas/condenser/pkg/logging"
	"github.com/kcaldas/condenser/pkg/priority"
)

// Item is one file as seen by the allocator.
type Item struct {
	Path      string
	Tier      priority.Tier
	Estimated int
	SizeBytes int64
	// Critical is set for files matching a critical path pattern.
	Critical bool
}

// Allocation is the outcome for one item.
type Allocation struct {
	Units int
	// Reserved items were funded before the pool was split.
	Reserved bool
	// OverBudget is set on reserved items that were capped at the total or
	// that pushed the reserved sum past it.
	OverBudget bool
}

// Result is the allocation table, indexed like the input items.
type Result struct {
	Allocations []Allocation
	Reserved    int
	Pool        int
	// Iterations counts the fill rounds, one per tier that saturated plus
	// the final split.
	Iterations int
	// Infeasible is set when per-file floors had to be scaled down.
	Infeasible bool
	// Overcommitted is set when reserved files together exceed the total.
	Overcommitted bool
	Notes         []string
}

// Total is the sum of all allocations.
func (r Result) Total() int {
	sum := 0
	for _, a := range r.Allocations {
		sum += a.Units
	}
	return sum
}

// Allocator splits budgets. The zero value is not usable; use NewAllocator.
type Allocator struct {
	logger logging.Logger
}

func NewAllocator(logger logging.Logger) *Allocator {
	if logger == nil {
		logger = logging.NewDisabledLogger()
	}
	return &Allocator{logger: logger}
}

// poolTiers are the tiers that share the pool, most important first.
var poolTiers = []priority.Tier{priority.High, priority.Medium, priority.Low}

// Allocate computes allocations for items under b. The result is
// deterministic for a given input.
//
// The pool left after reservation and floors is water-filled: first
// across tiers by strategy weight, each tier capped at its total deficit,
// then across the files of a tier in proportion to their estimates, each
// file capped at its estimate. Both fills hand out units one at a time in
// order of price (units held divided by weight), so a larger share never
// gives any file fewer units and a heavier tier weight never gives that
// tier less.
func (a *Allocator) Allocate(items []Item, b Budget) Result {
	res := Result{Allocations: make([]Allocation, len(items))}
	order := priorityOrder(items)

	var rest []int
	for _, i := range order {
		it := items[i]
		if !it.Critical && it.Tier != priority.Critical {
			rest = append(rest, i)
			continue
		}
		units := max(it.Estimated, 0)
		capped := false
		if units > b.TotalUnits {
			units = b.TotalUnits
			capped = true
		}
		res.Reserved += units
		over := capped || res.Reserved > b.TotalUnits
		res.Allocations[i] = Allocation{Units: units, Reserved: true, OverBudget: over}
		if capped {
			a.logger.Debug("critical file capped at total budget", "path", it.Path, "estimated", it.Estimated)
		}
	}
	if res.Reserved > b.TotalUnits {
		res.Overcommitted = true
		res.Notes = append(res.Notes, fmt.Sprintf("reserved files need %d units, %d over the %d-unit total",
			res.Reserved, res.Reserved-b.TotalUnits, b.TotalUnits))
		a.logger.Warn("reserved files exceed total budget", "reserved", res.Reserved, "total", b.TotalUnits)
	}

	res.Pool = max(0, b.TotalUnits-res.Reserved)
	if len(rest) == 0 {
		return res
	}

	alloc := make([]int, len(items))
	avail := max(0, res.Pool-a.applyFloors(items, rest, b.MinimumFloorUnits, res.Pool, alloc, &res))

	byTier := map[priority.Tier][]int{}
	for _, i := range rest {
		t := items[i].Tier
		if t == priority.Critical {
			t = priority.High
		}
		byTier[t] = append(byTier[t], i)
	}

	weights := WeightTable[b.strategy()]
	tierClaims := make([]claim, len(poolTiers))
	for k, t := range poolTiers {
		deficit := 0
		for _, i := range byTier[t] {
			deficit += max(0, items[i].Estimated-alloc[i])
		}
		tierClaims[k] = claim{cap: int64(deficit), weight: weightUnits(weights[t])}
	}
	tierUnits := fill(tierClaims, int64(avail))
	res.Iterations = fillRounds(tierClaims, int64(avail), b.maxIterations())

	given := 0
	for k, t := range poolTiers {
		files := byTier[t]
		if len(files) == 0 || tierUnits[k] == 0 {
			continue
		}
		fileClaims := make([]claim, len(files))
		for n, i := range files {
			est := int64(max(items[i].Estimated, 0))
			fileClaims[n] = claim{base: int64(alloc[i]), cap: est, weight: est}
		}
		for n, u := range fill(fileClaims, tierUnits[k]) {
			alloc[files[n]] += int(u)
			given += int(u)
		}
	}

	for _, i := range rest {
		res.Allocations[i] = Allocation{Units: alloc[i]}
	}
	a.logger.Debug("allocation complete",
		"files", len(items), "reserved", res.Reserved, "pool", res.Pool,
		"rounds", res.Iterations, "unused", avail-given)
	return res
}

// applyFloors seeds alloc with per-file floors, scaling them when they do
// not fit in pool. It returns the units consumed.
func (a *Allocator) applyFloors(items []Item, rest []int, floor, pool int, alloc []int, res *Result) int {
	total := 0
	for _, i := range rest {
		alloc[i] = min(floor, max(items[i].Estimated, 0))
		total += alloc[i]
	}
	if total <= pool {
		return total
	}

	res.Infeasible = true
	scale := float64(pool) / float64(total)
	total = 0
	for _, i := range rest {
		if alloc[i] == 0 {
			continue
		}
		alloc[i] = max(1, int(math.Floor(float64(alloc[i])*scale)))
		total += alloc[i]
	}
	note := fmt.Sprintf("minimum floors of %d units for %d files exceed the %d-unit pool; floors scaled by %.3f",
		floor, len(rest), pool, scale)
	res.Notes = append(res.Notes, note)
	a.logger.Warn("allocation infeasible", "floor", floor, "files", len(rest), "pool", pool)
	return total
}

// weightUnits turns a table weight into an integer price denominator.
func weightUnits(w float64) int64 {
	return int64(math.Round(w * 1000))
}

// fillRounds counts the rounds a proportional fill with saturation takes:
// every round splits what is left by weight over unsaturated claims and
// retires the claims whose remaining need fits their share.
func fillRounds(claims []claim, units int64, limit int) int {
	active := make([]bool, len(claims))
	for i, c := range claims {
		active[i] = c.need() > 0 && c.weight > 0
	}
	left := float64(units)
	rounds := 0
	for rounds < limit && left > 0 {
		rounds++
		var weight float64
		for i, c := range claims {
			if active[i] {
				weight += float64(c.weight)
			}
		}
		if weight == 0 {
			break
		}
		saturated := false
		share := left
		for i, c := range claims {
			if active[i] && float64(c.need()) <= share*float64(c.weight)/weight {
				active[i] = false
				left -= float64(c.need())
				saturated = true
			}
		}
		if !saturated {
			break
		}
	}
	return rounds
}

func priorityOrder(items []Item) []int {
	keys := make([]priority.Key, len(items))
	for i, it := range items {
		keys[i] = priority.Key{Tier: it.Tier, Path: it.Path, SizeBytes: it.SizeBytes}
	}
	return priority.Order(keys)
}
