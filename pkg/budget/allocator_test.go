package budget

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcaldas/condenser/pkg/priority"
)

func allocate(items []Item, b Budget) Result {
	return NewAllocator(nil).Allocate(items, b)
}

func nonReservedTotal(r Result) int {
	sum := 0
	for _, a := range r.Allocations {
		if !a.Reserved {
			sum += a.Units
		}
	}
	return sum
}

func TestBudget_ValidateRejectsNonPositiveTotal(t *testing.T) {
	err := Budget{TotalUnits: 0}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidBudget)

	assert.Error(t, Budget{TotalUnits: 10, Strategy: "greedy"}.Validate())
	assert.NoError(t, Budget{TotalUnits: 10}.Validate())
}

func TestAllocate_AmpleBudgetFundsEverything(t *testing.T) {
	items := []Item{
		{Path: "README.md", Tier: priority.Critical, Estimated: 100},
		{Path: "pkg/a.go", Tier: priority.High, Estimated: 300},
		{Path: "pkg/a_test.go", Tier: priority.Medium, Estimated: 200},
		{Path: "data.json", Tier: priority.Low, Estimated: 50},
	}
	res := allocate(items, Budget{TotalUnits: 10000, Strategy: Balanced, MinimumFloorUnits: 10})

	got := []int{}
	for _, a := range res.Allocations {
		got = append(got, a.Units)
	}
	if diff := cmp.Diff([]int{100, 300, 200, 50}, got); diff != "" {
		t.Errorf("allocations mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, res.Infeasible)
}

func TestAllocate_ScenarioReadmeMainData(t *testing.T) {
	items := []Item{
		{Path: "README.md", Tier: priority.Critical, Estimated: 200},
		{Path: "src/server.go", Tier: priority.High, Estimated: 5000},
		{Path: "generated_data.json", Tier: priority.Low, Estimated: 50000},
	}
	res := allocate(items, Budget{TotalUnits: 6000, Strategy: Balanced, MinimumFloorUnits: 24})

	assert.Equal(t, Allocation{Units: 200, Reserved: true}, res.Allocations[0])
	assert.Equal(t, 5800, res.Pool)
	assert.Equal(t, 5800, nonReservedTotal(res))
	assert.Greater(t, res.Allocations[1].Units, 4000)
	assert.Less(t, res.Allocations[2].Units, 1500)
	assert.Greater(t, res.Allocations[1].Units, res.Allocations[2].Units)
}

func TestAllocate_SumNeverExceedsTotal(t *testing.T) {
	items := []Item{
		{Path: "README.md", Tier: priority.Critical, Estimated: 500},
		{Path: "a.go", Tier: priority.High, Estimated: 4000},
		{Path: "b.go", Tier: priority.High, Estimated: 30},
		{Path: "c_test.go", Tier: priority.Medium, Estimated: 900},
		{Path: "d.py", Tier: priority.Medium, Estimated: 10},
		{Path: "e.json", Tier: priority.Low, Estimated: 7000},
	}
	for _, s := range []Strategy{Conservative, Balanced, Aggressive} {
		res := allocate(items, Budget{TotalUnits: 3000, Strategy: s, MinimumFloorUnits: 16})
		assert.LessOrEqual(t, res.Total(), 3000, string(s))
		for i, a := range res.Allocations {
			assert.LessOrEqual(t, a.Units, items[i].Estimated, "%s %s", s, items[i].Path)
		}
	}
}

func TestAllocate_SurplusIsRedistributed(t *testing.T) {
	items := []Item{
		{Path: "tiny.go", Tier: priority.High, Estimated: 10},
		{Path: "big.json", Tier: priority.Low, Estimated: 10000},
	}
	res := allocate(items, Budget{TotalUnits: 1000, Strategy: Balanced})

	assert.Equal(t, 10, res.Allocations[0].Units)
	assert.Equal(t, 990, res.Allocations[1].Units)
}

func TestAllocate_FloorsAreHonoured(t *testing.T) {
	items := []Item{
		{Path: "a.go", Tier: priority.High, Estimated: 100000},
		{Path: "b.json", Tier: priority.Low, Estimated: 1000},
		{Path: "c.json", Tier: priority.Low, Estimated: 5},
	}
	res := allocate(items, Budget{TotalUnits: 2000, Strategy: Aggressive, MinimumFloorUnits: 40})

	assert.GreaterOrEqual(t, res.Allocations[1].Units, 40)
	assert.Equal(t, 5, res.Allocations[2].Units)
	assert.LessOrEqual(t, res.Total(), 2000)
}

func TestAllocate_InfeasibleFloorsScaleDown(t *testing.T) {
	var items []Item
	for _, p := range []string{"a.go", "b.go", "c.go", "d.go"} {
		items = append(items, Item{Path: p, Tier: priority.High, Estimated: 1000})
	}
	res := allocate(items, Budget{TotalUnits: 100, Strategy: Balanced, MinimumFloorUnits: 50})

	assert.True(t, res.Infeasible)
	require.Len(t, res.Notes, 1)
	for _, a := range res.Allocations {
		assert.Equal(t, 25, a.Units)
	}
}

func TestAllocate_InfeasibleFloorsNeverZero(t *testing.T) {
	items := []Item{
		{Path: "a.go", Tier: priority.High, Estimated: 1000},
		{Path: "b.go", Tier: priority.High, Estimated: 1000},
		{Path: "c.go", Tier: priority.High, Estimated: 1000},
	}
	res := allocate(items, Budget{TotalUnits: 2, Strategy: Balanced, MinimumFloorUnits: 50})

	assert.True(t, res.Infeasible)
	for _, a := range res.Allocations {
		assert.Equal(t, 1, a.Units)
	}
}

func TestAllocate_CriticalReservedFirstWithTinyBudget(t *testing.T) {
	items := []Item{
		{Path: "data.json", Tier: priority.Low, Estimated: 500},
		{Path: "README.md", Tier: priority.Critical, Estimated: 300},
	}
	res := allocate(items, Budget{TotalUnits: 1, Strategy: Balanced, MinimumFloorUnits: 10})

	assert.Equal(t, Allocation{Units: 1, Reserved: true, OverBudget: true}, res.Allocations[1])
	assert.Equal(t, 0, res.Pool)
	assert.True(t, res.Infeasible)
	assert.Equal(t, 1, res.Allocations[0].Units)
}

func TestAllocate_CriticalPathFlagReserves(t *testing.T) {
	items := []Item{
		{Path: "docs/design.md", Tier: priority.Low, Estimated: 400, Critical: true},
		{Path: "a.go", Tier: priority.High, Estimated: 5000},
	}
	res := allocate(items, Budget{TotalUnits: 1000, Strategy: Balanced})

	assert.True(t, res.Allocations[0].Reserved)
	assert.Equal(t, 400, res.Allocations[0].Units)
	assert.Equal(t, 600, res.Allocations[1].Units)
}

func TestAllocate_AggressiveFavoursHighTier(t *testing.T) {
	items := []Item{
		{Path: "a.go", Tier: priority.High, Estimated: 8000},
		{Path: "b_test.go", Tier: priority.Medium, Estimated: 8000},
		{Path: "c.json", Tier: priority.Low, Estimated: 8000},
	}
	conservative := allocate(items, Budget{TotalUnits: 4000, Strategy: Conservative})
	aggressive := allocate(items, Budget{TotalUnits: 4000, Strategy: Aggressive})

	assert.Greater(t, aggressive.Allocations[0].Units, conservative.Allocations[0].Units)
	assert.Less(t, aggressive.Allocations[2].Units, conservative.Allocations[2].Units)
}

func TestAllocate_ReservedOverTotalIsNoted(t *testing.T) {
	items := []Item{
		{Path: "README.md", Tier: priority.Critical, Estimated: 600},
		{Path: "go.mod", Tier: priority.Critical, Estimated: 700},
		{Path: "a.go", Tier: priority.High, Estimated: 100},
	}
	res := allocate(items, Budget{TotalUnits: 1000, Strategy: Balanced})

	assert.True(t, res.Overcommitted)
	require.Len(t, res.Notes, 1)
	assert.Contains(t, res.Notes[0], "300 over")
	assert.Equal(t, 0, res.Pool)
	assert.False(t, res.Allocations[0].OverBudget)
	assert.True(t, res.Allocations[1].OverBudget)
	assert.Equal(t, 0, res.Allocations[2].Units)
}

// randomItems builds a file set with every pool tier present at least
// sometimes and estimates spread over three orders of magnitude.
func randomItems(r *rand.Rand) []Item {
	n := 1 + r.IntN(12)
	items := make([]Item, n)
	tiers := []priority.Tier{priority.Critical, priority.High, priority.Medium, priority.Low}
	for i := range items {
		tier := tiers[1+r.IntN(3)]
		if r.IntN(10) == 0 {
			tier = priority.Critical
		}
		items[i] = Item{
			Path:      fmt.Sprintf("d%d/f%02d.go", r.IntN(3), i),
			Tier:      tier,
			Estimated: r.IntN(8000),
			SizeBytes: int64(r.IntN(50000)),
		}
	}
	return items
}

func TestAllocate_StrategyOrderIsMonotonic(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	order := []Strategy{Conservative, Balanced, Aggressive}
	for trial := 0; trial < 5000; trial++ {
		items := randomItems(r)
		b := Budget{TotalUnits: 1 + r.IntN(20000), MinimumFloorUnits: r.IntN(64)}

		var results []Result
		for _, s := range order {
			b.Strategy = s
			results = append(results, allocate(items, b))
		}
		for k := 1; k < len(results); k++ {
			prev, next := results[k-1], results[k]
			for i, it := range items {
				p, n := prev.Allocations[i].Units, next.Allocations[i].Units
				switch it.Tier {
				case priority.High:
					require.GreaterOrEqual(t, n, p, "trial %d %s->%s %s", trial, order[k-1], order[k], it.Path)
				case priority.Low:
					require.LessOrEqual(t, n, p, "trial %d %s->%s %s", trial, order[k-1], order[k], it.Path)
				case priority.Critical:
					require.Equal(t, p, n, "trial %d %s", trial, it.Path)
				}
			}
		}
	}
}

func TestAllocate_LargerTotalNeverShrinksAFile(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for trial := 0; trial < 3000; trial++ {
		items := randomItems(r)
		for i := range items {
			if items[i].Tier == priority.Critical {
				items[i].Tier = priority.Medium
			}
		}
		s := []Strategy{Conservative, Balanced, Aggressive}[r.IntN(3)]
		floor := r.IntN(32)
		total := len(items)*floor + r.IntN(15000)
		small := allocate(items, Budget{TotalUnits: total, Strategy: s, MinimumFloorUnits: floor})
		large := allocate(items, Budget{TotalUnits: total + 1 + r.IntN(500), Strategy: s, MinimumFloorUnits: floor})
		require.False(t, small.Infeasible)

		for i := range items {
			require.GreaterOrEqual(t, large.Allocations[i].Units, small.Allocations[i].Units, "trial %d %s", trial, items[i].Path)
		}
		require.LessOrEqual(t, small.Total(), total)
	}
}

func TestAllocate_UsesWholePoolWhenNeeded(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 2000; trial++ {
		items := randomItems(r)
		b := Budget{TotalUnits: 1 + r.IntN(20000), Strategy: Balanced}
		res := allocate(items, b)

		want := 0
		for i, it := range items {
			if !res.Allocations[i].Reserved {
				want += it.Estimated
			}
		}
		want = min(want, res.Pool)
		require.Equal(t, want, nonReservedTotal(res), "trial %d", trial)
	}
}

func TestFill_SplitsByWeightAndCaps(t *testing.T) {
	got := fill([]claim{
		{cap: 100, weight: 500},
		{cap: 10, weight: 350},
		{cap: 1000, weight: 150},
	}, 300)
	assert.Equal(t, []int64{100, 10, 190}, got)

	got = fill([]claim{{cap: 1000, weight: 1}, {cap: 1000, weight: 1}}, 5)
	assert.Equal(t, []int64{3, 2}, got, "ties go to the earlier claim")

	got = fill([]claim{{base: 40, cap: 100, weight: 100}, {base: 0, cap: 100, weight: 100}}, 40)
	assert.Equal(t, []int64{0, 40}, got, "units already held count towards the price")
}

func TestFill_HouseMonotone(t *testing.T) {
	claims := []claim{{cap: 997, weight: 13}, {base: 5, cap: 400, weight: 400}, {cap: 31, weight: 7}}
	prev := fill(claims, 0)
	for units := int64(1); units <= 1500; units++ {
		next := fill(claims, units)
		var sum int64
		for i := range next {
			require.GreaterOrEqual(t, next[i], prev[i], "units %d claim %d", units, i)
			sum += next[i]
		}
		require.Equal(t, min(units, 997+395+31), sum)
		prev = next
	}
}

func TestAllocate_Deterministic(t *testing.T) {
	items := []Item{
		{Path: "a.go", Tier: priority.High, Estimated: 777},
		{Path: "b.go", Tier: priority.High, Estimated: 333},
		{Path: "c.txt", Tier: priority.Low, Estimated: 999},
	}
	b := Budget{TotalUnits: 800, Strategy: Balanced, MinimumFloorUnits: 8}
	first := allocate(items, b)
	second := allocate(items, b)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("allocation not deterministic:\n%s", diff)
	}
}

func TestAllocate_Empty(t *testing.T) {
	res := allocate(nil, Budget{TotalUnits: 10})
	assert.Empty(t, res.Allocations)
	assert.Equal(t, 10, res.Pool)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("Aggressive")
	require.NoError(t, err)
	assert.Equal(t, Aggressive, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, Balanced, s)

	_, err = ParseStrategy("yolo")
	assert.Error(t, err)
}
