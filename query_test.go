package itree

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_ConcreteScenario(t *testing.T) {
	ix := Build([]Item[int, string]{
		item(1, 3, "a"),
		item(2, 6, "b"),
		item(4, 5, "c"),
		item(8, 9, "d"),
	})

	assert.Equal(t, []string{"b", "c"}, collectValues(ix, Interval[int]{Start: 4, End: 5}))
}

func TestQuery_DegenerateQuery(t *testing.T) {
	ix := Build([]Item[int, string]{item(1, 10, "a")})

	assert.Empty(t, collectValues(ix, Interval[int]{Start: 5, End: 5}), "empty query interval overlaps nothing")
}

func TestQuery_DegenerateItem(t *testing.T) {
	ix := Build([]Item[int, string]{item(5, 5, "zero"), item(1, 10, "a")})

	assert.Equal(t, []string{"a"}, collectValues(ix, Interval[int]{Start: 0, End: 20}), "zero-width item is never matched")
}

func TestQuery_MatchesLinearScan(t *testing.T) {
	items := randomItems(t, 1000)
	ix := Build(items)

	for _, q := range randomQueries(t, 200) {
		assert.Equal(t, linearScan(items, q), collectValues(ix, q), "query %+v", q)
	}
}

func TestQuery_FullCoverage(t *testing.T) {
	// One query covering everything degrades to a full scan but must still
	// report every item exactly once.
	items := randomItems(t, 2000)
	ix := Build(items)

	q := Interval[int]{Start: -1 << 30, End: 1 << 30}
	assert.Equal(t, linearScan(items, q), collectValues(ix, q))
}

func TestQuery_EarlyStop(t *testing.T) {
	ix := Build(randomItems(t, 1000))
	q := Interval[int]{Start: 100, End: 900}

	var first []string
	completed := ix.Query(q, func(it Item[int, string]) bool {
		first = append(first, it.Value)
		return false
	})

	require.False(t, completed, "stop must be reported")
	require.Len(t, first, 1, "stopping on the first match reports exactly one item")

	// Traversal order is fixed for a given index and query, so a second
	// run stops on the same item.
	var second []string
	ix.Query(q, func(it Item[int, string]) bool {
		second = append(second, it.Value)
		return false
	})
	assert.Equal(t, first, second)
}

func TestQuery_EarlyStopCarriesResult(t *testing.T) {
	ix := Build([]Item[int, string]{item(1, 3, "a"), item(2, 6, "b"), item(8, 9, "d")})

	var found string
	completed := ix.Query(Interval[int]{Start: 8, End: 9}, func(it Item[int, string]) bool {
		found = it.Value
		return false
	})

	assert.False(t, completed)
	assert.Equal(t, "d", found)
}

func TestQueryParallel_MatchesLinearScan(t *testing.T) {
	items := randomItems(t, 5000)
	ix := Build(items)

	for _, q := range randomQueries(t, 50) {
		var mu sync.Mutex
		var values []string
		completed := ix.QueryParallel(nil, q, func(it Item[int, string]) bool {
			mu.Lock()
			values = append(values, it.Value)
			mu.Unlock()
			return true
		})

		require.True(t, completed)
		sort.Strings(values)
		assert.Equal(t, linearScan(items, q), values, "query %+v", q)
	}
}

func TestQueryParallel_SerialForkerMatchesQuery(t *testing.T) {
	items := randomItems(t, 5000)
	ix := Build(items)

	for _, q := range randomQueries(t, 50) {
		var values []string
		ix.QueryParallel(SerialForker{}, q, func(it Item[int, string]) bool {
			values = append(values, it.Value)
			return true
		})

		sort.Strings(values)
		assert.Equal(t, collectValues(ix, q), values, "query %+v", q)
	}
}

func TestQueryParallel_BestEffortStop(t *testing.T) {
	items := randomItems(t, 5000)
	ix := Build(items)
	q := Interval[int]{Start: 0, End: 100000}

	var mu sync.Mutex
	var values []string
	completed := ix.QueryParallel(nil, q, func(it Item[int, string]) bool {
		mu.Lock()
		values = append(values, it.Value)
		mu.Unlock()
		return false
	})

	require.False(t, completed, "stop must be reported at the join points")
	require.NotEmpty(t, values, "at least the stopping match is reported")

	// A dispatched sibling may keep matching after the stop request, but
	// every reported item must still be a true match.
	oracle := make(map[string]bool)
	for _, v := range linearScan(items, q) {
		oracle[v] = true
	}
	for _, v := range values {
		assert.True(t, oracle[v], "spurious match %q", v)
	}
}

func TestQueryParallel_Empty(t *testing.T) {
	ix := Build[int, string](nil)

	assert.True(t, ix.QueryParallel(nil, Interval[int]{Start: 0, End: 100}, func(Item[int, string]) bool {
		t.Error("handler invoked on empty index")
		return false
	}))
}

// randomItems generates a deterministic pseudo-random item set with plenty
// of duplicate starts and containment between intervals.
func randomItems(t *testing.T, n int) []Item[int, string] {
	t.Helper()

	rng := rand.New(rand.NewSource(int64(n)))
	items := make([]Item[int, string], n)
	for i := range items {
		start := rng.Intn(10000)
		length := rng.Intn(500)
		items[i] = Item[int, string]{
			Interval: Interval[int]{Start: start, End: start + length},
			Value:    valueName(i),
		}
	}
	return items
}

func randomQueries(t *testing.T, n int) []Interval[int] {
	t.Helper()

	rng := rand.New(rand.NewSource(int64(n) * 31))
	queries := make([]Interval[int], n)
	for i := range queries {
		start := rng.Intn(11000) - 500
		queries[i] = Interval[int]{Start: start, End: start + rng.Intn(2000)}
	}
	return queries
}

// valueName assigns each generated item a unique value so match sets can
// be compared exactly.
func valueName(i int) string {
	return fmt.Sprintf("v%05d", i)
}

// collectValues runs a sequential query and returns the matched values
// sorted, since traversal order is unspecified.
func collectValues(ix *Index[int, string], q Interval[int]) []string {
	var values []string
	ix.Query(q, func(it Item[int, string]) bool {
		values = append(values, it.Value)
		return true
	})
	sort.Strings(values)
	return values
}

// linearScan is the brute-force oracle for the half-open overlap rule.
func linearScan(items []Item[int, string], q Interval[int]) []string {
	var values []string
	for _, it := range items {
		if q.Start < it.Interval.End && it.Interval.Start < q.End {
			values = append(values, it.Value)
		}
	}
	sort.Strings(values)
	return values
}
