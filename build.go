package itree

import (
	"cmp"
	"slices"
	"time"

	"go.uber.org/zap"
)

// forkCutoff is the slice length below which the parallel build and query
// paths fall back to the sequential code; forking smaller ranges costs more
// in scheduling than it saves.
const forkCutoff = 1 << 10

// Builder constructs indexes from unordered items.
type Builder[K cmp.Ordered, V any] struct {
	logger *zap.Logger
	fork   Forker
}

// NewBuilder creates a builder with a no-op logger and goroutine-backed
// forking.
func NewBuilder[K cmp.Ordered, V any]() *Builder[K, V] {
	return &Builder[K, V]{
		logger: zap.NewNop(),
		fork:   GoForker{},
	}
}

// SetLogger sets the logger used to report build statistics.
func (b *Builder[K, V]) SetLogger(l *zap.Logger) {
	b.logger = l
}

// SetForker sets the fork-join primitive used by BuildParallel.
func (b *Builder[K, V]) SetForker(f Forker) {
	b.fork = f
}

// Build materializes the items as records, sorts them by interval start and
// computes the max-end augmentation over the implicit tree shape. Order
// among items with equal starts is unspecified. A nil or empty items slice
// yields a valid empty index on which every query matches nothing.
func (b *Builder[K, V]) Build(items []Item[K, V]) *Index[K, V] {
	start := time.Now()

	records := materialize(items)
	sortRecords(records)
	if len(records) > 0 {
		updateMax(records)
	}

	b.logBuilt(len(records), start)

	return &Index[K, V]{records: records}
}

// BuildParallel is Build with a concurrent merge sort and a fork-join
// augmentation pass. The index it produces answers every query exactly as
// the one Build produces from the same items.
func (b *Builder[K, V]) BuildParallel(items []Item[K, V]) *Index[K, V] {
	start := time.Now()

	fork := b.fork
	if fork == nil {
		fork = GoForker{}
	}

	records := materialize(items)
	parallelSort(fork, records, make([]Record[K, V], len(records)))
	if len(records) > 0 {
		parallelUpdateMax(fork, records)
	}

	b.logBuilt(len(records), start)

	return &Index[K, V]{records: records}
}

func (b *Builder[K, V]) logBuilt(n int, start time.Time) {
	b.logger.Debug("built interval index",
		zap.Int("records", n),
		zap.Duration("elapsed", time.Since(start)))
}

// Build constructs an index from items using a default Builder.
func Build[K cmp.Ordered, V any](items []Item[K, V]) *Index[K, V] {
	return NewBuilder[K, V]().Build(items)
}

// BuildParallel constructs an index from items using a default Builder,
// forking onto goroutines.
func BuildParallel[K cmp.Ordered, V any](items []Item[K, V]) *Index[K, V] {
	return NewBuilder[K, V]().BuildParallel(items)
}

func materialize[K cmp.Ordered, V any](items []Item[K, V]) []Record[K, V] {
	records := make([]Record[K, V], len(items))
	for i, item := range items {
		records[i] = Record[K, V]{Item: item, MaxEnd: item.Interval.End}
	}
	return records
}

func sortRecords[K cmp.Ordered, V any](records []Record[K, V]) {
	slices.SortFunc(records, func(lhs, rhs Record[K, V]) int {
		return cmp.Compare(lhs.Item.Interval.Start, rhs.Item.Interval.Start)
	})
}

// updateMax establishes the augmentation invariant over a non-empty,
// sorted slice: the record at each midpoint ends up holding the true
// maximum interval end of its sub-slice. Empty sub-slices are skipped, not
// visited. Returns the maximum for the whole slice.
func updateMax[K cmp.Ordered, V any](records []Record[K, V]) K {
	left, mid, right := split(records)

	if len(left) > 0 {
		mid.MaxEnd = max(mid.MaxEnd, updateMax(left))
	}
	if len(right) > 0 {
		mid.MaxEnd = max(mid.MaxEnd, updateMax(right))
	}

	return mid.MaxEnd
}

func parallelUpdateMax[K cmp.Ordered, V any](fork Forker, records []Record[K, V]) K {
	if len(records) < forkCutoff {
		return updateMax(records)
	}

	// Above the cutoff both sub-slices are non-empty.
	left, mid, right := split(records)

	var leftMax, rightMax K
	fork.RunBoth(
		func() { leftMax = parallelUpdateMax(fork, left) },
		func() { rightMax = parallelUpdateMax(fork, right) },
	)

	mid.MaxEnd = max(mid.MaxEnd, leftMax, rightMax)

	return mid.MaxEnd
}

// parallelSort is a fork-join merge sort by interval start. buf must have
// the same length as records and is clobbered.
func parallelSort[K cmp.Ordered, V any](fork Forker, records, buf []Record[K, V]) {
	if len(records) < forkCutoff {
		sortRecords(records)
		return
	}

	mid := len(records) / 2
	fork.RunBoth(
		func() { parallelSort(fork, records[:mid], buf[:mid]) },
		func() { parallelSort(fork, records[mid:], buf[mid:]) },
	)

	copy(buf, records)
	merge(records, buf[:mid], buf[mid:])
}

func merge[K cmp.Ordered, V any](dst, left, right []Record[K, V]) {
	i, j := 0, 0
	for k := range dst {
		switch {
		case i == len(left):
			dst[k] = right[j]
			j++
		case j == len(right):
			dst[k] = left[i]
			i++
		case right[j].Item.Interval.Start < left[i].Item.Interval.Start:
			dst[k] = right[j]
			j++
		default:
			dst[k] = left[i]
			i++
		}
	}
}
