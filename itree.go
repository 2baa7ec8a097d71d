// Package itree implements an immutable, flat representation of an
// augmented interval tree.
//
// The tree maps half-open intervals [start, end) to values and answers
// overlap queries without per-query allocation. Its topology is implicit:
// records live in a single slice sorted by interval start, the node of any
// sub-slice is the record at its midpoint, and children are the sub-slices
// on either side. Splitting by midpoint keeps the shape perfectly balanced
// without pointers or an explicit balancing step. Each record additionally
// stores the maximum interval end over its sub-slice, which is what lets a
// query prune entire sub-slices.
//
// An Index is built once and never mutated afterward; all query operations
// are read-only and safe for any number of concurrent readers.
package itree

import (
	"cmp"
	"iter"
)

// Interval is a half-open interval [Start, End), including Start and
// excluding End. Degenerate intervals with Start >= End are permitted and
// overlap nothing.
type Interval[K cmp.Ordered] struct {
	Start K `json:"start"`
	End   K `json:"end"`
}

// Overlaps reports whether the two half-open intervals share any point.
func (iv Interval[K]) Overlaps(other Interval[K]) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Item is a stored interval together with its associated value. The value
// carries no ordering requirement.
type Item[K cmp.Ordered, V any] struct {
	Interval Interval[K] `json:"interval"`
	Value    V           `json:"value"`
}

// Record is the flat storage unit: an item plus the maximum interval end
// over every item in the record's implicit sub-slice, itself included. A
// record is a plain value with no identity beyond its position.
type Record[K cmp.Ordered, V any] struct {
	Item   Item[K, V] `json:"item"`
	MaxEnd K          `json:"max_end"`
}

// Index is an immutable interval index over a flat record slice. It owns
// the slice for its lifetime; records are never modified after the build
// completes.
type Index[K cmp.Ordered, V any] struct {
	records []Record[K, V]
}

// NewUnchecked interprets records as an already-built index.
//
// It performs no sorting and no augmentation pass. Supplying records that
// do not satisfy the sort and max-end invariants is safe but silently
// yields wrong or missing query matches. It is intended for storage
// produced by a prior build, e.g. the Records of a decoded serialized
// index.
func NewUnchecked[K cmp.Ordered, V any](records []Record[K, V]) *Index[K, V] {
	return &Index[K, V]{records: records}
}

// Len returns the number of stored items.
func (ix *Index[K, V]) Len() int { return len(ix.records) }

// Records returns the backing record slice in physical order, for external
// serialization or reinterpretation via NewUnchecked. Callers must not
// mutate it.
func (ix *Index[K, V]) Records() []Record[K, V] { return ix.records }

// Items returns a restartable iterator over all stored items in record
// order, independent of the query traversal. Its exact length is Len.
func (ix *Index[K, V]) Items() iter.Seq[Item[K, V]] {
	return func(yield func(Item[K, V]) bool) {
		for i := range ix.records {
			if !yield(ix.records[i].Item) {
				return
			}
		}
	}
}

// split divides a non-empty slice into its implicit left subtree, root
// record, and right subtree by array midpoint.
func split[K cmp.Ordered, V any](records []Record[K, V]) ([]Record[K, V], *Record[K, V], []Record[K, V]) {
	mid := len(records) / 2
	return records[:mid], &records[mid], records[mid+1:]
}
