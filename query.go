package itree

import "cmp"

// Handler is invoked once per stored item whose interval overlaps the
// queried one, in an order determined by the traversal, not by interval
// start. Returning false stops the traversal; a result to carry out of a
// stopped query is captured by the handler's closure.
type Handler[K cmp.Ordered, V any] func(Item[K, V]) bool

// Query invokes handler for every stored item whose half-open interval
// overlaps q, i.e. q.Start < end && start < q.End. It reports false if the
// handler stopped the traversal early and true if it ran to completion.
//
// Query allocates nothing and is safe for concurrent use by any number of
// readers.
func (ix *Index[K, V]) Query(q Interval[K], handler Handler[K, V]) bool {
	if len(ix.records) == 0 {
		return true
	}

	return queryRecords(q, handler, ix.records)
}

// queryRecords walks the implicit tree over a non-empty slice. When both
// subtrees must be visited it recurses into the left one and loops on the
// right, bounding live frames to O(log n) even when a query matches every
// record.
func queryRecords[K cmp.Ordered, V any](q Interval[K], handler Handler[K, V], records []Record[K, V]) bool {
	for {
		left, mid, right := split(records)

		goLeft := false
		goRight := false

		// mid.MaxEnd bounds every interval end in the current slice, so a
		// query starting at or beyond it overlaps nothing here, left
		// subtree included.
		if q.Start < mid.MaxEnd {
			goLeft = len(left) > 0

			// Everything in the right subtree starts at or after mid does,
			// so a query ending at or before mid's start skips both.
			if q.End > mid.Item.Interval.Start {
				goRight = len(right) > 0

				if q.Start < mid.Item.Interval.End {
					if !handler(mid.Item) {
						return false
					}
				}
			}
		}

		switch {
		case goLeft && goRight:
			if !queryRecords(q, handler, left) {
				return false
			}
			records = right
		case goLeft:
			records = left
		case goRight:
			records = right
		default:
			return true
		}
	}
}

// QueryParallel is Query with the two-subtree case dispatched through f,
// concurrently if f allows; a nil f forks onto goroutines. The overlap
// predicate and the set of matched items are identical to Query, and
// handler must be safe to call from multiple goroutines concurrently.
//
// Early termination is best-effort only: once both subtrees have been
// dispatched, a stop requested inside one does not abort the other, which
// runs to completion and may invoke handler additional times after the
// first stop request. The returned value still reports whether any handler
// call requested a stop.
func (ix *Index[K, V]) QueryParallel(f Forker, q Interval[K], handler Handler[K, V]) bool {
	if f == nil {
		f = GoForker{}
	}
	if len(ix.records) == 0 {
		return true
	}

	return parallelQueryRecords(f, q, handler, ix.records)
}

func parallelQueryRecords[K cmp.Ordered, V any](f Forker, q Interval[K], handler Handler[K, V], records []Record[K, V]) bool {
	for {
		if len(records) < forkCutoff {
			return queryRecords(q, handler, records)
		}

		left, mid, right := split(records)

		goLeft := false
		goRight := false

		if q.Start < mid.MaxEnd {
			goLeft = len(left) > 0

			if q.End > mid.Item.Interval.Start {
				goRight = len(right) > 0

				if q.Start < mid.Item.Interval.End {
					if !handler(mid.Item) {
						return false
					}
				}
			}
		}

		switch {
		case goLeft && goRight:
			var leftDone, rightDone bool
			f.RunBoth(
				func() { leftDone = parallelQueryRecords(f, q, handler, left) },
				func() { rightDone = parallelQueryRecords(f, q, handler, right) },
			)
			return leftDone && rightDone
		case goLeft:
			records = left
		case goRight:
			records = right
		default:
			return true
		}
	}
}
