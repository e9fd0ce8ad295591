// Package seq holds the single process-wide monotonic sequence counter
// every pipeline stage stamps onto the events it emits (spec.md §5
// "Ordering guarantees", §9 "Global sequence counter is process-wide
// state with init-at-first-use and no teardown; it survives for the
// process lifetime").
package seq

import "sync/atomic"

var counter atomic.Uint64

// Next returns the next monotonic sequence number, starting at 1.
func Next() uint64 {
	return counter.Add(1)
}
