// Package validcache keeps per-keystroke validation cheap: it caches field
// and step validation results and coalesces rapid re-validation requests
// with a trailing-edge debounce.
//
// # Architecture
//
// A Cache instance is owned by exactly one wizard session; there is no
// package-level state, so two concurrent wizards never share timers or
// entries. Field results are keyed by (step, field) and each key holds at
// most one pending timer: a new request cancels and replaces the previous
// one, and the evaluation runs once with the closure of the last call after
// the quiet period (300 ms by default). The synchronous return value is
// always immediate: the last cached result, or the neutral default when the
// key was never evaluated.
//
// Step results use a coarser key, (step, content hash of the snapshot), with
// a freshness window (1 s by default): identical data within the window is
// served from cache, and force bypasses the window before final submission.
// The two windows are intentionally different granularities.
//
// Timers carry a per-key generation counter, so a timer that fires after its
// key was cleared, re-scheduled or the cache was closed is a no-op. Close
// and ClearAll cancel every pending timer; they are required on wizard reset
// and teardown so a stale timer can never mutate a discarded session.
//
// # Usage
//
//	cache := validcache.New()
//	defer cache.Close()
//
//	res := cache.DebouncedField(step, "surname",
//	    func() rules.FieldResult { return rules.ValidateField(set, "surname", v, data) },
//	    func(r rules.FieldResult) { /* re-render field */ },
//	)
//	// res is the best currently-known result, never a blocking call
package validcache
