// Package lookup provides implementations of the existing-license registry
// consumed by pkg/eligibility: the network-backed record of licenses and
// learner's permits a person already holds.
//
// Three implementations cover the deployment spectrum:
//
//   - Memory: an in-process registry for tests and small setups.
//   - Store: a PostgreSQL-backed registry (pgx pool, embedded goose
//     migrations).
//   - Cached: a read-through Redis cache wrapping any other registry, so the
//     wizard can re-check a person repeatedly without hammering the backing
//     store. Cache failures are logged and fall through to the inner
//     registry; they never fail a check by themselves.
//
// All implementations derive the same semantics from raw records: a license
// is active while unexpired, a lapsed license puts its category on the
// MustRenew list, and a permit counts only while unexpired.
//
// The engine treats every registry as an opaque, possibly failing
// collaborator: a failed Check degrades to "no records found" upstream, so
// none of these implementations needs to guarantee availability.
package lookup
