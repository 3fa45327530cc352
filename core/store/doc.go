// Package store provides durable persistence for the single active
// cycle-count session.
//
// The store is a single-record key-value abstraction: exactly one session is
// active at a time and every mutation persists the full session snapshot.
// The payload is the engine's JSON encoding of the session; this package has
// no knowledge of its structure.
//
// # Drivers
//
//   - redis: one key holding the JSON record (production default)
//   - memory: process-local, used for tests and degraded operation
//
// # Degradation
//
// The Fallback wrapper switches to in-memory operation after the first
// storage failure and reports it once, so a transient fault never blocks
// counting. On the next process start, an absent or unreadable record is
// treated as "start fresh".
package store
