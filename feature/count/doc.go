// Package count implements the cycle-count session engine.
//
// A session tracks which expected items have been observed during a
// physical inventory count, computes the discrepancy set between expected
// and observed inventory, runs an auto-reconciliation pass against an
// external oracle, and enforces the session lifecycle through to a signed
// completion.
//
// # Architecture
//
// The engine is built from four pieces:
//
//  1. Commands: every ledger mutation (scan, quantity entry, manual
//     classification) is a command applied to the session aggregate,
//     producing a side-effect record (duplicate flag, confirmation
//     request, last action).
//
//  2. Engine: owns the session, gates commands and transitions through the
//     state machine PENDING -> IN_PROGRESS -> RECONCILING ->
//     AWAITING_SIGNATURE -> COMPLETED, and hands out deep-copy snapshots
//     for persistence.
//
//  3. Resolver: the single-flight auto-reconciliation pass. Oracle answers
//     are applied as one atomic update carrying the session id they were
//     computed for; stale results are discarded.
//
//  4. Service: wires the engine to the durable session store and the
//     external collaborators (catalog lookup, reconciliation oracle,
//     expectation source). Every mutation persists the full session
//     snapshot before the operation completes.
//
// # Counting modes
//
// IDENTIFIER_SCAN items are observed one unit at a time by unique
// identifier. AGGREGATE_QUANTITY items are counted per SKU: the SKU's
// first expectation entry is its representative identifier, a positive
// manual count observes it, and an explicit operator-confirmed zero moves
// it back to the unscanned bucket.
package count
