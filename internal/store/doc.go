// Package store provides SQLite-backed storage for correlation runs and
// generated code units.
//
// The store is append-only:
//   - Runs: one reconstruction of one traced pipeline
//   - Transitions: the (before, after) time pairs a run produced, per call
//   - Units: generated instrumentation, content-addressed by fingerprint
//
// # Ordering
//
// All ordering uses logical sequence numbers and recorded time stamps, never
// wall-clock time. Every query orders by explicit columns with a binary
// collation tie-break, so reads are identical across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Unit fingerprints are computed by internal/ir using RFC 8785 canonical
// JSON and SHA-256 with domain separation.
package store
