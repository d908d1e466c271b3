// Package ledger provides SQLite-backed storage for the simulated chain
// state: accounts, token balances, stakes, groups, launch contributions,
// an append-only operation log, and run metadata (simulated time, run id).
//
// # Invariants
//
//   - Ordering uses the op log's seq INTEGER (monotonic), never wall time.
//     Simulated chain time lives in the meta table and only moves forward.
//   - Balances never go negative: debits are single-statement conditional
//     updates that report insufficiency instead of underflowing.
//   - Writes that the domain treats as at-most-once (accounts, stakes,
//     contributions, groups) insert with ON CONFLICT DO NOTHING and report
//     whether a row was inserted, so callers can surface duplicates as
//     rule violations.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes (file-backed databases)
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// Tests and scenario runs open ":memory:" databases; the CLI opens a
// file path so a fixture can be inspected after setup.
package ledger
