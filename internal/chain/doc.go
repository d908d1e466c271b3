// Package chain simulates the on-chain protocol over a SQLite ledger.
//
// Chain implements harness.Facade. It covers the full fixture surface:
// account creation with deterministic addresses, the two-phase token
// launch (contribute, mature, claim), the liquidity/token stake pair,
// group formation keyed on (owner, description), funding transfers and
// mints, and a persisted simulated clock.
//
// Operations validate protocol rules before writing. Violations reject
// with *RuleError carrying a RuleCode, so callers can distinguish "the
// protocol said no" from infrastructure failures. Every applied
// operation also appends an entry to the ledger's append-only op log
// with canonical JSON parameters, which is what the CLI's ledger
// command prints.
//
// Money movement goes through the ledger's conditional updates and
// single-transaction transfer, so a rejected debit never leaves a
// partial write. Rule checks that read before writing assume the
// strictly sequential caller the harness guarantees.
package chain
