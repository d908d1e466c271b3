package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/quayside/chainstage/internal/actor"
)

// RegisterToken inserts a token if its address is not yet known.
// Idempotent: re-registering the same token is a no-op, so reopening a
// persistent ledger is safe.
func (l *Ledger) RegisterToken(ctx context.Context, address actor.Address, symbol string) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO tokens (address, symbol)
		VALUES (?, ?)
		ON CONFLICT(address) DO NOTHING
	`, string(address), symbol)
	if err != nil {
		return fmt.Errorf("register token: %w", err)
	}
	return nil
}

// CreateAccount inserts an account row. Returns inserted=false when the
// address or name already exists, letting callers surface duplicates as
// rule violations instead of constraint errors.
func (l *Ledger) CreateAccount(ctx context.Context, address actor.Address, name string, now int64) (inserted bool, err error) {
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO accounts (address, name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, string(address), name, now)
	if err != nil {
		return false, fmt.Errorf("create account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create account: rows affected: %w", err)
	}
	return n > 0, nil
}

// Credit adds amount to the (address, asset) balance, creating the row
// when absent.
func (l *Ledger) Credit(ctx context.Context, address actor.Address, asset string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("credit: negative amount %d", amount)
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO balances (address, asset, amount)
		VALUES (?, ?, ?)
		ON CONFLICT(address, asset) DO UPDATE SET amount = amount + excluded.amount
	`, string(address), asset, amount)
	if err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	return nil
}

// Debit subtracts amount from the (address, asset) balance. Returns
// ok=false when the balance is missing or insufficient; the single
// conditional UPDATE makes check and debit atomic.
func (l *Ledger) Debit(ctx context.Context, address actor.Address, asset string, amount int64) (ok bool, err error) {
	if amount < 0 {
		return false, fmt.Errorf("debit: negative amount %d", amount)
	}
	res, err := l.db.ExecContext(ctx, `
		UPDATE balances
		SET amount = amount - ?
		WHERE address = ? AND asset = ? AND amount >= ?
	`, amount, string(address), asset, amount)
	if err != nil {
		return false, fmt.Errorf("debit balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("debit balance: rows affected: %w", err)
	}
	return n > 0, nil
}

// Transfer atomically moves amount of asset between addresses: a
// conditional debit plus a credit upsert in one transaction. Returns
// ok=false without changes when the source balance is missing or
// insufficient.
func (l *Ledger) Transfer(ctx context.Context, from, to actor.Address, asset string, amount int64) (ok bool, err error) {
	if amount < 0 {
		return false, fmt.Errorf("transfer: negative amount %d", amount)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("transfer: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		UPDATE balances
		SET amount = amount - ?
		WHERE address = ? AND asset = ? AND amount >= ?
	`, amount, string(from), asset, amount)
	if err != nil {
		return false, fmt.Errorf("transfer: debit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transfer: rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO balances (address, asset, amount)
		VALUES (?, ?, ?)
		ON CONFLICT(address, asset) DO UPDATE SET amount = amount + excluded.amount
	`, string(to), asset, amount)
	if err != nil {
		return false, fmt.Errorf("transfer: credit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("transfer: commit: %w", err)
	}
	return true, nil
}

// InsertStake records a stake of the given kind. Returns inserted=false
// when a stake of that kind already exists for the address.
func (l *Ledger) InsertStake(ctx context.Context, address actor.Address, kind string, amount, now int64) (inserted bool, err error) {
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO stakes (address, kind, amount, staked_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(address, kind) DO NOTHING
	`, string(address), kind, amount, now)
	if err != nil {
		return false, fmt.Errorf("insert stake: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert stake: rows affected: %w", err)
	}
	return n > 0, nil
}

// InsertContribution records a launch contribution. Returns
// inserted=false when the address has already contributed.
func (l *Ledger) InsertContribution(ctx context.Context, address actor.Address, amount, now int64) (inserted bool, err error) {
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO contributions (address, amount, contributed_at, claimed)
		VALUES (?, ?, ?, 0)
		ON CONFLICT(address) DO NOTHING
	`, string(address), amount, now)
	if err != nil {
		return false, fmt.Errorf("insert contribution: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert contribution: rows affected: %w", err)
	}
	return n > 0, nil
}

// ClaimContribution atomically marks an unclaimed contribution claimed
// and credits the token payout in one transaction. Returns claimed=false
// when the contribution was already claimed (or absent); nothing is
// credited in that case.
func (l *Ledger) ClaimContribution(ctx context.Context, address actor.Address, tokenAsset string, payout int64) (claimed bool, err error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("claim contribution: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		UPDATE contributions
		SET claimed = 1
		WHERE address = ? AND claimed = 0
	`, string(address))
	if err != nil {
		return false, fmt.Errorf("claim contribution: mark claimed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim contribution: rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO balances (address, asset, amount)
		VALUES (?, ?, ?)
		ON CONFLICT(address, asset) DO UPDATE SET amount = amount + excluded.amount
	`, string(address), tokenAsset, payout)
	if err != nil {
		return false, fmt.Errorf("claim contribution: credit payout: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("claim contribution: commit: %w", err)
	}
	return true, nil
}

// InsertGroup inserts a group row and returns its assigned id.
// Returns inserted=false when (owner, description) already exists.
func (l *Ledger) InsertGroup(ctx context.Context, row GroupRow) (id int64, inserted bool, err error) {
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO groups
		(owner, description, stake_amount, min_join, max_join, join_amount, score_percent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner, description) DO NOTHING
	`,
		string(row.Owner),
		row.Description,
		row.StakeAmount,
		row.MinJoin,
		row.MaxJoin,
		row.JoinAmount,
		row.ScorePercent,
		row.CreatedAt,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert group: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("insert group: rows affected: %w", err)
	}
	if n == 0 {
		return 0, false, nil
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("insert group: last insert id: %w", err)
	}
	return id, true, nil
}

// AppendOp appends one entry to the operation log and returns its seq.
// Params must already be canonical JSON.
func (l *Ledger) AppendOp(ctx context.Context, op string, params []byte) (seq int64, err error) {
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO ops (op, params) VALUES (?, ?)
	`, op, string(params))
	if err != nil {
		return 0, fmt.Errorf("append op: %w", err)
	}
	seq, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append op: last insert id: %w", err)
	}
	return seq, nil
}

// SetMeta stores a metadata key, replacing any previous value.
func (l *Ledger) SetMeta(ctx context.Context, key, value string) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO meta (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %q: %w", key, err)
	}
	return nil
}

// ChainTime returns the simulated time, or 0 when unset.
func (l *Ledger) ChainTime(ctx context.Context) (int64, error) {
	value, err := l.GetMeta(ctx, "chain_time")
	if err != nil {
		return 0, err
	}
	if value == "" {
		return 0, nil
	}
	t, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("chain time: malformed meta value %q: %w", value, err)
	}
	return t, nil
}

// SetChainTime persists the simulated time.
func (l *Ledger) SetChainTime(ctx context.Context, t int64) error {
	return l.SetMeta(ctx, "chain_time", strconv.FormatInt(t, 10))
}
