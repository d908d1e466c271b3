package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quayside/chainstage/internal/actor"
)

// AccountExists reports whether an account row exists for the address.
func (l *Ledger) AccountExists(ctx context.Context, address actor.Address) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx, `
		SELECT 1 FROM accounts WHERE address = ?
	`, string(address)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("account exists: %w", err)
	}
	return true, nil
}

// Balance returns the (address, asset) balance. A missing row reads as
// zero.
func (l *Ledger) Balance(ctx context.Context, address actor.Address, asset string) (int64, error) {
	var amount int64
	err := l.db.QueryRowContext(ctx, `
		SELECT amount FROM balances WHERE address = ? AND asset = ?
	`, string(address), asset).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return amount, nil
}

// HasStake reports whether the address holds a stake of the given kind.
func (l *Ledger) HasStake(ctx context.Context, address actor.Address, kind string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx, `
		SELECT 1 FROM stakes WHERE address = ? AND kind = ?
	`, string(address), kind).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read stake: %w", err)
	}
	return true, nil
}

// ContributionFor returns the contribution row for the address, or nil
// when the address never contributed.
func (l *Ledger) ContributionFor(ctx context.Context, address actor.Address) (*Contribution, error) {
	var (
		c       Contribution
		claimed int
	)
	err := l.db.QueryRowContext(ctx, `
		SELECT address, amount, contributed_at, claimed
		FROM contributions
		WHERE address = ?
	`, string(address)).Scan(&c.Address, &c.Amount, &c.ContributedAt, &claimed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read contribution: %w", err)
	}
	c.Claimed = claimed != 0
	return &c, nil
}

// FirstToken returns the address of the first registered token in
// symbol order, or "" when no token exists yet.
func (l *Ledger) FirstToken(ctx context.Context) (actor.Address, error) {
	var address string
	err := l.db.QueryRowContext(ctx, `
		SELECT address FROM tokens ORDER BY symbol LIMIT 1
	`).Scan(&address)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read first token: %w", err)
	}
	return actor.Address(address), nil
}

// GetMeta returns the value for a metadata key, or "" when unset.
func (l *Ledger) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := l.db.QueryRowContext(ctx, `
		SELECT value FROM meta WHERE key = ?
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get meta %q: %w", key, err)
	}
	return value, nil
}

// ListAccounts returns all accounts ordered by creation then address.
func (l *Ledger) ListAccounts(ctx context.Context) ([]AccountRow, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT address, name, created_at
		FROM accounts
		ORDER BY created_at, address
	`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []AccountRow{}
	for rows.Next() {
		var a AccountRow
		if err := rows.Scan(&a.Address, &a.Name, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("list accounts: scan: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// ListBalances returns all balance rows ordered by address then asset.
func (l *Ledger) ListBalances(ctx context.Context) ([]BalanceRow, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT address, asset, amount
		FROM balances
		ORDER BY address, asset
	`)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	balances := []BalanceRow{}
	for rows.Next() {
		var b BalanceRow
		if err := rows.Scan(&b.Address, &b.Asset, &b.Amount); err != nil {
			return nil, fmt.Errorf("list balances: scan: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	return balances, nil
}

// ListGroups returns all groups ordered by id.
func (l *Ledger) ListGroups(ctx context.Context) ([]GroupRow, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, owner, description, stake_amount, min_join, max_join, join_amount, score_percent, created_at
		FROM groups
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	groups := []GroupRow{}
	for rows.Next() {
		var g GroupRow
		if err := rows.Scan(
			&g.ID,
			&g.Owner,
			&g.Description,
			&g.StakeAmount,
			&g.MinJoin,
			&g.MaxJoin,
			&g.JoinAmount,
			&g.ScorePercent,
			&g.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("list groups: scan: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// ListOps returns the full operation log in append order.
func (l *Ledger) ListOps(ctx context.Context) ([]OpRow, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT seq, op, params FROM ops ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("list ops: %w", err)
	}
	defer rows.Close()

	ops := []OpRow{}
	for rows.Next() {
		var o OpRow
		if err := rows.Scan(&o.Seq, &o.Op, &o.Params); err != nil {
			return nil, fmt.Errorf("list ops: scan: %w", err)
		}
		ops = append(ops, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ops: %w", err)
	}
	return ops, nil
}
