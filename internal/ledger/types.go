package ledger

import "github.com/quayside/chainstage/internal/actor"

// AccountRow is one registered account.
type AccountRow struct {
	Address   actor.Address `json:"address"`
	Name      string        `json:"name"`
	CreatedAt int64         `json:"created_at"`
}

// BalanceRow is one (holder, asset) balance.
type BalanceRow struct {
	Address actor.Address `json:"address"`
	Asset   string        `json:"asset"`
	Amount  int64         `json:"amount"`
}

// GroupRow is one created group with its frozen policy.
type GroupRow struct {
	ID           int64         `json:"id"`
	Owner        actor.Address `json:"owner"`
	Description  string        `json:"description"`
	StakeAmount  int64         `json:"stake_amount"`
	MinJoin      int64         `json:"min_join"`
	MaxJoin      int64         `json:"max_join"`
	JoinAmount   int64         `json:"join_amount"`
	ScorePercent int64         `json:"score_percent"`
	CreatedAt    int64         `json:"created_at"`
}

// Contribution is one launch contribution.
type Contribution struct {
	Address       actor.Address `json:"address"`
	Amount        int64         `json:"amount"`
	ContributedAt int64         `json:"contributed_at"`
	Claimed       bool          `json:"claimed"`
}

// OpRow is one entry of the append-only operation log.
type OpRow struct {
	Seq    int64  `json:"seq"`
	Op     string `json:"op"`
	Params string `json:"params"`
}
