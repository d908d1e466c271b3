package chain

import (
	"context"
	"fmt"

	"github.com/quayside/chainstage/internal/actor"
	"github.com/quayside/chainstage/internal/ledger"
)

// CreateGroupForExistingUser creates a group owned by the record's flow
// identity and returns its assigned group ID. Requires both stakes to
// be in place; the stakes qualify the identity once and are not
// consumed, so one identity can own any number of distinct groups.
//
// Group identity is (owner, description). The description is derived
// from groupName here, making the group name the single input that
// distinguishes groups of one owner.
func (c *Chain) CreateGroupForExistingUser(ctx context.Context, owner actor.GroupOwner, groupName string) (int64, error) {
	if groupName == "" {
		return 0, ruleError(CodeInvalidGroup, "", "group name is required")
	}
	if err := c.requireAccount(ctx, owner.Flow.Address); err != nil {
		return 0, err
	}
	if err := c.requireStakes(ctx, owner.Flow.Address); err != nil {
		return 0, err
	}
	if err := validatePolicy(owner.Policy); err != nil {
		return 0, err
	}

	now, err := c.ledger.ChainTime(ctx)
	if err != nil {
		return 0, fmt.Errorf("create group %s: %w", groupName, err)
	}

	description := actor.DescribeGroup(groupName)
	id, inserted, err := c.ledger.InsertGroup(ctx, ledger.GroupRow{
		Owner:        owner.Flow.Address,
		Description:  description,
		StakeAmount:  owner.Policy.StakeAmount,
		MinJoin:      owner.Policy.MinJoinAmount,
		MaxJoin:      owner.Policy.MaxJoinAmount,
		JoinAmount:   owner.Policy.JoinAmount,
		ScorePercent: owner.Policy.ScorePercent,
		CreatedAt:    now,
	})
	if err != nil {
		return 0, fmt.Errorf("create group %s: %w", groupName, err)
	}
	if !inserted {
		return 0, ruleError(CodeDuplicateGroup, owner.Flow.Address, "group %q already exists for this owner", description)
	}

	err = c.logOp(ctx, "group.create", actor.Object{
		"owner":       actor.String(string(owner.Flow.Address)),
		"description": actor.String(description),
		"group_id":    actor.Int(id),
	})
	if err != nil {
		return 0, err
	}

	c.log.Debug("group created", "owner", owner.Flow.Address, "description", description, "group_id", id)
	return id, nil
}

// requireStakes rejects group creation unless both stakes are placed.
func (c *Chain) requireStakes(ctx context.Context, address actor.Address) error {
	for _, kind := range []string{ledger.KindLiquidity, ledger.KindToken} {
		staked, err := c.ledger.HasStake(ctx, address, kind)
		if err != nil {
			return fmt.Errorf("stake lookup: %w", err)
		}
		if !staked {
			return ruleError(CodeMissingStake, address, "group creation requires a %s stake", kind)
		}
	}
	return nil
}

// validatePolicy checks the policy carried by the owner record before
// it is frozen into the group row.
func validatePolicy(p actor.GroupPolicy) error {
	if p.StakeAmount <= 0 || p.MinJoinAmount <= 0 || p.MaxJoinAmount <= 0 || p.JoinAmount <= 0 {
		return ruleError(CodeInvalidPolicy, "", "policy amounts must be positive")
	}
	if p.MinJoinAmount > p.JoinAmount || p.JoinAmount > p.MaxJoinAmount {
		return ruleError(CodeInvalidPolicy, "", "join amounts must satisfy min <= join <= max, got %d <= %d <= %d",
			p.MinJoinAmount, p.JoinAmount, p.MaxJoinAmount)
	}
	if p.ScorePercent < 1 || p.ScorePercent > 100 {
		return ruleError(CodeInvalidPolicy, "", "score percent must be in [1,100], got %d", p.ScorePercent)
	}
	return nil
}
