package chain

import (
	"context"
	"fmt"

	"github.com/quayside/chainstage/internal/actor"
	"github.com/quayside/chainstage/internal/ledger"
)

// StakeLiquidity locks the policy stake amount of launch tokens as the
// flow's liquidity stake. At most one liquidity stake per account.
func (c *Chain) StakeLiquidity(ctx context.Context, flow actor.FlowParticipant) error {
	return c.stake(ctx, flow, ledger.KindLiquidity)
}

// StakeToken locks the policy stake amount as the flow's token stake.
// Requires an existing liquidity stake; at most one token stake per
// account.
func (c *Chain) StakeToken(ctx context.Context, flow actor.FlowParticipant) error {
	return c.stake(ctx, flow, ledger.KindToken)
}

func (c *Chain) stake(ctx context.Context, flow actor.FlowParticipant, kind string) error {
	if err := c.requireAccount(ctx, flow.Address); err != nil {
		return err
	}

	if kind == ledger.KindToken {
		hasLiquidity, err := c.ledger.HasStake(ctx, flow.Address, ledger.KindLiquidity)
		if err != nil {
			return fmt.Errorf("stake %s: %w", kind, err)
		}
		if !hasLiquidity {
			return ruleError(CodeMissingStake, flow.Address, "token stake requires a liquidity stake")
		}
	}

	staked, err := c.ledger.HasStake(ctx, flow.Address, kind)
	if err != nil {
		return fmt.Errorf("stake %s: %w", kind, err)
	}
	if staked {
		return ruleError(CodeAlreadyStaked, flow.Address, "%s stake already placed", kind)
	}

	amount := c.params.GroupPolicy.StakeAmount
	ok, err := c.ledger.Debit(ctx, flow.Address, c.tokenAsset(), amount)
	if err != nil {
		return fmt.Errorf("stake %s: %w", kind, err)
	}
	if !ok {
		return ruleError(CodeInsufficientFunds, flow.Address, "%s stake needs %d tokens", kind, amount)
	}

	now, err := c.ledger.ChainTime(ctx)
	if err != nil {
		return fmt.Errorf("stake %s: %w", kind, err)
	}
	inserted, err := c.ledger.InsertStake(ctx, flow.Address, kind, amount, now)
	if err != nil {
		return fmt.Errorf("stake %s: %w", kind, err)
	}
	if !inserted {
		return ruleError(CodeAlreadyStaked, flow.Address, "%s stake already placed", kind)
	}

	err = c.logOp(ctx, "stake."+kind, actor.Object{
		"address": actor.String(string(flow.Address)),
		"amount":  actor.Int(amount),
	})
	if err != nil {
		return err
	}

	c.log.Debug("stake placed", "address", flow.Address, "kind", kind, "amount", amount)
	return nil
}
