package chain

import (
	"context"
	"fmt"

	"github.com/quayside/chainstage/internal/actor"
	"github.com/quayside/chainstage/internal/ledger"
)

// LaunchContribute pays the launch goal from the flow's native balance
// into the token launch. One contribution per account.
func (c *Chain) LaunchContribute(ctx context.Context, flow actor.FlowParticipant) error {
	if err := c.requireAccount(ctx, flow.Address); err != nil {
		return err
	}

	existing, err := c.ledger.ContributionFor(ctx, flow.Address)
	if err != nil {
		return fmt.Errorf("launch contribute: %w", err)
	}
	if existing != nil {
		return ruleError(CodeAlreadyContributed, flow.Address, "contribution already recorded")
	}

	amount := c.params.LaunchGoal
	ok, err := c.ledger.Debit(ctx, flow.Address, ledger.NativeAsset, amount)
	if err != nil {
		return fmt.Errorf("launch contribute: %w", err)
	}
	if !ok {
		return ruleError(CodeInsufficientFunds, flow.Address, "contribution needs %d native", amount)
	}

	now, err := c.ledger.ChainTime(ctx)
	if err != nil {
		return fmt.Errorf("launch contribute: %w", err)
	}
	inserted, err := c.ledger.InsertContribution(ctx, flow.Address, amount, now)
	if err != nil {
		return fmt.Errorf("launch contribute: %w", err)
	}
	if !inserted {
		return ruleError(CodeAlreadyContributed, flow.Address, "contribution already recorded")
	}

	err = c.logOp(ctx, "launch.contribute", actor.Object{
		"address": actor.String(string(flow.Address)),
		"amount":  actor.Int(amount),
	})
	if err != nil {
		return err
	}

	c.log.Debug("contribution recorded", "address", flow.Address, "amount", amount, "at", now)
	return nil
}

// LaunchClaim converts a matured contribution into launch tokens at the
// claim rate. The claim window opens once the claim delay has elapsed,
// boundary inclusive: a contribution is claimable the second it turns
// exactly ClaimDelay old. At most one claim per contribution.
func (c *Chain) LaunchClaim(ctx context.Context, flow actor.FlowParticipant) error {
	if err := c.requireAccount(ctx, flow.Address); err != nil {
		return err
	}

	contribution, err := c.ledger.ContributionFor(ctx, flow.Address)
	if err != nil {
		return fmt.Errorf("launch claim: %w", err)
	}
	if contribution == nil {
		return ruleError(CodeNotClaimable, flow.Address, "no contribution to claim")
	}
	if contribution.Claimed {
		return ruleError(CodeNotClaimable, flow.Address, "contribution already claimed")
	}

	now, err := c.ledger.ChainTime(ctx)
	if err != nil {
		return fmt.Errorf("launch claim: %w", err)
	}
	maturesAt := contribution.ContributedAt + c.params.ClaimDelay
	if now < maturesAt {
		return ruleError(CodeNotClaimable, flow.Address, "claim delay not elapsed: matures at %d, now %d", maturesAt, now)
	}

	payout := contribution.Amount * c.params.ClaimRate
	claimed, err := c.ledger.ClaimContribution(ctx, flow.Address, c.tokenAsset(), payout)
	if err != nil {
		return fmt.Errorf("launch claim: %w", err)
	}
	if !claimed {
		return ruleError(CodeNotClaimable, flow.Address, "contribution already claimed")
	}

	err = c.logOp(ctx, "launch.claim", actor.Object{
		"address": actor.String(string(flow.Address)),
		"payout":  actor.Int(payout),
	})
	if err != nil {
		return err
	}

	c.log.Debug("claim paid", "address", flow.Address, "payout", payout)
	return nil
}
