package chain

import (
	"context"
	"fmt"

	"github.com/quayside/chainstage/internal/actor"
)

// JumpToSecondHalfMinimum advances simulated time by the protocol's
// second-half minimum interval, moving the launch into the window
// where phase 2 may run.
func (c *Chain) JumpToSecondHalfMinimum(ctx context.Context) error {
	return c.advanceTime(ctx, c.params.SecondHalfMinimum, "time.jump_second_half_minimum")
}

// SkipClaimDelay advances simulated time by the claim delay, maturing
// every contribution recorded at or before the previous time.
func (c *Chain) SkipClaimDelay(ctx context.Context) error {
	return c.advanceTime(ctx, c.params.ClaimDelay, "time.skip_claim_delay")
}

// advanceTime moves the persisted chain clock forward by delta seconds.
// Time never goes backwards; the deltas come from validated protocol
// parameters and are non-negative.
func (c *Chain) advanceTime(ctx context.Context, delta int64, op string) error {
	now, err := c.ledger.ChainTime(ctx)
	if err != nil {
		return fmt.Errorf("advance time: %w", err)
	}

	next := now + delta
	if err := c.ledger.SetChainTime(ctx, next); err != nil {
		return fmt.Errorf("advance time: %w", err)
	}

	err = c.logOp(ctx, op, actor.Object{
		"from": actor.Int(now),
		"to":   actor.Int(next),
	})
	if err != nil {
		return err
	}

	c.log.Debug("time advanced", "op", op, "from", now, "to", next)
	return nil
}
