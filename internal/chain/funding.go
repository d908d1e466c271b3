package chain

import (
	"context"
	"fmt"

	"github.com/quayside/chainstage/internal/actor"
)

// TransferFrom moves launch tokens from source to destination. Rejects
// with INSUFFICIENT_FUNDS when the source balance cannot cover the
// amount; the debit and credit are one ledger transaction.
func (c *Chain) TransferFrom(ctx context.Context, source, token, destination actor.Address, amount int64) error {
	if err := c.requireKnownToken(token); err != nil {
		return err
	}
	if err := c.requireAccount(ctx, source); err != nil {
		return err
	}
	if err := c.requireAccount(ctx, destination); err != nil {
		return err
	}

	ok, err := c.ledger.Transfer(ctx, source, destination, c.tokenAsset(), amount)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	if !ok {
		return ruleError(CodeInsufficientFunds, source, "transfer of %d tokens exceeds balance", amount)
	}

	err = c.logOp(ctx, "fund.transfer", actor.Object{
		"from":   actor.String(string(source)),
		"to":     actor.String(string(destination)),
		"amount": actor.Int(amount),
	})
	if err != nil {
		return err
	}

	c.log.Debug("tokens transferred", "from", source, "to", destination, "amount", amount)
	return nil
}

// ForceMint credits launch tokens to destination out of thin air. No
// source balance is touched; this is the test-fixture shortcut for
// funding without a token source.
func (c *Chain) ForceMint(ctx context.Context, token, destination actor.Address, amount int64) error {
	if err := c.requireKnownToken(token); err != nil {
		return err
	}
	if err := c.requireAccount(ctx, destination); err != nil {
		return err
	}

	if err := c.ledger.Credit(ctx, destination, c.tokenAsset(), amount); err != nil {
		return fmt.Errorf("mint: %w", err)
	}

	err := c.logOp(ctx, "fund.mint", actor.Object{
		"to":     actor.String(string(destination)),
		"amount": actor.Int(amount),
	})
	if err != nil {
		return err
	}

	c.log.Debug("tokens minted", "to", destination, "amount", amount)
	return nil
}
