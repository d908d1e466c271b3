package chain

import (
	"context"
	"fmt"

	"github.com/quayside/chainstage/internal/actor"
	"github.com/quayside/chainstage/internal/ledger"
)

// CreateUser registers a named actor and funds it with native coin.
// The address is derived deterministically from the name, so the same
// name always rejects on a second create with DUPLICATE_ACCOUNT.
func (c *Chain) CreateUser(ctx context.Context, name string, token actor.Address, funding int64) (actor.FlowParticipant, error) {
	flow, err := c.newAccount(ctx, name, token, funding)
	if err != nil {
		return actor.FlowParticipant{}, err
	}

	err = c.logOp(ctx, "user.create", actor.Object{
		"name":    actor.String(name),
		"address": actor.String(string(flow.Address)),
		"funding": actor.Int(funding),
	})
	if err != nil {
		return actor.FlowParticipant{}, err
	}

	c.log.Debug("user created", "name", name, "address", flow.Address, "funding", funding)
	return flow, nil
}

// CreateGroupUser registers a named actor like CreateUser and returns
// a group-owner record carrying the protocol's group policy and the
// canonical description for groupName. The group itself is not created
// until CreateGroupForExistingUser.
func (c *Chain) CreateGroupUser(ctx context.Context, name string, token actor.Address, funding int64, groupName string) (actor.GroupOwner, error) {
	if groupName == "" {
		return actor.GroupOwner{}, ruleError(CodeInvalidGroup, "", "group name is required")
	}

	flow, err := c.newAccount(ctx, name, token, funding)
	if err != nil {
		return actor.GroupOwner{}, err
	}

	owner := actor.GroupOwner{
		Flow:             flow,
		Policy:           c.params.GroupPolicy,
		GroupDescription: actor.DescribeGroup(groupName),
	}

	err = c.logOp(ctx, "group_user.create", actor.Object{
		"name":    actor.String(name),
		"address": actor.String(string(flow.Address)),
		"funding": actor.Int(funding),
		"group":   actor.String(groupName),
	})
	if err != nil {
		return actor.GroupOwner{}, err
	}

	c.log.Debug("group user created", "name", name, "address", flow.Address, "group", groupName)
	return owner, nil
}

// newAccount derives the address, inserts the account row, and credits
// the native funding.
func (c *Chain) newAccount(ctx context.Context, name string, token actor.Address, funding int64) (actor.FlowParticipant, error) {
	if name == "" {
		return actor.FlowParticipant{}, fmt.Errorf("create account: name is required")
	}
	if err := c.requireKnownToken(token); err != nil {
		return actor.FlowParticipant{}, err
	}
	if funding < 0 {
		return actor.FlowParticipant{}, fmt.Errorf("create account %s: negative funding %d", name, funding)
	}

	now, err := c.ledger.ChainTime(ctx)
	if err != nil {
		return actor.FlowParticipant{}, fmt.Errorf("create account %s: %w", name, err)
	}

	address := actor.DeriveAddress(name)
	inserted, err := c.ledger.CreateAccount(ctx, address, name, now)
	if err != nil {
		return actor.FlowParticipant{}, fmt.Errorf("create account %s: %w", name, err)
	}
	if !inserted {
		return actor.FlowParticipant{}, ruleError(CodeDuplicateAccount, address, "account %q already exists", name)
	}

	if funding > 0 {
		if err := c.ledger.Credit(ctx, address, ledger.NativeAsset, funding); err != nil {
			return actor.FlowParticipant{}, fmt.Errorf("fund account %s: %w", name, err)
		}
	}

	return actor.FlowParticipant{Address: address, TokenAddress: token}, nil
}
