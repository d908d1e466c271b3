package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quayside/chainstage/internal/actor"
	"github.com/quayside/chainstage/internal/harness"
	"github.com/quayside/chainstage/internal/ledger"
	"github.com/quayside/chainstage/internal/params"
)

// Chain simulates the protocol surface over a persistent ledger. It
// implements harness.Facade: account creation, token launch, staking,
// group formation, funding transfers, and simulated time.
//
// Every state-changing operation validates its rules, applies the
// change, and appends an entry to the ledger's operation log. Rule
// violations reject with *RuleError and leave no partial writes; the
// money-moving steps use the ledger's conditional updates so a failed
// check never debits.
//
// A Chain is driven by one strictly sequential fixture at a time.
// Check-then-write sequences rely on that; the single SQLite write
// connection underneath enforces it even for misbehaving callers.
type Chain struct {
	ledger *ledger.Ledger
	params params.Protocol
	log    *slog.Logger
	token  actor.Address
}

var _ harness.Facade = (*Chain)(nil)

// Option configures a Chain.
type Option func(*Chain)

// WithLogger sets the chain's logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(c *Chain) {
		c.log = log
	}
}

// New builds a Chain over the ledger, validates the protocol
// parameters, and registers the launch token. Reopening an existing
// ledger with the same parameters is safe; token registration is
// idempotent.
func New(ctx context.Context, l *ledger.Ledger, p params.Protocol, opts ...Option) (*Chain, error) {
	if verrs := params.Validate(&p); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, ve := range verrs {
			errs[i] = ve
		}
		return nil, fmt.Errorf("invalid protocol parameters: %w", errors.Join(errs...))
	}

	c := &Chain{
		ledger: l,
		params: p,
		log:    slog.Default(),
		token:  actor.DeriveTokenAddress(p.TokenSymbol),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := l.RegisterToken(ctx, c.token, p.TokenSymbol); err != nil {
		return nil, fmt.Errorf("register launch token: %w", err)
	}

	c.log.Debug("chain ready", "symbol", p.TokenSymbol, "token", c.token)
	return c, nil
}

// Token returns the launch token's address.
func (c *Chain) Token() actor.Address {
	return c.token
}

// FirstTokenAddress returns the launch token's address from the
// ledger's token registry.
func (c *Chain) FirstTokenAddress(ctx context.Context) (actor.Address, error) {
	token, err := c.ledger.FirstToken(ctx)
	if err != nil {
		return "", fmt.Errorf("first token: %w", err)
	}
	if token == "" {
		return "", ruleError(CodeUnknownToken, "", "no token registered")
	}
	return token, nil
}

// tokenAsset is the balance-table asset name for the launch token.
func (c *Chain) tokenAsset() string {
	return string(c.token)
}

// requireAccount rejects operations on unregistered addresses.
func (c *Chain) requireAccount(ctx context.Context, address actor.Address) error {
	exists, err := c.ledger.AccountExists(ctx, address)
	if err != nil {
		return fmt.Errorf("account lookup: %w", err)
	}
	if !exists {
		return ruleError(CodeUnknownAccount, address, "account not registered")
	}
	return nil
}

// requireKnownToken rejects operations naming any token but the
// registered launch token.
func (c *Chain) requireKnownToken(token actor.Address) error {
	if token != c.token {
		return ruleError(CodeUnknownToken, "", "unknown token %s", token)
	}
	return nil
}

// logOp appends an operation-log entry with canonical JSON params.
func (c *Chain) logOp(ctx context.Context, op string, args actor.Object) error {
	data, err := actor.MarshalCanonical(args)
	if err != nil {
		return fmt.Errorf("marshal op params: %w", err)
	}
	if _, err := c.ledger.AppendOp(ctx, op, data); err != nil {
		return fmt.Errorf("append op %s: %w", op, err)
	}
	return nil
}
