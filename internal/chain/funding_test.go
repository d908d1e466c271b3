package chain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayside/chainstage/internal/actor"
)

func TestTransferFrom_MovesTokens(t *testing.T) {
	c, l := newTestChain(t)
	ctx := context.Background()

	source := createFunded(t, c, "source", 0)
	dest := createFunded(t, c, "dest", 0)
	require.NoError(t, c.ForceMint(ctx, c.Token(), source.Address, 1_000))

	require.NoError(t, c.TransferFrom(ctx, source.Address, c.Token(), dest.Address, 400))

	assert.Equal(t, int64(600), tokenBalance(t, c, l, source.Address))
	assert.Equal(t, int64(400), tokenBalance(t, c, l, dest.Address))
}

func TestTransferFrom_InsufficientFunds(t *testing.T) {
	c, l := newTestChain(t)
	ctx := context.Background()

	source := createFunded(t, c, "source", 0)
	dest := createFunded(t, c, "dest", 0)
	require.NoError(t, c.ForceMint(ctx, c.Token(), source.Address, 100))

	err := c.TransferFrom(ctx, source.Address, c.Token(), dest.Address, 101)
	require.Error(t, err)
	assert.True(t, IsRuleCode(err, CodeInsufficientFunds), "err = %v", err)

	// Nothing moved.
	assert.Equal(t, int64(100), tokenBalance(t, c, l, source.Address))
	assert.Equal(t, int64(0), tokenBalance(t, c, l, dest.Address))
}

func TestTransferFrom_UnknownToken(t *testing.T) {
	c, _ := newTestChain(t)
	ctx := context.Background()

	source := createFunded(t, c, "source", 0)
	dest := createFunded(t, c, "dest", 0)

	bogus := actor.DeriveTokenAddress("BOGUS")
	err := c.TransferFrom(ctx, source.Address, bogus, dest.Address, 1)
	require.Error(t, err)
	assert.True(t, IsRuleCode(err, CodeUnknownToken), "err = %v", err)
}

func TestTransferFrom_UnknownAccounts(t *testing.T) {
	c, _ := newTestChain(t)
	ctx := context.Background()

	known := createFunded(t, c, "known", 0)
	ghost := actor.DeriveAddress("ghost")

	err := c.TransferFrom(ctx, ghost, c.Token(), known.Address, 1)
	require.Error(t, err)
	assert.True(t, IsRuleCode(err, CodeUnknownAccount), "err = %v", err)

	err = c.TransferFrom(ctx, known.Address, c.Token(), ghost, 1)
	require.Error(t, err)
	assert.True(t, IsRuleCode(err, CodeUnknownAccount), "err = %v", err)
}

func TestForceMint_CreditsTokens(t *testing.T) {
	c, l := newTestChain(t)
	ctx := context.Background()

	dest := createFunded(t, c, "dest", 0)

	require.NoError(t, c.ForceMint(ctx, c.Token(), dest.Address, 250))
	require.NoError(t, c.ForceMint(ctx, c.Token(), dest.Address, 250))

	assert.Equal(t, int64(500), tokenBalance(t, c, l, dest.Address))
}

func TestForceMint_UnknownAccount(t *testing.T) {
	c, _ := newTestChain(t)

	err := c.ForceMint(context.Background(), c.Token(), actor.DeriveAddress("ghost"), 1)
	require.Error(t, err)
	assert.True(t, IsRuleCode(err, CodeUnknownAccount), "err = %v", err)
}

func TestForceMint_UnknownToken(t *testing.T) {
	c, _ := newTestChain(t)

	dest := createFunded(t, c, "dest", 0)
	err := c.ForceMint(context.Background(), actor.DeriveTokenAddress("BOGUS"), dest.Address, 1)
	require.Error(t, err)
	assert.True(t, IsRuleCode(err, CodeUnknownToken), "err = %v", err)
}
