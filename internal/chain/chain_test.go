package chain

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayside/chainstage/internal/actor"
	"github.com/quayside/chainstage/internal/ledger"
	"github.com/quayside/chainstage/internal/params"
)

func TestNew_RegistersLaunchToken(t *testing.T) {
	c, _ := newTestChain(t)

	token, err := c.FirstTokenAddress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, c.Token(), token)
	assert.Equal(t, actor.DeriveTokenAddress(params.Default().TokenSymbol), token)
}

func TestNew_InvalidParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	l, err := ledger.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	p := params.Default()
	p.LaunchGoal = 0

	_, err = New(context.Background(), l, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid protocol parameters")
	assert.Contains(t, err.Error(), "launch_goal")
}

func TestNew_CollectsAllParamErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	l, err := ledger.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	p := params.Default()
	p.LaunchGoal = 0
	p.TokenSymbol = "nope"

	_, err = New(context.Background(), l, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "launch_goal")
	assert.Contains(t, err.Error(), "token_symbol")
}

func TestNew_ReopenSameLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	l, err := ledger.Open(path)
	require.NoError(t, err)

	ctx := context.Background()
	c1, err := New(ctx, l, params.Default())
	require.NoError(t, err)
	createFunded(t, c1, "alice", 100)
	require.NoError(t, l.Close())

	// Reopen: token registration is idempotent and state survives.
	l, err = ledger.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	c2, err := New(ctx, l, params.Default())
	require.NoError(t, err)
	assert.Equal(t, c1.Token(), c2.Token())

	exists, err := l.AccountExists(ctx, actor.DeriveAddress("alice"))
	require.NoError(t, err)
	assert.True(t, exists, "account should survive reopen")
}

func TestRuleError_Format(t *testing.T) {
	addr := actor.DeriveAddress("alice")

	withAccount := ruleError(CodeInsufficientFunds, addr, "needs %d", 50)
	assert.Equal(t, "INSUFFICIENT_FUNDS: needs 50 (account="+string(addr)+")", withAccount.Error())

	withoutAccount := ruleError(CodeUnknownToken, "", "no token registered")
	assert.Equal(t, "UNKNOWN_TOKEN: no token registered", withoutAccount.Error())
}

func TestIsRuleCode(t *testing.T) {
	err := ruleError(CodeNotClaimable, "", "claim delay not elapsed")

	assert.True(t, IsRuleCode(err, CodeNotClaimable))
	assert.False(t, IsRuleCode(err, CodeInsufficientFunds))
	assert.False(t, IsRuleCode(nil, CodeNotClaimable))
	assert.False(t, IsRuleCode(context.Canceled, CodeNotClaimable))
}
