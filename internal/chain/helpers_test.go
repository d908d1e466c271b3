package chain

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quayside/chainstage/internal/actor"
	"github.com/quayside/chainstage/internal/ledger"
	"github.com/quayside/chainstage/internal/params"
)

// newTestChain builds a chain over a fresh file-backed ledger with the
// default protocol parameters.
func newTestChain(t *testing.T) (*Chain, *ledger.Ledger) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	l, err := ledger.Open(path)
	require.NoError(t, err, "failed to open ledger")
	t.Cleanup(func() {
		if err := l.Close(); err != nil {
			t.Errorf("failed to close ledger: %v", err)
		}
	})

	c, err := New(context.Background(), l, params.Default())
	require.NoError(t, err, "failed to build chain")
	return c, l
}

// createFunded registers a user with the given native funding.
func createFunded(t *testing.T, c *Chain, name string, funding int64) actor.FlowParticipant {
	t.Helper()
	flow, err := c.CreateUser(context.Background(), name, c.Token(), funding)
	require.NoError(t, err, "failed to create user %s", name)
	return flow
}

// createStakedOwner provisions a group user with enough minted tokens
// for both stakes already placed.
func createStakedOwner(t *testing.T, c *Chain, name, groupName string) actor.GroupOwner {
	t.Helper()
	ctx := context.Background()

	owner, err := c.CreateGroupUser(ctx, name, c.Token(), 0, groupName)
	require.NoError(t, err, "failed to create group user %s", name)

	stake := params.Default().GroupPolicy.StakeAmount
	require.NoError(t, c.ForceMint(ctx, c.Token(), owner.Flow.Address, 2*stake))
	require.NoError(t, c.StakeLiquidity(ctx, owner.Flow))
	require.NoError(t, c.StakeToken(ctx, owner.Flow))
	return owner
}

// tokenBalance reads the launch-token balance for an address.
func tokenBalance(t *testing.T, c *Chain, l *ledger.Ledger, address actor.Address) int64 {
	t.Helper()
	balance, err := l.Balance(context.Background(), address, string(c.Token()))
	require.NoError(t, err, "failed to read token balance")
	return balance
}

// nativeBalance reads the native-coin balance for an address.
func nativeBalance(t *testing.T, l *ledger.Ledger, address actor.Address) int64 {
	t.Helper()
	balance, err := l.Balance(context.Background(), address, ledger.NativeAsset)
	require.NoError(t, err, "failed to read native balance")
	return balance
}
