package harness

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/quayside/chainstage/internal/actor"
)

// Facade is the protocol surface the fixture depends on. The fixture
// never talks to a ledger directly; everything goes through these
// calls, which keeps the orchestration logic independent of how the
// protocol is simulated (or, eventually, deployed).
//
// All methods block until the operation is applied. Errors propagate
// unchanged to the caller; the fixture performs no retries.
//
// Implemented by chain.Chain (production simulation) and
// testutil.FakeFacade (scripted, for white-box fixture tests).
type Facade interface {
	// CreateUser registers a named actor and funds it with the given
	// amount of native coin.
	CreateUser(ctx context.Context, name string, token actor.Address, funding int64) (actor.FlowParticipant, error)

	// CreateGroupUser registers a named actor like CreateUser and
	// returns a group-owner record carrying the protocol's group
	// policy and the canonical description for groupName. The group
	// itself is not created yet.
	CreateGroupUser(ctx context.Context, name string, token actor.Address, funding int64, groupName string) (actor.GroupOwner, error)

	// CreateGroupForExistingUser creates a group owned by the record's
	// flow identity and returns its assigned group ID. Requires both
	// stakes to be in place.
	CreateGroupForExistingUser(ctx context.Context, owner actor.GroupOwner, groupName string) (int64, error)

	// StakeLiquidity locks the protocol stake amount of the flow's
	// token as the liquidity stake.
	StakeLiquidity(ctx context.Context, flow actor.FlowParticipant) error

	// StakeToken locks the protocol stake amount as the token stake.
	// Requires an existing liquidity stake.
	StakeToken(ctx context.Context, flow actor.FlowParticipant) error

	// LaunchContribute pays the launch goal from the flow's native
	// balance into the token launch.
	LaunchContribute(ctx context.Context, flow actor.FlowParticipant) error

	// LaunchClaim converts a matured contribution into launch tokens.
	// Claimable once the claim delay has elapsed; at most once.
	LaunchClaim(ctx context.Context, flow actor.FlowParticipant) error

	// JumpToSecondHalfMinimum advances simulated time by the
	// protocol's second-half minimum interval.
	JumpToSecondHalfMinimum(ctx context.Context) error

	// SkipClaimDelay advances simulated time by the claim delay.
	SkipClaimDelay(ctx context.Context) error

	// TransferFrom moves token balance source -> destination.
	TransferFrom(ctx context.Context, source, token, destination actor.Address, amount int64) error

	// ForceMint credits token balance to destination out of thin air.
	ForceMint(ctx context.Context, token, destination actor.Address, amount int64) error

	// FirstTokenAddress returns the launch token's address.
	FirstTokenAddress(ctx context.Context) (actor.Address, error)
}

// StateQuerier runs read-only SQL for final_state assertions.
// *ledger.Ledger satisfies it. Scenario runs without a ledger (fake
// facade) pass nil and final_state assertions report unavailable.
type StateQuerier interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// RunIDGenerator mints run identifiers for fixture executions.
// Implemented by UUIDv7RunIDs (production) and testutil.FixedRunIDs
// (deterministic, for golden comparison).
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7RunIDs generates time-sortable UUIDv7 run identifiers.
//
// Stateless and safe for concurrent use, though the fixture itself is
// strictly sequential.
type UUIDv7RunIDs struct{}

// Generate returns a new hyphenated UUIDv7 string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7RunIDs) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
