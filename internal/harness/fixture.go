package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quayside/chainstage/internal/actor"
	"github.com/quayside/chainstage/internal/params"
)

// Member pool bounds. Indices outside [MinMemberIndex, MaxMemberIndex]
// are precondition violations.
const (
	MinMemberIndex = 1
	MaxMemberIndex = 9
)

// Trace op names, one per facade method. Scenario assertions and
// golden files reference these.
const (
	OpUserCreate         = "chain.user.create"
	OpGroupUserCreate    = "chain.group_user.create"
	OpGroupCreate        = "chain.group.create"
	OpStakeLiquidity     = "chain.stake.liquidity"
	OpStakeToken         = "chain.stake.token"
	OpLaunchContribute   = "chain.launch.contribute"
	OpLaunchClaim        = "chain.launch.claim"
	OpTimeJumpSecondHalf = "chain.time.jump_second_half_minimum"
	OpTimeSkipClaimDelay = "chain.time.skip_claim_delay"
	OpFundTransfer       = "chain.fund.transfer"
	OpFundMint           = "chain.fund.mint"
	OpTokenFirst         = "chain.token.first"
)

// Fixture orchestrates the multi-phase setup of a simulated on-chain
// workflow through a Facade: token launch (two phases), group-owner
// provisioning, and a lazily-memoized member pool.
//
// Execution is strictly sequential and fail-fast: every facade call
// must succeed before the next step runs, and any error aborts the
// setup with no retry. Successful facade calls are recorded in the
// trace in invocation order.
//
// The token source (the launcher identity whose claimed tokens fund
// owners and members) is set exactly once, when phase 1 completes, and
// never reassigned.
type Fixture struct {
	facade Facade
	params params.Protocol
	log    *slog.Logger
	gen    RunIDGenerator
	runID  string

	token       actor.Address // resolved from the facade on first use
	tokenSource actor.Address // set once by RunLaunchPhase1
	phase1Done  bool
	phase2Done  bool

	launcher1 actor.FlowParticipant
	launcher2 actor.FlowParticipant

	owners  map[string]actor.GroupOwner   // first record per owner name
	groups  []actor.GroupOwner            // every group record, creation order
	members map[int]actor.FlowParticipant // lazy pool

	trace []TraceEvent
	seq   int64
}

// Option configures a Fixture.
type Option func(*Fixture)

// WithLogger sets the fixture's logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(f *Fixture) {
		f.log = log
	}
}

// WithRunIDs sets the run identifier generator. Defaults to
// UUIDv7RunIDs. Tests pass testutil.FixedRunIDs for determinism.
func WithRunIDs(gen RunIDGenerator) Option {
	return func(f *Fixture) {
		f.gen = gen
	}
}

// New creates a Fixture over the given facade and protocol parameters.
func New(facade Facade, p params.Protocol, opts ...Option) *Fixture {
	f := &Fixture{
		facade:  facade,
		params:  p,
		log:     slog.Default(),
		gen:     UUIDv7RunIDs{},
		owners:  make(map[string]actor.GroupOwner),
		members: make(map[int]actor.FlowParticipant),
		trace:   []TraceEvent{},
	}
	for _, opt := range opts {
		opt(f)
	}
	f.runID = f.gen.Generate()
	return f
}

// RunID returns this fixture run's identifier.
func (f *Fixture) RunID() string {
	return f.runID
}

// TokenSource returns the funding source address, or "" before
// phase 1 completes.
func (f *Fixture) TokenSource() actor.Address {
	return f.tokenSource
}

// Owner returns the first record created for the named owner.
func (f *Fixture) Owner(name string) (actor.GroupOwner, bool) {
	o, ok := f.owners[name]
	return o, ok
}

// Groups returns every group record in creation order. The returned
// slice is owned by the fixture.
func (f *Fixture) Groups() []actor.GroupOwner {
	return f.groups
}

// Trace returns the recorded facade calls in invocation order. The
// returned slice is owned by the fixture.
func (f *Fixture) Trace() []TraceEvent {
	return f.trace
}

// record appends a trace event for a facade call that succeeded.
func (f *Fixture) record(op, actorName string, args actor.Object) {
	f.seq++
	f.trace = append(f.trace, TraceEvent{
		Seq:   f.seq,
		Op:    op,
		Actor: actorName,
		Args:  args,
	})
	f.log.Debug("facade call", "seq", f.seq, "op", op, "actor", actorName)
}

// tokenAddress resolves the launch token address, asking the facade
// exactly once per fixture.
func (f *Fixture) tokenAddress(ctx context.Context) (actor.Address, error) {
	if f.token != "" {
		return f.token, nil
	}
	token, err := f.facade.FirstTokenAddress(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve token address: %w", err)
	}
	f.record(OpTokenFirst, "", actor.Object{"symbol": actor.String(f.params.TokenSymbol)})
	f.token = token
	return token, nil
}

// RunLaunchPhase1 creates launcher1 funded with the launch goal,
// contributes it to the launch, and advances simulated time by the
// second-half minimum. On completion launcher1's address becomes the
// fixture's token source.
func (f *Fixture) RunLaunchPhase1(ctx context.Context) error {
	if f.phase1Done {
		return &PreconditionError{Op: "launch_phase1", Reason: "phase 1 already completed"}
	}

	token, err := f.tokenAddress(ctx)
	if err != nil {
		return fmt.Errorf("launch phase 1: %w", err)
	}

	launcher1, err := f.facade.CreateUser(ctx, "launcher1", token, f.params.LaunchGoal)
	if err != nil {
		return fmt.Errorf("launch phase 1: create launcher1: %w", err)
	}
	f.record(OpUserCreate, "launcher1", actor.Object{"funding": actor.Int(f.params.LaunchGoal)})

	if err := f.facade.LaunchContribute(ctx, launcher1); err != nil {
		return fmt.Errorf("launch phase 1: contribute: %w", err)
	}
	f.record(OpLaunchContribute, "launcher1", nil)

	if err := f.facade.JumpToSecondHalfMinimum(ctx); err != nil {
		return fmt.Errorf("launch phase 1: advance time: %w", err)
	}
	f.record(OpTimeJumpSecondHalf, "", nil)

	f.launcher1 = launcher1
	f.tokenSource = launcher1.Address
	f.phase1Done = true
	f.log.Debug("launch phase 1 complete", "token_source", f.tokenSource)
	return nil
}

// RunLaunchPhase2 creates launcher2, contributes it, advances time
// past the claim delay, and claims for both launchers. Requires
// phase 1 to have completed; the violation is reported before any
// facade call.
func (f *Fixture) RunLaunchPhase2(ctx context.Context) error {
	if !f.phase1Done {
		return &PreconditionError{Op: "launch_phase2", Reason: "launch phase 1 has not completed"}
	}
	if f.phase2Done {
		return &PreconditionError{Op: "launch_phase2", Reason: "phase 2 already completed"}
	}

	launcher2, err := f.facade.CreateUser(ctx, "launcher2", f.token, f.params.LaunchGoal)
	if err != nil {
		return fmt.Errorf("launch phase 2: create launcher2: %w", err)
	}
	f.record(OpUserCreate, "launcher2", actor.Object{"funding": actor.Int(f.params.LaunchGoal)})

	if err := f.facade.LaunchContribute(ctx, launcher2); err != nil {
		return fmt.Errorf("launch phase 2: contribute: %w", err)
	}
	f.record(OpLaunchContribute, "launcher2", nil)

	if err := f.facade.SkipClaimDelay(ctx); err != nil {
		return fmt.Errorf("launch phase 2: advance time: %w", err)
	}
	f.record(OpTimeSkipClaimDelay, "", nil)

	// launcher2's contribution is exactly ClaimDelay old now; the
	// claim window is inclusive, so both launchers are claimable.
	if err := f.facade.LaunchClaim(ctx, f.launcher1); err != nil {
		return fmt.Errorf("launch phase 2: claim launcher1: %w", err)
	}
	f.record(OpLaunchClaim, "launcher1", nil)

	if err := f.facade.LaunchClaim(ctx, launcher2); err != nil {
		return fmt.Errorf("launch phase 2: claim launcher2: %w", err)
	}
	f.record(OpLaunchClaim, "launcher2", nil)

	f.launcher2 = launcher2
	f.phase2Done = true
	f.log.Debug("launch phase 2 complete")
	return nil
}

// fund moves tokens to dest according to the configured funding mode:
// a transfer from the token source, or a forced mint.
func (f *Fixture) fund(ctx context.Context, actorName string, dest actor.Address, amount int64) error {
	switch f.params.FundingMode {
	case params.FundingMint:
		if err := f.facade.ForceMint(ctx, f.token, dest, amount); err != nil {
			return fmt.Errorf("mint funding: %w", err)
		}
		f.record(OpFundMint, actorName, actor.Object{"amount": actor.Int(amount)})
		return nil
	case params.FundingTransfer:
		if err := f.facade.TransferFrom(ctx, f.tokenSource, f.token, dest, amount); err != nil {
			return fmt.Errorf("transfer funding: %w", err)
		}
		f.record(OpFundTransfer, actorName, actor.Object{"amount": actor.Int(amount)})
		return nil
	default:
		return &PreconditionError{Op: "fund", Reason: fmt.Sprintf("unknown funding mode %q", f.params.FundingMode)}
	}
}

// needsTokenSource reports whether provisioning requires a funded
// token source before any facade call is made.
func (f *Fixture) needsTokenSource() bool {
	return f.params.FundingMode == params.FundingTransfer
}

// CreateNewGroupOwner provisions a fresh group owner end to end:
// creates the actor, funds it with the owner grant, stakes liquidity
// then token, creates the group, and returns the completed record with
// its group ID assigned.
func (f *Fixture) CreateNewGroupOwner(ctx context.Context, name, groupName string) (actor.GroupOwner, error) {
	if name == "" || groupName == "" {
		return actor.GroupOwner{}, &PreconditionError{Op: "new_owner", Reason: "name and group name are required"}
	}
	if f.needsTokenSource() && f.tokenSource == "" {
		return actor.GroupOwner{}, &PreconditionError{Op: "new_owner", Reason: "no token source: launch phase 1 has not completed"}
	}

	token, err := f.tokenAddress(ctx)
	if err != nil {
		return actor.GroupOwner{}, fmt.Errorf("new owner %s: %w", name, err)
	}

	owner, err := f.facade.CreateGroupUser(ctx, name, token, f.params.MemberFunding(), groupName)
	if err != nil {
		return actor.GroupOwner{}, fmt.Errorf("new owner %s: create: %w", name, err)
	}
	f.record(OpGroupUserCreate, name, actor.Object{
		"funding": actor.Int(f.params.MemberFunding()),
		"group":   actor.String(groupName),
	})

	if err := f.fund(ctx, name, owner.Flow.Address, f.params.OwnerFunding); err != nil {
		return actor.GroupOwner{}, fmt.Errorf("new owner %s: %w", name, err)
	}

	if err := f.facade.StakeLiquidity(ctx, owner.Flow); err != nil {
		return actor.GroupOwner{}, fmt.Errorf("new owner %s: stake liquidity: %w", name, err)
	}
	f.record(OpStakeLiquidity, name, nil)

	if err := f.facade.StakeToken(ctx, owner.Flow); err != nil {
		return actor.GroupOwner{}, fmt.Errorf("new owner %s: stake token: %w", name, err)
	}
	f.record(OpStakeToken, name, nil)

	groupID, err := f.facade.CreateGroupForExistingUser(ctx, owner, groupName)
	if err != nil {
		return actor.GroupOwner{}, fmt.Errorf("new owner %s: create group: %w", name, err)
	}
	f.record(OpGroupCreate, name, actor.Object{"group": actor.String(groupName)})

	owner.GroupID = groupID
	if _, ok := f.owners[name]; !ok {
		f.owners[name] = owner
	}
	f.groups = append(f.groups, owner)
	f.log.Debug("group owner provisioned", "name", name, "group_id", groupID)
	return owner, nil
}

// CreateAdditionalGroupOwner forms a second group for an already
// provisioned owner. The returned record copies the source's flow
// identity and policy, carries the new group's description, and gets
// its own group ID. No new actor is created and no further staking
// happens; the existing stakes qualify the identity for more groups.
func (f *Fixture) CreateAdditionalGroupOwner(ctx context.Context, groupName string, existing actor.GroupOwner) (actor.GroupOwner, error) {
	if groupName == "" {
		return actor.GroupOwner{}, &PreconditionError{Op: "additional_owner", Reason: "group name is required"}
	}
	if !existing.Created() {
		return actor.GroupOwner{}, &PreconditionError{Op: "additional_owner", Reason: "source record has no created group"}
	}

	second := existing.CopyForGroup(actor.DescribeGroup(groupName))

	groupID, err := f.facade.CreateGroupForExistingUser(ctx, second, groupName)
	if err != nil {
		return actor.GroupOwner{}, fmt.Errorf("additional group %s: %w", groupName, err)
	}
	f.record(OpGroupCreate, f.ownerNameFor(existing.Flow.Address), actor.Object{"group": actor.String(groupName)})

	second.GroupID = groupID
	f.groups = append(f.groups, second)
	f.log.Debug("additional group provisioned", "group_id", groupID, "description", second.GroupDescription)
	return second, nil
}

// ownerNameFor maps a flow address back to the owner's logical name
// for trace readability. Unknown addresses trace as "".
func (f *Fixture) ownerNameFor(address actor.Address) string {
	for name, o := range f.owners {
		if o.Flow.Address == address {
			return name
		}
	}
	return ""
}

// memberName returns the deterministic participant name for an index.
func memberName(index int) string {
	return fmt.Sprintf("member%d", index)
}

// Member returns the pool participant for index, creating and funding
// it on first access and returning the cached record afterwards. The
// index must be in [MinMemberIndex, MaxMemberIndex]; violations are
// reported before any facade call.
func (f *Fixture) Member(ctx context.Context, index int) (actor.FlowParticipant, error) {
	if index < MinMemberIndex || index > MaxMemberIndex {
		return actor.FlowParticipant{}, &PreconditionError{
			Op:     "member",
			Reason: fmt.Sprintf("index %d out of range [%d, %d]", index, MinMemberIndex, MaxMemberIndex),
		}
	}
	if cached, ok := f.members[index]; ok {
		return cached, nil
	}
	if f.needsTokenSource() && f.tokenSource == "" {
		return actor.FlowParticipant{}, &PreconditionError{Op: "member", Reason: "no token source: launch phase 1 has not completed"}
	}

	token, err := f.tokenAddress(ctx)
	if err != nil {
		return actor.FlowParticipant{}, fmt.Errorf("member %d: %w", index, err)
	}

	name := memberName(index)
	flow, err := f.facade.CreateUser(ctx, name, token, f.params.MemberFunding())
	if err != nil {
		return actor.FlowParticipant{}, fmt.Errorf("member %d: create: %w", index, err)
	}
	f.record(OpUserCreate, name, actor.Object{"funding": actor.Int(f.params.MemberFunding())})

	if err := f.fund(ctx, name, flow.Address, f.params.MemberFunding()); err != nil {
		return actor.FlowParticipant{}, fmt.Errorf("member %d: %w", index, err)
	}

	// Cache only after every step succeeded; a failed creation must
	// not leave a half-funded record behind.
	f.members[index] = flow
	return flow, nil
}

// Setup runs the standard full fixture: both launch phases, owners
// alice, bob, and carol with one group each, and an additional group
// for bob sharing his flow identity. Members are left to lazy access.
func (f *Fixture) Setup(ctx context.Context) error {
	if err := f.RunLaunchPhase1(ctx); err != nil {
		return err
	}
	if err := f.RunLaunchPhase2(ctx); err != nil {
		return err
	}
	if _, err := f.CreateNewGroupOwner(ctx, "alice", "alpha"); err != nil {
		return err
	}
	bob, err := f.CreateNewGroupOwner(ctx, "bob", "beta")
	if err != nil {
		return err
	}
	if _, err := f.CreateNewGroupOwner(ctx, "carol", "gamma"); err != nil {
		return err
	}
	if _, err := f.CreateAdditionalGroupOwner(ctx, "delta", bob); err != nil {
		return err
	}
	f.log.Debug("standard setup complete", "groups", len(f.groups))
	return nil
}
