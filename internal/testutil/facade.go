package testutil

import (
	"context"
	"sync"

	"github.com/quayside/chainstage/internal/actor"
	"github.com/quayside/chainstage/internal/harness"
	"github.com/quayside/chainstage/internal/params"
)

// Call records one facade invocation: the method name, the logical
// actor it concerned (when resolvable), and the salient arguments in
// declaration order.
type Call struct {
	Method string
	Actor  string
	Args   []any
}

// FakeFacade is a scripted harness.Facade. It fabricates records
// deterministically from actor names, counts every call, and can be
// told to fail specific methods. No ledger or rule checking is
// involved; tests that need real protocol semantics use chain.Chain.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex, though fixtures drive the facade strictly sequentially.
type FakeFacade struct {
	mu          sync.Mutex
	token       actor.Address
	policy      actor.GroupPolicy
	calls       []Call
	counts      map[string]int
	failOn      map[string]error
	names       map[actor.Address]string
	nextGroupID int64
}

var _ harness.Facade = (*FakeFacade)(nil)

// NewFakeFacade creates a fake over the default token symbol and group
// policy.
func NewFakeFacade() *FakeFacade {
	p := params.Default()
	return &FakeFacade{
		token:  actor.DeriveTokenAddress(p.TokenSymbol),
		policy: p.GroupPolicy,
		counts: make(map[string]int),
		failOn: make(map[string]error),
		names:  make(map[actor.Address]string),
	}
}

// FailOn makes the named method return err on every subsequent call.
// The failing call is still recorded.
func (f *FakeFacade) FailOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOn[method] = err
}

// Calls returns a copy of the recorded calls in invocation order.
func (f *FakeFacade) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many times the named method was invoked.
func (f *FakeFacade) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[method]
}

// TotalCalls returns the number of facade invocations of any method.
func (f *FakeFacade) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// record logs a call and returns the scripted failure, if any.
func (f *FakeFacade) record(method, actorName string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Actor: actorName, Args: args})
	f.counts[method]++
	return f.failOn[method]
}

// nameFor resolves an address back to the actor name that created it.
func (f *FakeFacade) nameFor(address actor.Address) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.names[address]
}

// CreateUser fabricates a flow record with the name's derived address.
func (f *FakeFacade) CreateUser(ctx context.Context, name string, token actor.Address, funding int64) (actor.FlowParticipant, error) {
	if err := f.record("CreateUser", name, token, funding); err != nil {
		return actor.FlowParticipant{}, err
	}
	address := actor.DeriveAddress(name)
	f.mu.Lock()
	f.names[address] = name
	f.mu.Unlock()
	return actor.FlowParticipant{Address: address, TokenAddress: token}, nil
}

// CreateGroupUser fabricates a group-owner record carrying the fake's
// policy and the canonical description for groupName.
func (f *FakeFacade) CreateGroupUser(ctx context.Context, name string, token actor.Address, funding int64, groupName string) (actor.GroupOwner, error) {
	if err := f.record("CreateGroupUser", name, token, funding, groupName); err != nil {
		return actor.GroupOwner{}, err
	}
	address := actor.DeriveAddress(name)
	f.mu.Lock()
	f.names[address] = name
	f.mu.Unlock()
	return actor.GroupOwner{
		Flow:             actor.FlowParticipant{Address: address, TokenAddress: token},
		Policy:           f.policy,
		GroupDescription: actor.DescribeGroup(groupName),
	}, nil
}

// CreateGroupForExistingUser assigns sequential group IDs starting at 1.
func (f *FakeFacade) CreateGroupForExistingUser(ctx context.Context, owner actor.GroupOwner, groupName string) (int64, error) {
	if err := f.record("CreateGroupForExistingUser", f.nameFor(owner.Flow.Address), groupName); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextGroupID++
	return f.nextGroupID, nil
}

func (f *FakeFacade) StakeLiquidity(ctx context.Context, flow actor.FlowParticipant) error {
	return f.record("StakeLiquidity", f.nameFor(flow.Address))
}

func (f *FakeFacade) StakeToken(ctx context.Context, flow actor.FlowParticipant) error {
	return f.record("StakeToken", f.nameFor(flow.Address))
}

func (f *FakeFacade) LaunchContribute(ctx context.Context, flow actor.FlowParticipant) error {
	return f.record("LaunchContribute", f.nameFor(flow.Address))
}

func (f *FakeFacade) LaunchClaim(ctx context.Context, flow actor.FlowParticipant) error {
	return f.record("LaunchClaim", f.nameFor(flow.Address))
}

func (f *FakeFacade) JumpToSecondHalfMinimum(ctx context.Context) error {
	return f.record("JumpToSecondHalfMinimum", "")
}

func (f *FakeFacade) SkipClaimDelay(ctx context.Context) error {
	return f.record("SkipClaimDelay", "")
}

func (f *FakeFacade) TransferFrom(ctx context.Context, source, token, destination actor.Address, amount int64) error {
	return f.record("TransferFrom", f.nameFor(source), token, destination, amount)
}

func (f *FakeFacade) ForceMint(ctx context.Context, token, destination actor.Address, amount int64) error {
	return f.record("ForceMint", f.nameFor(destination), token, amount)
}

// FirstTokenAddress returns the fake's fixed token address.
func (f *FakeFacade) FirstTokenAddress(ctx context.Context) (actor.Address, error) {
	if err := f.record("FirstTokenAddress", ""); err != nil {
		return "", err
	}
	return f.token, nil
}
