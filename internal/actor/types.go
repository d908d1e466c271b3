package actor

// FlowParticipant is the minimal funded identity used as the parameter
// object for launch and staking operations.
//
// Created once by the protocol facade at actor-creation time. Address is
// immutable for the lifetime of the fixture run; there is no teardown.
type FlowParticipant struct {
	Address      Address `json:"address"`
	TokenAddress Address `json:"token_address"`
}

// GroupPolicy holds the numeric policy parameters of a single group.
// Amounts are token base units.
type GroupPolicy struct {
	StakeAmount   int64 `json:"stake_amount"`
	MinJoinAmount int64 `json:"min_join_amount"`
	MaxJoinAmount int64 `json:"max_join_amount"`
	JoinAmount    int64 `json:"join_amount"`
	ScorePercent  int64 `json:"score_percent"`
}

// GroupOwner composes a FlowParticipant with the policy and identity of
// one group. GroupID is zero until group creation returns; after
// assignment it is never changed.
type GroupOwner struct {
	Flow             FlowParticipant `json:"flow"`
	Policy           GroupPolicy     `json:"policy"`
	GroupDescription string          `json:"group_description"`
	GroupID          int64           `json:"group_id"`
}

// CopyForGroup returns a record for a second group owned by the same
// funded identity: Flow and Policy are copied by value, the description
// is replaced, and GroupID is left unset for the creation call to fill.
//
// This is deliberate copy-construction, not aliasing. The two records
// share Flow.Address but evolve independently afterward.
func (g GroupOwner) CopyForGroup(description string) GroupOwner {
	return GroupOwner{
		Flow:             g.Flow,
		Policy:           g.Policy,
		GroupDescription: description,
	}
}

// Created reports whether group creation has completed for this record.
func (g GroupOwner) Created() bool {
	return g.GroupID != 0
}

// DescribeGroup returns the canonical group description for a group
// name. Group identity on chain is (owner, description), so every
// caller that names a group must derive the description the same way.
func DescribeGroup(groupName string) string {
	return groupName + " group"
}
