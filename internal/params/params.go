// Package params defines the protocol parameters that drive a chainstage
// run and compiles them from CUE files.
//
// Parameters are plain integers in token base units or simulated seconds.
// Floats are forbidden throughout; rates are integer multipliers.
package params

import (
	"github.com/quayside/chainstage/internal/actor"
)

// FundingMode selects how group owners and members receive their token
// grant: transferred from the launch token source, or force-minted.
// Both are legitimate; scenarios pick one explicitly rather than the
// harness choosing silently.
type FundingMode string

const (
	// FundingTransfer pulls the grant from the token source address
	// established by launch phase 1.
	FundingTransfer FundingMode = "transfer"
	// FundingMint creates the grant out of thin air, bypassing the
	// token source entirely.
	FundingMint FundingMode = "mint"
)

// Valid reports whether m is a recognized funding mode.
func (m FundingMode) Valid() bool {
	return m == FundingTransfer || m == FundingMint
}

// Protocol holds every tunable of the simulated protocol.
type Protocol struct {
	// LaunchGoal is the per-launcher contribution target in native
	// base units. Member funding derives from it (see MemberFunding).
	LaunchGoal int64 `json:"launch_goal"`

	// ClaimRate is the integer number of launch tokens credited per
	// native unit contributed.
	ClaimRate int64 `json:"claim_rate"`

	// ClaimDelay is the simulated seconds that must elapse between a
	// contribution and its claim.
	ClaimDelay int64 `json:"claim_delay"`

	// SecondHalfMinimum is the simulated seconds jumped after phase 1
	// to reach the second half of the launch window.
	SecondHalfMinimum int64 `json:"second_half_minimum"`

	// OwnerFunding is the token grant given to each group owner.
	OwnerFunding int64 `json:"owner_funding"`

	// TokenSymbol names the launch token.
	TokenSymbol string `json:"token_symbol"`

	// FundingMode selects the owner/member funding strategy.
	FundingMode FundingMode `json:"funding_mode"`

	// GroupPolicy is the default policy applied to every new group.
	GroupPolicy actor.GroupPolicy `json:"group_policy"`
}

// MemberFunding is the grant given to each pool member: one tenth of
// the launch goal.
func (p Protocol) MemberFunding() int64 {
	return p.LaunchGoal / 10
}

// Default returns the built-in parameter set. CUE files override
// individual fields; anything they omit keeps these values.
func Default() Protocol {
	return Protocol{
		LaunchGoal:        100_000,
		ClaimRate:         10,
		ClaimDelay:        3_600,
		SecondHalfMinimum: 1_800,
		OwnerFunding:      200_000,
		TokenSymbol:       "LNCH",
		FundingMode:       FundingTransfer,
		GroupPolicy: actor.GroupPolicy{
			StakeAmount:   5_000,
			MinJoinAmount: 10,
			MaxJoinAmount: 1_000,
			JoinAmount:    100,
			ScorePercent:  20,
		},
	}
}
