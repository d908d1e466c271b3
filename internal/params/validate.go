package params

import (
	"fmt"
	"regexp"
)

// Validation error codes (P100-P199)
const (
	ErrAmountNotPositive  = "P101" // amount must be positive
	ErrDelayNegative      = "P102" // delay/interval must be non-negative
	ErrJoinRangeInvalid   = "P103" // min <= join <= max violated
	ErrScoreOutOfRange    = "P104" // score percent outside [1,100]
	ErrFundingModeInvalid = "P105" // unknown funding mode
	ErrSymbolInvalid      = "P106" // malformed token symbol
	ErrFundingTooSmall    = "P107" // owner funding cannot cover stakes
)

// ValidationError represents a parameter validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// symbolPattern matches token symbols: 2-12 uppercase alphanumerics
// starting with a letter.
var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,11}$`)

// Validate checks a compiled Protocol against semantic rules.
// Returns all errors found (does not fail fast).
func Validate(p *Protocol) []ValidationError {
	var errs []ValidationError

	positives := []struct {
		field string
		value int64
	}{
		{"launch_goal", p.LaunchGoal},
		{"claim_rate", p.ClaimRate},
		{"owner_funding", p.OwnerFunding},
		{"group_policy.stake_amount", p.GroupPolicy.StakeAmount},
		{"group_policy.min_join_amount", p.GroupPolicy.MinJoinAmount},
		{"group_policy.max_join_amount", p.GroupPolicy.MaxJoinAmount},
		{"group_policy.join_amount", p.GroupPolicy.JoinAmount},
	}
	for _, f := range positives {
		if f.value <= 0 {
			errs = append(errs, ValidationError{
				Field:   f.field,
				Message: fmt.Sprintf("must be positive, got %d", f.value),
				Code:    ErrAmountNotPositive,
			})
		}
	}

	if p.ClaimDelay < 0 {
		errs = append(errs, ValidationError{
			Field:   "claim_delay",
			Message: fmt.Sprintf("must be non-negative, got %d", p.ClaimDelay),
			Code:    ErrDelayNegative,
		})
	}
	if p.SecondHalfMinimum < 0 {
		errs = append(errs, ValidationError{
			Field:   "second_half_minimum",
			Message: fmt.Sprintf("must be non-negative, got %d", p.SecondHalfMinimum),
			Code:    ErrDelayNegative,
		})
	}

	gp := p.GroupPolicy
	if gp.MinJoinAmount > gp.JoinAmount || gp.JoinAmount > gp.MaxJoinAmount {
		errs = append(errs, ValidationError{
			Field: "group_policy",
			Message: fmt.Sprintf("join amounts must satisfy min <= join <= max, got %d <= %d <= %d",
				gp.MinJoinAmount, gp.JoinAmount, gp.MaxJoinAmount),
			Code: ErrJoinRangeInvalid,
		})
	}

	if gp.ScorePercent < 1 || gp.ScorePercent > 100 {
		errs = append(errs, ValidationError{
			Field:   "group_policy.score_percent",
			Message: fmt.Sprintf("must be in [1,100], got %d", gp.ScorePercent),
			Code:    ErrScoreOutOfRange,
		})
	}

	if !p.FundingMode.Valid() {
		errs = append(errs, ValidationError{
			Field:   "funding_mode",
			Message: fmt.Sprintf("must be %q or %q, got %q", FundingTransfer, FundingMint, p.FundingMode),
			Code:    ErrFundingModeInvalid,
		})
	}

	if !symbolPattern.MatchString(p.TokenSymbol) {
		errs = append(errs, ValidationError{
			Field:   "token_symbol",
			Message: fmt.Sprintf("must match %s, got %q", symbolPattern, p.TokenSymbol),
			Code:    ErrSymbolInvalid,
		})
	}

	// A group owner stakes twice (liquidity then token) from a single
	// funding grant.
	if gp.StakeAmount > 0 && p.OwnerFunding < 2*gp.StakeAmount {
		errs = append(errs, ValidationError{
			Field: "owner_funding",
			Message: fmt.Sprintf("must cover both stakes (2 x %d), got %d",
				gp.StakeAmount, p.OwnerFunding),
			Code: ErrFundingTooSmall,
		})
	}

	return errs
}
