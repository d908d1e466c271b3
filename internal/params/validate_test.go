package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	p := Default()
	errs := Validate(&p)
	assert.Empty(t, errs, "default parameters must validate cleanly")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Protocol)
		wantCode string
	}{
		{
			name:     "zero launch goal",
			mutate:   func(p *Protocol) { p.LaunchGoal = 0 },
			wantCode: ErrAmountNotPositive,
		},
		{
			name:     "negative claim rate",
			mutate:   func(p *Protocol) { p.ClaimRate = -1 },
			wantCode: ErrAmountNotPositive,
		},
		{
			name:     "negative claim delay",
			mutate:   func(p *Protocol) { p.ClaimDelay = -5 },
			wantCode: ErrDelayNegative,
		},
		{
			name:     "negative second half minimum",
			mutate:   func(p *Protocol) { p.SecondHalfMinimum = -1 },
			wantCode: ErrDelayNegative,
		},
		{
			name:     "join below min",
			mutate:   func(p *Protocol) { p.GroupPolicy.JoinAmount = 5 },
			wantCode: ErrJoinRangeInvalid,
		},
		{
			name:     "join above max",
			mutate:   func(p *Protocol) { p.GroupPolicy.JoinAmount = 5_000 },
			wantCode: ErrJoinRangeInvalid,
		},
		{
			name:     "score percent zero",
			mutate:   func(p *Protocol) { p.GroupPolicy.ScorePercent = 0 },
			wantCode: ErrScoreOutOfRange,
		},
		{
			name:     "score percent over 100",
			mutate:   func(p *Protocol) { p.GroupPolicy.ScorePercent = 101 },
			wantCode: ErrScoreOutOfRange,
		},
		{
			name:     "unknown funding mode",
			mutate:   func(p *Protocol) { p.FundingMode = "airdrop" },
			wantCode: ErrFundingModeInvalid,
		},
		{
			name:     "lowercase token symbol",
			mutate:   func(p *Protocol) { p.TokenSymbol = "lnch" },
			wantCode: ErrSymbolInvalid,
		},
		{
			name:     "empty token symbol",
			mutate:   func(p *Protocol) { p.TokenSymbol = "" },
			wantCode: ErrSymbolInvalid,
		},
		{
			name:     "owner funding below stakes",
			mutate:   func(p *Protocol) { p.OwnerFunding = p.GroupPolicy.StakeAmount },
			wantCode: ErrFundingTooSmall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(&p)

			errs := Validate(&p)
			require.NotEmpty(t, errs)

			codes := make([]string, 0, len(errs))
			for _, e := range errs {
				codes = append(codes, e.Code)
			}
			assert.Contains(t, codes, tt.wantCode)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	p := Default()
	p.LaunchGoal = 0
	p.FundingMode = "nope"
	p.TokenSymbol = ""

	errs := Validate(&p)
	assert.GreaterOrEqual(t, len(errs), 3)
}

func TestFundingModeValid(t *testing.T) {
	assert.True(t, FundingTransfer.Valid())
	assert.True(t, FundingMint.Valid())
	assert.False(t, FundingMode("").Valid())
	assert.False(t, FundingMode("airdrop").Valid())
}
