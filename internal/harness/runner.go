package harness

import (
	"context"
	"fmt"

	"github.com/quayside/chainstage/internal/params"
)

// RunScenario executes a scenario's setup steps against the facade and
// evaluates its assertions. A step failure stops the run at the failing
// step and skips the assertions, since a partially built fixture would
// fail them with noise instead of signal. The returned Result is never
// nil unless the error is non-nil.
//
// state may be nil when no ledger is available; final_state assertions
// then fail with an explanatory message.
func RunScenario(ctx context.Context, scenario *Scenario, p params.Protocol, facade Facade, state StateQuerier, opts ...Option) (*Result, error) {
	if scenario == nil {
		return nil, fmt.Errorf("scenario is nil")
	}
	if facade == nil {
		return nil, fmt.Errorf("facade is nil")
	}

	// A scenario-level funding mode wins over the configured one. The
	// protocol struct is a value copy, so the caller's is untouched.
	if scenario.FundingMode != "" {
		p.FundingMode = scenario.FundingMode
	}

	fixture := New(facade, p, opts...)
	result := NewResult(fixture.RunID())

	for i, step := range scenario.Setup {
		if err := runStep(ctx, fixture, step); err != nil {
			result.AddError(fmt.Sprintf("setup[%d] %s: %v", i, step.Step, err))
			result.Trace = fixture.Trace()
			return result, nil
		}
	}

	result.Trace = fixture.Trace()

	for _, msg := range EvaluateAssertions(ctx, scenario.Assertions, result.Trace, state) {
		result.AddError(msg)
	}

	return result, nil
}

// runStep dispatches one setup step to the fixture.
func runStep(ctx context.Context, fixture *Fixture, step SetupStep) error {
	switch step.Step {
	case StepLaunchPhase1:
		return fixture.RunLaunchPhase1(ctx)
	case StepLaunchPhase2:
		return fixture.RunLaunchPhase2(ctx)
	case StepNewOwner:
		_, err := fixture.CreateNewGroupOwner(ctx, step.Name, step.Group)
		return err
	case StepAdditionalOwner:
		owner, ok := fixture.Owner(step.Owner)
		if !ok {
			return fmt.Errorf("unknown owner %q", step.Owner)
		}
		_, err := fixture.CreateAdditionalGroupOwner(ctx, step.Group, owner)
		return err
	case StepMember:
		_, err := fixture.Member(ctx, step.Index)
		return err
	default:
		// Unreachable for loaded scenarios; validateStep rejects these.
		return fmt.Errorf("unknown step kind %q", step.Step)
	}
}
