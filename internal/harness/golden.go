package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/quayside/chainstage/internal/actor"
	"github.com/quayside/chainstage/internal/params"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic
// comparison. The run ID is deliberately omitted: it is fresh per run
// and would make every golden file churn.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for
// canonical JSON serialization.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"seq": event.Seq,
			"op":  event.Op,
		}
		if event.Actor != "" {
			eventMap["actor"] = event.Actor
		}
		if len(event.Args) > 0 {
			eventMap["args"] = event.Args
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
	}
}

// RunWithGolden executes a scenario and compares the trace against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files serve as the source of truth for expected trace
// behavior; assertion failures inside the run additionally fail the
// test with the collected messages.
func RunWithGolden(t *testing.T, scenario *Scenario, p params.Protocol, facade Facade, state StateQuerier, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := RunScenario(context.Background(), scenario, p, facade, state, opts...)
	if err != nil {
		return nil, err
	}

	if !result.Pass {
		for _, msg := range result.Errors {
			t.Errorf("scenario %s: %s", scenario.Name, msg)
		}
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}

	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
	}

	traceJSON, err := actor.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
