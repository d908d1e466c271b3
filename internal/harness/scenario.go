package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/quayside/chainstage/internal/params"
)

// Scenario is a declarative fixture script: a named sequence of setup
// steps followed by assertions over the recorded trace and the final
// ledger state. Scenarios are loaded from YAML with strict field
// checking so a typo in a step or assertion key fails at load time.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description,omitempty"`

	// FundingMode optionally overrides the protocol funding mode for
	// this run ("transfer" or "mint"). Empty keeps the configured one.
	FundingMode params.FundingMode `yaml:"funding_mode,omitempty"`

	// Setup contains the orchestration steps to execute in order.
	Setup []SetupStep `yaml:"setup"`

	// Assertions validate the trace and final state after setup.
	// Supported types: trace_contains, trace_order, trace_count, final_state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step kinds accepted in a scenario's setup list.
const (
	StepLaunchPhase1    = "launch_phase1"
	StepLaunchPhase2    = "launch_phase2"
	StepNewOwner        = "new_owner"
	StepAdditionalOwner = "additional_owner"
	StepMember          = "member"
)

// SetupStep is one orchestration action. The step kind decides which
// of the remaining fields are required:
//
//	launch_phase1    (no arguments)
//	launch_phase2    (no arguments)
//	new_owner        name, group
//	additional_owner owner, group
//	member           index
type SetupStep struct {
	Step  string `yaml:"step"`
	Name  string `yaml:"name,omitempty"`
	Owner string `yaml:"owner,omitempty"`
	Group string `yaml:"group,omitempty"`
	Index int    `yaml:"index,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// Assertion validates the trace or the final ledger state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": an event with this op (and args subset) occurred
	// - "trace_order": first occurrences of ops appear in the given order
	// - "trace_count": the op occurred exactly count times
	// - "final_state": query a ledger table and verify rows
	Type string `yaml:"type"`

	// Op is the trace op name (trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Actor optionally restricts trace matches to one logical actor.
	Actor string `yaml:"actor,omitempty"`

	// Args are expected event arguments (trace_contains).
	// Subset match: only the listed keys are compared.
	Args map[string]interface{} `yaml:"args,omitempty"`

	// Ops is the expected op order (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Count is the expected event count for trace_count, or the
	// expected row count for final_state when expect is absent.
	Count *int `yaml:"count,omitempty"`

	// Table is the ledger table name (final_state).
	Table string `yaml:"table,omitempty"`

	// Where filters rows by exact column match (final_state). A key
	// ending in "_name" compares the base column against the address
	// derived from the given actor name.
	Where map[string]interface{} `yaml:"where,omitempty"`

	// Expect contains expected column values for the single matching
	// row (final_state). Subset match.
	Expect map[string]interface{} `yaml:"expect,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Returns an error
// if the file doesn't exist, is malformed, contains unknown fields
// (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", filepath.Base(path), err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in a directory, sorted by
// filename so run order is stable across platforms.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenario files: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		scenario, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scenario)
	}

	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.FundingMode != "" && !s.FundingMode.Valid() {
		return fmt.Errorf("unknown funding_mode %q", s.FundingMode)
	}

	if len(s.Setup) == 0 {
		return fmt.Errorf("setup list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single setup step based on its kind.
func validateStep(index int, step SetupStep) error {
	switch step.Step {
	case StepLaunchPhase1, StepLaunchPhase2:
		return nil
	case StepNewOwner:
		if step.Name == "" {
			return fmt.Errorf("setup[%d]: name is required for %s", index, step.Step)
		}
		if step.Group == "" {
			return fmt.Errorf("setup[%d]: group is required for %s", index, step.Step)
		}
		return nil
	case StepAdditionalOwner:
		if step.Owner == "" {
			return fmt.Errorf("setup[%d]: owner is required for %s", index, step.Step)
		}
		if step.Group == "" {
			return fmt.Errorf("setup[%d]: group is required for %s", index, step.Step)
		}
		return nil
	case StepMember:
		// Range is enforced at run time so out-of-range indexes still
		// exercise the precondition path.
		if step.Index == 0 {
			return fmt.Errorf("setup[%d]: index is required for %s", index, step.Step)
		}
		return nil
	case "":
		return fmt.Errorf("setup[%d]: step kind is required", index)
	default:
		return fmt.Errorf("setup[%d]: unknown step kind %q", index, step.Step)
	}
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) < 2 {
			return fmt.Errorf("assertions[%d]: at least two ops are required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for trace_count", index)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		hasExpect := len(a.Expect) > 0
		hasCount := a.Count != nil
		if hasExpect == hasCount {
			return fmt.Errorf("assertions[%d]: exactly one of expect or count is required for final_state", index)
		}
		if hasCount && *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
