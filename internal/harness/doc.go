// Package harness orchestrates multi-actor fixtures against a chain
// facade and checks the results.
//
// The central type is Fixture: it drives the two launch phases, creates
// group owners and lazily memoized pool members through the Facade
// interface, and records every chain call as a trace event. Scenarios
// written in YAML script a fixture declaratively and assert on the
// trace and the final ledger state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario exercises"
//	funding_mode: transfer
//	setup:
//	  - step: launch_phase1
//	  - step: launch_phase2
//	  - step: new_owner
//	    name: alice
//	    group: alpha
//	  - step: additional_owner
//	    owner: alice
//	    group: beta
//	  - step: member
//	    index: 3
//	assertions:
//	  - type: trace_contains
//	    op: chain.group.create
//	    actor: alice
//	  - type: trace_order
//	    ops: [chain.launch.contribute, chain.launch.claim]
//	  - type: trace_count
//	    op: chain.user.create
//	    count: 3
//	  - type: final_state
//	    table: groups
//	    where: { owner_name: alice }
//	    count: 2
//
// # Assertion Types
//
//   - trace_contains: an event with the op (and actor/args subset) occurred
//   - trace_order: first occurrences of the ops appear in the given order
//   - trace_count: events matching the op occur exactly count times
//   - final_state: queries a ledger table; verifies the matching row
//     count, or column values of the single matching row
//
// In final_state clauses a key ending in "_name" compares the base
// column against the address derived from the given actor name, so
// scenarios can say "owner_name: alice" instead of spelling addresses.
//
// # Deterministic Testing
//
// Trace events carry logical actor names and a per-fixture sequence
// number rather than wall-clock times or addresses, so identical
// scenarios produce byte-identical canonical traces. Golden files under
// testdata/golden pin those traces; run IDs are fresh per run and are
// excluded from snapshots.
//
// # Usage
//
// Load and run a scenario against a chain:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/full_setup.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.RunScenario(ctx, scenario, p, chain, ledger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
