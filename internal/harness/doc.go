// Package harness runs correlation scenarios against the reference
// reconstruction and the store.
//
// A scenario describes what the injected observers of one keyed
// deduplication call recorded, either as explicit events or as a list of
// elements to push through a simulated deduplication, and what the
// reconstructed transitions must be. Scenarios may also carry the pipeline
// the call belongs to; its generated code units are persisted and rendered
// alongside the transitions.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	pipeline: people          # label of the stored run (defaults to name)
//	call_number: 2            # call the transitions belong to (default 1)
//	dialect: scan             # scan or wrapper
//	elements:                 # simulated input, stamped by a logical clock
//	  - { value: a, key: x }
//	before:                   # or explicit events
//	  - { time: 1, value: a, key: x }
//	after:
//	  - { time: 2, value: a }
//	calls:                    # optional pipeline to generate
//	  - name: distinct
//	    before: java.util.stream.Stream<Person>
//	    after: java.util.stream.Stream<Person>
//	    args: [{ type: "java.util.function.Function<Person, String>", text: "Person::getName" }]
//	expect:
//	  transitions:
//	    - { before: 1, after: 2 }
//	  inconsistency: NO_MATCH # instead of transitions
//
// # Determinism
//
// Every run uses a fresh logical clock and, unless configured otherwise, a
// fixed run ID, so results can be compared against golden files:
//
//	result, err := harness.Run(scenario)
//	harness.AssertGolden(t, scenario.Name, result)
//
// To regenerate golden files:
//
//	go test ./internal/harness -update
package harness
