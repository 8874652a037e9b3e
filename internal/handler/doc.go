// Package handler builds the instrumentation for individual pipeline calls.
//
// Every call in a traced pipeline gets exactly one Handler, tied to a call
// number that is unique within the pipeline. A handler contributes:
//
//   - extra calls spliced immediately before and after the original call
//   - a rewritten copy of the call (only key-based handlers change it)
//   - variable declarations hoisted into the enclosing scope
//   - a finalization block run once after the pipeline completes
//   - a result expression exposing the call's exported trace
//
// All generated identifiers embed the call number (see emit.Name), so units
// produced for different calls never collide.
//
// Handlers are pure: generating the same call with the same call number and
// emitter always yields identical code.
package handler
