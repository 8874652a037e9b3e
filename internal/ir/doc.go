// Package ir provides the shared value types of streamtrace.
//
// This package contains the pipeline call model, canonical element types and
// the generation error type. All other internal packages import ir; ir imports
// nothing internal. This keeps ir the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - PipelineCall is immutable; transformations return a new value
//   - CanonicalType is a closed set; CLASS is the only tag carrying data
//   - Canonical JSON (RFC 8785) is the only serialization used for fingerprints
package ir
