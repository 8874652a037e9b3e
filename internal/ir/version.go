package ir

// Version constants for generated code and the generator.
const (
	// DialectVersion identifies the shape of generated instrumentation.
	// Bump when the recorded containers or exported arrays change.
	DialectVersion = "2"

	// GeneratorVersion is the streamtrace generator version.
	GeneratorVersion = "0.1.0"
)
