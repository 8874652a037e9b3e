// Package emit is the code-emission abstraction used by trace handlers.
//
// Handlers never concatenate target-language text directly. They build a
// tree of sealed Expression and Statement nodes (variables, lambdas,
// container operations, loops, branches) and hand it to a Renderer:
//
//	[handler] → [emit nodes] → [StructuredRenderer]  (preferred)
//	                         → [TemplateRenderer]    (legacy)
//
// Both renderers produce code with identical runtime semantics; they differ
// only in layout. The generated code targets the JVM stream runtime.
//
// SEALED INTERFACES:
//
// Expression and Statement use the marker method pattern, so renderers can
// switch exhaustively over node types:
//
//	switch n := stmt.(type) {
//	case Declare:
//	case ForEach:
//	...
//	}
//
// NAMING:
//
// Every identifier a handler introduces is built with Name(base, callNumber,
// suffix). Call numbers are unique per pipeline, so identifiers of different
// handlers never collide.
//
// TIME:
//
// The instrumentation runtime owns a monotonically increasing counter. The
// emitter only knows an opaque expression that reads it (CurrentTime); it
// never models the counter itself.
package emit
