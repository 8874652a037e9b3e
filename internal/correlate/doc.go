// Package correlate reconstructs which input elements of a keyed
// deduplication collapsed into which output element, from recorded traces.
//
// It is the reference rendition of the algorithm the generated finalization
// code runs inside the target runtime. The CLI uses it to check recorded
// traces, and tests use it to pin down the contract both generated
// formulations must satisfy.
//
// Values are compared by identity. A Ref names one object: two events holding
// the same Ref observed the same object, even when two different objects
// would compare equal in the target runtime.
package correlate
