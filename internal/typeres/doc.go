// Package typeres classifies static source types into canonical types.
//
// The classification decides whether generated containers specialize on
// primitives or box through OBJECT. Unrecognized types never fail: they fall
// back to OBJECT (or to CLASS for element types). Only UnwrapOptional has a
// precondition.
package typeres
