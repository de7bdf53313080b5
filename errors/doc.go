// Package errors provides structured error types for escadra.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go/layout type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
//		Path("ammo", "speed").
//		GoType("string").
//		LayoutType("f32").
//		Detail("cannot store string in float field").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidUTF8(errors.PhaseEncode, path, data)
//	err := errors.OutOfBounds(errors.PhaseDecode, path, 10, 5)
//
// The two failure classes of the string value map onto kinds:
// an allocation failure is KindAllocation, a decode error is KindInvalidUTF8
// or KindInvalidData in PhaseDecode. IsAllocationFailure and IsDecodeError
// test for them through wrapping.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
