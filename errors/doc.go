// Package errors provides structured error types for the optimizer host.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the guest export involved, captured guest stderr and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseABI, errors.KindOutOfBounds).
//		Export("optimize").
//		Detail("result pointer %d past end of memory", ptr).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Trap("optimize", cause, stderr)
//	err := errors.OutOfBounds(offset, length, memSize)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
