// Package errs defines the sentinel errors returned by the multivec library.
//
// All errors returned from the public API either are one of these sentinels
// or wrap one of them, so callers can classify failures with errors.Is:
//
//	if err := multivec.AppendOf(vec, 42); errors.Is(err, errs.ErrCapacityExceeded) {
//	    // slot is full; capacity is immutable for the container's lifetime
//	}
package errs

import "errors"

var (
	// ErrCapacityExceeded is returned by append operations when a slot already
	// holds capacity elements. The container remains valid; the condition is
	// permanent for that slot since capacity never changes after Build.
	ErrCapacityExceeded = errors.New("slot capacity exceeded")

	// ErrAllocationFailed is returned by Build when the allocator reports an
	// error or returns no memory for a non-zero block size. No container is
	// produced and no elements are constructed.
	ErrAllocationFailed = errors.New("block allocation failed")

	// ErrConstructFailed is returned by Build when a default-fill constructor
	// function reports an error. All elements constructed before the failure
	// are destroyed before the error propagates.
	ErrConstructFailed = errors.New("element construction failed")

	// ErrSlotOutOfRange is returned when a slot index is negative or not less
	// than the number of declared slots.
	ErrSlotOutOfRange = errors.New("slot index out of range")

	// ErrTypeNotDeclared is returned by type-identity selection when the type
	// does not appear in the schema.
	ErrTypeNotDeclared = errors.New("type not declared in schema")

	// ErrAmbiguousType is returned by type-identity selection when the type
	// appears more than once in the schema; select such slots by index.
	ErrAmbiguousType = errors.New("type declared more than once in schema")

	// ErrTypeMismatch is returned when a value's type is not assignable to the
	// slot's declared element type.
	ErrTypeMismatch = errors.New("value type does not match slot type")

	// ErrEmptySchema is returned by NewSchema when no slot types are given.
	ErrEmptySchema = errors.New("schema requires at least one slot type")

	// ErrPointerTypeUnsupported is returned by allocators whose memory is not
	// visible to the garbage collector when the schema contains a slot type
	// holding Go pointers.
	ErrPointerTypeUnsupported = errors.New("allocator does not support pointer-bearing slot types")

	// ErrCapacityNegative is returned by Build when a recorded slot capacity
	// is negative.
	ErrCapacityNegative = errors.New("slot capacity must be non-negative")
)
