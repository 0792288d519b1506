package multivec

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/arloliu/multivec/errs"
	"github.com/arloliu/multivec/internal/options"
	"github.com/arloliu/multivec/layout"
)

// BuilderOption represents a functional option for configuring a Builder.
type BuilderOption = options.Option[*Builder]

// WithAllocator sets the allocator used for the container's single block.
// The default is the Go heap allocator.
func WithAllocator(alloc Allocator) BuilderOption {
	return options.New(func(b *Builder) error {
		if alloc == nil {
			return errors.New("allocator must not be nil")
		}
		b.alloc = alloc

		return nil
	})
}

// Builder collects the desired capacity and optional default fill per slot
// before committing to the container's single allocation.
//
// Configuration calls are chainable and may target any subset of slots in any
// order; a repeated call for the same slot overwrites the earlier one. An
// invalid configuration call (unknown slot, negative capacity, mismatched
// default type) records the error, and Build reports the first one.
//
// A Builder is created fresh per construction attempt and consumed by Build.
// Builders are single-use by convention; reuse after Build is not supported.
//
// Note: The Builder is NOT thread-safe. Each builder instance should be used
// by a single goroutine at a time.
type Builder struct {
	schema *Schema
	alloc  Allocator
	caps   []int
	fills  []fillSpec
	err    error // first configuration error, surfaced by Build
}

// fillSpec records a slot's default fill: a function that constructs up to
// capacity elements at base and reports how many it completed.
type fillSpec struct {
	set  bool
	fill func(base unsafe.Pointer, capacity int) (constructed int, err error)
}

// NewBuilder creates a builder for the given schema.
//
// Parameters:
//   - schema: The container's declared element types (must not be nil)
//   - opts: Optional configuration, e.g. WithAllocator
//
// Returns:
//   - *Builder: A builder with every capacity zero and no defaults recorded.
//   - error: An error if the schema is nil or an option is invalid.
func NewBuilder(schema *Schema, opts ...BuilderOption) (*Builder, error) {
	if schema == nil {
		return nil, errs.ErrEmptySchema
	}

	b := &Builder{
		schema: schema,
		alloc:  NewGoAllocator(),
		caps:   make([]int, schema.NumSlots()),
		fills:  make([]fillSpec, schema.NumSlots()),
	}

	if err := options.Apply(b, opts...); err != nil {
		return nil, err
	}

	return b, nil
}

// recordErr keeps the first configuration error for Build to report.
func (b *Builder) recordErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// SetCapacity records the desired element capacity for the slot at the given
// declaration index, overwriting any previously recorded value. A capacity of
// zero means the slot never holds elements for this container instance.
func (b *Builder) SetCapacity(slot int, n int) *Builder {
	if err := b.schema.checkIndex(slot); err != nil {
		b.recordErr(err)
		return b
	}
	if n < 0 {
		b.recordErr(fmt.Errorf("%w: slot %d capacity %d", errs.ErrCapacityNegative, slot, n))
		return b
	}

	b.caps[slot] = n

	return b
}

// SetCapacityOf records the desired capacity for the slot declared with
// element type T. T must appear exactly once in the schema.
func SetCapacityOf[T any](b *Builder, n int) *Builder {
	slot, err := SlotIndexOf[T](b.schema)
	if err != nil {
		b.recordErr(err)
		return b
	}

	return b.SetCapacity(slot, n)
}

// SetDefault records a value to copy into every element of the slot's region
// during Build, overwriting any previously recorded default. The value's
// dynamic type must be the slot's declared element type.
//
// Slots without a recorded default start with zero live elements after Build,
// regardless of their capacity.
func (b *Builder) SetDefault(slot int, value any) *Builder {
	if err := b.schema.checkIndex(slot); err != nil {
		b.recordErr(err)
		return b
	}

	st := b.schema.slots[slot]
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Type() != st.typ {
		b.recordErr(fmt.Errorf("%w: slot %d wants %s", errs.ErrTypeMismatch, slot, st.typ))
		return b
	}

	b.fills[slot] = fillSpec{set: true, fill: func(base unsafe.Pointer, capacity int) (int, error) {
		for j := range capacity {
			reflect.NewAt(st.typ, unsafe.Add(base, uintptr(j)*st.size)).Elem().Set(rv)
		}

		return capacity, nil
	}}

	return b
}

// SetDefaultOf records value as the default fill for the slot declared with
// element type T. T must appear exactly once in the schema.
func SetDefaultOf[T any](b *Builder, value T) *Builder {
	slot, err := SlotIndexOf[T](b.schema)
	if err != nil {
		b.recordErr(err)
		return b
	}

	b.fills[slot] = fillSpec{set: true, fill: func(base unsafe.Pointer, capacity int) (int, error) {
		elems := unsafe.Slice((*T)(base), capacity)
		for j := range elems {
			elems[j] = value
		}

		return capacity, nil
	}}

	return b
}

// SetDefaultFuncOf records a per-element constructor as the default fill for
// the slot declared with element type T. During Build, fn is called once per
// element in ascending index order; an error from fn aborts the build (see
// Build for the unwind guarantees).
func SetDefaultFuncOf[T any](b *Builder, fn func(index int) (T, error)) *Builder {
	slot, err := SlotIndexOf[T](b.schema)
	if err != nil {
		b.recordErr(err)
		return b
	}
	if fn == nil {
		b.recordErr(fmt.Errorf("slot %d: default constructor must not be nil", slot))
		return b
	}

	b.fills[slot] = fillSpec{set: true, fill: func(base unsafe.Pointer, capacity int) (int, error) {
		elems := unsafe.Slice((*T)(base), capacity)
		for j := range elems {
			v, err := fn(j)
			if err != nil {
				return j, err
			}
			elems[j] = v
		}

		return capacity, nil
	}}

	return b
}

// Build consumes the builder and produces the container.
//
// Build computes the block layout from the recorded capacities, requests the
// single allocation, records each slot's region base pointer and capacity,
// and then default-fills slots in declaration order. A slot's count becomes
// its capacity only after every element of that slot is constructed.
//
// Failure modes:
//   - ErrAllocationFailed: the allocator errored or returned no memory for a
//     non-zero size. No container is produced and no element is constructed.
//   - ErrConstructFailed: a default constructor errored. Elements already
//     constructed, in the failing slot and in every slot filled before it,
//     are destroyed and the block is released before the error propagates.
//
// A zero-size layout (every capacity zero) legitimately produces a container
// without a block; such a container behaves exactly like an empty one.
func (b *Builder) Build() (*MultiVector, error) {
	if b.err != nil {
		return nil, b.err
	}

	plan := layout.Compute(b.schema.layoutSlots(), b.caps)

	block, err := b.alloc.Allocate(b.schema, b.caps, plan)
	if err != nil {
		if errors.Is(err, errs.ErrAllocationFailed) || errors.Is(err, errs.ErrPointerTypeUnsupported) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", errs.ErrAllocationFailed, err)
	}
	if block == nil && plan.Size > 0 {
		return nil, fmt.Errorf("%w: allocator returned no memory for %d bytes", errs.ErrAllocationFailed, plan.Size)
	}

	v := &MultiVector{
		schema:    b.schema,
		alloc:     b.alloc,
		block:     block,
		blockSize: plan.Size,
		slots:     make([]slotState, b.schema.NumSlots()),
	}
	for i := range v.slots {
		v.slots[i].capacity = b.caps[i]
		if block != nil {
			v.slots[i].base = unsafe.Add(block.Base(), plan.Offsets[i])
		}
	}

	for i, spec := range b.fills {
		if !spec.set {
			continue
		}

		constructed, err := spec.fill(v.slots[i].base, v.slots[i].capacity)
		if err != nil {
			// Unwind: destroy the failing slot's partial construction and
			// every slot filled before it, then release the block.
			v.destroyRegion(i, constructed)
			v.Release()

			return nil, fmt.Errorf("%w: slot %d: %w", errs.ErrConstructFailed, i, err)
		}

		v.slots[i].count = v.slots[i].capacity
	}

	return v, nil
}
