package multivec

import (
	"fmt"
	"reflect"
	"strconv"
	"unsafe"

	"github.com/arloliu/multivec/errs"
	"github.com/arloliu/multivec/layout"
)

// Block is one contiguous allocation backing all of a container's regions.
// Exactly one MultiVector owns a Block at a time; ownership transfers on
// Move and never duplicates.
type Block struct {
	base unsafe.Pointer
	size uintptr

	// ref pins GC-managed backing storage for the lifetime of the block.
	ref any
	// mapped holds the raw mapping for mmap-backed blocks.
	mapped []byte
}

// Base returns the block's base address.
func (b *Block) Base() unsafe.Pointer { return b.base }

// Size returns the block's logical size in bytes, as computed by the layout
// plan. Allocators may reserve more than this.
func (b *Block) Size() uintptr { return b.size }

// Allocator provides the single memory block a Builder turns into a
// container. It is the only external collaborator of the build path; an
// Allocate failure is surfaced verbatim from Build.
//
// Allocate must return a block whose regions at plan.Offsets are valid for
// the schema's element types, honoring plan.Align. It may return (nil, nil)
// only when every capacity is zero, meaning no storage is needed.
//
// Free releases a block returned by Allocate; the block must not be used
// afterwards. Free must tolerate a nil block.
type Allocator interface {
	Allocate(schema *Schema, caps []int, plan layout.Plan) (*Block, error)
	Free(block *Block)
}

// GoAllocator allocates blocks on the Go heap. It is the default allocator.
//
// The block is a single allocation typed as a struct of one array field per
// slot, so element types holding Go pointers (strings, slices, maps, ...)
// remain visible to the garbage collector. Go lays struct fields out with
// the same align-up cursor walk the layout calculator uses, so the field
// offsets always coincide with the plan's region offsets.
type GoAllocator struct{}

// NewGoAllocator returns the Go heap allocator.
func NewGoAllocator() *GoAllocator { return &GoAllocator{} }

// Allocate implements the Allocator interface.
func (*GoAllocator) Allocate(schema *Schema, caps []int, plan layout.Plan) (*Block, error) {
	if !anyCapacity(caps) {
		return nil, nil
	}

	fields := make([]reflect.StructField, schema.NumSlots())
	for i := range fields {
		fields[i] = reflect.StructField{
			Name: "F" + strconv.Itoa(i),
			Type: reflect.ArrayOf(caps[i], schema.slots[i].typ),
		}
	}
	blockType := reflect.StructOf(fields)

	for i := range fields {
		if off := blockType.Field(i).Offset; off != plan.Offsets[i] {
			return nil, fmt.Errorf("%w: slot %d laid out at offset %d, plan expects %d",
				errs.ErrAllocationFailed, i, off, plan.Offsets[i])
		}
	}

	block := reflect.New(blockType)

	return &Block{base: block.UnsafePointer(), size: plan.Size, ref: block}, nil
}

// Free implements the Allocator interface. The garbage collector reclaims
// the backing storage once the block's reference is dropped.
func (*GoAllocator) Free(block *Block) {
	if block == nil {
		return
	}

	block.base = nil
	block.size = 0
	block.ref = nil
}

// anyCapacity reports whether at least one slot requests storage for one or
// more elements.
func anyCapacity(caps []int) bool {
	for _, c := range caps {
		if c > 0 {
			return true
		}
	}

	return false
}
