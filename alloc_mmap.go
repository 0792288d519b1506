//go:build unix

package multivec

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/arloliu/multivec/errs"
	"github.com/arloliu/multivec/layout"
)

// MmapAllocator allocates blocks with anonymous memory mappings, keeping
// large containers off the Go heap.
//
// Mapped memory is invisible to the garbage collector, so this allocator
// only accepts schemas whose slot types are pointer-free; Allocate returns
// ErrPointerTypeUnsupported otherwise. Page alignment satisfies any element
// alignment.
type MmapAllocator struct{}

// NewMmapAllocator returns an anonymous-mmap allocator.
func NewMmapAllocator() *MmapAllocator { return &MmapAllocator{} }

// Allocate implements the Allocator interface.
func (*MmapAllocator) Allocate(schema *Schema, caps []int, plan layout.Plan) (*Block, error) {
	for i := range schema.NumSlots() {
		if slot := schema.Slot(i); !slot.PointerFree() {
			return nil, fmt.Errorf("%w: slot %d (%s)", errs.ErrPointerTypeUnsupported, i, slot)
		}
	}

	if !anyCapacity(caps) {
		return nil, nil
	}

	size := plan.Size
	if size == 0 {
		// Zero-size element types with non-zero capacity still need a valid
		// base address.
		size = 1
	}

	data, err := unix.Mmap(-1, 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %w", errs.ErrAllocationFailed, size, err)
	}

	return &Block{base: unsafe.Pointer(&data[0]), size: plan.Size, mapped: data}, nil
}

// Free implements the Allocator interface, unmapping the block's memory.
func (*MmapAllocator) Free(block *Block) {
	if block == nil || block.mapped == nil {
		return
	}

	_ = unix.Munmap(block.mapped)
	block.base = nil
	block.size = 0
	block.mapped = nil
}
