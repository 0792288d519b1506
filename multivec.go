package multivec

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/arloliu/multivec/errs"
)

// slotState is the per-slot runtime state of a container: the region base
// pointer inside the block, the live element count, and the fixed capacity.
// Region base pointers never change for the lifetime of the block.
type slotState struct {
	base     unsafe.Pointer
	count    int
	capacity int
}

// MultiVector is a fixed-capacity heterogeneous container: one contiguous
// block carved into independent typed regions, one per schema slot, each
// behaving like a capacity-bounded append-only array.
//
// A MultiVector is produced by a Builder. Capacity is immutable after Build;
// the only mutating operations are typed appends, Move, and Release. The zero
// value is a fully inert empty container: every count and capacity is zero,
// all data views are nil, and Release is a no-op.
//
// Note: The MultiVector is NOT thread-safe. Callers needing concurrent
// producers must serialize access externally.
type MultiVector struct {
	schema    *Schema
	alloc     Allocator
	block     *Block
	blockSize uintptr
	slots     []slotState
}

// Schema returns the container's schema, or nil for the zero value.
func (v *MultiVector) Schema() *Schema { return v.schema }

// NumSlots returns the number of declared slots.
func (v *MultiVector) NumSlots() int { return len(v.slots) }

// Count returns the number of live elements in the slot at the given
// declaration index, or zero when the index is out of range.
func (v *MultiVector) Count(slot int) int {
	if slot < 0 || slot >= len(v.slots) {
		return 0
	}

	return v.slots[slot].count
}

// Capacity returns the fixed capacity of the slot at the given declaration
// index, or zero when the index is out of range.
func (v *MultiVector) Capacity(slot int) int {
	if slot < 0 || slot >= len(v.slots) {
		return 0
	}

	return v.slots[slot].capacity
}

// BlockSize returns the total byte size of the container's block as computed
// by the layout plan. It is zero for an empty container.
func (v *MultiVector) BlockSize() uintptr { return v.blockSize }

// CountOf returns the live element count of the slot declared with element
// type T, or zero when T does not appear exactly once in the schema.
func CountOf[T any](v *MultiVector) int {
	slot, err := SlotIndexOf[T](v.schema)
	if err != nil {
		return 0
	}

	return v.Count(slot)
}

// CapacityOf returns the capacity of the slot declared with element type T,
// or zero when T does not appear exactly once in the schema.
func CapacityOf[T any](v *MultiVector) int {
	slot, err := SlotIndexOf[T](v.schema)
	if err != nil {
		return 0
	}

	return v.Capacity(slot)
}

// Data returns a typed view of the slot's region: length Count(slot) and
// capacity Capacity(slot). It returns nil when the container holds no block,
// the slot's capacity is zero, the index is out of range, or T is not the
// slot's declared element type.
//
// The view aliases the container's memory. It stays valid until the container
// is released or moved; appends to the slot become visible by re-reading
// Data.
func Data[T any](v *MultiVector, slot int) []T {
	if slot < 0 || slot >= len(v.slots) {
		return nil
	}
	if v.schema.slots[slot].typ != reflect.TypeFor[T]() {
		return nil
	}

	st := v.slots[slot]
	if st.base == nil || st.capacity == 0 {
		return nil
	}

	return unsafe.Slice((*T)(st.base), st.capacity)[:st.count]
}

// DataOf returns the typed view of the slot declared with element type T, or
// nil when T does not appear exactly once in the schema. See Data.
func DataOf[T any](v *MultiVector) []T {
	slot, err := SlotIndexOf[T](v.schema)
	if err != nil {
		return nil
	}

	return Data[T](v, slot)
}

// Append copies value into the next free element of the slot at the given
// declaration index and increments the slot's count.
//
// Returns:
//   - ErrSlotOutOfRange: slot is not a valid declaration index.
//   - ErrTypeMismatch: T is not the slot's declared element type.
//   - ErrCapacityExceeded: the slot already holds capacity elements. The
//     container is unchanged and remains valid; the condition is permanent
//     for this slot since capacity never changes after Build.
func Append[T any](v *MultiVector, slot int, value T) error {
	if slot < 0 || slot >= len(v.slots) {
		return fmt.Errorf("%w: slot %d, container has %d slots", errs.ErrSlotOutOfRange, slot, len(v.slots))
	}

	st := v.schema.slots[slot]
	if st.typ != reflect.TypeFor[T]() {
		return fmt.Errorf("%w: slot %d wants %s", errs.ErrTypeMismatch, slot, st.typ)
	}

	state := &v.slots[slot]
	if state.count >= state.capacity {
		return fmt.Errorf("%w: slot %d capacity %d", errs.ErrCapacityExceeded, slot, state.capacity)
	}

	*(*T)(unsafe.Add(state.base, uintptr(state.count)*st.size)) = value
	state.count++

	return nil
}

// AppendOf copies value into the slot declared with element type T. T must
// appear exactly once in the schema. See Append for the failure modes.
func AppendOf[T any](v *MultiVector, value T) error {
	slot, err := SlotIndexOf[T](v.schema)
	if err != nil {
		return err
	}

	return Append(v, slot, value)
}

// AppendValue copies value into the slot at the given declaration index
// without static type information. The value's dynamic type must be the
// slot's declared element type. See Append for the failure modes.
func (v *MultiVector) AppendValue(slot int, value any) error {
	if slot < 0 || slot >= len(v.slots) {
		return fmt.Errorf("%w: slot %d, container has %d slots", errs.ErrSlotOutOfRange, slot, len(v.slots))
	}

	st := v.schema.slots[slot]
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Type() != st.typ {
		return fmt.Errorf("%w: slot %d wants %s", errs.ErrTypeMismatch, slot, st.typ)
	}

	state := &v.slots[slot]
	if state.count >= state.capacity {
		return fmt.Errorf("%w: slot %d capacity %d", errs.ErrCapacityExceeded, slot, state.capacity)
	}

	reflect.NewAt(st.typ, unsafe.Add(state.base, uintptr(state.count)*st.size)).Elem().Set(rv)
	state.count++

	return nil
}

// Release destroys every live element in every slot and frees the block,
// leaving the container in the empty state.
//
// Destroying an element means dropping the Go references it holds: regions of
// pointer-bearing element types are zeroed with typed writes up to the slot's
// count, so the garbage collector can reclaim the referenced memory.
// Pointer-free element types incur no destruction work. Elements beyond a
// slot's count are never touched.
//
// Release is idempotent. Releasing a never-built or moved-from container is
// a no-op.
func (v *MultiVector) Release() {
	for i := range v.slots {
		st := &v.slots[i]
		if st.count > 0 {
			v.destroyRegion(i, st.count)
		}
		*st = slotState{}
	}

	if v.block != nil {
		v.alloc.Free(v.block)
		v.block = nil
	}
	v.blockSize = 0
}

// destroyRegion destroys the first n elements of the slot's region. Zeroing
// uses a typed write so pointer words are cleared under the write barrier.
func (v *MultiVector) destroyRegion(slot, n int) {
	if n == 0 {
		return
	}

	st := v.schema.slots[slot]
	if st.ptrFree {
		return
	}

	region := reflect.NewAt(reflect.ArrayOf(n, st.typ), v.slots[slot].base).Elem()
	region.SetZero()
}

// Move transfers ownership of the block and every slot's base pointer, count,
// and capacity to a new container. No element is copied, constructed, or
// destroyed; the transfer is pure pointer and metadata relocation.
//
// The receiver is left in the empty state: it reports zero counts and
// capacities, its data views are nil, and releasing it is a no-op. There is
// deliberately no whole-container copy: deep-copying every live element
// across every slot is out of scope.
func (v *MultiVector) Move() *MultiVector {
	dst := &MultiVector{
		schema:    v.schema,
		alloc:     v.alloc,
		block:     v.block,
		blockSize: v.blockSize,
		slots:     v.slots,
	}

	v.block = nil
	v.blockSize = 0
	v.slots = make([]slotState, len(dst.slots))

	return dst
}
