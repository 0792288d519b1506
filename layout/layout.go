// Package layout computes the byte layout of a multi-type block: per-slot
// offsets, total size, and the block alignment required to honor every slot's
// element alignment.
//
// The computation is pure. It walks the slots in declaration order with a
// running byte cursor, rounds the cursor up to each slot's alignment, records
// the rounded value as the slot's offset, and advances by capacity*size. No
// padding is added after the final slot, and no two regions ever overlap.
package layout

// Slot describes one element type's storage requirements: the size of a
// single element in bytes and its required alignment. Alignment must be a
// power of two; the result is unspecified otherwise.
type Slot struct {
	Size  uintptr
	Align uintptr
}

// Plan is the computed layout for one block.
type Plan struct {
	// Offsets holds the byte offset of each slot's region within the block,
	// in declaration order. An offset is always a multiple of the slot's
	// alignment, including for zero-capacity slots.
	Offsets []uintptr

	// Size is the total block size in bytes. It is zero when every slot
	// contributes zero bytes, in which case no storage is needed at all.
	Size uintptr

	// Align is the block's required alignment: the maximum alignment over
	// all slots, and at least 1.
	Align uintptr
}

// AlignUp rounds n up to the next multiple of align. An align of zero or one
// leaves n unchanged.
func AlignUp(n, align uintptr) uintptr {
	if align <= 1 {
		return n
	}

	return (n + align - 1) / align * align
}

// Compute lays out one region per slot, back to back in declaration order,
// each padded up to its slot's alignment.
//
// caps holds the requested element capacity per slot and must have the same
// length as slots. A capacity of zero is valid: the slot still receives an
// aligned offset but contributes no bytes.
//
// Compute never fails for well-formed inputs (matching lengths, power-of-two
// alignments).
func Compute(slots []Slot, caps []int) Plan {
	offsets := make([]uintptr, len(slots))

	var cursor uintptr
	var blockAlign uintptr = 1

	for i, slot := range slots {
		cursor = AlignUp(cursor, slot.Align)
		offsets[i] = cursor
		cursor += uintptr(caps[i]) * slot.Size

		if slot.Align > blockAlign {
			blockAlign = slot.Align
		}
	}

	return Plan{Offsets: offsets, Size: cursor, Align: blockAlign}
}
