package multivec

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/multivec/errs"
	"github.com/arloliu/multivec/layout"
)

// SlotType describes one declared element type: its reflect type, element
// size, alignment, and whether its values are free of Go pointers.
//
// Pointer-free slot types are the analogue of trivially destructible element
// types: destroying their elements requires no work.
type SlotType struct {
	typ     reflect.Type
	size    uintptr
	align   uintptr
	ptrFree bool
}

// TypeOf returns the slot descriptor for element type T.
func TypeOf[T any]() SlotType {
	typ := reflect.TypeFor[T]()

	return SlotType{
		typ:     typ,
		size:    typ.Size(),
		align:   uintptr(typ.Align()),
		ptrFree: !hasPointers(typ),
	}
}

// Type returns the slot's element type.
func (s SlotType) Type() reflect.Type { return s.typ }

// Size returns the size of one element in bytes.
func (s SlotType) Size() uintptr { return s.size }

// Align returns the required alignment of one element in bytes.
func (s SlotType) Align() uintptr { return s.align }

// PointerFree reports whether values of the slot type hold no Go pointers.
func (s SlotType) PointerFree() bool { return s.ptrFree }

func (s SlotType) String() string { return s.typ.String() }

// hasPointers reports whether values of t contain Go pointers anywhere.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

// Schema is the fixed, ordered list of element types a container stores, one
// slot per declared type. A Schema is immutable after creation and can be
// shared by any number of builders and containers.
type Schema struct {
	slots []SlotType
	id    uint64
}

// NewSchema creates a schema from the given slot descriptors in declaration
// order. At least one slot is required.
//
// Example:
//
//	schema, err := multivec.NewSchema(
//	    multivec.TypeOf[int64](),
//	    multivec.TypeOf[string](),
//	)
func NewSchema(slots ...SlotType) (*Schema, error) {
	if len(slots) == 0 {
		return nil, errs.ErrEmptySchema
	}

	s := &Schema{slots: append([]SlotType(nil), slots...)}
	s.id = s.fingerprint()

	return s, nil
}

// NumSlots returns the number of declared slots.
func (s *Schema) NumSlots() int { return len(s.slots) }

// Slot returns the descriptor of the slot at index i.
// It panics if i is out of range.
func (s *Schema) Slot(i int) SlotType { return s.slots[i] }

// ID returns the schema's xxHash64 fingerprint, derived from the slot type
// names, sizes, and alignments in declaration order. Two schemas declaring
// the same types in the same order share the same ID.
func (s *Schema) ID() uint64 { return s.id }

// Equal reports whether other declares the same element types in the same
// order.
func (s *Schema) Equal(other *Schema) bool {
	if s == other {
		return true
	}
	if other == nil || len(s.slots) != len(other.slots) {
		return false
	}
	for i := range s.slots {
		if s.slots[i].typ != other.slots[i].typ {
			return false
		}
	}

	return true
}

// fingerprint hashes the slot type identities into a 64-bit schema ID.
func (s *Schema) fingerprint() uint64 {
	digest := xxhash.New()

	var buf [binary.MaxVarintLen64]byte
	for _, slot := range s.slots {
		_, _ = digest.WriteString(slot.typ.String())
		n := binary.PutUvarint(buf[:], uint64(slot.size))
		_, _ = digest.Write(buf[:n])
		n = binary.PutUvarint(buf[:], uint64(slot.align))
		_, _ = digest.Write(buf[:n])
	}

	return digest.Sum64()
}

// checkIndex validates a slot index against the schema.
func (s *Schema) checkIndex(slot int) error {
	if slot < 0 || slot >= len(s.slots) {
		return fmt.Errorf("%w: slot %d, schema has %d slots", errs.ErrSlotOutOfRange, slot, len(s.slots))
	}

	return nil
}

// layoutSlots converts the schema's descriptors into layout calculator input.
func (s *Schema) layoutSlots() []layout.Slot {
	slots := make([]layout.Slot, len(s.slots))
	for i, slot := range s.slots {
		slots[i] = layout.Slot{Size: slot.size, Align: slot.align}
	}

	return slots
}

// SlotIndexOf returns the declaration index of element type T in the schema.
//
// Selecting a slot by type identity is only valid when T appears exactly once
// in the schema: it returns ErrTypeNotDeclared when T is absent and
// ErrAmbiguousType when T is declared more than once (select such slots by
// index instead).
func SlotIndexOf[T any](s *Schema) (int, error) {
	typ := reflect.TypeFor[T]()

	if s == nil {
		return -1, fmt.Errorf("%w: %s", errs.ErrTypeNotDeclared, typ)
	}

	index := -1
	for i, slot := range s.slots {
		if slot.typ != typ {
			continue
		}
		if index >= 0 {
			return -1, fmt.Errorf("%w: %s", errs.ErrAmbiguousType, typ)
		}
		index = i
	}

	if index < 0 {
		return -1, fmt.Errorf("%w: %s", errs.ErrTypeNotDeclared, typ)
	}

	return index, nil
}
