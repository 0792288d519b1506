package multivec

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/multivec/errs"
)

type pair struct {
	Key uint32
	Val uint64
}

type tagged struct {
	Name string
	N    int
}

func TestTypeOf(t *testing.T) {
	t.Run("int64", func(t *testing.T) {
		st := TypeOf[int64]()
		require.Equal(t, reflect.TypeFor[int64](), st.Type())
		require.Equal(t, unsafe.Sizeof(int64(0)), st.Size())
		require.Equal(t, uintptr(reflect.TypeFor[int64]().Align()), st.Align())
		require.True(t, st.PointerFree())
	})

	t.Run("string holds pointers", func(t *testing.T) {
		st := TypeOf[string]()
		require.False(t, st.PointerFree())
	})

	t.Run("struct with string field holds pointers", func(t *testing.T) {
		require.False(t, TypeOf[tagged]().PointerFree())
	})

	t.Run("plain struct is pointer free", func(t *testing.T) {
		st := TypeOf[pair]()
		require.True(t, st.PointerFree())
		require.Equal(t, unsafe.Sizeof(pair{}), st.Size())
	})

	t.Run("array inherits element pointers", func(t *testing.T) {
		require.False(t, TypeOf[[4]string]().PointerFree())
		require.True(t, TypeOf[[4]int]().PointerFree())
		require.True(t, TypeOf[[0]string]().PointerFree())
	})

	t.Run("zero size type", func(t *testing.T) {
		st := TypeOf[struct{}]()
		require.Equal(t, uintptr(0), st.Size())
		require.True(t, st.PointerFree())
	})
}

func TestNewSchema(t *testing.T) {
	t.Run("requires at least one slot", func(t *testing.T) {
		_, err := NewSchema()
		require.ErrorIs(t, err, errs.ErrEmptySchema)
	})

	t.Run("preserves declaration order", func(t *testing.T) {
		schema, err := NewSchema(TypeOf[int8](), TypeOf[int64](), TypeOf[string]())
		require.NoError(t, err)
		require.Equal(t, 3, schema.NumSlots())
		require.Equal(t, reflect.TypeFor[int8](), schema.Slot(0).Type())
		require.Equal(t, reflect.TypeFor[int64](), schema.Slot(1).Type())
		require.Equal(t, reflect.TypeFor[string](), schema.Slot(2).Type())
	})
}

func TestSchemaID(t *testing.T) {
	t.Run("same declaration same id", func(t *testing.T) {
		a, err := NewSchema(TypeOf[int64](), TypeOf[string]())
		require.NoError(t, err)
		b, err := NewSchema(TypeOf[int64](), TypeOf[string]())
		require.NoError(t, err)
		require.Equal(t, a.ID(), b.ID())
		require.True(t, a.Equal(b))
	})

	t.Run("order changes id", func(t *testing.T) {
		a, err := NewSchema(TypeOf[int64](), TypeOf[string]())
		require.NoError(t, err)
		b, err := NewSchema(TypeOf[string](), TypeOf[int64]())
		require.NoError(t, err)
		require.NotEqual(t, a.ID(), b.ID())
		require.False(t, a.Equal(b))
	})

	t.Run("different slot count not equal", func(t *testing.T) {
		a, err := NewSchema(TypeOf[int64]())
		require.NoError(t, err)
		b, err := NewSchema(TypeOf[int64](), TypeOf[int32]())
		require.NoError(t, err)
		require.False(t, a.Equal(b))
		require.False(t, a.Equal(nil))
	})
}

func TestSlotIndexOf(t *testing.T) {
	schema, err := NewSchema(TypeOf[int64](), TypeOf[string](), TypeOf[int64]())
	require.NoError(t, err)

	t.Run("unique type resolves", func(t *testing.T) {
		slot, err := SlotIndexOf[string](schema)
		require.NoError(t, err)
		require.Equal(t, 1, slot)
	})

	t.Run("duplicate type is ambiguous", func(t *testing.T) {
		_, err := SlotIndexOf[int64](schema)
		require.ErrorIs(t, err, errs.ErrAmbiguousType)
	})

	t.Run("undeclared type", func(t *testing.T) {
		_, err := SlotIndexOf[float64](schema)
		require.ErrorIs(t, err, errs.ErrTypeNotDeclared)
	})

	t.Run("nil schema", func(t *testing.T) {
		_, err := SlotIndexOf[int64](nil)
		require.ErrorIs(t, err, errs.ErrTypeNotDeclared)
	})
}
