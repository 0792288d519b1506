// Package multivec provides a fixed-capacity, heterogeneous multi-type
// container: given an ordered list of element types, it allocates one
// contiguous, correctly aligned memory block and carves it into independent
// typed regions, each behaving like a capacity-bounded append-only array.
//
// The point is cache-friendly co-location of logically related but
// differently-typed data (parallel arrays) without per-type heap allocations.
//
// # Core Concepts
//
//   - Schema: the fixed, ordered list of element types, one slot per type.
//   - Slot: one type's dedicated region within the shared block, selected by
//     declaration index or, when the type appears exactly once, by type
//     identity via the *Of generic helpers.
//   - Builder: collects per-slot capacities and optional default fills, then
//     commits to a single allocation in Build.
//   - MultiVector: the long-lived container owning the block. Capacity is
//     immutable after Build; appends are the only post-build mutation.
//
// # Basic Usage
//
//	schema, _ := multivec.NewSchema(
//	    multivec.TypeOf[int64](),
//	    multivec.TypeOf[string](),
//	)
//
//	builder, _ := multivec.NewBuilder(schema)
//	multivec.SetCapacityOf[int64](builder, 2)
//	multivec.SetCapacityOf[string](builder, 1)
//
//	vec, err := builder.Build()
//	if err != nil {
//	    // allocation or default-fill failure; no container was produced
//	}
//	defer vec.Release()
//
//	_ = multivec.AppendOf(vec, int64(5))
//	_ = multivec.AppendOf(vec, int64(9))
//	_ = multivec.AppendOf(vec, "x")
//
//	multivec.DataOf[int64](vec)  // [5 9]
//	multivec.DataOf[string](vec) // ["x"]
//
// Appending beyond a slot's capacity fails with errs.ErrCapacityExceeded and
// leaves the container unchanged.
//
// # Default Fill
//
// A slot with a recorded default starts full: Build constructs capacity
// copies of the default value in ascending index order.
//
//	builder, _ := multivec.NewBuilder(schema)
//	multivec.SetCapacityOf[int64](builder, 3)
//	multivec.SetDefaultOf(builder, int64(7))
//	vec, _ := builder.Build() // CountOf[int64] == 3, contents [7 7 7]
//
// # Ownership
//
// Exactly one MultiVector owns a block at a time. Move transfers the block
// and all per-slot state to a new container and leaves the source empty, so
// releasing the source is a safe no-op. Whole-container copying is
// deliberately unavailable.
//
// # Allocators
//
// The block comes from an Allocator. The default GoAllocator allocates on the
// Go heap and supports any element type, including pointer-bearing ones like
// string. MmapAllocator backs the block with an anonymous memory mapping for
// pointer-free schemas.
//
// # Thread Safety
//
// A MultiVector performs no internal locking. Concurrent use of one container
// requires external synchronization.
package multivec
