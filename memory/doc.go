// Package memory provides the linear memories packed records are written to,
// a heap allocator for string buffers inside them, and allocation tracking.
//
// # Backends
//
// Buffer is a plain byte slice. Linear hosts the memory inside a wazero
// runtime: a module that does nothing but export "memory" is instantiated, so
// reads and writes go through the same bounds checks a guest would see.
// Both implement escadra.Memory and escadra.MemorySizer.
//
// # Heap
//
// Heap is a first-fit allocator over [HeapBase, memory size). Freed blocks
// are coalesced with their neighbors. When the memory can grow (Linear) and
// no block fits, the heap grows it up to MaxPages. Heap is safe for
// concurrent use.
//
// # Allocation tracking
//
// AllocationList records every block handed out while encoding a record so
// the caller can free them all at once:
//
//	list := memory.NewAllocationList()
//	defer list.FreeAndRelease(heap)
package memory
