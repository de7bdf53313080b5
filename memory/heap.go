package memory

import (
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/fleetmod/escadra"
	"github.com/fleetmod/escadra/errors"
	"github.com/fleetmod/escadra/layout"
)

// Grower is a memory that can be extended by whole pages.
type Grower interface {
	Grow(deltaPages uint32) (previousPages uint32, ok bool)
}

// Stats is a snapshot of heap activity.
type Stats struct {
	Allocs       uint64
	Frees        uint64
	InvalidFrees uint64
	Grows        uint64
	Live         int
	LiveBytes    uint64
	FreeBytes    uint64
}

type block struct {
	addr uint32
	size uint32
}

func (b block) end() uint64 {
	return uint64(b.addr) + uint64(b.size)
}

// Heap is a first-fit allocator over a linear memory.
const minHeapBase = 8

type Heap struct {
	mem   escadra.MemorySizer
	grow  Grower
	live  map[uint32]uint32
	free  []block
	cfg   Config
	end   uint32
	stats Stats
	mu    sync.Mutex
}

// NewHeap manages [cfg.HeapBase, mem.Size()). If mem implements Grower the
// heap extends it on demand up to cfg.MaxPages. A zero HeapBase starts the
// heap at minHeapBase so no block is ever placed at the null address.
func NewHeap(mem escadra.MemorySizer, cfg Config) *Heap {
	cfg.HeapBase = max(cfg.HeapBase, minHeapBase)
	h := &Heap{
		mem:  mem,
		cfg:  cfg,
		live: make(map[uint32]uint32),
		end:  mem.Size(),
	}
	if g, ok := mem.(Grower); ok {
		h.grow = g
	}
	if cfg.HeapBase < h.end {
		h.free = []block{{addr: cfg.HeapBase, size: h.end - cfg.HeapBase}}
	} else {
		h.end = cfg.HeapBase
	}
	return h
}

// Alloc returns the address of size bytes aligned to align. The block's
// content is undefined.
func (h *Heap) Alloc(size, align uint32) (uint32, error) {
	if size == 0 {
		size = 1
	}
	if align == 0 {
		align = 1
	}
	if align&(align-1) != 0 {
		return 0, errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Value(align).
			Detail("alignment %d is not a power of two", align).
			Build()
	}
	if h.cfg.MaxAlloc != 0 && size > h.cfg.MaxAlloc {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, size, align)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ptr, ok := h.firstFit(size, align)
	if !ok && h.growFor(uint64(size)+uint64(align)) {
		ptr, ok = h.firstFit(size, align)
	}
	if !ok {
		Logger().Debug("heap exhausted",
			zap.Uint32("size", size),
			zap.Uint32("align", align),
			zap.Int("live", len(h.live)))
		return 0, errors.AllocationFailed(errors.PhaseAlloc, size, align)
	}

	h.live[ptr] = size
	h.stats.Allocs++
	h.stats.LiveBytes += uint64(size)
	return ptr, nil
}

func (h *Heap) firstFit(size, align uint32) (uint32, bool) {
	for i, b := range h.free {
		start := layout.AlignTo(b.addr, align)
		if start < b.addr || uint64(start)+uint64(size) > b.end() {
			continue
		}

		var rest []block
		if start > b.addr {
			rest = append(rest, block{addr: b.addr, size: start - b.addr})
		}
		if tail := b.end() - (uint64(start) + uint64(size)); tail > 0 {
			rest = append(rest, block{addr: start + size, size: uint32(tail)})
		}
		h.free = slices.Replace(h.free, i, i+1, rest...)
		return start, true
	}
	return 0, false
}

func (h *Heap) growFor(need uint64) bool {
	if h.grow == nil {
		return false
	}
	current := h.mem.Size() / PageSize
	limit := h.cfg.maxPages()
	if current >= limit {
		return false
	}
	pages := uint32((need + PageSize - 1) / PageSize)
	if pages > limit-current {
		pages = limit - current
	}
	if _, ok := h.grow.Grow(pages); !ok {
		Logger().Warn("memory grow refused", zap.Uint32("pages", pages))
		return false
	}

	newEnd := h.mem.Size()
	if newEnd <= h.end {
		return false
	}
	h.insert(block{addr: h.end, size: newEnd - h.end})
	h.end = newEnd
	h.stats.Grows++
	Logger().Debug("heap grown", zap.Uint32("pages", pages), zap.Uint32("end", newEnd))
	return true
}

// Free releases a block returned by Alloc. Unknown pointers and double frees
// are logged and ignored.
func (h *Heap) Free(ptr, size, align uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	recorded, ok := h.live[ptr]
	if !ok {
		h.stats.InvalidFrees++
		Logger().Warn("free of unknown or already freed block", zap.Uint32("ptr", ptr), zap.Uint32("size", size))
		return
	}
	if size != 0 && size != recorded {
		Logger().Warn("free size mismatch",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Uint32("allocated", recorded))
	}

	delete(h.live, ptr)
	h.stats.Frees++
	h.stats.LiveBytes -= uint64(recorded)
	h.insert(block{addr: ptr, size: recorded})
}

// insert adds b to the free list and merges it with adjacent blocks.
func (h *Heap) insert(b block) {
	i, _ := slices.BinarySearchFunc(h.free, b.addr, func(x block, addr uint32) int {
		switch {
		case x.addr < addr:
			return -1
		case x.addr > addr:
			return 1
		}
		return 0
	})
	h.free = slices.Insert(h.free, i, b)

	if i+1 < len(h.free) && h.free[i].end() == uint64(h.free[i+1].addr) {
		h.free[i].size += h.free[i+1].size
		h.free = slices.Delete(h.free, i+1, i+2)
	}
	if i > 0 && h.free[i-1].end() == uint64(h.free[i].addr) {
		h.free[i-1].size += h.free[i].size
		h.free = slices.Delete(h.free, i, i+1)
	}
}

// Live returns the number of outstanding allocations.
func (h *Heap) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}

// Owns reports whether ptr is the start of a live allocation.
func (h *Heap) Owns(ptr uint32) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.live[ptr]
	return ok
}

// Stats returns a snapshot of the heap counters.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.stats
	s.Live = len(h.live)
	for _, b := range h.free {
		s.FreeBytes += uint64(b.size)
	}
	return s
}

var _ escadra.Allocator = (*Heap)(nil)
