package tll

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/fleetmod/escadra"
	"github.com/fleetmod/escadra/errors"
	"github.com/fleetmod/escadra/memory"
	"github.com/fleetmod/escadra/record"
)

// DefaultMaxNodes bounds the size of a graph read by Load.
const DefaultMaxNodes = 1 << 16

const nodeAlign = 8

// Loader reads node graphs out of a linear memory.
type Loader struct {
	decoder  *record.Decoder
	MaxNodes int
}

func NewLoader() *Loader {
	return &Loader{
		decoder:  record.NewDecoder(),
		MaxNodes: DefaultMaxNodes,
	}
}

// Load reads the graph rooted at addr with a default Loader.
func Load(mem escadra.Memory, addr uint32) (*Arena, ID, error) {
	return NewLoader().Load(mem, addr)
}

// Load copies every node reachable from addr into a new arena and returns
// the root's ID. Addresses are the visited set, so shared nodes and cycles
// are read once. A zero addr yields an empty arena and Nil.
func (l *Loader) Load(mem escadra.Memory, addr uint32) (*Arena, ID, error) {
	arena := NewArena()
	if addr == 0 {
		return arena, Nil, nil
	}

	ids := make(map[uint64]ID)
	raws := make(map[ID]rawNode)
	queue := []uint64{uint64(addr)}

	for len(queue) > 0 {
		at := queue[0]
		queue = queue[1:]
		if _, done := ids[at]; done {
			continue
		}
		if l.MaxNodes > 0 && len(ids) >= l.MaxNodes {
			return nil, Nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Value(l.MaxNodes).
				Detail("graph at %#x has more than %d nodes", addr, l.MaxNodes).
				Build()
		}

		var raw rawNode
		if err := l.decoder.DecodeFromMemory(uint32(at), mem, &raw); err != nil {
			return nil, Nil, fmt.Errorf("tll: node at %#x: %w", at, err)
		}
		id := arena.Insert(raw.node())
		ids[at] = id
		raws[id] = raw

		for _, next := range [...]record.Addr{raw.A, raw.B, raw.C} {
			if next == 0 {
				continue
			}
			if next > math.MaxUint32 {
				return nil, Nil, errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
					Value(uint64(next)).
					Detail("link from node at %#x leaves the 32-bit address space", at).
					Build()
			}
			if _, done := ids[uint64(next)]; !done {
				queue = append(queue, uint64(next))
			}
		}
	}

	for id, raw := range raws {
		n, _ := arena.Get(id)
		n.A, n.B, n.C = ids[uint64(raw.A)], ids[uint64(raw.B)], ids[uint64(raw.C)]
		arena.Set(id, n)
	}

	Logger().Debug("graph loaded",
		zap.Uint32("root", addr),
		zap.Int("nodes", arena.Len()))

	return arena, ids[uint64(addr)], nil
}

// Store writes every node reachable from root into blocks from alloc and
// returns the root's address. Node blocks and string buffers are added to
// list, including the ones allocated before a failure. Links to IDs that are
// not in the arena are written as null pointers.
func Store(a *Arena, root ID, mem escadra.Memory, alloc escadra.Allocator, list *memory.AllocationList) (uint32, error) {
	return StoreWith(record.NewEncoder(), a, root, mem, alloc, list)
}

// StoreWith is Store with a caller-provided encoder.
func StoreWith(enc *record.Encoder, a *Arena, root ID, mem escadra.Memory, alloc escadra.Allocator, list *memory.AllocationList) (uint32, error) {
	if alloc == nil {
		return 0, errors.NotInitialized(errors.PhaseEncode, "allocator")
	}

	var order []ID
	nodes := make(map[ID]Node)
	a.walk(root, func(id ID, n Node, _ int) {
		order = append(order, id)
		nodes[id] = n
	})
	if len(order) == 0 {
		return 0, nil
	}

	addrs := make(map[ID]uint32, len(order))
	for _, id := range order {
		ptr, err := alloc.Alloc(NodeSize, nodeAlign)
		if err != nil {
			return 0, errors.New(errors.PhaseEncode, errors.KindAllocation).
				Path(id.String()).
				Detail("node of %d bytes", NodeSize).
				Cause(err).
				Build()
		}
		if list != nil {
			list.Add(ptr, NodeSize, nodeAlign)
		}
		addrs[id] = ptr
	}

	for _, id := range order {
		n := nodes[id]
		raw := rawFrom(n)
		raw.A = record.Addr(addrs[n.A])
		raw.B = record.Addr(addrs[n.B])
		raw.C = record.Addr(addrs[n.C])
		if err := enc.EncodeToMemory(&raw, addrs[id], mem, alloc, list); err != nil {
			return 0, fmt.Errorf("tll: node %s: %w", id, err)
		}
	}

	Logger().Debug("graph stored",
		zap.Uint32("root", addrs[root]),
		zap.Int("nodes", len(order)))

	return addrs[root], nil
}
