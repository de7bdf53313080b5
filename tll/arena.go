package tll

import (
	"sync"

	"github.com/fleetmod/escadra/errors"
)

// Arena stores nodes by ID. It is safe for concurrent use.
type Arena struct {
	entries  []entry
	freeList []ID
	count    int
	mu       sync.RWMutex
}

type entry struct {
	node  Node
	valid bool
}

func NewArena() *Arena {
	return &Arena{
		entries:  make([]entry, 0, 64),
		freeList: make([]ID, 0, 16),
	}
}

// Insert stores n and returns its ID. IDs of removed nodes are reused.
func (a *Arena) Insert(n Node) ID {
	a.mu.Lock()
	defer a.mu.Unlock()

	e := entry{node: n, valid: true}
	a.count++

	if len(a.freeList) > 0 {
		id := a.freeList[len(a.freeList)-1]
		a.freeList = a.freeList[:len(a.freeList)-1]
		a.entries[id-1] = e
		return id
	}

	a.entries = append(a.entries, e)
	return ID(len(a.entries))
}

func (a *Arena) lookup(id ID) *entry {
	if id == Nil || int(id) > len(a.entries) {
		return nil
	}
	e := &a.entries[id-1]
	if !e.valid {
		return nil
	}
	return e
}

// Get returns a copy of the node.
func (a *Arena) Get(id ID) (Node, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	e := a.lookup(id)
	if e == nil {
		return Node{}, false
	}
	return e.node, true
}

// Set replaces the node stored at id.
func (a *Arena) Set(id ID, n Node) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	e := a.lookup(id)
	if e == nil {
		return false
	}
	e.node = n
	return true
}

// Remove deletes the node and clears every link that pointed to it, so a
// reused ID never inherits stale links.
func (a *Arena) Remove(id ID) (Node, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e := a.lookup(id)
	if e == nil {
		return Node{}, false
	}
	n := e.node
	*e = entry{}
	a.count--
	a.freeList = append(a.freeList, id)

	for i := range a.entries {
		if !a.entries[i].valid {
			continue
		}
		other := &a.entries[i].node
		for _, s := range []Slot{SlotA, SlotB, SlotC} {
			if l := other.link(s); *l == id {
				*l = Nil
			}
		}
	}
	return n, true
}

// Link points slot s of from at to. to may be Nil to clear the link.
func (a *Arena) Link(from ID, s Slot, to ID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	e := a.lookup(from)
	if e == nil {
		return errors.NotFound(errors.PhaseRuntime, "node", from.String())
	}
	if to != Nil && a.lookup(to) == nil {
		return errors.NotFound(errors.PhaseRuntime, "node", to.String())
	}
	l := e.node.link(s)
	if l == nil {
		return errors.InvalidInput(errors.PhaseRuntime, "unknown link slot "+s.String())
	}
	*l = to
	return nil
}

// Len returns the number of stored nodes.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.count
}

// Each calls fn for every node in ID order until fn returns false. fn must
// not modify the arena.
func (a *Arena) Each(fn func(ID, Node) bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for i := range a.entries {
		if !a.entries[i].valid {
			continue
		}
		if !fn(ID(i+1), a.entries[i].node) {
			return
		}
	}
}
