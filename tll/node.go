package tll

import (
	"strconv"

	"github.com/fleetmod/escadra/estring"
	"github.com/fleetmod/escadra/record"
)

// ID identifies a node in an Arena. Nil is the null link.
type ID uint32

const Nil ID = 0

func (id ID) String() string {
	if id == Nil {
		return "nil"
	}
	return "#" + strconv.FormatUint(uint64(id), 10)
}

// Slot selects one of the three links of a node.
type Slot uint8

const (
	SlotA Slot = iota
	SlotB
	SlotC
)

func (s Slot) String() string {
	switch s {
	case SlotA:
		return "a"
	case SlotB:
		return "b"
	case SlotC:
		return "c"
	}
	return "?"
}

// Links holds the outgoing links of a node.
type Links struct {
	A, B, C ID
}

// Node is one element of a triply linked list.
type Node struct {
	A, B, C    ID
	End        bool
	Flag       bool
	Padding1Ah uint16
	Index      uint32
	String     estring.String
	Unknown40h uint32
	Padding44h uint32
	Data1      record.Addr
	Data2      record.Addr
	Data3      record.Addr
}

// Links returns the outgoing links of n.
func (n Node) Links() Links {
	return Links{A: n.A, B: n.B, C: n.C}
}

func (n *Node) link(s Slot) *ID {
	switch s {
	case SlotA:
		return &n.A
	case SlotB:
		return &n.B
	case SlotC:
		return &n.C
	}
	return nil
}

// NodeSize is the size of a node record in the game's memory.
const NodeSize = 0x60

// rawNode is the in-memory record. Links are addresses.
type rawNode struct {
	A          record.Addr    `layout:"a"`
	B          record.Addr    `layout:"b"`
	C          record.Addr    `layout:"c"`
	End        bool           `layout:"end"`
	Flag       bool           `layout:"flag"`
	Padding1Ah uint16         `layout:"padding_1ah"`
	Index      uint32         `layout:"index"`
	String     estring.String `layout:"string"`
	Unknown40h uint32         `layout:"unknown_40h"`
	Padding44h uint32         `layout:"padding_44h"`
	Data1      record.Addr    `layout:"data1"`
	Data2      record.Addr    `layout:"data2"`
	Data3      record.Addr    `layout:"data3"`
}

func (r rawNode) node() Node {
	return Node{
		End:        r.End,
		Flag:       r.Flag,
		Padding1Ah: r.Padding1Ah,
		Index:      r.Index,
		String:     r.String,
		Unknown40h: r.Unknown40h,
		Padding44h: r.Padding44h,
		Data1:      r.Data1,
		Data2:      r.Data2,
		Data3:      r.Data3,
	}
}

func rawFrom(n Node) rawNode {
	return rawNode{
		End:        n.End,
		Flag:       n.Flag,
		Padding1Ah: n.Padding1Ah,
		Index:      n.Index,
		String:     n.String,
		Unknown40h: n.Unknown40h,
		Padding44h: n.Padding44h,
		Data1:      n.Data1,
		Data2:      n.Data2,
		Data3:      n.Data3,
	}
}
