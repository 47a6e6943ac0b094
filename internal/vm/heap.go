package vm

import (
	"zamuza/internal/ir"
)

// Ref is an index into the heap arena. Cells are addressed by Ref so the
// in-place name-to-indirection retag never invalidates references held by
// the stack, by agent slots, or by the entry point's outputs.
type Ref int32

// NilRef marks an uninitialised register or slot.
const NilRef Ref = -1

type cellKind uint8

const (
	cellFree cellKind = iota
	cellAgent
	cellName
	cellIndirection
)

// cell is one live entity: an agent with its slots, an unbound name, or
// an indirection forwarding to another cell.
type cell struct {
	kind   cellKind
	agent  ir.AgentID
	uid    uint64
	slots  []Ref
	target Ref
}

// Heap is an index-based arena with a free list. Freed cells are recycled
// by subsequent allocations.
type Heap struct {
	cells   []cell
	free    []Ref
	nextUID uint64
}

// NewHeap creates an empty heap. Name uids start at uidBase so the VM's
// printed names line up with the emitted C runtime, which numbers names
// from AGENT_COUNT upwards.
func NewHeap(uidBase uint64) *Heap {
	return &Heap{nextUID: uidBase}
}

func (h *Heap) alloc() Ref {
	if n := len(h.free); n > 0 {
		ref := h.free[n-1]
		h.free = h.free[:n-1]
		return ref
	}
	h.cells = append(h.cells, cell{})
	return Ref(len(h.cells) - 1)
}

// NewAgent allocates an agent cell with uninitialised slots.
func (h *Heap) NewAgent(id ir.AgentID, arity int) Ref {
	ref := h.alloc()
	c := &h.cells[ref]
	c.kind = cellAgent
	c.agent = id
	if cap(c.slots) < arity {
		c.slots = make([]Ref, arity)
	} else {
		c.slots = c.slots[:arity]
	}
	for i := range c.slots {
		c.slots[i] = NilRef
	}
	return ref
}

// NewName allocates a fresh unbound name cell.
func (h *Heap) NewName() Ref {
	ref := h.alloc()
	c := &h.cells[ref]
	c.kind = cellName
	c.uid = h.nextUID
	h.nextUID++
	return ref
}

// Free releases a cell back to the arena.
func (h *Heap) Free(ref Ref) {
	c := &h.cells[ref]
	c.kind = cellFree
	c.slots = c.slots[:0]
	c.target = NilRef
	h.free = append(h.free, ref)
}

// Bind retags a name cell into an indirection to target, in place. The
// cell keeps its identity: every reference to it now reaches target.
func (h *Heap) Bind(ref Ref, target Ref) {
	c := &h.cells[ref]
	c.kind = cellIndirection
	c.target = target
}

func (h *Heap) kind(ref Ref) cellKind {
	return h.cells[ref].kind
}

func (h *Heap) at(ref Ref) *cell {
	return &h.cells[ref]
}

// Live returns the number of cells currently allocated.
func (h *Heap) Live() int {
	return len(h.cells) - len(h.free)
}
