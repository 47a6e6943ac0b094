package vm

import (
	"zamuza/internal/ir"
)

// frame is one activation: the three register files of a rule firing or
// a net construction.
type frame struct {
	names  []Ref
	agents []Ref
	slots  []Ref
}

func prepare(regs *[]Ref, index int) {
	for len(*regs) <= index {
		*regs = append(*regs, NilRef)
	}
}

// get resolves a local to its cell, reporting whether it was initialised.
func (f *frame) get(local ir.Local) (Ref, bool) {
	var regs []Ref
	switch local.Kind {
	case ir.LocalName:
		regs = f.names
	case ir.LocalAgent:
		regs = f.agents
	default:
		regs = f.slots
	}
	if local.Index >= len(regs) || regs[local.Index] == NilRef {
		return NilRef, false
	}
	return regs[local.Index], true
}

// callFunction runs a net constructor in a fresh frame. Net bodies may
// only allocate; argument imports and reuse are rule-context opcodes.
func (m *Machine) callFunction(function *ir.Function) (*frame, error) {
	f := &frame{}
	for _, init := range function.Initializers {
		switch init := init.(type) {
		case ir.InitName:
			prepare(&f.names, init.Index)
			f.names[init.Index] = m.heap.NewName()
		case ir.InitAgent:
			prepare(&f.agents, init.Index)
			f.agents[init.Index] = m.heap.NewAgent(init.ID, m.program.Arity(init.ID))
		default:
			return nil, &InvalidInstructionError{Inst: init.String()}
		}
	}

	if err := m.execInstructions(f, function.Instructions, NilRef, NilRef); err != nil {
		return nil, err
	}
	return f, nil
}

// callRule runs a rule body against the two consumed argument cells.
func (m *Machine) callRule(rule *ir.Rule, left, right Ref) error {
	f := &frame{}
	if err := m.execRuleInitializers(f, rule.Initializers, left, right); err != nil {
		return err
	}
	return m.execInstructions(f, rule.Instructions, left, right)
}

func (m *Machine) execRuleInitializers(f *frame, initializers []ir.Initializer, left, right Ref) error {
	for _, init := range initializers {
		switch init := init.(type) {
		case ir.InitName:
			prepare(&f.names, init.Index)
			f.names[init.Index] = m.heap.NewName()

		case ir.InitAgent:
			prepare(&f.agents, init.Index)
			f.agents[init.Index] = m.heap.NewAgent(init.ID, m.program.Arity(init.ID))

		case ir.InitSlotFromLeft:
			prepare(&f.slots, init.Index)
			value, err := m.readSlot(left, init.Slot, init.String())
			if err != nil {
				return err
			}
			f.slots[init.Index] = value

		case ir.InitSlotFromRight:
			prepare(&f.slots, init.Index)
			value, err := m.readSlot(right, init.Slot, init.String())
			if err != nil {
				return err
			}
			f.slots[init.Index] = value

		case ir.InitReuseLeft:
			prepare(&f.agents, init.Index)
			f.agents[init.Index] = left

		case ir.InitReuseRight:
			prepare(&f.agents, init.Index)
			f.agents[init.Index] = right

		default:
			return &InvalidInstructionError{Inst: init.String()}
		}
	}
	return nil
}

func (m *Machine) readSlot(ref Ref, slot int, inst string) (Ref, error) {
	c := m.heap.at(ref)
	if slot < 1 || slot > len(c.slots) {
		return NilRef, &SlotNotFoundError{Agent: m.render(ref, 3), Slot: slot, Inst: inst}
	}
	return c.slots[slot-1], nil
}

func (m *Machine) execInstructions(f *frame, instructions []ir.Instruction, left, right Ref) error {
	for _, inst := range instructions {
		switch inst := inst.(type) {
		case ir.SetSlot:
			value, ok := f.get(inst.Value)
			if !ok {
				return &UninitializedLocalError{Local: inst.Value.String(), Inst: inst.String()}
			}
			target, ok := f.get(inst.Target)
			if !ok {
				return &UninitializedLocalError{Local: inst.Target.String(), Inst: inst.String()}
			}
			cell := m.heap.at(target)
			if cell.kind != cellAgent {
				return &InvalidReadError{Var: inst.Target.String(), Inst: inst.String()}
			}
			if inst.Slot < 1 || inst.Slot > len(cell.slots) {
				return &SlotNotFoundError{Agent: m.render(target, 3), Slot: inst.Slot, Inst: inst.String()}
			}
			cell.slots[inst.Slot-1] = value

		case ir.PushEquation:
			eqLeft, ok := f.get(inst.Left)
			if !ok {
				return &UninitializedLocalError{Local: inst.Left.String(), Inst: inst.String()}
			}
			eqRight, ok := f.get(inst.Right)
			if !ok {
				return &UninitializedLocalError{Local: inst.Right.String(), Inst: inst.String()}
			}
			if err := m.push(eqLeft, eqRight); err != nil {
				return err
			}

		case ir.FreeLeft:
			if left == NilRef {
				return &InvalidInstructionError{Inst: inst.String()}
			}
			m.heap.Free(left)

		case ir.FreeRight:
			if right == NilRef {
				return &InvalidInstructionError{Inst: inst.String()}
			}
			m.heap.Free(right)

		default:
			return &InvalidInstructionError{Inst: inst.String()}
		}
	}
	return nil
}
