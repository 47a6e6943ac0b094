package vm

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"zamuza/internal/ir"
)

// DefaultStackSize is the equation stack bound when none is configured.
const DefaultStackSize = 1024

// printDepth caps term traversal when rendering outputs.
const printDepth = 1000

// Options configures a machine.
type Options struct {
	// StackSize bounds the equation stack; 0 means no equation can be
	// pushed at all. Negative values select DefaultStackSize.
	StackSize int
	// Trace logs every reduction.
	Trace bool
	// Timing logs reduction statistics after the run.
	Timing bool
	// Logger receives trace and timing output; a default stderr logger
	// is used when nil.
	Logger *logrus.Logger
}

type equation struct {
	left  Ref
	right Ref
}

// Machine interprets an IR program directly: it runs the entry net to
// seed the equation stack, then reduces to quiescence.
type Machine struct {
	program *ir.Program
	rules   map[[2]ir.AgentID]*ir.Rule
	heap    *Heap
	stack   []equation

	maxStack int
	trace    bool
	timing   bool
	logger   *logrus.Logger

	reductions uint64
}

// New builds a machine for a program.
func New(program *ir.Program, opts Options) *Machine {
	rules := make(map[[2]ir.AgentID]*ir.Rule, len(program.RuleMap))
	for _, entry := range program.RuleMap {
		rules[[2]ir.AgentID{entry.Left, entry.Right}] = program.Rules[entry.Rule]
	}

	maxStack := opts.StackSize
	if maxStack < 0 {
		maxStack = DefaultStackSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	return &Machine{
		program:  program,
		rules:    rules,
		heap:     NewHeap(uint64(len(program.Agents))),
		maxStack: maxStack,
		trace:    opts.Trace,
		timing:   opts.Timing,
		logger:   logger,
	}
}

// Run executes the entry-point net and reduces until the equation stack
// drains, returning the rendered interface outputs in source order.
func (m *Machine) Run() ([]string, error) {
	start := time.Now()

	entry := m.program.Functions[m.program.EntryPoint]
	frame, err := m.callFunction(entry)
	if err != nil {
		name := m.program.FunctionMeta[m.program.EntryPoint].Name
		return nil, fmt.Errorf("in function %s: %w", name, err)
	}

	if err := m.reduce(); err != nil {
		return nil, err
	}

	outputs := make([]string, 0, len(entry.Outputs))
	for _, local := range entry.Outputs {
		ref, ok := frame.get(local)
		if !ok {
			return nil, &UninitializedLocalError{Local: local.String(), Inst: "return"}
		}
		outputs = append(outputs, m.render(ref, printDepth))
	}

	if m.timing {
		elapsed := time.Since(start)
		perSecond := float64(m.reductions) / elapsed.Seconds()
		m.logger.WithFields(logrus.Fields{
			"reductions": m.reductions,
			"cpu_time":   elapsed,
			"r/s":        fmt.Sprintf("%.0f", perSecond),
		}).Info("reduction finished")
	}

	return outputs, nil
}

// reduce pops equations until the stack is empty, dispatching on the two
// cells: indirections unwrap, agent pairs fire rules, and a remaining
// name side becomes an indirection to the other side.
func (m *Machine) reduce() error {
	for len(m.stack) > 0 {
		top := m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]
		m.reductions++

		left, right := top.left, top.right

		if m.trace {
			m.logger.Debugf("%s = %s", m.render(left, 3), m.render(right, 3))
		}

		switch {
		case m.heap.kind(left) == cellIndirection:
			target := m.heap.at(left).target
			m.heap.Free(left)
			if err := m.push(target, right); err != nil {
				return err
			}

		case m.heap.kind(right) == cellIndirection:
			target := m.heap.at(right).target
			m.heap.Free(right)
			if err := m.push(left, target); err != nil {
				return err
			}

		case m.heap.kind(left) == cellAgent && m.heap.kind(right) == cellAgent:
			if err := m.interact(left, right); err != nil {
				return err
			}

		case m.heap.kind(left) == cellName:
			m.heap.Bind(left, right)

		default:
			m.heap.Bind(right, left)
		}
	}
	return nil
}

// interact canonicalises the endpoint order and fires the matching rule.
func (m *Machine) interact(left, right Ref) error {
	idLeft := m.heap.at(left).agent
	idRight := m.heap.at(right).agent

	if idLeft > idRight {
		idLeft, idRight = idRight, idLeft
		left, right = right, left
	}

	rule, ok := m.rules[[2]ir.AgentID{idLeft, idRight}]
	if !ok {
		return &RuleNotFoundError{
			Left:  m.render(left, 3),
			Right: m.render(right, 3),
		}
	}

	if err := m.callRule(rule, left, right); err != nil {
		return fmt.Errorf("in rule %s: %w", rule.Description, err)
	}
	return nil
}

func (m *Machine) push(left, right Ref) error {
	if len(m.stack) >= m.maxStack {
		return &StackOverflowError{Limit: m.maxStack}
	}
	m.stack = append(m.stack, equation{left: left, right: right})
	return nil
}

// render prints a term rooted at ref. Indirections are transparent; an
// exhausted depth prints "...".
func (m *Machine) render(ref Ref, depth int) string {
	if depth == 0 {
		return "..."
	}

	c := m.heap.at(ref)
	switch c.kind {
	case cellIndirection:
		return m.render(c.target, depth)
	case cellName:
		return fmt.Sprintf("x%d", c.uid)
	case cellAgent:
		name := m.program.AgentName(c.agent)
		if len(c.slots) == 0 {
			return name
		}
		parts := make([]string, len(c.slots))
		for i, slot := range c.slots {
			if slot == NilRef {
				parts[i] = "?"
				continue
			}
			parts[i] = m.render(slot, depth-1)
		}
		return name + "(" + strings.Join(parts, ", ") + ")"
	default:
		return "?"
	}
}
