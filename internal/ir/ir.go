package ir

// The IR is a flat bundle of interned agents, lowered rules, a rule
// dispatch map, and one net-constructor function per source net. Both
// backends (the C emitter and the VM) consume it unchanged.

// AgentID is a dense non-negative integer identifying an interned agent
// symbol. ID 0 is reserved for the "$" indirection agent.
type AgentID int

// IndirectionID is the pre-interned "$" agent used at runtime as the
// indirection marker. It has arity 1: slot 1 is the forwarding pointer.
const IndirectionID AgentID = 0

// AgentMeta describes one interned agent symbol.
type AgentMeta struct {
	Name  string
	Arity int
}

// LocalKind distinguishes the three virtual register files of an
// activation: fresh names, fresh agents, and slots imported from the
// rule's arguments.
type LocalKind int

const (
	// LocalName is a freshly allocated unbound name cell.
	LocalName LocalKind = iota
	// LocalAgent is a freshly allocated agent cell.
	LocalAgent
	// LocalSlot is a value imported from a slot of a rule argument.
	LocalSlot
)

// Local is a compile-time register inside a rule or net body.
type Local struct {
	Kind  LocalKind
	Index int
}

// Name, Agent and Slot are the Local constructors.
func Name(index int) Local  { return Local{Kind: LocalName, Index: index} }
func Agent(index int) Local { return Local{Kind: LocalAgent, Index: index} }
func Slot(index int) Local  { return Local{Kind: LocalSlot, Index: index} }

// Initializer opcodes run once at activation entry, before instructions.
type Initializer interface {
	String() string
	initializer()
}

// InitName allocates a fresh unbound name cell.
type InitName struct {
	Index int
}

// InitAgent allocates a fresh agent cell with uninitialised slots.
type InitAgent struct {
	Index int
	ID    AgentID
}

// InitSlotFromLeft imports slot Slot (1-based) of the left rule argument.
type InitSlotFromLeft struct {
	Index int
	Slot  int
}

// InitSlotFromRight imports slot Slot (1-based) of the right rule argument.
type InitSlotFromRight struct {
	Index int
	Slot  int
}

// InitReuseLeft takes ownership of the left argument cell itself,
// skipping one allocation and the matching free.
type InitReuseLeft struct {
	Index int
}

// InitReuseRight takes ownership of the right argument cell itself.
type InitReuseRight struct {
	Index int
}

func (InitName) initializer()          {}
func (InitAgent) initializer()         {}
func (InitSlotFromLeft) initializer()  {}
func (InitSlotFromRight) initializer() {}
func (InitReuseLeft) initializer()     {}
func (InitReuseRight) initializer()    {}

// Instruction opcodes run in order after the initializers.
type Instruction interface {
	String() string
	instruction()
}

// SetSlot installs Value at the 1-based slot of agent Target.
type SetSlot struct {
	Target Local
	Slot   int
	Value  Local
}

// PushEquation pushes a pair onto the reduction stack. Description is the
// source form of the equation, carried for tracing and diagnostics.
type PushEquation struct {
	Left        Local
	Right       Local
	Description string
}

// FreeLeft releases the left rule argument cell. Erased by the optimiser
// when the cell is reused instead.
type FreeLeft struct{}

// FreeRight releases the right rule argument cell.
type FreeRight struct{}

func (SetSlot) instruction()      {}
func (PushEquation) instruction() {}
func (FreeLeft) instruction()     {}
func (FreeRight) instruction()    {}

// Rule is one lowered interaction rule. Initializers and instructions are
// in execution order; Description is the source form of the rule.
type Rule struct {
	Index        int
	Description  string
	Initializers []Initializer
	Instructions []Instruction
}

// RuleMapEntry binds a canonical agent pair (Left <= Right) to a rule.
type RuleMapEntry struct {
	Left  AgentID
	Right AgentID
	Rule  int
}

// Function is a lowered net constructor: the same shape as a rule body
// but without argument slots, plus the interface output registers.
type Function struct {
	Index        int
	Initializers []Initializer
	Instructions []Instruction
	Outputs      []Local
}

// FunctionMeta carries a net's name and interface width.
type FunctionMeta struct {
	Name        string
	OutputCount int
}

// Program is the complete IR bundle shared by both backends.
type Program struct {
	Agents       []AgentMeta
	Rules        []*Rule
	RuleMap      []RuleMapEntry
	Functions    []*Function
	FunctionMeta []FunctionMeta
	EntryPoint   int
}

// Arity returns the arity of an interned agent.
func (p *Program) Arity(id AgentID) int {
	return p.Agents[id].Arity
}

// AgentName returns the symbol of an interned agent.
func (p *Program) AgentName(id AgentID) string {
	return p.Agents[id].Name
}
