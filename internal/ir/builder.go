package ir

import (
	"zamuza/internal/ast"
)

// Builder lowers checked modules into the IR. It owns the shared agent
// interner plus one sub-builder for rules and one for net functions, so
// several modules can feed a single program: agents intern across files
// by symbol name.
type Builder struct {
	global    *GlobalBuilder
	rules     rulesBuilder
	functions functionsBuilder
}

// NewBuilder creates a builder with "$" pre-interned at id 0.
func NewBuilder() *Builder {
	b := &Builder{global: NewGlobalBuilder()}
	b.functions.entryPoint = -1
	return b
}

// Module lowers every rule and net of a module into the program under
// construction.
func (b *Builder) Module(module *ast.Module) error {
	for _, item := range module.Items {
		if item.Rule != nil {
			if err := b.rules.rule(b.global, item.Rule); err != nil {
				return err
			}
		}
		if item.Net != nil {
			if err := b.functions.function(b.global, item.Net); err != nil {
				return err
			}
		}
	}
	return nil
}

// Build finalises the program. It fails if no net named Main was seen.
func (b *Builder) Build() (*Program, error) {
	if b.functions.entryPoint < 0 {
		return nil, &NoEntryPointError{}
	}
	return &Program{
		Agents:       b.global.agents,
		Rules:        b.rules.rules,
		RuleMap:      b.rules.ruleMap,
		Functions:    b.functions.functions,
		FunctionMeta: b.functions.meta,
		EntryPoint:   b.functions.entryPoint,
	}, nil
}

// BuildProgram lowers a single module into a complete program.
func BuildProgram(module *ast.Module) (*Program, error) {
	b := NewBuilder()
	if err := b.Module(module); err != nil {
		return nil, err
	}
	return b.Build()
}

// GlobalBuilder interns agent symbols with their arities.
type GlobalBuilder struct {
	agents []AgentMeta
	index  map[string]AgentID
}

// NewGlobalBuilder creates an interner holding only the "$" agent.
func NewGlobalBuilder() *GlobalBuilder {
	g := &GlobalBuilder{index: make(map[string]AgentID)}
	g.agents = append(g.agents, AgentMeta{Name: "$", Arity: 1})
	g.index["$"] = IndirectionID
	return g
}

// AddOrGetAgent returns the id for a symbol, interning it on first sight.
// A later use with a different arity is an ArityConflictError.
func (g *GlobalBuilder) AddOrGetAgent(name string, arity int, pos, end ast.Position) (AgentID, error) {
	if id, ok := g.index[name]; ok {
		if have := g.agents[id].Arity; have != arity {
			return 0, &ArityConflictError{Name: name, Have: have, Given: arity, Pos: pos, End: end}
		}
		return id, nil
	}
	id := AgentID(len(g.agents))
	g.agents = append(g.agents, AgentMeta{Name: name, Arity: arity})
	g.index[name] = id
	return id, nil
}

// argSlot records a head-argument name bound to a slot of the left or
// right rule argument.
type argSlot struct {
	name     string
	fromLeft bool
	slot     int
}

// bodyBuilder assigns registers and emits instructions for one rule or
// net body. For nets the arguments list stays empty, so every name lowers
// to a fresh Name register.
type bodyBuilder struct {
	arguments    []argSlot
	names        []string
	agents       []AgentID
	instructions []Instruction
}

func (b *bodyBuilder) bindSlot(name string, fromLeft bool, slot int) {
	b.arguments = append(b.arguments, argSlot{name: name, fromLeft: fromLeft, slot: slot})
}

// addOrGetName resolves a variable: head-argument names win and become
// Slot registers; anything else interns into the Name register file, so
// both occurrences of a variable share one register.
func (b *bodyBuilder) addOrGetName(name string) Local {
	for i, arg := range b.arguments {
		if arg.name == name {
			return Slot(i)
		}
	}
	for i, n := range b.names {
		if n == name {
			return Name(i)
		}
	}
	index := len(b.names)
	b.names = append(b.names, name)
	return Name(index)
}

func (b *bodyBuilder) addAgent(id AgentID) Local {
	index := len(b.agents)
	b.agents = append(b.agents, id)
	return Agent(index)
}

// term lowers a term to the register holding it, emitting SetSlot
// instructions for agent arguments depth-first.
func (b *bodyBuilder) term(global *GlobalBuilder, term *ast.Term) (Local, error) {
	if term.Name != nil {
		return b.addOrGetName(term.Name.Ident()), nil
	}

	agent := term.Agent
	id, err := global.AddOrGetAgent(agent.Name, len(agent.Body), agent.Pos, agent.EndPos)
	if err != nil {
		return Local{}, err
	}
	target := b.addAgent(id)

	for i, sub := range agent.Body {
		value, err := b.term(global, sub)
		if err != nil {
			return Local{}, err
		}
		b.instructions = append(b.instructions, SetSlot{
			Target: target,
			Slot:   i + 1,
			Value:  value,
		})
	}

	return target, nil
}

func (b *bodyBuilder) equation(global *GlobalBuilder, eq *ast.Equation) error {
	left, err := b.term(global, eq.Left)
	if err != nil {
		return err
	}
	right, err := b.term(global, eq.Right)
	if err != nil {
		return err
	}
	b.instructions = append(b.instructions, PushEquation{
		Left:        left,
		Right:       right,
		Description: eq.String(),
	})
	return nil
}

// initializers lays out the activation prologue: argument imports first,
// then fresh names, then fresh agents.
func (b *bodyBuilder) initializers() []Initializer {
	inits := make([]Initializer, 0, len(b.arguments)+len(b.names)+len(b.agents))
	for i, arg := range b.arguments {
		if arg.fromLeft {
			inits = append(inits, InitSlotFromLeft{Index: i, Slot: arg.slot})
		} else {
			inits = append(inits, InitSlotFromRight{Index: i, Slot: arg.slot})
		}
	}
	for i := range b.names {
		inits = append(inits, InitName{Index: i})
	}
	for i, id := range b.agents {
		inits = append(inits, InitAgent{Index: i, ID: id})
	}
	return inits
}

type rulesBuilder struct {
	rules   []*Rule
	ruleMap []RuleMapEntry
}

// rule lowers one rule. Both heads are interned, the endpoints are
// canonicalised so the smaller agent id is on the left, head arguments
// become slot imports, and the body terminates with FreeLeft/FreeRight.
func (rb *rulesBuilder) rule(global *GlobalBuilder, rule *ast.Rule) error {
	left, right := rule.Left, rule.Right

	idLeft, err := global.AddOrGetAgent(left.Agent, len(left.Body), left.Pos, left.EndPos)
	if err != nil {
		return err
	}
	idRight, err := global.AddOrGetAgent(right.Agent, len(right.Body), right.Pos, right.EndPos)
	if err != nil {
		return err
	}

	// Canonical endpoint order: left agent id <= right agent id. Swapping
	// the heads here swaps every downstream slot reference with them.
	if idLeft > idRight {
		idLeft, idRight = idRight, idLeft
		left, right = right, left
	}

	var body bodyBuilder
	for i, name := range left.Body {
		body.bindSlot(name.Ident(), true, i+1)
	}
	for i, name := range right.Body {
		body.bindSlot(name.Ident(), false, i+1)
	}

	for _, eq := range rule.Body.List() {
		if err := body.equation(global, eq); err != nil {
			return err
		}
	}

	instructions := append(body.instructions, FreeLeft{}, FreeRight{})
	index := len(rb.rules)
	rb.rules = append(rb.rules, &Rule{
		Index:        index,
		Description:  rule.String(),
		Initializers: body.initializers(),
		Instructions: instructions,
	})
	rb.ruleMap = append(rb.ruleMap, RuleMapEntry{Left: idLeft, Right: idRight, Rule: index})
	return nil
}

type functionsBuilder struct {
	functions  []*Function
	meta       []FunctionMeta
	entryPoint int
}

// function lowers one net. Equations lower first, then the interface
// terms, whose registers become the function outputs in source order.
func (fb *functionsBuilder) function(global *GlobalBuilder, net *ast.Net) error {
	if net.Name == "Main" {
		if fb.entryPoint >= 0 {
			return &DuplicateMainError{Pos: net.Pos, End: net.EndPos}
		}
		fb.entryPoint = len(fb.functions)
	}

	var body bodyBuilder
	for _, eq := range net.Body.List() {
		if err := body.equation(global, eq); err != nil {
			return err
		}
	}

	outputs := make([]Local, 0, len(net.Interfaces))
	for _, iface := range net.Interfaces {
		local, err := body.term(global, iface)
		if err != nil {
			return err
		}
		outputs = append(outputs, local)
	}

	index := len(fb.functions)
	fb.functions = append(fb.functions, &Function{
		Index:        index,
		Initializers: body.initializers(),
		Instructions: body.instructions,
		Outputs:      outputs,
	})
	fb.meta = append(fb.meta, FunctionMeta{Name: net.Name, OutputCount: len(net.Interfaces)})
	return nil
}
