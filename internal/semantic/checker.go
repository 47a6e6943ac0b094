package semantic

import (
	"fmt"

	"zamuza/internal/ast"
	"zamuza/internal/errors"
)

// The checker validates a module against the net-language well-formedness
// laws before lowering:
//
//   - rule head arguments are linear (each name at most once),
//   - every name occurs exactly twice in its scope,
//   - no two rules share an unordered pair of head agents,
//   - input/output polarity balances across both occurrences of a name,
//   - equations keep inputs on the left and outputs on the right,
//   - a net named Main exists.
//
// All diagnostics are aggregated so one compilation reports every broken
// rule and net, not just the first.

// agentPair is an unordered rule key: a <= b.
type agentPair struct {
	a, b string
}

// Checker accumulates diagnostics over the modules of one compilation.
// The overlap map persists across modules, so rules in different files
// conflict the same way rules in one file do.
type Checker struct {
	errors    []errors.CompilerError
	seenPairs map[agentPair]*ast.Rule
}

// NewChecker creates an empty checker.
func NewChecker() *Checker {
	return &Checker{seenPairs: make(map[agentPair]*ast.Rule)}
}

// CheckModule validates a single module and returns all diagnostics found.
func CheckModule(module *ast.Module) []errors.CompilerError {
	return CheckModules([]*ast.Module{module})
}

// CheckModules validates every module of one compilation. The per-module
// laws run on each module; the entry-point law spans the whole set, since
// several source files feed a single program.
func CheckModules(modules []*ast.Module) []errors.CompilerError {
	c := NewChecker()
	for _, module := range modules {
		c.Check(module)
	}
	c.CheckMain(modules)
	return c.Errors()
}

// Check runs the per-module validation passes.
func (c *Checker) Check(module *ast.Module) {
	for _, rule := range module.Rules() {
		c.checkRuleTerms(rule)
		c.checkRuleVariables(rule)
		c.checkRuleIOBalance(rule)
		for _, eq := range rule.Body.List() {
			c.checkEquationDirection(eq)
		}
	}

	for _, net := range module.Nets() {
		c.checkNetVariables(net)
		c.checkNetIOBalance(net)
		for _, eq := range net.Body.List() {
			c.checkEquationDirection(eq)
		}
	}

	c.checkOverlapping(module)
}

// Errors returns the accumulated diagnostics.
func (c *Checker) Errors() []errors.CompilerError {
	return c.errors
}

func (c *Checker) report(err errors.CompilerError) {
	c.errors = append(c.errors, err)
}

// checkRuleTerms enforces head-argument linearity: across both heads of a
// rule, each name may appear at most once.
func (c *Checker) checkRuleTerms(rule *ast.Rule) {
	seen := make(map[string]bool)
	for _, name := range headNames(rule) {
		if seen[name.Ident()] {
			c.report(errors.NewError(
				errors.ErrorNonLinearRule,
				"variable appears more than once in a rule",
				name.Pos,
			).
				WithSpan(name.Pos, name.EndPos).
				WithLabel("appears more than once").
				WithHelp("rule head arguments must be distinct names").
				Build())
			return
		}
		seen[name.Ident()] = true
	}
}

// nameCount tracks occurrences of one variable, remembering the node last
// seen so the diagnostic has a span to point at.
type nameCount struct {
	count int
	last  *ast.Name
}

// countNames walks a term and tallies every name occurrence, including
// occurrences nested inside agent arguments. The order slice keeps the
// first-seen ordering so diagnostics are deterministic.
func countNames(term *ast.Term, counts map[string]*nameCount, order *[]string) {
	if term.Name != nil {
		key := term.Name.Ident()
		entry, ok := counts[key]
		if !ok {
			entry = &nameCount{}
			counts[key] = entry
			*order = append(*order, key)
		}
		entry.count++
		entry.last = term.Name
		return
	}
	for _, sub := range term.Agent.Body {
		countNames(sub, counts, order)
	}
}

// checkRuleVariables enforces the exact-two-occurrence law over a rule's
// head arguments and body equations.
func (c *Checker) checkRuleVariables(rule *ast.Rule) {
	counts := make(map[string]*nameCount)
	var order []string

	for _, name := range headNames(rule) {
		key := name.Ident()
		entry, ok := counts[key]
		if !ok {
			entry = &nameCount{}
			counts[key] = entry
			order = append(order, key)
		}
		entry.count++
		entry.last = name
	}
	for _, eq := range rule.Body.List() {
		countNames(eq.Left, counts, &order)
		countNames(eq.Right, counts, &order)
	}

	c.reportMiscounted(counts, order)
}

// checkNetVariables enforces the exact-two-occurrence law over a net's
// equations and interface terms.
func (c *Checker) checkNetVariables(net *ast.Net) {
	counts := make(map[string]*nameCount)
	var order []string

	for _, eq := range net.Body.List() {
		countNames(eq.Left, counts, &order)
		countNames(eq.Right, counts, &order)
	}
	for _, iface := range net.Interfaces {
		countNames(iface, counts, &order)
	}

	c.reportMiscounted(counts, order)
}

func (c *Checker) reportMiscounted(counts map[string]*nameCount, order []string) {
	for _, key := range order {
		entry := counts[key]
		if entry.count != 2 {
			c.report(errors.NewError(
				errors.ErrorVariableCount,
				fmt.Sprintf("variable appears %d times", entry.count),
				entry.last.Pos,
			).
				WithSpan(entry.last.Pos, entry.last.EndPos).
				WithLabel("should appear exactly twice").
				WithNote("every name connects exactly two endpoints").
				Build())
		}
	}
}

// checkOverlapping rejects two rules keyed by the same unordered pair of
// head agent symbols.
func (c *Checker) checkOverlapping(module *ast.Module) {
	for _, rule := range module.Rules() {
		pair := agentPair{a: rule.Left.Agent, b: rule.Right.Agent}
		if pair.b < pair.a {
			pair.a, pair.b = pair.b, pair.a
		}
		if other, ok := c.seenPairs[pair]; ok {
			c.report(errors.NewError(
				errors.ErrorOverlappingRules,
				"rules overlap",
				rule.Pos,
			).
				WithSpan(rule.Pos, rule.Right.EndPos).
				WithLabel("overlaps ...").
				WithSecondary("with this rule", other.Pos, other.Right.EndPos).
				WithHelp("each pair of agents may interact through at most one rule").
				Build())
			continue
		}
		c.seenPairs[pair] = rule
	}
}

// checkTermIOBalance walks a term, recursing into agent arguments. The
// first occurrence of a name records the role it was seen in; the second
// occurrence must take the complementary role.
func (c *Checker) checkTermIOBalance(term *ast.Term, seenAsInput map[string]bool) bool {
	if term.Name != nil {
		name := term.Name
		if asInput, ok := seenAsInput[name.Ident()]; ok {
			switch {
			case name.IsInput() && asInput:
				c.report(errors.NewError(
					errors.ErrorMultipleTimesAsInput,
					"input-output balance error",
					name.Pos,
				).
					WithSpan(name.Pos, name.EndPos).
					WithLabel("appears more than once as input").
					Build())
				return false
			case !name.IsInput() && !asInput:
				c.report(errors.NewError(
					errors.ErrorMultipleTimesAsOutput,
					"input-output balance error",
					name.Pos,
				).
					WithSpan(name.Pos, name.EndPos).
					WithLabel("appears more than once as output").
					Build())
				return false
			}
			return true
		}
		seenAsInput[name.Ident()] = name.IsInput()
		return true
	}

	for _, sub := range term.Agent.Body {
		if !c.checkTermIOBalance(sub, seenAsInput) {
			return false
		}
	}
	return true
}

func (c *Checker) checkEquationsIOBalance(eqs []*ast.Equation, seenAsInput map[string]bool) {
	for _, eq := range eqs {
		if !c.checkTermIOBalance(eq.Left, seenAsInput) {
			return
		}
		if !c.checkTermIOBalance(eq.Right, seenAsInput) {
			return
		}
	}
}

// checkRuleIOBalance seeds head-argument names with the opposite role:
// within the rule body the rule produces into its head arguments, so a
// "#x" head argument acts as an output there.
func (c *Checker) checkRuleIOBalance(rule *ast.Rule) {
	seenAsInput := make(map[string]bool)
	for _, name := range headNames(rule) {
		seenAsInput[name.Ident()] = !name.IsInput()
	}
	c.checkEquationsIOBalance(rule.Body.List(), seenAsInput)
}

// checkNetIOBalance starts from the interface terms, then walks the body.
func (c *Checker) checkNetIOBalance(net *ast.Net) {
	seenAsInput := make(map[string]bool)
	for _, iface := range net.Interfaces {
		if !c.checkTermIOBalance(iface, seenAsInput) {
			return
		}
	}
	c.checkEquationsIOBalance(net.Body.List(), seenAsInput)
}

// checkEquationDirection rejects bare output names on the left endpoint
// and bare input names on the right endpoint. Runs on the normalised AST,
// so "R <- L" source forms are checked in "L = R" orientation.
func (c *Checker) checkEquationDirection(eq *ast.Equation) {
	if eq.Left.Name != nil && !eq.Left.Name.IsInput() {
		name := eq.Left.Name
		c.report(errors.NewError(
			errors.ErrorMisdirectedOutput,
			"input-output balance error",
			name.Pos,
		).
			WithSpan(name.Pos, name.EndPos).
			WithLabel("appears as output, where it should be input").
			Build())
	}
	if eq.Right.Name != nil && eq.Right.Name.IsInput() {
		name := eq.Right.Name
		c.report(errors.NewError(
			errors.ErrorMisdirectedInput,
			"input-output balance error",
			name.Pos,
		).
			WithSpan(name.Pos, name.EndPos).
			WithLabel("appears as input, where it should be output").
			Build())
	}
}

// CheckMain requires a net named Main somewhere in the compilation.
func (c *Checker) CheckMain(modules []*ast.Module) {
	var pos ast.Position
	for _, module := range modules {
		for _, net := range module.Nets() {
			if net.Name == "Main" {
				return
			}
		}
		pos = module.Pos
	}
	c.report(errors.NewError(
		errors.ErrorNoMainFunction,
		"no main function",
		pos,
	).
		WithHelp("declare a net named Main: Main <| ... |> { ... }").
		Build())
}

// headNames returns both heads' argument names, left head first.
func headNames(rule *ast.Rule) []*ast.Name {
	names := make([]*ast.Name, 0, len(rule.Left.Body)+len(rule.Right.Body))
	names = append(names, rule.Left.Body...)
	names = append(names, rule.Right.Body...)
	return names
}
