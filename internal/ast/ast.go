package ast

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Position tracks location information for error reporting and tooling.
// It is the lexer's position type: filename, byte offset, line and column.
type Position = lexer.Position

// Module is a parsed source file: rules and nets in source order.
type Module struct {
	Pos    Position
	EndPos Position

	Items []*ModuleItem `parser:"@@*"`
}

// ModuleItem is a top-level item, either an interaction rule or a net.
type ModuleItem struct {
	Pos    Position
	EndPos Position

	Rule *Rule `parser:"  @@"`
	Net  *Net  `parser:"| @@"`
}

// Rule is a rewrite between two agent heads with a body of equations.
// Example: "S(#x) >< A(#y, #w) => #x = A(#y, #z), #w = S(#z)"
type Rule struct {
	Pos    Position
	EndPos Position

	Left  *RuleTerm     `parser:"@@"`
	Op    string        `parser:"@(\"><\" | \"<>\")"`
	Right *RuleTerm     `parser:"@@ \"=>\""`
	Body  *EquationList `parser:"@@"`
}

// RuleTerm is one head of a rule: an agent symbol applied to bare names.
type RuleTerm struct {
	Pos    Position
	EndPos Position

	Agent string  `parser:"@Ident"`
	Body  []*Name `parser:"[ \"(\" @@ { \",\" @@ } \")\" ]"`
}

// Net is a named top-level definition with interface terms and a body.
// Example: "Main <| #r |> { S(S(O)) = A(S(S(O)), #r) }"
type Net struct {
	Pos    Position
	EndPos Position

	Name       string        `parser:"@Ident \"<|\""`
	Interfaces []*Term       `parser:"[ @@ { \",\" @@ } ] \"|>\""`
	Body       *EquationList `parser:"\"{\" @@ \"}\""`
}

// EquationList is a comma-separated list of equations, or the wildcard "_"
// standing for the empty list.
type EquationList struct {
	Pos    Position
	EndPos Position

	Wildcard  bool        `parser:"  @Wildcard"`
	Equations []*Equation `parser:"| @@ { \",\" @@ }"`
}

// Equation is a pending pair of terms. The surface forms "L = R", "L -> R"
// and "L <- R" all parse here; the parser normalises them so that checker
// and builder only ever see "=".
type Equation struct {
	Pos    Position
	EndPos Position

	Left  *Term  `parser:"@@"`
	Op    string `parser:"@(\"=\" | \"->\" | \"<-\")"`
	Right *Term  `parser:"@@"`
}

// Term is either a name or an agent applied to argument terms.
type Term struct {
	Pos    Position
	EndPos Position

	Name  *Name  `parser:"  @@"`
	Agent *Agent `parser:"| @@"`
}

// Agent is a constructor applied to an ordered list of argument terms.
type Agent struct {
	Pos    Position
	EndPos Position

	Name string  `parser:"@Ident"`
	Body []*Term `parser:"[ \"(\" @@ { \",\" @@ } \")\" ]"`
}

// Name is a linear variable, polarised input ("#x") or output ("@x").
type Name struct {
	Pos    Position
	EndPos Position

	In  string `parser:"  @NameIn"`
	Out string `parser:"| @NameOut"`
}

// Ident returns the variable name without its polarity sigil.
func (n *Name) Ident() string {
	if n.In != "" {
		return n.In[1:]
	}
	return n.Out[1:]
}

// IsInput reports whether the name was written with input polarity.
func (n *Name) IsInput() bool {
	return n.In != ""
}

// Rules returns the module's rules in source order.
func (m *Module) Rules() []*Rule {
	var rules []*Rule
	for _, item := range m.Items {
		if item.Rule != nil {
			rules = append(rules, item.Rule)
		}
	}
	return rules
}

// Nets returns the module's nets in source order.
func (m *Module) Nets() []*Net {
	var nets []*Net
	for _, item := range m.Items {
		if item.Net != nil {
			nets = append(nets, item.Net)
		}
	}
	return nets
}

// List returns the body equations, nil for the wildcard form.
func (el *EquationList) List() []*Equation {
	if el == nil || el.Wildcard {
		return nil
	}
	return el.Equations
}
