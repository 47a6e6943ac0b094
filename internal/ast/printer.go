package ast

import (
	"strings"
)

// String methods render nodes back into normalised source form. The IR
// builder uses these as human-readable descriptions on rules and equations,
// so the format is stable: heads joined by "><", equations by "=".

func (m *Module) String() string {
	var sb strings.Builder
	for _, item := range m.Items {
		sb.WriteString(item.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

func (mi *ModuleItem) String() string {
	if mi.Rule != nil {
		return mi.Rule.String()
	}
	return mi.Net.String()
}

func (r *Rule) String() string {
	return r.Left.String() + " >< " + r.Right.String() + " => " + r.Body.String()
}

func (rt *RuleTerm) String() string {
	if len(rt.Body) == 0 {
		return rt.Agent
	}
	parts := make([]string, len(rt.Body))
	for i, name := range rt.Body {
		parts[i] = name.String()
	}
	return rt.Agent + "(" + strings.Join(parts, ", ") + ")"
}

func (n *Net) String() string {
	parts := make([]string, len(n.Interfaces))
	for i, term := range n.Interfaces {
		parts[i] = term.String()
	}
	return n.Name + " <| " + strings.Join(parts, ", ") + " |> { " + n.Body.String() + " }"
}

func (el *EquationList) String() string {
	eqs := el.List()
	if len(eqs) == 0 {
		return "_"
	}
	parts := make([]string, len(eqs))
	for i, eq := range eqs {
		parts[i] = eq.String()
	}
	return strings.Join(parts, ", ")
}

func (e *Equation) String() string {
	return e.Left.String() + " = " + e.Right.String()
}

func (t *Term) String() string {
	if t.Name != nil {
		return t.Name.String()
	}
	return t.Agent.String()
}

func (a *Agent) String() string {
	if len(a.Body) == 0 {
		return a.Name
	}
	parts := make([]string, len(a.Body))
	for i, term := range a.Body {
		parts[i] = term.String()
	}
	return a.Name + "(" + strings.Join(parts, ", ") + ")"
}

func (n *Name) String() string {
	if n.In != "" {
		return n.In
	}
	return n.Out
}
