package ir

import (
	"fmt"
	"strings"
)

// String methods render the IR as pseudo-code, one statement per opcode.
// The VM quotes these in runtime errors; tests assert on them.

func (l Local) String() string {
	switch l.Kind {
	case LocalName:
		return fmt.Sprintf("x%d", l.Index)
	case LocalAgent:
		return fmt.Sprintf("a%d", l.Index)
	default:
		return fmt.Sprintf("s%d", l.Index)
	}
}

func (i InitName) String() string {
	return fmt.Sprintf("let x%d = new_name();", i.Index)
}

func (i InitAgent) String() string {
	return fmt.Sprintf("let a%d = new_agent(%d);", i.Index, i.ID)
}

func (i InitSlotFromLeft) String() string {
	return fmt.Sprintf("let s%d = left[%d];", i.Index, i.Slot)
}

func (i InitSlotFromRight) String() string {
	return fmt.Sprintf("let s%d = right[%d];", i.Index, i.Slot)
}

func (i InitReuseLeft) String() string {
	return fmt.Sprintf("let a%d = left;", i.Index)
}

func (i InitReuseRight) String() string {
	return fmt.Sprintf("let a%d = right;", i.Index)
}

func (i SetSlot) String() string {
	return fmt.Sprintf("%s[%d] = %s;", i.Target, i.Slot, i.Value)
}

func (i PushEquation) String() string {
	return fmt.Sprintf("push_equation(%s, %s); // %s", i.Left, i.Right, i.Description)
}

func (FreeLeft) String() string {
	return "free(left);"
}

func (FreeRight) String() string {
	return "free(right);"
}

func (r *Rule) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// %s\n", r.Description)
	fmt.Fprintf(&sb, "function rule_%d(left, right) {\n", r.Index)
	for _, init := range r.Initializers {
		fmt.Fprintf(&sb, "    %s\n", init)
	}
	for _, inst := range r.Instructions {
		fmt.Fprintf(&sb, "    %s\n", inst)
	}
	sb.WriteString("}\n")
	return sb.String()
}

func (f *Function) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "function func_%d() {\n", f.Index)
	for _, init := range f.Initializers {
		fmt.Fprintf(&sb, "    %s\n", init)
	}
	for _, inst := range f.Instructions {
		fmt.Fprintf(&sb, "    %s\n", inst)
	}
	outputs := make([]string, len(f.Outputs))
	for i, out := range f.Outputs {
		outputs[i] = out.String()
	}
	fmt.Fprintf(&sb, "    return %s\n", strings.Join(outputs, ", "))
	sb.WriteString("}\n")
	return sb.String()
}

func (p *Program) String() string {
	var sb strings.Builder

	sb.WriteString("// Agents\n")
	for _, agent := range p.Agents {
		fmt.Fprintf(&sb, "let %s = define_agent(%d);\n", agent.Name, agent.Arity)
	}
	sb.WriteString("\n// Rules\n")
	for _, rule := range p.Rules {
		sb.WriteString(rule.String())
		sb.WriteString("\n")
	}

	sb.WriteString("function init_rules() {\n")
	for _, entry := range p.RuleMap {
		fmt.Fprintf(&sb, "    rules[%d][%d] = rule_%d;\n", entry.Left, entry.Right, entry.Rule)
	}
	sb.WriteString("}\n")

	sb.WriteString("\n// Functions\n")
	for _, function := range p.Functions {
		sb.WriteString(function.String())
		sb.WriteString("\n")
	}

	return sb.String()
}
