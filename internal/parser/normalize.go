package parser

import (
	"zamuza/internal/ast"
)

// normalizeModule rewrites mirrored surface forms in place:
//
//	B <> A  becomes  A >< B   (the textual first head is the right head)
//	L -> R  becomes  L = R
//	L <- R  becomes  R = L
func normalizeModule(module *ast.Module) {
	for _, item := range module.Items {
		if item.Rule != nil {
			normalizeRule(item.Rule)
		}
		if item.Net != nil {
			normalizeEquations(item.Net.Body)
		}
	}
}

func normalizeRule(rule *ast.Rule) {
	if rule.Op == "<>" {
		rule.Left, rule.Right = rule.Right, rule.Left
		rule.Op = "><"
	}
	normalizeEquations(rule.Body)
}

func normalizeEquations(body *ast.EquationList) {
	for _, eq := range body.List() {
		switch eq.Op {
		case "<-":
			eq.Left, eq.Right = eq.Right, eq.Left
		case "->":
			// same direction as "="
		}
		eq.Op = "="
	}
}
