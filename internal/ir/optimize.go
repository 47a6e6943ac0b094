package ir

// Optimize runs the peephole passes over every rule in place.
//
// The single pass fuses a fresh allocation of the same agent as a rule
// endpoint with the endpoint's free into a reuse of the argument cell.
// The common rule shape "consume an incoming A, produce a fresh A(...)"
// then skips one free/malloc round trip.
func Optimize(program *Program) {
	for _, rule := range program.Rules {
		optimizeNewFree(rule, program.RuleMap)
	}
}

// optimizeNewFree rewrites one rule: if an Agent initializer allocates the
// left endpoint's agent and a FreeLeft instruction exists, both are
// removed and a ReuseLeft initializer is appended. Then the same for the
// right endpoint.
func optimizeNewFree(rule *Rule, ruleMap []RuleMapEntry) {
	entry := ruleMap[rule.Index]

	if at, index, ok := findAgentInit(rule.Initializers, entry.Left); ok {
		if free, ok := findFree(rule.Instructions, true); ok {
			rule.Initializers = removeInitializer(rule.Initializers, at)
			rule.Instructions = removeInstruction(rule.Instructions, free)
			rule.Initializers = append(rule.Initializers, InitReuseLeft{Index: index})
		}
	}

	if at, index, ok := findAgentInit(rule.Initializers, entry.Right); ok {
		if free, ok := findFree(rule.Instructions, false); ok {
			rule.Initializers = removeInitializer(rule.Initializers, at)
			rule.Instructions = removeInstruction(rule.Instructions, free)
			rule.Initializers = append(rule.Initializers, InitReuseRight{Index: index})
		}
	}
}

// findAgentInit locates the first fresh-agent initializer for the given
// agent id, returning its position and register index.
func findAgentInit(inits []Initializer, id AgentID) (at, index int, ok bool) {
	for i, init := range inits {
		if agent, isAgent := init.(InitAgent); isAgent && agent.ID == id {
			return i, agent.Index, true
		}
	}
	return 0, 0, false
}

func findFree(instructions []Instruction, left bool) (int, bool) {
	for i, inst := range instructions {
		if left {
			if _, ok := inst.(FreeLeft); ok {
				return i, true
			}
		} else {
			if _, ok := inst.(FreeRight); ok {
				return i, true
			}
		}
	}
	return 0, false
}

func removeInitializer(inits []Initializer, at int) []Initializer {
	return append(inits[:at], inits[at+1:]...)
}

func removeInstruction(instructions []Instruction, at int) []Instruction {
	return append(instructions[:at], instructions[at+1:]...)
}
