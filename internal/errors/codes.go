package errors

// Error codes for the zamuza compiler. The codes are stable identifiers
// used in diagnostics and tests.
//
// Ranges:
// E0001-E0099: semantic analysis errors
// E0100-E0199: parser errors
const (
	// E0001: a name appears more than once across a rule's head arguments
	ErrorNonLinearRule = "E0001"

	// E0002: a name does not appear exactly twice in its scope
	ErrorVariableCount = "E0002"

	// E0003: two rules share the same unordered pair of head agents
	ErrorOverlappingRules = "E0003"

	// E0004: a name is used as input on both of its occurrences
	ErrorMultipleTimesAsInput = "E0004"

	// E0005: a name is used as output on both of its occurrences
	ErrorMultipleTimesAsOutput = "E0005"

	// E0006: an input name appears on the right side of an equation
	ErrorMisdirectedInput = "E0006"

	// E0007: an output name appears on the left side of an equation
	ErrorMisdirectedOutput = "E0007"

	// E0008: the module does not define a net named Main
	ErrorNoMainFunction = "E0008"

	// E0009: an agent symbol is used with conflicting arities
	ErrorAgentArityConflict = "E0009"

	// E0010: more than one net named Main
	ErrorDuplicateMain = "E0010"

	// E0100: syntax error from the parser
	ErrorSyntax = "E0100"
)

// Description returns a human-readable description of an error code.
func Description(code string) string {
	switch code {
	case ErrorNonLinearRule:
		return "Variable appears more than once in a rule's head arguments"
	case ErrorVariableCount:
		return "Variable must appear exactly twice in its scope"
	case ErrorOverlappingRules:
		return "Two rules share the same pair of head agents"
	case ErrorMultipleTimesAsInput:
		return "Variable appears more than once as input"
	case ErrorMultipleTimesAsOutput:
		return "Variable appears more than once as output"
	case ErrorMisdirectedInput:
		return "Input variable on the right side of an equation"
	case ErrorMisdirectedOutput:
		return "Output variable on the left side of an equation"
	case ErrorNoMainFunction:
		return "No net named Main"
	case ErrorAgentArityConflict:
		return "Agent used with conflicting arities"
	case ErrorDuplicateMain:
		return "More than one net named Main"
	case ErrorSyntax:
		return "Syntax error"
	default:
		return "Unknown error code"
	}
}
