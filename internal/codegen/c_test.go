package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zamuza/internal/ir"
	"zamuza/internal/parser"
	"zamuza/internal/semantic"
)

func emit(t *testing.T, source string, opts Options) string {
	t.Helper()
	module, err := parser.ParseSource("test.zz", source)
	require.NoError(t, err)
	require.Empty(t, semantic.CheckModule(module))

	program, err := ir.BuildProgram(module)
	require.NoError(t, err)
	ir.Optimize(program)

	var sb strings.Builder
	require.NoError(t, EmitC(&sb, program, opts))
	return sb.String()
}

const peano = `S(#x) >< A(#y, #w) => #x = A(#y, @z), #w = S(#z)
O >< A(#y, @w) => #y = @w

Main <| #r |> { S(S(O)) = A(S(S(O)), @r) }`

func TestEmitStructure(t *testing.T) {
	text := emit(t, peano, Options{StackSize: 2000})

	assert.Contains(t, text, "#define MAX_STACK_SIZE 2000")
	assert.Contains(t, text, "#define AGENT_COUNT 4")
	assert.Contains(t, text, `char* AGENTS[] = { "$", "S", "A", "O" };`)
	assert.Contains(t, text, "size_t ARITY[] = { 1, 1, 2, 0 };")
	assert.Contains(t, text, "size_t NAME_COUNTER = AGENT_COUNT;")

	// One function per rule plus the dispatch table.
	assert.Contains(t, text, "void rule_0(size_t* left, size_t* right) {")
	assert.Contains(t, text, "void rule_1(size_t* left, size_t* right) {")
	assert.Contains(t, text, "RULES[1][2] = rule_0;")
	assert.Contains(t, text, "RULES[2][3] = rule_1;")

	// The net constructor returns its outputs; main prints and frees them.
	assert.Contains(t, text, "size_t** func_0() {")
	assert.Contains(t, text, "outputs[0] = x0;")
	assert.Contains(t, text, "int main(void) {")
	assert.Contains(t, text, "size_t** outputs = func_0();")
	assert.Contains(t, text, "print_term(stdout, outputs[i], 1000);")
	assert.Contains(t, text, "free_term(outputs[i]);")
}

func TestEmitRuleBody(t *testing.T) {
	text := emit(t, peano, Options{StackSize: 1024})

	// The optimised successor rule reuses both argument cells.
	assert.Contains(t, text, "size_t* s0 = (size_t*) left[1];")
	assert.Contains(t, text, "size_t* s1 = (size_t*) right[1];")
	assert.Contains(t, text, "size_t* a1 = left;")
	assert.Contains(t, text, "size_t* a0 = right;")
	assert.Contains(t, text, "push_equation(s0, a0);  // #x = A(#y, @z)")

	// The zero rule allocates nothing, so it frees both endpoints.
	assert.Contains(t, text, "free(left);")
	assert.Contains(t, text, "free(right);")

	// Rule descriptions survive as comments.
	assert.Contains(t, text, "// S(#x) >< A(#y, #w) => #x = A(#y, @z), #w = S(#z)")
}

func TestEmitRuntimeFragment(t *testing.T) {
	text := emit(t, peano, Options{StackSize: 1024})

	assert.Contains(t, text, "#define IS_NAME(term) ((term)[0] >= AGENT_COUNT)")
	assert.Contains(t, text, "size_t* new_agent(size_t agent_id)")
	assert.Contains(t, text, "void run()")
	assert.Contains(t, text, "error: no rule for")
	assert.Contains(t, text, "equation stack overflow")
	assert.NotContains(t, text, "#define ZZ_TRACE")
	assert.NotContains(t, text, "#define ZZ_TIMING")
}

func TestEmitToggles(t *testing.T) {
	text := emit(t, peano, Options{StackSize: 1024, Trace: true, Timing: true})

	assert.Contains(t, text, "#define ZZ_TRACE")
	assert.Contains(t, text, "#define ZZ_TIMING")
	assert.Contains(t, text, "clock_t start = clock();")
	assert.Contains(t, text, "[Reductions: %zu, CPU time: %f, R/s: %f]")
}

func TestEmitZeroStack(t *testing.T) {
	text := emit(t, peano, Options{StackSize: 0})

	assert.Contains(t, text, "#define MAX_STACK_SIZE 0")
	assert.Contains(t, text, "EQ_STACK[MAX_STACK_SIZE + 1][2]", "A zero bound still declares a non-empty array")
}
