package vm

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zamuza/internal/ir"
	"zamuza/internal/parser"
	"zamuza/internal/semantic"
)

// compile runs the whole front half so the machine tests exercise the
// same IR the CLI would.
func compile(t *testing.T, source string) *ir.Program {
	t.Helper()
	module, err := parser.ParseSource("test.zz", source)
	require.NoError(t, err, "Source should parse")
	require.Empty(t, semantic.CheckModule(module), "Source should check")

	program, err := ir.BuildProgram(module)
	require.NoError(t, err)
	ir.Optimize(program)
	return program
}

func run(t *testing.T, source string, opts Options) ([]string, error) {
	t.Helper()
	return New(compile(t, source), opts).Run()
}

func mustRun(t *testing.T, source string) []string {
	t.Helper()
	outputs, err := run(t, source, Options{StackSize: DefaultStackSize})
	require.NoError(t, err)
	return outputs
}

func TestPeanoAddition(t *testing.T) {
	outputs := mustRun(t, `S(#x) >< A(#y, #w) => #x = A(#y, @z), #w = S(#z)
O >< A(#y, @w) => #y = @w

Main <| #r |> { S(S(O)) = A(S(S(O)), @r) }`)

	assert.Equal(t, []string{"S(S(S(S(O))))"}, outputs, "2 + 2 = 4")
}

func TestPeanoMultiplication(t *testing.T) {
	outputs := mustRun(t, `S(#x) >< A(#y, #w) => #x = A(#y, @z), #w = S(#z)
O >< A(#y, @w) => #y = @w
S(#x) >< M(#y, #w) => #x = M(@u, @z), #z = A(@v, #w), #y = D(#u, #v)
O >< M(#y, #w) => #y = E, #w = O
S(#x) >< D(#a, #b) => #a = S(@c), #b = S(@d), #x = D(#c, #d)
O >< D(#a, #b) => #a = O, #b = O
S(#x) >< E => #x = E
O >< E => _

Main <| #r |> { S(S(O)) = M(S(S(O)), @r) }`)

	assert.Equal(t, []string{"S(S(S(S(O))))"}, outputs, "2 * 2 = 4")
}

func TestMultiplicationByZero(t *testing.T) {
	outputs := mustRun(t, `S(#x) >< A(#y, #w) => #x = A(#y, @z), #w = S(#z)
O >< A(#y, @w) => #y = @w
S(#x) >< M(#y, #w) => #x = M(@u, @z), #z = A(@v, #w), #y = D(#u, #v)
O >< M(#y, #w) => #y = E, #w = O
S(#x) >< D(#a, #b) => #a = S(@c), #b = S(@d), #x = D(#c, #d)
O >< D(#a, #b) => #a = O, #b = O
S(#x) >< E => #x = E
O >< E => _

Main <| #r |> { O = M(S(S(O)), @r) }`)

	assert.Equal(t, []string{"O"}, outputs, "0 * 2 = 0, the eraser consumes the multiplicand")
}

func TestEmptyRuleBody(t *testing.T) {
	outputs := mustRun(t, `O >< E => _

Main <| |> { O = E }`)

	assert.Empty(t, outputs, "Zero-arity interaction with an empty body just consumes both cells")
}

func TestMultipleOutputsInSourceOrder(t *testing.T) {
	outputs := mustRun(t, `O >< A(#y, @w) => #y = @w

Main <| #a, #b |> { O = A(S(O), @a), O = A(O, @b) }`)

	assert.Equal(t, []string{"S(O)", "O"}, outputs)
}

func TestSelfInteraction(t *testing.T) {
	outputs := mustRun(t, `A >< A => _

Main <| |> { A = A }`)

	assert.Empty(t, outputs, "A rule between an agent and itself canonicalises trivially")
}

func TestUnboundNamesPrintAsNames(t *testing.T) {
	outputs := mustRun(t, `Main <| #r, @q |> { #q = @r }`)

	require.Len(t, outputs, 2)
	assert.Regexp(t, regexp.MustCompile(`^x\d+$`), outputs[0])
	assert.Equal(t, outputs[0], outputs[1], "Both interfaces reach the same cell through the indirection")
}

func TestRuleNotFound(t *testing.T) {
	_, err := run(t, `S(#x) >< E => #x = E

Main <| |> { O = E }`, Options{StackSize: DefaultStackSize})

	require.Error(t, err)
	var notFound *RuleNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "E", notFound.Left, "The pair is canonicalised before lookup")
	assert.Equal(t, "O", notFound.Right)
}

func TestStackOverflowAtZero(t *testing.T) {
	_, err := run(t, `Main <| |> { O = E }`, Options{StackSize: 0})

	require.Error(t, err)
	var overflow *StackOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, 0, overflow.Limit)
	assert.Contains(t, overflow.Error(), "--stack-size")
}

func TestReuseKeepsCellBalance(t *testing.T) {
	program := compile(t, `S(#x) >< A(#y, #w) => #x = A(#y, @z), #w = S(#z)
O >< A(#y, @w) => #y = @w

Main <| #r |> { S(S(O)) = A(S(S(O)), @r) }`)

	machine := New(program, Options{StackSize: DefaultStackSize})
	outputs, err := machine.Run()
	require.NoError(t, err)
	require.Len(t, outputs, 1)

	// Everything still reachable from the output: four successors, one
	// zero, and nothing leaked beyond the bound names that became
	// indirections along the way.
	assert.Equal(t, "S(S(S(S(O))))", outputs[0])
	assert.Equal(t, 8, machine.heap.Live(), "Four S, one O and three indirections stay live")
}
