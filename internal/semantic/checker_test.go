package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zamuza/internal/ast"
	"zamuza/internal/errors"
	"zamuza/internal/parser"
)

func check(t *testing.T, source string) []errors.CompilerError {
	t.Helper()
	module, err := parser.ParseSource("test.zz", source)
	require.NoError(t, err, "Source should parse")
	return CheckModule(module)
}

func codes(diags []errors.CompilerError) []string {
	result := make([]string, len(diags))
	for i, diag := range diags {
		result[i] = diag.Code
	}
	return result
}

func TestCheckValidModule(t *testing.T) {
	diags := check(t, `S(#x) >< A(#y, #w) => #x = A(#y, @z), #w = S(#z)
O >< A(#y, @w) => #y = @w

Main <| #r |> { S(S(O)) = A(S(S(O)), @r) }`)

	assert.Empty(t, diags, "Peano addition should check cleanly")
}

func TestCheckNonLinearRule(t *testing.T) {
	diags := check(t, `F(#x, #x) >< G => _

Main <| |> { _ }`)

	require.NotEmpty(t, diags)
	assert.Contains(t, codes(diags), errors.ErrorNonLinearRule)
}

func TestCheckNonLinearAcrossHeads(t *testing.T) {
	diags := check(t, `F(#x) >< G(#x) => _

Main <| |> { _ }`)

	require.NotEmpty(t, diags)
	assert.Contains(t, codes(diags), errors.ErrorNonLinearRule, "Linearity spans both heads' argument lists")
}

func TestCheckVariableCountInRule(t *testing.T) {
	diags := check(t, `S(#x) >< E => #x = E, #x = E

Main <| |> { _ }`)

	require.NotEmpty(t, diags)
	assert.Contains(t, codes(diags), errors.ErrorVariableCount, "x appears three times")
}

func TestCheckVariableCountInNet(t *testing.T) {
	diags := check(t, `Main <| #r |> { _ }`)

	require.NotEmpty(t, diags)
	assert.Contains(t, codes(diags), errors.ErrorVariableCount, "r appears only once")
}

func TestCheckVariableCountNested(t *testing.T) {
	diags := check(t, `Main <| #r |> { S(S(@r)) = S(@q) }`)

	require.NotEmpty(t, diags)
	assert.Contains(t, codes(diags), errors.ErrorVariableCount, "Occurrences nested inside agents are counted")
}

func TestCheckOverlappingRules(t *testing.T) {
	diags := check(t, `A >< B => _
B >< A => _

Main <| |> { _ }`)

	require.NotEmpty(t, diags)
	var overlap *errors.CompilerError
	for i := range diags {
		if diags[i].Code == errors.ErrorOverlappingRules {
			overlap = &diags[i]
		}
	}
	require.NotNil(t, overlap, "Overlap is keyed by the unordered agent pair")
	assert.NotNil(t, overlap.Secondary, "Overlap diagnostic points at both rules")
	assert.Equal(t, 1, overlap.Secondary.Position.Line)
	assert.Equal(t, 2, overlap.Position.Line)
}

func TestCheckNoMain(t *testing.T) {
	diags := check(t, `O >< E => _`)

	require.NotEmpty(t, diags)
	assert.Contains(t, codes(diags), errors.ErrorNoMainFunction)
}

func TestCheckMisdirectedOutput(t *testing.T) {
	diags := check(t, `Main <| #r |> { @r = O }`)

	require.NotEmpty(t, diags)
	assert.Contains(t, codes(diags), errors.ErrorMisdirectedOutput, "Bare output name may not be a left endpoint")
}

func TestCheckMisdirectedInput(t *testing.T) {
	diags := check(t, `S(#x) >< E => E = #x

Main <| |> { _ }`)

	require.NotEmpty(t, diags)
	assert.Contains(t, codes(diags), errors.ErrorMisdirectedInput, "Bare input name may not be a right endpoint")
}

func TestCheckMultipleTimesAsInput(t *testing.T) {
	diags := check(t, `Main <| #r |> { S(#r) = S(@q), #q = O }`)

	require.NotEmpty(t, diags)
	assert.Contains(t, codes(diags), errors.ErrorMultipleTimesAsInput, "Interface #r then body #r is input twice")
}

func TestCheckMultipleTimesAsOutput(t *testing.T) {
	diags := check(t, `Main <| |> { S(@q) = S(@q) }`)

	require.NotEmpty(t, diags)
	assert.Contains(t, codes(diags), errors.ErrorMultipleTimesAsOutput)
}

func TestCheckRuleHeadSeedsOppositeRole(t *testing.T) {
	// Head arguments act as outputs inside the rule body, so "#y" in the
	// head pairs with an input occurrence in the body.
	diags := check(t, `O >< A(#y, @w) => #y = @w

Main <| |> { _ }`)

	assert.Empty(t, diags)
}

func TestCheckPolarityRecursesIntoAgents(t *testing.T) {
	diags := check(t, `Main <| |> { S(S(#q)) = S(S(#q)) }`)

	require.NotEmpty(t, diags)
	assert.Contains(t, codes(diags), errors.ErrorMultipleTimesAsInput, "Deeply nested occurrences are still balanced")
}

func TestCheckAggregatesAcrossItems(t *testing.T) {
	diags := check(t, `F(#x, #x) >< G => _
F2(#a, #a) >< G2 => _`)

	count := 0
	for _, diag := range diags {
		if diag.Code == errors.ErrorNonLinearRule {
			count++
		}
	}
	assert.Equal(t, 2, count, "Both broken rules are reported in one pass")
	assert.Contains(t, codes(diags), errors.ErrorNoMainFunction, "Missing Main reported alongside")
}

func TestCheckModulesSharedEntryPoint(t *testing.T) {
	rules, err := parser.ParseSource("rules.zz", `O >< E => _`)
	require.NoError(t, err)
	main, err := parser.ParseSource("main.zz", `Main <| |> { O = E }`)
	require.NoError(t, err)

	diags := CheckModules([]*ast.Module{rules, main})
	assert.Empty(t, diags, "Main may live in any file of the compilation")
}

func TestCheckModulesOverlapAcrossFiles(t *testing.T) {
	one, err := parser.ParseSource("one.zz", `A >< B => _`)
	require.NoError(t, err)
	two, err := parser.ParseSource("two.zz", `B >< A => _

Main <| |> { _ }`)
	require.NoError(t, err)

	diags := CheckModules([]*ast.Module{one, two})
	assert.Contains(t, codes(diags), errors.ErrorOverlappingRules, "Overlap is checked across files")
}

func TestCheckEmptyRuleBody(t *testing.T) {
	diags := check(t, `O >< E => _

Main <| |> { _ }`)

	assert.Empty(t, diags, "Wildcard bodies are legal")
}
