package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zamuza/internal/errors"
	"zamuza/internal/ir"
)

func TestCompileWellFormedModule(t *testing.T) {
	program, diags, err := Compile([]Source{{
		Filename: "add.zz",
		Text: `S(#x) >< A(#y, #w) => #x = A(#y, @z), #w = S(#z)
O >< A(#y, @w) => #y = @w

Main <| #r |> { S(S(O)) = A(S(S(O)), @r) }`,
	}})

	require.NoError(t, err)
	require.Empty(t, diags)
	require.NotNil(t, program)

	assert.Len(t, program.Rules, 2)
	assert.Len(t, program.Functions, 1)
	assert.Equal(t, 0, program.EntryPoint)

	// The optimiser already ran: the successor rule reuses its endpoints.
	var reused bool
	for _, init := range program.Rules[0].Initializers {
		if _, ok := init.(ir.InitReuseLeft); ok {
			reused = true
		}
	}
	assert.True(t, reused)
}

func TestCompileReportsSyntaxError(t *testing.T) {
	program, diags, err := Compile([]Source{{Filename: "bad.zz", Text: `S(#x) >< => _`}})

	require.NoError(t, err)
	assert.Nil(t, program)
	require.NotEmpty(t, diags)
	assert.Equal(t, errors.ErrorSyntax, diags[0].Code)
	assert.Equal(t, "bad.zz", diags[0].Position.Filename)
}

func TestCompileReportsCheckErrors(t *testing.T) {
	program, diags, _ := Compile([]Source{{Filename: "bad.zz", Text: `F(#x, #x) >< G => _`}})

	assert.Nil(t, program)
	codes := make([]string, len(diags))
	for i, diag := range diags {
		codes[i] = diag.Code
	}
	assert.Contains(t, codes, errors.ErrorNonLinearRule)
	assert.Contains(t, codes, errors.ErrorNoMainFunction)
}

func TestCompileInternsAcrossFiles(t *testing.T) {
	program, diags, err := Compile([]Source{
		{Filename: "rules.zz", Text: `S(#x) >< E => #x = E
O >< E => _`},
		{Filename: "main.zz", Text: `Main <| |> { S(O) = E }`},
	})

	require.NoError(t, err)
	require.Empty(t, diags)

	names := make(map[string]int)
	for _, agent := range program.Agents {
		names[agent.Name]++
	}
	assert.Equal(t, 1, names["S"], "Agents intern across files by symbol name")
	assert.Equal(t, 1, names["E"])
}

func TestCompileArityConflictAcrossFiles(t *testing.T) {
	program, diags, err := Compile([]Source{
		{Filename: "one.zz", Text: `S(#x) >< E => #x = E
O >< E => _`},
		{Filename: "two.zz", Text: `Main <| |> { S(O, O) = E }`},
	})

	require.NoError(t, err)
	assert.Nil(t, program)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.ErrorAgentArityConflict, diags[0].Code)
	assert.Equal(t, "two.zz", diags[0].Position.Filename)
}

func TestCompileDuplicateMain(t *testing.T) {
	program, diags, err := Compile([]Source{
		{Filename: "one.zz", Text: `Main <| |> { O = O2 }`},
		{Filename: "two.zz", Text: `Main <| |> { E = E2 }`},
	})

	require.NoError(t, err)
	assert.Nil(t, program)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.ErrorDuplicateMain, diags[0].Code)
	assert.Equal(t, "two.zz", diags[0].Position.Filename)
}
