package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langcore/internal/diagnostics"
)

func TestRunDataflowFlagsReadBeforeAssignment(t *testing.T) {
	tree, u := parseUnit(t, `Procedure Do()
	Var X;
	Var Y;
	Y = X;
EndProcedure
`)
	scope, scopeDiags := resolveScope(tree, u)
	require.Empty(t, scopeDiags)

	diags := runDataflow(tree, u, scope)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.CodeUseBeforeInit, diags[0].Code)
}

func TestRunDataflowTreatsParamsAsInitialized(t *testing.T) {
	tree, u := parseUnit(t, `Procedure Do(A)
	Var Y;
	Y = A;
EndProcedure
`)
	scope, scopeDiags := resolveScope(tree, u)
	require.Empty(t, scopeDiags)

	diags := runDataflow(tree, u, scope)
	assert.Empty(t, diags, "a parameter is always initialized on entry")
}

func TestRunDataflowDoesNotFlagUnconditionallyAssignedLocal(t *testing.T) {
	tree, u := parseUnit(t, `Procedure Do()
	Var X;
	Var Y;
	X = 1;
	Y = X;
EndProcedure
`)
	scope, scopeDiags := resolveScope(tree, u)
	require.Empty(t, scopeDiags)

	diags := runDataflow(tree, u, scope)
	assert.Empty(t, diags)
}

func TestRunDataflowDoesNotFlagReadAfterPartialBranchAssignment(t *testing.T) {
	tree, u := parseUnit(t, `Procedure Do(Flag)
	Var X;
	Var Y;
	If Flag Then
		X = 1;
	EndIf;
	Y = X;
EndProcedure
`)
	scope, scopeDiags := resolveScope(tree, u)
	require.Empty(t, scopeDiags)

	diags := runDataflow(tree, u, scope)
	assert.Empty(t, diags, "a read after a branch that only maybe initialized X is not treated as definitely uninitialized")
}

func TestRunDataflowFlagsReadWhenNeitherBranchAssigns(t *testing.T) {
	tree, u := parseUnit(t, `Procedure Do(Flag)
	Var X;
	Var Y;
	If Flag Then
		Y = 1;
	Else
		Y = 2;
	EndIf;
	Y = X;
EndProcedure
`)
	scope, scopeDiags := resolveScope(tree, u)
	require.Empty(t, scopeDiags)

	diags := runDataflow(tree, u, scope)
	require.Len(t, diags, 1, "X stays uninitialized on every path through the if")
	assert.Equal(t, diagnostics.CodeUseBeforeInit, diags[0].Code)
}

func TestRunDataflowAllowsReadWhenBothBranchesAssign(t *testing.T) {
	tree, u := parseUnit(t, `Procedure Do(Flag)
	Var X;
	Var Y;
	If Flag Then
		X = 1;
	Else
		X = 2;
	EndIf;
	Y = X;
EndProcedure
`)
	scope, scopeDiags := resolveScope(tree, u)
	require.Empty(t, scopeDiags)

	diags := runDataflow(tree, u, scope)
	assert.Empty(t, diags, "X is initialized on every path once both branches assign it")
}
