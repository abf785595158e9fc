package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langcore/internal/ast"
	"langcore/internal/diagnostics"
	"langcore/internal/parser"
)

// parseUnit parses src as a single procedure and returns its tree and Unit,
// skipping the module-level unit CollectUnits always produces first.
func parseUnit(t *testing.T, src string) (*ast.Tree, *Unit) {
	t.Helper()
	symbols := ast.NewSymbolTable()
	tree := parser.Parse("scope_test.os", 1, src, symbols)
	require.Empty(t, tree.Errors, "fixture source must parse cleanly")
	units := CollectUnits(tree)
	require.Len(t, units, 2, "fixture must declare exactly one procedure")
	return tree, units[1]
}

func TestResolveScopeDeclaresParamsVarsAndLoopVars(t *testing.T) {
	tree, u := parseUnit(t, `Procedure Do(A)
	Var B;
	For Each C In A Do
	EndDo;
EndProcedure
`)
	scope, diags := resolveScope(tree, u)
	assert.Empty(t, diags)

	names := scope.LocalNames(tree.Symbols)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, names)

	for _, sym := range scope.order {
		local := scope.locals[sym]
		switch tree.Symbols.Name(sym) {
		case "A":
			assert.Equal(t, DeclParam, local.Kind)
		case "B":
			assert.Equal(t, DeclVar, local.Kind)
		case "C":
			assert.Equal(t, DeclLoopVar, local.Kind)
		}
	}
}

func TestResolveScopeFlagsAssignmentToUndeclaredName(t *testing.T) {
	tree, u := parseUnit(t, `Procedure Do()
	Var X;
	X = 1;
	Y = X;
EndProcedure
`)
	_, diags := resolveScope(tree, u)
	require.Len(t, diags, 1, "assigning to an undeclared name is not an implicit declaration")
	assert.Equal(t, diagnostics.CodeUndefinedVariable, diags[0].Code)
	assert.Contains(t, diags[0].Message, "Y")
}

func TestResolveScopeFlagsUndefinedVariable(t *testing.T) {
	tree, u := parseUnit(t, `Procedure Do()
	Var X;
	X = Y;
EndProcedure
`)
	_, diags := resolveScope(tree, u)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.CodeUndefinedVariable, diags[0].Code)
}

func TestResolveScopeFlagsDuplicateVarDeclaration(t *testing.T) {
	tree, u := parseUnit(t, `Procedure Do()
	Var X;
	Var X;
EndProcedure
`)
	_, diags := resolveScope(tree, u)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.CodeDuplicateDeclaration, diags[0].Code)
	require.Len(t, diags[0].Related, 1)
}

func TestResolveScopeMarksReferencedLocalsUsed(t *testing.T) {
	tree, u := parseUnit(t, `Procedure Do()
	Var X;
	Var Y;
	X = 1;
	Y = X;
EndProcedure
`)
	scope, diags := resolveScope(tree, u)
	assert.Empty(t, diags)

	for _, sym := range scope.order {
		if tree.Symbols.Name(sym) == "X" {
			assert.True(t, scope.locals[sym].Used, "X is read on the RHS of Y's assignment")
		}
	}
}
