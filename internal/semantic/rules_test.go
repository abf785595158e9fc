package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langcore/internal/diagnostics"
)

func TestCheckDeadCodeAndUnusedFlagsUnreachableStatement(t *testing.T) {
	tree, u := parseUnit(t, `Procedure Do()
	Var X;
	Return;
	X = 1;
EndProcedure
`)
	scope, scopeDiags := resolveScope(tree, u)
	require.Empty(t, scopeDiags)

	diags := checkDeadCodeAndUnused(tree, u, scope)

	var codes []string
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, diagnostics.CodeDeadCode)
}

func TestCheckDeadCodeAndUnusedFlagsUnusedLocal(t *testing.T) {
	tree, u := parseUnit(t, `Procedure Do()
	Var X;
	Var Y;
	Y = 1;
EndProcedure
`)
	scope, scopeDiags := resolveScope(tree, u)
	require.Empty(t, scopeDiags)

	diags := checkDeadCodeAndUnused(tree, u, scope)
	require.Len(t, diags, 1, "only X, which is never referenced at all, counts as unused")
	assert.Equal(t, diagnostics.CodeUnusedLocal, diags[0].Code)
	assert.Contains(t, diags[0].Message, "X")
}

func TestCheckDeadCodeAndUnusedDoesNotFlagParams(t *testing.T) {
	tree, u := parseUnit(t, `Procedure Do(A)
EndProcedure
`)
	scope, scopeDiags := resolveScope(tree, u)
	require.Empty(t, scopeDiags)

	diags := checkDeadCodeAndUnused(tree, u, scope)
	assert.Empty(t, diags, "an unused parameter is not flagged the way an unused Var local is")
}
