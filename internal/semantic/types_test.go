package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langcore/internal/ast"
	"langcore/internal/entity"
	"langcore/internal/parser"
)

func TestInferTypesNarrowsLocalFromNewExpression(t *testing.T) {
	snap := buildSnapshot(t, catalogObjectEntity())
	symbols := ast.NewSymbolTable()
	tree := parser.Parse("types_test.os", 1, `Procedure Do()
	Var Cat;
	Cat = New CatalogObject;
EndProcedure
`, symbols)
	require.Empty(t, tree.Errors)

	units := CollectUnits(tree)
	u := units[1]
	scope, _ := resolveScope(tree, u)
	env := inferTypes(tree, u, scope, snap)

	var catSym ast.SymbolID
	for _, sym := range scope.order {
		if tree.Symbols.Name(sym) == "Cat" {
			catSym = sym
		}
	}
	assert.Equal(t, "CatalogObject", env.LocalType(catSym))
}

func TestInferTypesNarrowsToUnknownForNonConstructibleType(t *testing.T) {
	ref := &entity.Entity{
		ID:            "platform:CatalogRef",
		QualifiedName: "CatalogRef",
		Type:          entity.TypePlatform,
		Kind:          entity.KindCollection,
		Constructible: false,
	}
	snap := buildSnapshot(t, ref)
	symbols := ast.NewSymbolTable()
	tree := parser.Parse("types_test.os", 1, `Procedure Do()
	Var A;
	A = New CatalogRef;
EndProcedure
`, symbols)
	require.Empty(t, tree.Errors)

	units := CollectUnits(tree)
	u := units[1]
	scope, _ := resolveScope(tree, u)
	env := inferTypes(tree, u, scope, snap)

	var aSym ast.SymbolID
	for _, sym := range scope.order {
		if tree.Symbols.Name(sym) == "A" {
			aSym = sym
		}
	}
	assert.Equal(t, typeUnknown, env.LocalType(aSym), "new on a non-constructible type narrows to Unknown, not the bare type name")
}

func TestInferTypesNarrowsToUnknownForUnresolvableType(t *testing.T) {
	snap := buildSnapshot(t, catalogObjectEntity())
	symbols := ast.NewSymbolTable()
	tree := parser.Parse("types_test.os", 1, `Procedure Do()
	Var A;
	A = New NoSuchType;
EndProcedure
`, symbols)
	require.Empty(t, tree.Errors)

	units := CollectUnits(tree)
	u := units[1]
	scope, _ := resolveScope(tree, u)
	env := inferTypes(tree, u, scope, snap)

	var aSym ast.SymbolID
	for _, sym := range scope.order {
		if tree.Symbols.Name(sym) == "A" {
			aSym = sym
		}
	}
	assert.Equal(t, typeUnknown, env.LocalType(aSym))
}

func TestInferTypesFallsBackToUnknownOnConflictingAssignments(t *testing.T) {
	snap := buildSnapshot(t, catalogObjectEntity())
	symbols := ast.NewSymbolTable()
	tree := parser.Parse("types_test.os", 1, `Procedure Do()
	Var X;
	X = New CatalogObject;
	X = "a string";
EndProcedure
`, symbols)
	require.Empty(t, tree.Errors)

	units := CollectUnits(tree)
	u := units[1]
	scope, _ := resolveScope(tree, u)
	env := inferTypes(tree, u, scope, snap)

	var xSym ast.SymbolID
	for _, sym := range scope.order {
		if tree.Symbols.Name(sym) == "X" {
			xSym = sym
		}
	}
	assert.Equal(t, typeUnknown, env.LocalType(xSym), "two incompatible assignment sites widen the local to Unknown")
}

func TestInferTypesResolvesMemberPropertyType(t *testing.T) {
	snap := buildSnapshot(t, catalogObjectEntity())
	symbols := ast.NewSymbolTable()
	tree := parser.Parse("types_test.os", 1, `Procedure Do()
	Var Cat;
	Var Code;
	Cat = New CatalogObject;
	Code = Cat.Code;
EndProcedure
`, symbols)
	require.Empty(t, tree.Errors)

	units := CollectUnits(tree)
	u := units[1]
	scope, _ := resolveScope(tree, u)
	env := inferTypes(tree, u, scope, snap)

	var codeSym ast.SymbolID
	for _, sym := range scope.order {
		if tree.Symbols.Name(sym) == "Code" {
			codeSym = sym
		}
	}
	assert.Equal(t, "String", env.LocalType(codeSym))
}

func TestInferTypesAssignsLiteralTypes(t *testing.T) {
	snap := buildSnapshot(t, catalogObjectEntity())
	symbols := ast.NewSymbolTable()
	tree := parser.Parse("types_test.os", 1, `Procedure Do()
	Var N;
	Var S;
	Var B;
	N = 1;
	S = "text";
	B = True;
EndProcedure
`, symbols)
	require.Empty(t, tree.Errors)

	units := CollectUnits(tree)
	u := units[1]
	scope, _ := resolveScope(tree, u)
	env := inferTypes(tree, u, scope, snap)

	names := map[string]string{}
	for _, sym := range scope.order {
		names[tree.Symbols.Name(sym)] = env.LocalType(sym)
	}
	assert.Equal(t, "Number", names["N"])
	assert.Equal(t, "String", names["S"])
	assert.Equal(t, "Boolean", names["B"])
}
