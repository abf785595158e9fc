// Package semantic runs the fixed pass pipeline over a parsed file: scope
// resolution, use-before-init dataflow, forward type inference, and call/
// member validation against the Unified Type Index. Passes run
// in that order within one Analyze call; each later pass consumes the
// environment the earlier ones built rather than re-deriving it.
package semantic

import (
	"context"

	"langcore/internal/ast"
	"langcore/internal/diagnostics"
	"langcore/internal/entity"
	"langcore/internal/index"
)

// Unit is one analyzable body: the module-level script, or a single
// procedure/function. The Language scopes locals per-unit, not per-block
// (an `if` body shares its enclosing procedure's locals).
type Unit struct {
	Decl  ast.NodeID // KindModule or KindProcedure/KindFunction
	Name  string
	Stmts []ast.NodeID // top-level statements of this unit, in source order
}

// Result carries the per-unit environments a later stage (LSP hover,
// toolserver introspection) might want without recomputing them.
type Result struct {
	Units    []*Unit
	Scopes   map[ast.NodeID]*Scope // Unit.Decl -> its Scope
	TypeEnvs map[ast.NodeID]*TypeEnv
}

// Analyze runs the full pipeline over tree and returns both a Result (for
// incremental callers that want the intermediate environments) and the
// diagnostics the passes produced. ctx is the execution context the file is
// being analyzed for (Client/Server/MobileApp), used by call validation's
// availability check.
func Analyze(ctx context.Context, tree *ast.Tree, src string, snap *index.Snapshot, execCtx entity.Availability) (Result, []diagnostics.Diagnostic) {
	var diags []diagnostics.Diagnostic

	units := CollectUnits(tree)
	scopes := make(map[ast.NodeID]*Scope, len(units))
	typeEnvs := make(map[ast.NodeID]*TypeEnv, len(units))

	for _, u := range units {
		scope, env, unitDiags := AnalyzeUnit(ctx, tree, u, snap, execCtx)
		scopes[u.Decl] = scope
		typeEnvs[u.Decl] = env
		diags = append(diags, unitDiags...)
	}

	return Result{Units: units, Scopes: scopes, TypeEnvs: typeEnvs}, diags
}

// AnalyzeUnit runs the five-pass pipeline restricted to a single Unit;
// Analyze calls it once per unit. The LSP façade does not call it: it chains
// the single-pass wrappers below itself so it can skip ValidateCalls for a
// unit whose fingerprint is unchanged.
func AnalyzeUnit(ctx context.Context, tree *ast.Tree, u *Unit, snap *index.Snapshot, execCtx entity.Availability) (*Scope, *TypeEnv, []diagnostics.Diagnostic) {
	var diags []diagnostics.Diagnostic

	scope, scopeDiags := resolveScope(tree, u)
	diags = append(diags, scopeDiags...)

	dfDiags := runDataflow(tree, u, scope)
	diags = append(diags, dfDiags...)

	env := inferTypes(tree, u, scope, snap)

	callDiags := validateCalls(ctx, tree, u, env, snap, execCtx)
	diags = append(diags, callDiags...)

	diags = append(diags, checkDeadCodeAndUnused(tree, u, scope)...)

	return scope, env, diags
}

// ResolveScope, InferTypes, RunDataflow, ValidateCalls and
// CheckDeadCodeAndUnused expose the individual passes AnalyzeUnit chains
// together. The LSP façade's incremental re-analysis uses these directly so
// it can skip re-running ValidateCalls (the pass that queries the Unified
// Index) for a unit whose fingerprint hasn't changed, while still keeping
// scope and type information current against the unit's latest parse.

// ResolveScope declares every local in u and reports undeclared references.
func ResolveScope(tree *ast.Tree, u *Unit) (*Scope, []diagnostics.Diagnostic) {
	return resolveScope(tree, u)
}

// RunDataflow checks for use-before-init against an already-resolved scope.
func RunDataflow(tree *ast.Tree, u *Unit, scope *Scope) []diagnostics.Diagnostic {
	return runDataflow(tree, u, scope)
}

// InferTypes computes per-node and per-local types for u.
func InferTypes(tree *ast.Tree, u *Unit, scope *Scope, snap *index.Snapshot) *TypeEnv {
	return inferTypes(tree, u, scope, snap)
}

// ValidateCalls checks member access, calls, and `new` expressions in u
// against snap. This is the one pass that consults the Unified Index rather
// than purely local AST state, and so the one worth skipping when a unit's
// fingerprint is unchanged.
func ValidateCalls(ctx context.Context, tree *ast.Tree, u *Unit, env *TypeEnv, snap *index.Snapshot, execCtx entity.Availability) []diagnostics.Diagnostic {
	return validateCalls(ctx, tree, u, env, snap, execCtx)
}

// CheckDeadCodeAndUnused reports unreachable statements and unused locals.
func CheckDeadCodeAndUnused(tree *ast.Tree, u *Unit, scope *Scope) []diagnostics.Diagnostic {
	return checkDeadCodeAndUnused(tree, u, scope)
}

// CollectUnits splits tree into the module-level unit plus one unit per
// declared procedure/function.
func CollectUnits(tree *ast.Tree) []*Unit {
	root := tree.Root()
	if root == ast.NilNode {
		return nil
	}

	moduleUnit := &Unit{Decl: root, Name: "$module"}
	var units []*Unit

	for _, child := range tree.Children(root) {
		n := tree.Get(child)
		switch n.Kind {
		case ast.KindProcedure, ast.KindFunction:
			name := tree.Symbols.Name(n.Symbol)
			block := findBlock(tree, child)
			units = append(units, &Unit{Decl: child, Name: name, Stmts: tree.Children(block)})
		default:
			moduleUnit.Stmts = append(moduleUnit.Stmts, child)
		}
	}

	return append([]*Unit{moduleUnit}, units...)
}

// findBlock returns the KindBlock child of a procedure/function declaration
// (its body), skipping KindParam children.
func findBlock(tree *ast.Tree, decl ast.NodeID) ast.NodeID {
	for _, c := range tree.Children(decl) {
		if tree.Get(c).Kind == ast.KindBlock {
			return c
		}
	}
	return ast.NilNode
}

// params returns decl's KindParam children, in declaration order.
func paramsOf(tree *ast.Tree, decl ast.NodeID) []ast.NodeID {
	var out []ast.NodeID
	for _, c := range tree.Children(decl) {
		if tree.Get(c).Kind == ast.KindParam {
			out = append(out, c)
		}
	}
	return out
}
