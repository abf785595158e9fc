package semantic

import (
	"fmt"

	"langcore/internal/ast"
	"langcore/internal/diagnostics"
)

// initState is a point in the {uninit, maybe, init} lattice. Join of two branches takes the
// least-certain state: init+init=init, anything+uninit=uninit is too strict
// for merges (a branch not taken still executed nothing), so join instead
// takes init+maybe=maybe, maybe+maybe=maybe, uninit+X=maybe unless both
// uninit.
type initState int

const (
	stateUninit initState = iota
	stateMaybe
	stateInit
)

func join(a, b initState) initState {
	if a == b {
		return a
	}
	if a == stateUninit && b == stateUninit {
		return stateUninit
	}
	return stateMaybe
}

// flowEnv is the per-unit map of local -> current init state, threaded
// through a single forward pass over the unit's statements in source order.
type flowEnv map[ast.SymbolID]initState

func (e flowEnv) clone() flowEnv {
	out := make(flowEnv, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// runDataflow walks u's statements in order, flags reads of a still-uninit
// local as CodeUseBeforeInit, and reports CodeUnusedLocal is left to
// checkDeadCodeAndUnused (this pass only tracks init state).
func runDataflow(tree *ast.Tree, u *Unit, scope *Scope) []diagnostics.Diagnostic {
	env := make(flowEnv)
	for _, p := range paramsOf(tree, u.Decl) {
		env[tree.Get(p).Symbol] = stateInit // parameters always arrive initialized
	}
	for sym, local := range scope.locals {
		if local.Kind == DeclLoopVar {
			env[sym] = stateInit
		} else if _, ok := env[sym]; !ok {
			env[sym] = stateUninit
		}
	}

	var diags []diagnostics.Diagnostic
	for _, stmt := range u.Stmts {
		walkStatement(tree, stmt, env, &diags)
	}
	return diags
}

// walkStatement updates env in place for a single top-level statement,
// recursing into control-flow bodies with branch-local copies that are
// joined back on exit.
func walkStatement(tree *ast.Tree, id ast.NodeID, env flowEnv, diags *[]diagnostics.Diagnostic) {
	node := tree.Get(id)
	switch node.Kind {
	case ast.KindVarDecl:
		// declaration alone does not initialize; an initializer is not part
		// of this grammar's VarDecl (assignment is a separate statement).
		return

	case ast.KindAssignment:
		children := tree.Children(id)
		if len(children) < 2 {
			return
		}
		checkExprReads(tree, children[1], env, diags) // RHS evaluated first
		lhs := tree.Get(children[0])
		if lhs.Kind == ast.KindIdentifier {
			env[lhs.Symbol] = stateInit
		} else {
			checkExprReads(tree, children[0], env, diags)
		}

	case ast.KindIf:
		children := tree.Children(id)
		// children alternate: cond, block, [cond, block]*, [elseBlock]
		var branchEnvs []flowEnv
		i := 0
		sawElse := false
		for i < len(children) {
			c := tree.Get(children[i])
			if c.Kind == ast.KindBlock {
				branch := env.clone()
				for _, s := range tree.Children(children[i]) {
					walkStatement(tree, s, branch, diags)
				}
				branchEnvs = append(branchEnvs, branch)
				i++
				continue
			}
			// condition expression
			checkExprReads(tree, children[i], env, diags)
			i++
		}
		_ = sawElse
		mergeInto(env, branchEnvs)

	case ast.KindWhile:
		children := tree.Children(id)
		if len(children) == 0 {
			return
		}
		checkExprReads(tree, children[0], env, diags)
		if len(children) > 1 {
			branch := env.clone()
			for _, s := range tree.Children(children[1]) {
				walkStatement(tree, s, branch, diags)
			}
			mergeInto(env, []flowEnv{branch})
		}

	case ast.KindFor:
		children := tree.Children(id)
		blockIdx := len(children) - 1
		for _, c := range children[:blockIdx] {
			checkExprReads(tree, c, env, diags)
		}
		if blockIdx >= 0 && tree.Get(children[blockIdx]).Kind == ast.KindBlock {
			branch := env.clone()
			for _, s := range tree.Children(children[blockIdx]) {
				walkStatement(tree, s, branch, diags)
			}
			mergeInto(env, []flowEnv{branch})
		}

	case ast.KindTryExcept:
		children := tree.Children(id)
		for _, c := range children {
			if tree.Get(c).Kind == ast.KindBlock {
				branch := env.clone()
				for _, s := range tree.Children(c) {
					walkStatement(tree, s, branch, diags)
				}
				mergeInto(env, []flowEnv{branch})
			}
		}

	case ast.KindReturn:
		for _, c := range tree.Children(id) {
			checkExprReads(tree, c, env, diags)
		}

	default:
		checkExprReads(tree, id, env, diags)
	}
}

// mergeInto joins env with each branch's resulting state per local,
// matching the lattice semantics in initState's doc comment.
func mergeInto(env flowEnv, branches []flowEnv) {
	if len(branches) == 0 {
		return
	}
	for sym := range env {
		acc := branches[0][sym]
		for _, b := range branches[1:] {
			acc = join(acc, b[sym])
		}
		if len(branches) == 1 {
			// A single conditionally-executed branch can't guarantee
			// initialization on the path that skips it.
			acc = join(env[sym], acc)
		}
		env[sym] = acc
	}
}

// checkExprReads walks an expression subtree looking for bare identifier
// reads of a still-uninitialized local.
func checkExprReads(tree *ast.Tree, id ast.NodeID, env flowEnv, diags *[]diagnostics.Diagnostic) {
	if id == ast.NilNode {
		return
	}
	tree.Walk(id, func(n ast.NodeID) {
		node := tree.Get(n)
		if node.Kind != ast.KindIdentifier {
			return
		}
		if node.Parent != ast.NilNode {
			parent := tree.Get(node.Parent)
			if parent.Kind == ast.KindAssignment && firstChild(tree, node.Parent) == n {
				return // the LHS of this very assignment, handled by caller
			}
		}
		if state, ok := env[node.Symbol]; ok && state == stateUninit {
			*diags = append(*diags, diagnostics.Diagnostic{
				File:     tree.File,
				Span:     node.Span,
				Code:     diagnostics.CodeUseBeforeInit,
				Severity: diagnostics.SeverityWarning,
				Message:  fmt.Sprintf("%q is read before being assigned on this path", tree.Symbols.Name(node.Symbol)),
			})
		}
	})
}

func firstChild(tree *ast.Tree, id ast.NodeID) ast.NodeID {
	return tree.Get(id).FirstChild
}
