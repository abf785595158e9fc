package semantic

import (
	"context"

	"langcore/internal/ast"
	"langcore/internal/index"
)

// TypeEnv holds the forward-inferred type for each local in a Unit, plus a
// per-expression-node cache so call validation doesn't re-infer shared
// subexpressions. A local's type is "Unknown" once two incompatible
// assignments are seen; the Language has no declared variable types, so
// this is inference from assignment sites only.
type TypeEnv struct {
	locals map[ast.SymbolID]string
	nodes  map[ast.NodeID]string
}

const typeUnknown = ""

func newTypeEnv() *TypeEnv {
	return &TypeEnv{locals: make(map[ast.SymbolID]string), nodes: make(map[ast.NodeID]string)}
}

// LocalType returns the inferred qualified type name for sym, or "" if
// unknown/never narrowed to one type.
func (e *TypeEnv) LocalType(sym ast.SymbolID) string { return e.locals[sym] }

// NodeType returns the inferred type of an expression node.
func (e *TypeEnv) NodeType(id ast.NodeID) string { return e.nodes[id] }

func (e *TypeEnv) setLocal(sym ast.SymbolID, t string) {
	if t == typeUnknown {
		return
	}
	if existing, ok := e.locals[sym]; ok && existing != t {
		e.locals[sym] = typeUnknown
		return
	}
	e.locals[sym] = t
}

// inferTypes runs a single forward pass over u's statements, assigning each
// expression node a best-effort type and narrowing each local's type from
// its assignment sites.
func inferTypes(tree *ast.Tree, u *Unit, scope *Scope, snap *index.Snapshot) *TypeEnv {
	env := newTypeEnv()
	ctx := context.Background()
	// Parameter types are not declared in this grammar, so params start
	// Unknown and narrow only if the body assigns them.

	var walkStmt func(id ast.NodeID)
	walkStmt = func(id ast.NodeID) {
		if id == ast.NilNode {
			return
		}
		node := tree.Get(id)
		switch node.Kind {
		case ast.KindAssignment:
			children := tree.Children(id)
			if len(children) < 2 {
				return
			}
			rhsType := inferExpr(tree, children[1], env, snap, ctx)
			lhs := tree.Get(children[0])
			if lhs.Kind == ast.KindIdentifier {
				env.setLocal(lhs.Symbol, rhsType)
			}
		case ast.KindVarDecl, ast.KindReturn:
			for _, c := range tree.Children(id) {
				inferExpr(tree, c, env, snap, ctx)
			}
		case ast.KindIf, ast.KindWhile, ast.KindFor, ast.KindTryExcept:
			for _, c := range tree.Children(id) {
				if tree.Get(c).Kind == ast.KindBlock {
					for _, s := range tree.Children(c) {
						walkStmt(s)
					}
				} else {
					inferExpr(tree, c, env, snap, ctx)
				}
			}
		default:
			inferExpr(tree, id, env, snap, ctx)
		}
	}

	for _, stmt := range u.Stmts {
		walkStmt(stmt)
	}
	return env
}

// inferExpr computes and caches id's type, recursing into children first so
// a Call/Member's base type is already known.
func inferExpr(tree *ast.Tree, id ast.NodeID, env *TypeEnv, snap *index.Snapshot, ctx context.Context) string {
	if id == ast.NilNode {
		return typeUnknown
	}
	if t, ok := env.nodes[id]; ok {
		return t
	}

	node := tree.Get(id)
	var t string
	switch node.Kind {
	case ast.KindLiteral:
		switch node.LiteralKind {
		case ast.LiteralNumber:
			t = "Number"
		case ast.LiteralString:
			t = "String"
		case ast.LiteralBoolean:
			t = "Boolean"
		case ast.LiteralUndefined:
			t = "Undefined"
		case ast.LiteralNull:
			t = "Null"
		}

	case ast.KindIdentifier:
		t = env.LocalType(node.Symbol)

	case ast.KindNew:
		children := tree.Children(id)
		if len(children) > 0 && tree.Get(children[0]).Kind == ast.KindIdentifier {
			typeName := tree.Symbols.Name(tree.Get(children[0]).Symbol)
			t = resolveNewType(typeName, children[1:], snap)
		}
		for _, c := range children {
			inferExpr(tree, c, env, snap, ctx)
		}

	case ast.KindMember:
		children := tree.Children(id)
		var baseType string
		if len(children) > 0 {
			baseType = inferExpr(tree, children[0], env, snap, ctx)
		}
		if baseType != "" && snap != nil {
			if ent, ok := snap.FindByQualifiedName(baseType); ok {
				memberName := tree.Symbols.Name(node.Symbol)
				if _, prop, found := snap.ResolveMember(ent, memberName); found && prop != nil {
					t = prop.Type
				}
			}
		}

	case ast.KindCall:
		children := tree.Children(id)
		if len(children) > 0 {
			callee := children[0]
			baseType := ""
			if tree.Get(callee).Kind == ast.KindMember {
				memberChildren := tree.Children(callee)
				if len(memberChildren) > 0 {
					baseType = inferExpr(tree, memberChildren[0], env, snap, ctx)
				}
				if baseType != "" && snap != nil {
					if ent, ok := snap.FindByQualifiedName(baseType); ok {
						methodName := tree.Symbols.Name(tree.Get(callee).Symbol)
						if m, _, found := snap.ResolveMember(ent, methodName); found && m != nil {
							t = m.ReturnType
						}
					}
				}
			}
			for _, arg := range children[1:] {
				inferExpr(tree, arg, env, snap, ctx)
			}
		}

	default:
		for _, c := range tree.Children(id) {
			inferExpr(tree, c, env, snap, ctx)
		}
	}

	env.nodes[id] = t
	return t
}

// resolveNewType mirrors checkNew's entity/constructibility/arity checks so
// a `new` expression's inferred type never leaks a type name that call
// validation would itself reject: an unresolved type, a non-constructible
// type, or an argument count no declared constructor accepts all narrow to
// Unknown instead, preserving the cascade-suppression Unknown exists for.
func resolveNewType(typeName string, args []ast.NodeID, snap *index.Snapshot) string {
	if snap == nil {
		return typeName
	}
	ent, ok := snap.FindByQualifiedName(typeName)
	if !ok {
		ent, ok = snap.FindByAlias(typeName)
	}
	if !ok || !ent.Constructible {
		return typeUnknown
	}
	if len(ent.Constructors) > 0 {
		for _, ctor := range ent.Constructors {
			if len(args) >= minArity(ctor) && len(args) <= len(ctor.Params) {
				return ent.QualifiedName
			}
		}
		return typeUnknown
	}
	return ent.QualifiedName
}
