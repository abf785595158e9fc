package semantic

import (
	"fmt"

	"langcore/internal/ast"
	"langcore/internal/diagnostics"
)

// DeclKind classifies how a local entered scope.
type DeclKind int

const (
	DeclVar DeclKind = iota
	DeclParam
	DeclLoopVar
)

// Local is one name bound within a Unit's scope.
type Local struct {
	Symbol ast.SymbolID
	Kind   DeclKind
	Decl   ast.NodeID // the node that introduced the name
	Used   bool
}

// Scope is the flat (non-block-nested) set of locals visible within one
// Unit, matching the Language's procedure-level scoping.
type Scope struct {
	locals map[ast.SymbolID]*Local
	order  []ast.SymbolID
}

func newScope() *Scope {
	return &Scope{locals: make(map[ast.SymbolID]*Local)}
}

func (s *Scope) declare(sym ast.SymbolID, kind DeclKind, decl ast.NodeID) *Local {
	if l, ok := s.locals[sym]; ok {
		return l
	}
	l := &Local{Symbol: sym, Kind: kind, Decl: decl}
	s.locals[sym] = l
	s.order = append(s.order, sym)
	return l
}

func (s *Scope) lookup(sym ast.SymbolID) (*Local, bool) {
	l, ok := s.locals[sym]
	return l, ok
}

func (s *Scope) markUsed(sym ast.SymbolID) {
	if l, ok := s.locals[sym]; ok {
		l.Used = true
	}
}

// LocalNames returns every local's name, in declaration order, resolved
// against symbols. The LSP façade's bare-identifier completion uses this to
// propose in-scope variables without needing its own Scope internals.
func (s *Scope) LocalNames(symbols *ast.SymbolTable) []string {
	out := make([]string, 0, len(s.order))
	for _, sym := range s.order {
		out = append(out, symbols.Name(sym))
	}
	return out
}

// resolveScope collects every declaration in a Unit (params, `Var` locals,
// for-each loop variables) and flags references to names that are never
// declared (assigning to a name does not declare it) plus names declared
// more than once (DuplicateDeclaration).
func resolveScope(tree *ast.Tree, u *Unit) (*Scope, []diagnostics.Diagnostic) {
	scope := newScope()
	var diags []diagnostics.Diagnostic

	for _, p := range paramsOf(tree, u.Decl) {
		sym := tree.Get(p).Symbol
		if existing, ok := scope.lookup(sym); ok {
			diags = append(diags, dupDecl(tree, p, existing.Decl))
			continue
		}
		scope.declare(sym, DeclParam, p)
	}

	// First pass: every `Var` declaration and for-each loop variable,
	// regardless of where it appears, is visible for the whole unit (the
	// Language hoists `Var` to the top of its declaring procedure).
	for _, id := range u.Stmts {
		declareFromStatement(tree, id, scope, &diags)
	}

	// Second pass: any bare identifier reference not covered by a
	// declaration is undefined, whether it appears as a read or as an
	// assignment target - the Language requires `Var` (or a parameter or
	// for-each binding) before a name may be written.
	for _, id := range u.Stmts {
		checkReferences(tree, id, scope, &diags)
	}

	return scope, diags
}

func declareFromStatement(tree *ast.Tree, id ast.NodeID, scope *Scope, diags *[]diagnostics.Diagnostic) {
	tree.Walk(id, func(n ast.NodeID) {
		node := tree.Get(n)
		switch node.Kind {
		case ast.KindVarDecl:
			for _, c := range tree.Children(n) {
				sym := tree.Get(c).Symbol
				if existing, ok := scope.lookup(sym); ok {
					*diags = append(*diags, dupDecl(tree, c, existing.Decl))
					continue
				}
				scope.declare(sym, DeclVar, c)
			}
		case ast.KindFor:
			children := tree.Children(n)
			if len(children) > 0 && tree.Get(children[0]).Kind == ast.KindIdentifier {
				// for-each form: first child is the loop variable.
				sym := tree.Get(children[0]).Symbol
				if _, ok := scope.lookup(sym); !ok {
					scope.declare(sym, DeclLoopVar, children[0])
				}
			}
		}
	})
}

func checkReferences(tree *ast.Tree, id ast.NodeID, scope *Scope, diags *[]diagnostics.Diagnostic) {
	tree.Walk(id, func(n ast.NodeID) {
		node := tree.Get(n)
		if node.Kind != ast.KindIdentifier {
			return
		}
		// A KindMember's own Symbol is the member name, not a variable
		// reference, and a Member/Call node's first child being an
		// Identifier is the object/callee being referenced normally -
		// only bare KindIdentifier nodes denote variable reads/writes.
		if tree.Get(node.Parent).Kind == ast.KindMember && isMemberNameSlot(tree, node.Parent, n) {
			return
		}
		if _, ok := scope.lookup(node.Symbol); ok {
			scope.markUsed(node.Symbol)
			return
		}
		*diags = append(*diags, diagnostics.Diagnostic{
			File:     tree.File,
			Span:     node.Span,
			Code:     diagnostics.CodeUndefinedVariable,
			Severity: diagnostics.SeverityError,
			Message:  fmt.Sprintf("undefined variable %q", tree.Symbols.Name(node.Symbol)),
		})
	})
}

// isMemberNameSlot reports whether child is the (absent, since the member
// name lives in Member.Symbol, not a child node) name slot of a KindMember -
// always false in the current grammar, kept as an explicit seam in case a
// future grammar revision adds an explicit name child.
func isMemberNameSlot(tree *ast.Tree, member, child ast.NodeID) bool {
	return false
}

func dupDecl(tree *ast.Tree, node, firstDecl ast.NodeID) diagnostics.Diagnostic {
	name := tree.Symbols.Name(tree.Get(node).Symbol)
	return diagnostics.Diagnostic{
		File:     tree.File,
		Span:     tree.Get(node).Span,
		Code:     diagnostics.CodeDuplicateDeclaration,
		Severity: diagnostics.SeverityWarning,
		Message:  fmt.Sprintf("%q is already declared in this scope", name),
		Related: []diagnostics.RelatedSpan{
			{File: tree.File, Span: tree.Get(firstDecl).Span, Message: "first declared here"},
		},
	}
}
