package lsp

import (
	"langcore/internal/ast"
	"langcore/internal/diagnostics"
	"langcore/internal/semantic"
)

// document is one open file's latest parse and analysis. A Manager holds one
// per URI; a new document replaces the previous one wholesale on every
// change, but carries forward per-unit fingerprints and cached call
// diagnostics so unchanged procedures skip re-validation against the index.
type document struct {
	uri     string
	version int
	text    string
	symbols *ast.SymbolTable
	tree    *ast.Tree
	units   []*semantic.Unit

	scopes   map[ast.NodeID]*semantic.Scope
	typeEnvs map[ast.NodeID]*semantic.TypeEnv

	// baseDiags are scope/dataflow/dead-code diagnostics, always freshly
	// computed since those passes are pure local AST walks.
	baseDiags map[string][]diagnostics.Diagnostic
	// callDiags are ValidateCalls diagnostics, keyed by unit name; reused
	// across a change when the unit's fingerprint didn't move.
	callDiags map[string][]diagnostics.Diagnostic

	fingerprints map[string]uint64
	unitStart    map[string]uint32
}

func newDocument(uri string, version int, text string, symbols *ast.SymbolTable, tree *ast.Tree, units []*semantic.Unit) *document {
	return &document{
		uri:          uri,
		version:      version,
		text:         text,
		symbols:      symbols,
		tree:         tree,
		units:        units,
		scopes:       make(map[ast.NodeID]*semantic.Scope, len(units)),
		typeEnvs:     make(map[ast.NodeID]*semantic.TypeEnv, len(units)),
		baseDiags:    make(map[string][]diagnostics.Diagnostic, len(units)),
		callDiags:    make(map[string][]diagnostics.Diagnostic, len(units)),
		fingerprints: make(map[string]uint64, len(units)),
		unitStart:    make(map[string]uint32, len(units)),
	}
}

// diagnostics flattens every unit's base and call diagnostics into one
// document-order slice.
func (d *document) diagnostics() []diagnostics.Diagnostic {
	var out []diagnostics.Diagnostic
	for _, u := range d.units {
		out = append(out, d.baseDiags[u.Name]...)
		out = append(out, d.callDiags[u.Name]...)
	}
	return out
}

// unitAt returns the innermost unit whose declaration contains offset,
// preferring a procedure/function over the enclosing module unit.
func (d *document) unitAt(offset uint32) *semantic.Unit {
	var module *semantic.Unit
	for _, u := range d.units {
		span := d.tree.Get(u.Decl).Span
		if u.Name == "$module" {
			module = u
			continue
		}
		if offset >= span.Start && offset <= span.End() {
			return u
		}
	}
	return module
}

// nodeAt returns the innermost node containing offset, descending from the
// tree root.
func nodeAt(tree *ast.Tree, offset uint32) ast.NodeID {
	root := tree.Root()
	if root == ast.NilNode {
		return ast.NilNode
	}
	return deepestContaining(tree, root, offset)
}

func deepestContaining(tree *ast.Tree, id ast.NodeID, offset uint32) ast.NodeID {
	n := tree.Get(id)
	if offset < n.Span.Start || offset > n.Span.End() {
		return ast.NilNode
	}
	best := id
	for _, c := range tree.Children(id) {
		if found := deepestContaining(tree, c, offset); found != ast.NilNode {
			best = found
		}
	}
	return best
}

// shiftDiagnostics translates every diagnostic's span start by delta bytes,
// used when a cached unit's diagnostics are reused after the unit moved
// within the file but its content (and therefore fingerprint) didn't change.
func shiftDiagnostics(diags []diagnostics.Diagnostic, delta int64) []diagnostics.Diagnostic {
	if delta == 0 || len(diags) == 0 {
		return diags
	}
	out := make([]diagnostics.Diagnostic, len(diags))
	for i, d := range diags {
		d.Span.Start = uint32(int64(d.Span.Start) + delta)
		out[i] = d
	}
	return out
}
