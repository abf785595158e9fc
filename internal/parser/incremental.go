package parser

import (
	"langcore/internal/ast"
	"langcore/internal/lexer"
)

// Edit describes a single text replacement: bytes [Start, Start+OldLength)
// in the previous source are replaced by NewText.
type Edit struct {
	Start     uint32
	OldLength uint32
	NewText   string
}

// Apply computes newSrc from oldSrc and the edit, then reparses only the
// top-level (module-child) statements whose span overlaps the edit range,
// reusing the rest of prev's subtrees verbatim (after shifting their spans
// by the length delta). The result is required to be structurally identical
// to calling Parse on newSrc directly because statements at this grammar's top level parse
// independently of one another.
func Apply(prev *ast.Tree, oldSrc string, edit Edit, symbols *ast.SymbolTable) (*ast.Tree, string) {
	newSrc := oldSrc[:edit.Start] + edit.NewText + oldSrc[edit.Start+edit.OldLength:]
	delta := int64(len(edit.NewText)) - int64(edit.OldLength)
	editEnd := edit.Start + edit.OldLength

	root := prev.Root()
	if root == ast.NilNode {
		return Parse(prev.File, prev.Version+1, newSrc, symbols), newSrc
	}

	out := ast.NewTree(prev.File, prev.Version+1, symbols)
	newRoot := out.Add(ast.Node{Kind: ast.KindModule}, ast.NilNode)

	for _, child := range prev.Children(root) {
		n := prev.Get(child)
		span := n.Span
		overlaps := span.Start < editEnd && span.End() > edit.Start
		// A zero-length span (defensive) is treated as touching if it sits
		// inside the edit window.
		if span.Length == 0 {
			overlaps = span.Start >= edit.Start && span.Start <= editEnd
		}

		if overlaps {
			// Reparse just this statement, resuming the lexer at its
			// (unshifted, pre-edit) start within the new source so emitted
			// spans stay absolute.
			sub := &parser{lex: lexer.NewAt(newSrc, span.Start), tree: out, symbols: symbols, src: newSrc}
			sub.advance()
			sub.parseStatement(newRoot)
			continue
		}

		if span.Start >= editEnd {
			copySubtreeShifted(prev, child, out, newRoot, delta)
		} else {
			copySubtreeShifted(prev, child, out, newRoot, 0)
		}
	}

	out.LineIdx = ast.NewLineIndex(newSrc)
	return out, newSrc
}

// copySubtreeShifted duplicates the subtree rooted at id from src into dst
// under dstParent, shifting every span's Start by delta bytes. Fingerprints
// are left at zero so Tree.Fingerprint recomputes them lazily.
func copySubtreeShifted(src *ast.Tree, id ast.NodeID, dst *ast.Tree, dstParent ast.NodeID, delta int64) ast.NodeID {
	n := *src.Get(id)
	n.Span.Start = uint32(int64(n.Span.Start) + delta)
	n.Fingerprint = 0
	newID := dst.Add(ast.Node{
		Kind:        n.Kind,
		Span:        n.Span,
		Symbol:      n.Symbol,
		LiteralKind: n.LiteralKind,
		LiteralText: n.LiteralText,
	}, dstParent)
	for _, c := range src.Children(id) {
		copySubtreeShifted(src, c, dst, newID, delta)
	}
	return newID
}
