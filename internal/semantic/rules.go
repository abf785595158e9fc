package semantic

import (
	"fmt"

	"langcore/internal/ast"
	"langcore/internal/diagnostics"
)

// checkDeadCodeAndUnused reports statements unreachable after an
// unconditional Return and locals that are declared but never read (spec
// §7 DeadCode, UnusedLocal).
func checkDeadCodeAndUnused(tree *ast.Tree, u *Unit, scope *Scope) []diagnostics.Diagnostic {
	var diags []diagnostics.Diagnostic
	diags = append(diags, deadCodeAfterReturn(tree, u.Stmts)...)

	for _, sym := range scope.order {
		local := scope.locals[sym]
		if local.Used || local.Kind == DeclParam {
			continue
		}
		diags = append(diags, diagnostics.Diagnostic{
			File:     tree.File,
			Span:     tree.Get(local.Decl).Span,
			Code:     diagnostics.CodeUnusedLocal,
			Severity: diagnostics.SeverityHint,
			Message:  fmt.Sprintf("%q is declared but never used", tree.Symbols.Name(sym)),
		})
	}
	return diags
}

// deadCodeAfterReturn flags every statement following an unconditional
// Return within the same statement list, and recurses into nested blocks.
func deadCodeAfterReturn(tree *ast.Tree, stmts []ast.NodeID) []diagnostics.Diagnostic {
	var diags []diagnostics.Diagnostic
	seenReturn := false
	for _, id := range stmts {
		node := tree.Get(id)
		if seenReturn {
			diags = append(diags, diagnostics.Diagnostic{
				File:     tree.File,
				Span:     node.Span,
				Code:     diagnostics.CodeDeadCode,
				Severity: diagnostics.SeverityWarning,
				Message:  "unreachable statement after return",
			})
			continue
		}
		if node.Kind == ast.KindReturn {
			seenReturn = true
			continue
		}
		for _, c := range tree.Children(id) {
			if tree.Get(c).Kind == ast.KindBlock {
				diags = append(diags, deadCodeAfterReturn(tree, tree.Children(c))...)
			}
		}
	}
	return diags
}
