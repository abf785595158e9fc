package lsp

import (
	"fmt"
	"strings"

	"langcore/internal/ast"
	"langcore/internal/entity"
	"langcore/internal/index"
	"langcore/internal/semantic"
)

// hover resolves the node under (line, character) and renders a summary:
// an identifier's inferred type, or a member access's resolved method or
// property signature.
func hover(doc *document, snap *index.Snapshot, line, character int) (*HoverResult, error) {
	offset := doc.tree.LineIdx.Offset(line+1, character)
	id := nodeAt(doc.tree, offset)
	if id == ast.NilNode {
		return nil, nil
	}

	u := doc.unitAt(offset)
	if u == nil {
		return nil, nil
	}
	env := doc.typeEnvs[u.Decl]
	node := doc.tree.Get(id)

	switch node.Kind {
	case ast.KindMember:
		return hoverMember(doc, snap, env, id)
	case ast.KindIdentifier, ast.KindNew:
		t := env.NodeType(id)
		if t == "" {
			return nil, nil
		}
		return &HoverResult{Span: node.Span, Contents: typeSummary(snap, t)}, nil
	default:
		t := env.NodeType(id)
		if t == "" {
			return nil, nil
		}
		return &HoverResult{Span: node.Span, Contents: fmt.Sprintf("`%s`", t)}, nil
	}
}

func hoverMember(doc *document, snap *index.Snapshot, env *semantic.TypeEnv, id ast.NodeID) (*HoverResult, error) {
	node := doc.tree.Get(id)
	children := doc.tree.Children(id)
	if len(children) == 0 || snap == nil {
		return nil, nil
	}
	baseType := env.NodeType(children[0])
	memberName := doc.tree.Symbols.Name(node.Symbol)
	if baseType == "" || memberName == "" {
		return nil, nil
	}
	ent, ok := snap.FindByQualifiedName(baseType)
	if !ok {
		return &HoverResult{Span: node.Span, Contents: fmt.Sprintf("`%s.%s` (unresolved base type)", baseType, memberName)}, nil
	}
	method, prop, found := snap.ResolveMember(ent, memberName)
	if !found {
		return &HoverResult{Span: node.Span, Contents: fmt.Sprintf("%s has no member `%s`", baseType, memberName)}, nil
	}
	if method != nil {
		return &HoverResult{Span: node.Span, Contents: methodSignature(baseType, method)}, nil
	}
	return &HoverResult{Span: node.Span, Contents: propertySignature(baseType, prop)}, nil
}

func typeSummary(snap *index.Snapshot, t string) string {
	ent, ok := snap.FindByQualifiedName(t)
	if !ok {
		return fmt.Sprintf("`%s`", t)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s)\n\n", ent.QualifiedName, ent.Kind)
	if len(ent.Parents) > 0 {
		fmt.Fprintf(&b, "extends %s\n\n", strings.Join(ent.Parents, ", "))
	}
	fmt.Fprintf(&b, "%d method(s), %d propert(y/ies)", len(ent.Methods), len(ent.Properties))
	return b.String()
}

func methodSignature(baseType string, m *entity.Method) string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.Name + ": " + p.Type
	}
	ret := m.ReturnType
	if ret == "" {
		ret = "(none)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "```\n%s.%s(%s): %s\n```", baseType, m.Name, strings.Join(params, ", "), ret)
	if m.Deprecated {
		fmt.Fprintf(&b, "\n\n**deprecated**")
		if m.DeprecatedMsg != "" {
			fmt.Fprintf(&b, ": %s", m.DeprecatedMsg)
		}
	}
	return b.String()
}

func propertySignature(baseType string, p *entity.Property) string {
	mut := "read-write"
	if p.ReadOnly {
		mut = "read-only"
	}
	return fmt.Sprintf("```\n%s.%s: %s\n```\n\n%s", baseType, p.Name, p.Type, mut)
}
