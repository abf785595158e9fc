package lsp

import (
	"regexp"
	"strconv"
	"strings"

	"langcore/internal/entity"
	"langcore/internal/index"
)

var (
	memberAccessRe = regexp.MustCompile(`([A-Za-zА-Яа-яЁё_][A-Za-zА-Яа-яЁё0-9_.]*)\.([A-Za-zА-Яа-яЁё0-9_]*)$`)
	newExprRe      = regexp.MustCompile(`(?i)(?:New|Новый)\s+([A-Za-zА-Яа-яЁё0-9_.]*)$`)
)

// completion proposes members after `expr.`, constructible types after
// `New `, or local-variable names as a bare-identifier fallback.
func completion(doc *document, snap *index.Snapshot, line, character int) ([]CompletionItem, error) {
	offset := doc.tree.LineIdx.Offset(line+1, character)
	prefixText := linePrefix(doc.text, offset)

	if m := memberAccessRe.FindStringSubmatch(prefixText); m != nil {
		return completeMembers(doc, snap, offset, m[1], m[2]), nil
	}
	if m := newExprRe.FindStringSubmatch(prefixText); m != nil {
		return completeConstructibleTypes(snap, m[1]), nil
	}
	return completeLocals(doc, offset, identifierPrefix(prefixText)), nil
}

func linePrefix(text string, offset uint32) string {
	if int(offset) > len(text) {
		offset = uint32(len(text))
	}
	head := text[:offset]
	start := strings.LastIndexByte(head, '\n') + 1
	return head[start:]
}

func identifierPrefix(linePrefixText string) string {
	i := len(linePrefixText)
	for i > 0 && isIdentByte(linePrefixText[i-1]) {
		i--
	}
	return linePrefixText[i:]
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// completeMembers resolves baseExpr's type (a local variable or a directly
// qualified entity name) and proposes its methods and properties.
func completeMembers(doc *document, snap *index.Snapshot, offset uint32, baseExpr, prefix string) []CompletionItem {
	if snap == nil {
		return nil
	}
	baseType := resolveExprType(doc, snap, offset, baseExpr)
	if baseType == "" {
		return nil
	}
	ent, ok := snap.FindByQualifiedName(baseType)
	if !ok {
		return nil
	}

	var items []CompletionItem
	for _, m := range snap.GetAllMethods(ent) {
		if hasCIPrefix(m.Name, prefix) {
			items = append(items, CompletionItem{Label: m.Name, Detail: methodDetail(m), Kind: CompletionMethod})
		}
	}
	for _, p := range allProperties(snap, ent) {
		if hasCIPrefix(p.Name, prefix) {
			items = append(items, CompletionItem{Label: p.Name, Detail: p.Type, Kind: CompletionProperty})
		}
	}
	return items
}

// resolveExprType resolves a dotted base expression to a qualified type
// name: either a local variable in scope at offset, or a directly named
// entity (covers common-module-style qualified access).
func resolveExprType(doc *document, snap *index.Snapshot, offset uint32, baseExpr string) string {
	if !strings.Contains(baseExpr, ".") {
		if u := doc.unitAt(offset); u != nil {
			if sym, ok := doc.symbols.Lookup(baseExpr); ok {
				if env := doc.typeEnvs[u.Decl]; env != nil {
					if t := env.LocalType(sym); t != "" {
						return t
					}
				}
			}
		}
	}
	if ent, ok := snap.FindByQualifiedName(baseExpr); ok {
		return ent.QualifiedName
	}
	return ""
}

func completeConstructibleTypes(snap *index.Snapshot, prefix string) []CompletionItem {
	if snap == nil {
		return nil
	}
	var items []CompletionItem
	for _, e := range snap.All() {
		if e.Constructible && hasCIPrefix(e.QualifiedName, prefix) {
			items = append(items, CompletionItem{Label: e.QualifiedName, Detail: string(e.Kind), Kind: CompletionType})
		}
	}
	return items
}

func completeLocals(doc *document, offset uint32, prefix string) []CompletionItem {
	u := doc.unitAt(offset)
	if u == nil {
		return nil
	}
	scope := doc.scopes[u.Decl]
	if scope == nil {
		return nil
	}
	var items []CompletionItem
	for _, name := range scope.LocalNames(doc.symbols) {
		if hasCIPrefix(name, prefix) {
			items = append(items, CompletionItem{Label: name, Kind: CompletionVariable})
		}
	}
	return items
}

// allProperties walks e's parent chain collecting properties, first
// declaration wins, mirroring index.Snapshot.GetAllMethods.
func allProperties(snap *index.Snapshot, e *entity.Entity) []entity.Property {
	var out []entity.Property
	seen := map[string]bool{}
	visited := map[string]bool{}
	var walk func(cur *entity.Entity)
	walk = func(cur *entity.Entity) {
		if cur == nil || visited[cur.ID] {
			return
		}
		visited[cur.ID] = true
		for _, p := range cur.Properties {
			key := strings.ToLower(p.Name)
			if !seen[key] {
				seen[key] = true
				out = append(out, p)
			}
		}
		for _, parentName := range cur.Parents {
			if parent, ok := snap.FindByQualifiedName(parentName); ok {
				walk(parent)
			}
		}
	}
	walk(e)
	return out
}

func methodDetail(m entity.Method) string {
	ret := m.ReturnType
	if ret == "" {
		ret = "(none)"
	}
	return "(" + strconv.Itoa(len(m.Params)) + " args): " + ret
}

func hasCIPrefix(s, prefix string) bool {
	if prefix == "" {
		return true
	}
	if len(s) < len(prefix) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}

