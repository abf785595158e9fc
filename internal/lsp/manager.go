// Package lsp implements the editor-facing façade: per-document state over
// an open workspace, kept current against the Unified Index and re-analyzed
// incrementally as the user types, plus a Language Server Protocol stdio
// transport for external editors.
package lsp

import (
	"context"
	"fmt"
	"sync"

	"langcore/internal/ast"
	"langcore/internal/diagnostics"
	"langcore/internal/entity"
	"langcore/internal/index"
	"langcore/internal/logging"
	"langcore/internal/parser"
	"langcore/internal/semantic"
)

// Manager coordinates open documents against one project's live Unified
// Index snapshot. A Manager is safe for concurrent use by multiple editor
// connections (unusual, but the toolserver and an editor may share one
// workspace's Manager).
type Manager struct {
	mu      sync.RWMutex
	live    *index.Live
	execCtx entity.Availability
	docs    map[string]*document
}

// NewManager creates a Manager over live, analyzing files under execCtx
// (Client, Server, or MobileApp — whichever execution context this
// workspace's files run in).
func NewManager(live *index.Live, execCtx entity.Availability) *Manager {
	return &Manager{
		live:    live,
		execCtx: execCtx,
		docs:    make(map[string]*document),
	}
}

// DidOpen parses and fully analyzes text, installing it as uri's document,
// and returns the diagnostics to publish.
func (m *Manager) DidOpen(ctx context.Context, uri, text string, version int) []diagnostics.Diagnostic {
	doc := m.analyze(ctx, uri, text, version, nil)
	m.mu.Lock()
	m.docs[uri] = doc
	m.mu.Unlock()
	logging.Get(logging.CategoryLSP).Debug("opened %s (%d units)", uri, len(doc.units))
	return doc.diagnostics()
}

// DidChange replaces uri's text wholesale (the façade only advertises full
// document sync) and re-analyzes it, reusing the previous version's
// ValidateCalls results for any unit whose fingerprint didn't move.
func (m *Manager) DidChange(ctx context.Context, uri, text string, version int) []diagnostics.Diagnostic {
	m.mu.RLock()
	prev := m.docs[uri]
	m.mu.RUnlock()

	doc := m.analyze(ctx, uri, text, version, prev)
	m.mu.Lock()
	m.docs[uri] = doc
	m.mu.Unlock()
	return doc.diagnostics()
}

// DidClose drops uri's document state.
func (m *Manager) DidClose(uri string) {
	m.mu.Lock()
	delete(m.docs, uri)
	m.mu.Unlock()
}

// analyze parses text into a fresh tree and runs the pass pipeline per unit,
// skipping ValidateCalls for any unit whose fingerprint matches prev's.
func (m *Manager) analyze(ctx context.Context, uri, text string, version int, prev *document) *document {
	symbols := ast.NewSymbolTable()
	tree := parser.Parse(uri, version, text, symbols)
	snap := m.live.Current()
	units := semantic.CollectUnits(tree)
	doc := newDocument(uri, version, text, symbols, tree, units)

	for _, u := range units {
		fp := tree.Fingerprint(u.Decl)
		start := tree.Get(u.Decl).Span.Start
		doc.fingerprints[u.Name] = fp
		doc.unitStart[u.Name] = start

		scope, scopeDiags := semantic.ResolveScope(tree, u)
		dfDiags := semantic.RunDataflow(tree, u, scope)
		env := semantic.InferTypes(tree, u, scope, snap)
		deadDiags := semantic.CheckDeadCodeAndUnused(tree, u, scope)

		base := append(append([]diagnostics.Diagnostic{}, scopeDiags...), dfDiags...)
		base = append(base, deadDiags...)

		doc.scopes[u.Decl] = scope
		doc.typeEnvs[u.Decl] = env
		doc.baseDiags[u.Name] = base

		if prev != nil {
			if prevFP, ok := prev.fingerprints[u.Name]; ok && prevFP == fp {
				if cached, ok := prev.callDiags[u.Name]; ok {
					delta := int64(start) - int64(prev.unitStart[u.Name])
					doc.callDiags[u.Name] = shiftDiagnostics(cached, delta)
					continue
				}
			}
		}
		doc.callDiags[u.Name] = semantic.ValidateCalls(ctx, tree, u, env, snap, m.execCtx)
	}

	return doc
}

// HoverResult is the resolved type/member summary for a cursor position.
type HoverResult struct {
	Span     ast.Span
	Contents string
}

// Hover resolves the node at (line, character) in uri and describes its
// inferred type, or the member it names.
func (m *Manager) Hover(uri string, line, character int) (*HoverResult, error) {
	doc, err := m.document(uri)
	if err != nil {
		return nil, err
	}
	return hover(doc, m.live.Current(), line, character)
}

// CompletionItem is one proposed completion.
type CompletionItem struct {
	Label  string
	Detail string
	Kind   CompletionKind
}

// CompletionKind mirrors the handful of LSP CompletionItemKind values this
// façade actually distinguishes.
type CompletionKind int

const (
	CompletionMethod CompletionKind = iota
	CompletionProperty
	CompletionType
	CompletionVariable
)

// Completion proposes members or constructible types at (line, character)
// in uri.
func (m *Manager) Completion(uri string, line, character int) ([]CompletionItem, error) {
	doc, err := m.document(uri)
	if err != nil {
		return nil, err
	}
	return completion(doc, m.live.Current(), line, character)
}

func (m *Manager) document(uri string) (*document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[uri]
	if !ok {
		return nil, fmt.Errorf("lsp: %s is not open", uri)
	}
	return doc, nil
}
