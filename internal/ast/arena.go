// Package ast is the arena AST for the Language. Nodes live
// in a per-file slice addressed by a 32-bit NodeID rather than behind
// pointers, so a whole tree can be discarded by dropping one Tree value and
// incremental reparse can splice subtrees by index range.
package ast

import "fmt"

// NodeID addresses a Node within a single Tree. The zero value, NilNode,
// never identifies a real node.
type NodeID uint32

// NilNode is the not-present sentinel.
const NilNode NodeID = 0

// Kind is the closed enum of syntactic constructs.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindModule
	KindProcedure
	KindFunction
	KindParam
	KindBlock
	KindIdentifier
	KindLiteral
	KindCall
	KindMember
	KindAssignment
	KindNew
	KindIf
	KindWhile
	KindFor
	KindTryExcept
	KindReturn
	KindVarDecl
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "Module"
	case KindProcedure:
		return "Procedure"
	case KindFunction:
		return "Function"
	case KindParam:
		return "Param"
	case KindBlock:
		return "Block"
	case KindIdentifier:
		return "Identifier"
	case KindLiteral:
		return "Literal"
	case KindCall:
		return "Call"
	case KindMember:
		return "Member"
	case KindAssignment:
		return "Assignment"
	case KindNew:
		return "New"
	case KindIf:
		return "If"
	case KindWhile:
		return "While"
	case KindFor:
		return "For"
	case KindTryExcept:
		return "TryExcept"
	case KindReturn:
		return "Return"
	case KindVarDecl:
		return "VarDecl"
	case KindError:
		return "Error"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Span is a packed (start offset, length) source range; no line/column is
// stored here, only a byte range. Line/column is derived on demand via
// LineIndex at output boundaries.
type Span struct {
	Start  uint32
	Length uint32
}

// End returns the exclusive end offset of the span.
func (s Span) End() uint32 { return s.Start + s.Length }

// LiteralKind distinguishes payload interpretation for KindLiteral nodes.
type LiteralKind uint8

const (
	LiteralNone LiteralKind = iota
	LiteralNumber
	LiteralString
	LiteralBoolean
	LiteralUndefined
	LiteralNull
)

// Node is one arena entry. Children are reached via FirstChild/NextSibling,
// giving an intrusive singly-linked child list instead of a slice per node
// (keeps the arena a flat, append-only Node slice).
type Node struct {
	Kind        Kind
	Span        Span
	Parent      NodeID
	FirstChild  NodeID
	NextSibling NodeID

	// Payload: exactly one of these is meaningful, selected by Kind.
	Symbol      SymbolID    // KindIdentifier, KindMember (member name), KindProcedure/Function (decl name)
	LiteralKind LiteralKind // KindLiteral
	LiteralText string      // KindLiteral, raw source text (number/string as written)

	// Fingerprint is a 64-bit hash of (Kind, ordered child fingerprints,
	// interned payload); see Tree.Fingerprint.
	Fingerprint uint64
}

// SymbolID is an interned, case-folded identifier.
type SymbolID uint32

// Tree is the arena AST for a single file version.
type Tree struct {
	File     string
	Version  int
	Nodes    []Node
	LineIdx  *LineIndex
	Symbols  *SymbolTable
	Errors   []NodeID // nodes of KindError, in document order
}

// NewTree creates an empty tree with node 0 reserved as NilNode.
func NewTree(file string, version int, symbols *SymbolTable) *Tree {
	t := &Tree{File: file, Version: version, Symbols: symbols}
	t.Nodes = append(t.Nodes, Node{Kind: KindInvalid}) // index 0 == NilNode
	return t
}

// Root is the module node, always NodeID(1) once Add has been called for it.
func (t *Tree) Root() NodeID {
	if len(t.Nodes) > 1 {
		return NodeID(1)
	}
	return NilNode
}

// Add appends a node to the arena and links it as the last child of parent.
// Returns the new node's id.
func (t *Tree) Add(n Node, parent NodeID) NodeID {
	id := NodeID(len(t.Nodes))
	n.Parent = parent
	t.Nodes = append(t.Nodes, n)

	if parent == NilNode {
		return id
	}
	p := &t.Nodes[parent]
	if p.FirstChild == NilNode {
		p.FirstChild = id
		return id
	}
	last := p.FirstChild
	for t.Nodes[last].NextSibling != NilNode {
		last = t.Nodes[last].NextSibling
	}
	t.Nodes[last].NextSibling = id
	return id
}

// Get returns the node at id. Panics on NilNode, matching arena semantics
// where callers are expected to check for NilNode before dereferencing.
func (t *Tree) Get(id NodeID) *Node {
	return &t.Nodes[id]
}

// Children returns id's children in source order.
func (t *Tree) Children(id NodeID) []NodeID {
	var out []NodeID
	for c := t.Nodes[id].FirstChild; c != NilNode; c = t.Nodes[c].NextSibling {
		out = append(out, c)
	}
	return out
}

// Walk visits id and its descendants in pre-order, depth-first.
func (t *Tree) Walk(id NodeID, visit func(NodeID)) {
	if id == NilNode {
		return
	}
	visit(id)
	for c := t.Nodes[id].FirstChild; c != NilNode; c = t.Nodes[c].NextSibling {
		t.Walk(c, visit)
	}
}

// Text extracts id's literal source text from src, using its packed span.
func (t *Tree) Text(id NodeID, src string) string {
	n := t.Nodes[id]
	if int(n.Span.End()) > len(src) {
		return ""
	}
	return src[n.Span.Start:n.Span.End()]
}

// AddError records an ErrorNode and appends it to Errors, so recovery points
// remain reachable without re-walking the whole tree.
func (t *Tree) AddError(span Span, parent NodeID) NodeID {
	id := t.Add(Node{Kind: KindError, Span: span}, parent)
	t.Errors = append(t.Errors, id)
	return id
}
