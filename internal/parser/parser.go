// Package parser turns lexer tokens into an internal/ast arena tree. It
// never aborts: on an unexpected token it emits an ErrorNode and resynchronizes
// at the next statement boundary, keeping the tree walkable.
package parser

import (
	"strings"

	"langcore/internal/ast"
	"langcore/internal/lexer"
)

// Parse lexes and parses src into a full-reparse Tree for file at version.
// symbols is shared across a project's files so identifiers intern to the
// same SymbolID everywhere.
func Parse(file string, version int, src string, symbols *ast.SymbolTable) *ast.Tree {
	p := &parser{
		lex:     lexer.New(src),
		tree:    ast.NewTree(file, version, symbols),
		symbols: symbols,
		src:     src,
	}
	p.advance()
	p.tree.LineIdx = ast.NewLineIndex(src)
	root := p.tree.Add(ast.Node{Kind: ast.KindModule}, ast.NilNode)
	p.parseStatementsUntil(root, lexer.TokEOF, "")
	return p.tree
}

type parser struct {
	lex     *lexer.Lexer
	tree    *ast.Tree
	symbols *ast.SymbolTable
	src     string
	tok     lexer.Token
}

func (p *parser) advance() {
	p.tok = p.lex.Next()
}

func (p *parser) atKeyword(kw string) bool {
	return p.tok.Kind == lexer.TokKeyword && strings.EqualFold(p.tok.Text, kw)
}

func (p *parser) atPunct(s string) bool {
	return p.tok.Kind == lexer.TokPunct && p.tok.Text == s
}

func (p *parser) span() ast.Span {
	return ast.Span{Start: p.tok.Start, Length: p.tok.Length}
}

// parseStatementsUntil parses statements until EOF, or until a keyword in
// stopWords (e.g. "endprocedure") is seen at this nesting level.
func (p *parser) parseStatementsUntil(parent ast.NodeID, eofKind lexer.TokenKind, stopWords ...string) {
	for {
		if p.tok.Kind == eofKind && eofKind == lexer.TokEOF {
			return
		}
		for _, w := range stopWords {
			if p.atKeyword(w) {
				return
			}
		}
		if p.tok.Kind == lexer.TokEOF {
			return
		}
		p.parseStatement(parent)
	}
}

func (p *parser) parseStatement(parent ast.NodeID) {
	switch {
	case p.atKeyword("var"):
		p.parseVarDecl(parent)
	case p.atKeyword("procedure"):
		p.parseProcOrFunc(parent, false)
	case p.atKeyword("function"):
		p.parseProcOrFunc(parent, true)
	case p.atKeyword("if"):
		p.parseIf(parent)
	case p.atKeyword("while"):
		p.parseWhile(parent)
	case p.atKeyword("for"):
		p.parseFor(parent)
	case p.atKeyword("try"):
		p.parseTry(parent)
	case p.atKeyword("return"):
		p.parseReturn(parent)
	case p.atKeyword("break"), p.atKeyword("continue"):
		p.advance()
		p.expectPunct(parent, ";")
	case p.tok.Kind == lexer.TokIdent:
		p.parseExprStatement(parent)
	default:
		p.errorAndResync(parent)
	}
}

func (p *parser) errorAndResync(parent ast.NodeID) {
	start := p.tok.Start
	for p.tok.Kind != lexer.TokEOF && !p.atPunct(";") {
		p.advance()
	}
	end := p.tok.Start + p.tok.Length
	if p.atPunct(";") {
		p.advance()
	}
	p.tree.AddError(ast.Span{Start: start, Length: end - start}, parent)
}

func (p *parser) expectPunct(parent ast.NodeID, s string) {
	if p.atPunct(s) {
		p.advance()
		return
	}
	// Recoverable: record an error node at point but keep going.
	p.tree.AddError(p.span(), parent)
}

// --- declarations -----------------------------------------------------

func (p *parser) parseVarDecl(parent ast.NodeID) {
	start := p.tok.Start
	p.advance() // 'var'
	declNode := p.tree.Add(ast.Node{Kind: ast.KindVarDecl, Span: ast.Span{Start: start}}, parent)
	for {
		if p.tok.Kind != lexer.TokIdent {
			break
		}
		sym := p.symbols.Intern(p.tok.Text)
		p.tree.Add(ast.Node{Kind: ast.KindIdentifier, Span: p.span(), Symbol: sym}, declNode)
		p.advance()
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectPunct(parent, ";")
}

func (p *parser) parseProcOrFunc(parent ast.NodeID, isFunc bool) {
	kind := ast.KindProcedure
	endWord := "endprocedure"
	if isFunc {
		kind = ast.KindFunction
		endWord = "endfunction"
	}
	start := p.tok.Start
	p.advance() // procedure/function
	var nameSym ast.SymbolID
	if p.tok.Kind == lexer.TokIdent {
		nameSym = p.symbols.Intern(p.tok.Text)
		p.advance()
	}
	decl := p.tree.Add(ast.Node{Kind: kind, Span: ast.Span{Start: start}, Symbol: nameSym}, parent)

	if p.atPunct("(") {
		p.advance()
		for !p.atPunct(")") && p.tok.Kind != lexer.TokEOF {
			p.parseParam(decl)
			if p.atPunct(",") {
				p.advance()
			}
		}
		if p.atPunct(")") {
			p.advance()
		}
	}
	if p.atKeyword("export") {
		p.advance()
	}

	block := p.tree.Add(ast.Node{Kind: ast.KindBlock}, decl)
	p.parseStatementsUntil(block, lexer.TokEOF, endWord)
	if p.atKeyword(endWord) {
		p.advance()
	}
	p.expectPunct(parent, ";")
}

func (p *parser) parseParam(decl ast.NodeID) {
	start := p.tok.Start
	if p.atKeyword("val") {
		p.advance()
	}
	var sym ast.SymbolID
	if p.tok.Kind == lexer.TokIdent {
		sym = p.symbols.Intern(p.tok.Text)
		p.advance()
	}
	param := p.tree.Add(ast.Node{Kind: ast.KindParam, Span: ast.Span{Start: start}, Symbol: sym}, decl)
	if p.atPunct("=") {
		p.advance()
		p.parseExpr(param)
	}
}

// --- control flow -------------------------------------------------------

func (p *parser) parseIf(parent ast.NodeID) {
	start := p.tok.Start
	p.advance() // if
	node := p.tree.Add(ast.Node{Kind: ast.KindIf, Span: ast.Span{Start: start}}, parent)
	p.parseExpr(node)
	if p.atKeyword("then") {
		p.advance()
	}
	block := p.tree.Add(ast.Node{Kind: ast.KindBlock}, node)
	p.parseStatementsUntil(block, lexer.TokEOF, "elsif", "else", "endif")
	for p.atKeyword("elsif") {
		p.advance()
		p.parseExpr(node)
		if p.atKeyword("then") {
			p.advance()
		}
		b := p.tree.Add(ast.Node{Kind: ast.KindBlock}, node)
		p.parseStatementsUntil(b, lexer.TokEOF, "elsif", "else", "endif")
	}
	if p.atKeyword("else") {
		p.advance()
		b := p.tree.Add(ast.Node{Kind: ast.KindBlock}, node)
		p.parseStatementsUntil(b, lexer.TokEOF, "endif")
	}
	if p.atKeyword("endif") {
		p.advance()
	}
	p.expectPunct(parent, ";")
}

func (p *parser) parseWhile(parent ast.NodeID) {
	start := p.tok.Start
	p.advance() // while
	node := p.tree.Add(ast.Node{Kind: ast.KindWhile, Span: ast.Span{Start: start}}, parent)
	p.parseExpr(node)
	if p.atKeyword("do") {
		p.advance()
	}
	block := p.tree.Add(ast.Node{Kind: ast.KindBlock}, node)
	p.parseStatementsUntil(block, lexer.TokEOF, "enddo")
	if p.atKeyword("enddo") {
		p.advance()
	}
	p.expectPunct(parent, ";")
}

func (p *parser) parseFor(parent ast.NodeID) {
	start := p.tok.Start
	p.advance() // for
	node := p.tree.Add(ast.Node{Kind: ast.KindFor, Span: ast.Span{Start: start}}, parent)

	if p.atKeyword("each") {
		p.advance() // each
		if p.tok.Kind == lexer.TokIdent {
			sym := p.symbols.Intern(p.tok.Text)
			p.tree.Add(ast.Node{Kind: ast.KindIdentifier, Span: p.span(), Symbol: sym}, node)
			p.advance()
		}
		if p.atKeyword("in") {
			p.advance()
		}
		p.parseExpr(node)
	} else {
		p.parseExprStatementNoSemi(node)
		if p.atKeyword("to") {
			p.advance()
			p.parseExpr(node)
		}
	}
	if p.atKeyword("do") {
		p.advance()
	}
	block := p.tree.Add(ast.Node{Kind: ast.KindBlock}, node)
	p.parseStatementsUntil(block, lexer.TokEOF, "enddo")
	if p.atKeyword("enddo") {
		p.advance()
	}
	p.expectPunct(parent, ";")
}

func (p *parser) parseTry(parent ast.NodeID) {
	start := p.tok.Start
	p.advance() // try
	node := p.tree.Add(ast.Node{Kind: ast.KindTryExcept, Span: ast.Span{Start: start}}, parent)
	tryBlock := p.tree.Add(ast.Node{Kind: ast.KindBlock}, node)
	p.parseStatementsUntil(tryBlock, lexer.TokEOF, "except", "endtry")
	if p.atKeyword("except") {
		p.advance()
		exceptBlock := p.tree.Add(ast.Node{Kind: ast.KindBlock}, node)
		p.parseStatementsUntil(exceptBlock, lexer.TokEOF, "endtry")
	}
	if p.atKeyword("endtry") {
		p.advance()
	}
	p.expectPunct(parent, ";")
}

func (p *parser) parseReturn(parent ast.NodeID) {
	start := p.tok.Start
	p.advance() // return
	node := p.tree.Add(ast.Node{Kind: ast.KindReturn, Span: ast.Span{Start: start}}, parent)
	if !p.atPunct(";") && p.tok.Kind != lexer.TokEOF {
		p.parseExpr(node)
	}
	p.expectPunct(parent, ";")
}

// parseExprStatement parses `lhs = expr;` or a bare call expression followed
// by ';'.
func (p *parser) parseExprStatement(parent ast.NodeID) {
	p.parseExprStatementNoSemi(parent)
	p.expectPunct(parent, ";")
}

func (p *parser) parseExprStatementNoSemi(parent ast.NodeID) {
	start := p.tok.Start
	lhs := p.parsePostfix(parent)
	if p.atPunct("=") {
		assign := p.tree.Add(ast.Node{Kind: ast.KindAssignment, Span: ast.Span{Start: start}}, parent)
		p.reparent(lhs, assign)
		p.advance()
		p.parseExpr(assign)
	}
}

// reparent moves a just-added child of parent onto newParent; used when an
// expression parsed as a bare statement turns out to be the LHS of an
// assignment once '=' is seen.
func (p *parser) reparent(child, newParent ast.NodeID) {
	n := p.tree.Get(child)
	if old := n.Parent; old != ast.NilNode {
		op := p.tree.Get(old)
		if op.FirstChild == child {
			op.FirstChild = n.NextSibling
		} else {
			for prev := op.FirstChild; prev != ast.NilNode; prev = p.tree.Get(prev).NextSibling {
				if p.tree.Get(prev).NextSibling == child {
					p.tree.Get(prev).NextSibling = n.NextSibling
					break
				}
			}
		}
	}
	n.NextSibling = ast.NilNode
	n.Parent = newParent
	np := p.tree.Get(newParent)
	if np.FirstChild == ast.NilNode {
		np.FirstChild = child
		return
	}
	last := np.FirstChild
	for p.tree.Get(last).NextSibling != ast.NilNode {
		last = p.tree.Get(last).NextSibling
	}
	p.tree.Get(last).NextSibling = child
}

// --- expressions ---------------------------------------------------------

// parseExpr parses a full expression as a child of parent and returns its
// node id.
func (p *parser) parseExpr(parent ast.NodeID) ast.NodeID {
	return p.parseOr(parent)
}

func (p *parser) parseOr(parent ast.NodeID) ast.NodeID {
	left := p.parseAnd(parent)
	for p.atKeyword("or") {
		p.advance()
		p.parseAnd(parent)
	}
	return left
}

func (p *parser) parseAnd(parent ast.NodeID) ast.NodeID {
	left := p.parseNot(parent)
	for p.atKeyword("and") {
		p.advance()
		p.parseNot(parent)
	}
	return left
}

func (p *parser) parseNot(parent ast.NodeID) ast.NodeID {
	if p.atKeyword("not") {
		p.advance()
	}
	return p.parseComparison(parent)
}

var comparisonOps = map[string]bool{"=": true, "<>": true, "<": true, ">": true, "<=": true, ">=": true}

func (p *parser) parseComparison(parent ast.NodeID) ast.NodeID {
	left := p.parseAdditive(parent)
	for p.tok.Kind == lexer.TokPunct && comparisonOps[p.tok.Text] {
		p.advance()
		p.parseAdditive(parent)
	}
	return left
}

func (p *parser) parseAdditive(parent ast.NodeID) ast.NodeID {
	left := p.parseMultiplicative(parent)
	for p.atPunct("+") || p.atPunct("-") {
		p.advance()
		p.parseMultiplicative(parent)
	}
	return left
}

func (p *parser) parseMultiplicative(parent ast.NodeID) ast.NodeID {
	left := p.parseUnary(parent)
	for p.atPunct("*") || p.atPunct("/") || p.atPunct("%") {
		p.advance()
		p.parseUnary(parent)
	}
	return left
}

func (p *parser) parseUnary(parent ast.NodeID) ast.NodeID {
	if p.atPunct("-") {
		p.advance()
	}
	return p.parsePostfix(parent)
}

// parsePostfix parses a primary expression followed by any chain of member
// access, indexing, and call suffixes.
func (p *parser) parsePostfix(parent ast.NodeID) ast.NodeID {
	node := p.parsePrimary(parent)
	for {
		switch {
		case p.atPunct("."):
			p.advance()
			member := p.tree.Add(ast.Node{Kind: ast.KindMember, Span: p.span()}, parent)
			p.reparent(node, member)
			if p.tok.Kind == lexer.TokIdent {
				sym := p.symbols.Intern(p.tok.Text)
				p.tree.Get(member).Symbol = sym
				p.advance()
			}
			node = member
		case p.atPunct("("):
			call := p.tree.Add(ast.Node{Kind: ast.KindCall, Span: p.span()}, parent)
			p.reparent(node, call)
			p.advance()
			for !p.atPunct(")") && p.tok.Kind != lexer.TokEOF {
				p.parseExpr(call)
				if p.atPunct(",") {
					p.advance()
				}
			}
			if p.atPunct(")") {
				p.advance()
			}
			node = call
		case p.atPunct("["):
			p.advance()
			idx := p.tree.Add(ast.Node{Kind: ast.KindMember, Span: p.span()}, parent)
			p.reparent(node, idx)
			p.parseExpr(idx)
			if p.atPunct("]") {
				p.advance()
			}
			node = idx
		default:
			return node
		}
	}
}

func (p *parser) parsePrimary(parent ast.NodeID) ast.NodeID {
	switch {
	case p.atKeyword("new"):
		start := p.tok.Start
		p.advance()
		node := p.tree.Add(ast.Node{Kind: ast.KindNew, Span: ast.Span{Start: start}}, parent)
		if p.tok.Kind == lexer.TokIdent {
			sym := p.symbols.Intern(p.tok.Text)
			p.tree.Add(ast.Node{Kind: ast.KindIdentifier, Span: p.span(), Symbol: sym}, node)
			p.advance()
		}
		if p.atPunct("(") {
			p.advance()
			for !p.atPunct(")") && p.tok.Kind != lexer.TokEOF {
				p.parseExpr(node)
				if p.atPunct(",") {
					p.advance()
				}
			}
			if p.atPunct(")") {
				p.advance()
			}
		}
		return node
	case p.tok.Kind == lexer.TokIdent:
		sym := p.symbols.Intern(p.tok.Text)
		node := p.tree.Add(ast.Node{Kind: ast.KindIdentifier, Span: p.span(), Symbol: sym}, parent)
		p.advance()
		return node
	case p.tok.Kind == lexer.TokNumber:
		node := p.tree.Add(ast.Node{Kind: ast.KindLiteral, Span: p.span(), LiteralKind: ast.LiteralNumber, LiteralText: p.tok.Text}, parent)
		p.advance()
		return node
	case p.tok.Kind == lexer.TokString:
		node := p.tree.Add(ast.Node{Kind: ast.KindLiteral, Span: p.span(), LiteralKind: ast.LiteralString, LiteralText: p.tok.Text}, parent)
		p.advance()
		return node
	case p.atKeyword("true") || p.atKeyword("false"):
		node := p.tree.Add(ast.Node{Kind: ast.KindLiteral, Span: p.span(), LiteralKind: ast.LiteralBoolean, LiteralText: p.tok.Text}, parent)
		p.advance()
		return node
	case p.atKeyword("undefined"):
		node := p.tree.Add(ast.Node{Kind: ast.KindLiteral, Span: p.span(), LiteralKind: ast.LiteralUndefined, LiteralText: p.tok.Text}, parent)
		p.advance()
		return node
	case p.atKeyword("null"):
		node := p.tree.Add(ast.Node{Kind: ast.KindLiteral, Span: p.span(), LiteralKind: ast.LiteralNull, LiteralText: p.tok.Text}, parent)
		p.advance()
		return node
	case p.atPunct("("):
		p.advance()
		node := p.parseExpr(parent)
		if p.atPunct(")") {
			p.advance()
		}
		return node
	default:
		span := p.span()
		id := p.tree.AddError(span, parent)
		if p.tok.Kind != lexer.TokEOF {
			p.advance()
		}
		return id
	}
}
