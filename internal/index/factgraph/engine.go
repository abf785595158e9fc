// Package factgraph wraps google/mangle as the Datalog backbone for the
// Unified Type Index's inheritance and reference graphs. Entities, parent
// links, interface implementations, and cross-references are asserted as
// facts; ancestry, assignability, and method resolution are expressed as
// Mangle rules and evaluated on demand.
package factgraph

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	_ "github.com/google/mangle/packages"
	"github.com/google/mangle/parse"
	"github.com/google/mangle/unionfind"
)

// schema declares the EDB/IDB predicates the Unified Index relies on.
// entity_kind/inherits/implements/references/primitive_subtype are asserted
// by the builder; has_method and has_property are declared but not asserted
// by it; descendant, assignable, inherited_method and reachable are derived.
const schema = `
Decl entity_kind(Id, Kind) descr [mode("+", "+")].
Decl inherits(Child, Parent) descr [mode("+", "+")].
Decl implements(Entity, Interface) descr [mode("+", "+")].
Decl has_method(Entity, Method) descr [mode("+", "+")].
Decl has_property(Entity, Property) descr [mode("+", "+")].
Decl references(From, To) descr [mode("+", "+")].
Decl primitive_subtype(From, To) descr [mode("+", "+")].

Decl descendant(Child, Ancestor).
descendant(X, Y) :- inherits(X, Y).
descendant(X, Y) :- inherits(X, Z), descendant(Z, Y).

Decl assignable(From, To).
assignable(X, X) :- entity_kind(X, _).
assignable(X, Y) :- descendant(X, Y).
assignable(X, Y) :- implements(X, Y).
assignable(X, Y) :- primitive_subtype(X, Y).

Decl inherited_method(Entity, Method, Owner).
inherited_method(E, M, E) :- has_method(E, M).
inherited_method(E, M, O) :- inherits(E, P), inherited_method(P, M, O).

Decl reachable(From, To).
reachable(X, Y) :- references(X, Y).
reachable(X, Y) :- references(X, Z), reachable(Z, Y).
`

// Fact is one asserted tuple, predicate plus ordered arguments.
type Fact struct {
	Predicate string
	Args      []interface{}
}

// Engine is a thin, concurrency-safe wrapper around a Mangle fact store and
// the rule program compiled from schema.
type Engine struct {
	mu             sync.RWMutex
	store          factstore.ConcurrentFactStore
	baseStore      factstore.FactStoreWithRemove
	programInfo    *analysis.ProgramInfo
	queryContext   *mengine.QueryContext
	predicateIndex map[string]ast.PredicateSym
}

// New creates an Engine with the Unified Index schema already loaded.
func New() (*Engine, error) {
	base := factstore.NewSimpleInMemoryStore()
	e := &Engine{
		baseStore:      base,
		store:          factstore.NewConcurrentFactStore(base),
		predicateIndex: make(map[string]ast.PredicateSym),
	}
	unit, err := parse.Unit(bytes.NewReader([]byte(schema)))
	if err != nil {
		return nil, fmt.Errorf("factgraph: parse schema: %w", err)
	}
	if err := e.compile(unit); err != nil {
		return nil, fmt.Errorf("factgraph: compile schema: %w", err)
	}
	return e, nil
}

func (e *Engine) compile(unit parse.SourceUnit) error {
	info, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return err
	}
	e.programInfo = info

	predToDecl := make(map[ast.PredicateSym]*ast.Decl, len(info.Decls))
	for sym, decl := range info.Decls {
		e.predicateIndex[sym.Symbol] = sym
		predToDecl[sym] = decl
	}

	predToRules := make(map[ast.PredicateSym][]ast.Clause)
	for _, clause := range info.Rules {
		predToRules[clause.Head.Predicate] = append(predToRules[clause.Head.Predicate], clause)
	}

	e.queryContext = &mengine.QueryContext{
		PredToRules: predToRules,
		PredToDecl:  predToDecl,
		Store:       e.store,
	}
	return nil
}

// AddFact asserts predicate(args...). Returns an error if predicate is
// undeclared or arity does not match the schema.
func (e *Engine) AddFact(predicate string, args ...interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sym, ok := e.predicateIndex[predicate]
	if !ok {
		return fmt.Errorf("factgraph: predicate %s is not declared", predicate)
	}
	if len(args) != sym.Arity {
		return fmt.Errorf("factgraph: predicate %s expects %d args, got %d", predicate, sym.Arity, len(args))
	}

	terms := make([]ast.BaseTerm, len(args))
	for i, raw := range args {
		term, err := toTerm(raw)
		if err != nil {
			return fmt.Errorf("factgraph: %s arg %d: %w", predicate, i, err)
		}
		terms[i] = term
	}
	e.store.Add(ast.Atom{Predicate: sym, Args: terms})
	return nil
}

// AddFacts is a convenience batch form of AddFact.
func (e *Engine) AddFacts(facts []Fact) error {
	for _, f := range facts {
		if err := e.AddFact(f.Predicate, f.Args...); err != nil {
			return err
		}
	}
	return nil
}

// Row is one binding of query variables to values.
type Row map[string]interface{}

// Query evaluates a Mangle atom query such as "descendant(X, \"Catalogs.Items\")"
// and returns one Row per matching tuple, bound by variable name.
func (e *Engine) Query(ctx context.Context, query string) ([]Row, error) {
	shape, err := parseQueryShape(query)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	qc := e.queryContext
	decl, ok := qc.PredToDecl[shape.atom.Predicate]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("factgraph: predicate %s is not declared", shape.atom.Predicate.Symbol)
	}
	if len(decl.Modes()) == 0 {
		return nil, fmt.Errorf("factgraph: predicate %s has no modes", shape.atom.Predicate.Symbol)
	}
	mode := decl.Modes()[0]

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	var rows []Row
	err = qc.EvalQuery(shape.atom, mode, unionfind.New(), func(fact ast.Atom) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		row := make(Row, len(shape.variables))
		for _, v := range shape.variables {
			if v.index < len(fact.Args) {
				row[v.name] = fromTerm(fact.Args[v.index])
			}
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("factgraph: query %q: %w", query, err)
	}
	return rows, nil
}

// GetFacts returns every asserted fact (not derived rows) for predicate.
func (e *Engine) GetFacts(predicate string) ([]Fact, error) {
	e.mu.RLock()
	sym, ok := e.predicateIndex[predicate]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("factgraph: predicate %s is not declared", predicate)
	}

	var facts []Fact
	err := e.store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
		args := make([]interface{}, len(atom.Args))
		for i, a := range atom.Args {
			args[i] = fromTerm(a)
		}
		facts = append(facts, Fact{Predicate: predicate, Args: args})
		return nil
	})
	return facts, err
}

// Clear resets the fact store, keeping the compiled schema.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.baseStore = factstore.NewSimpleInMemoryStore()
	e.store = factstore.NewConcurrentFactStore(e.baseStore)
}

type queryVariable struct {
	name  string
	index int
}

type queryShape struct {
	atom      ast.Atom
	variables []queryVariable
}

func parseQueryShape(query string) (*queryShape, error) {
	clean := strings.TrimSpace(query)
	clean = strings.TrimPrefix(clean, "?")
	clean = strings.TrimSpace(clean)
	clean = strings.TrimSuffix(clean, ".")

	atom, err := parse.Atom(clean)
	if err != nil {
		return nil, fmt.Errorf("factgraph: parse query %q: %w", query, err)
	}

	var vars []queryVariable
	for i, arg := range atom.Args {
		if v, ok := arg.(ast.Variable); ok {
			vars = append(vars, queryVariable{name: v.Symbol, index: i})
		}
	}
	return &queryShape{atom: atom, variables: vars}, nil
}

func toTerm(value interface{}) (ast.BaseTerm, error) {
	switch v := value.(type) {
	case ast.BaseTerm:
		return v, nil
	case string:
		return ast.String(v), nil
	case int:
		return ast.Number(int64(v)), nil
	case int64:
		return ast.Number(v), nil
	case bool:
		if v {
			return ast.TrueConstant, nil
		}
		return ast.FalseConstant, nil
	default:
		return nil, fmt.Errorf("unsupported fact argument type %T", v)
	}
}

func fromTerm(term ast.BaseTerm) interface{} {
	switch v := term.(type) {
	case ast.Constant:
		switch v.Type {
		case ast.NumberType:
			return v.NumValue
		default:
			return v.Symbol
		}
	case ast.Variable:
		return v.Symbol
	default:
		return fmt.Sprintf("%v", term)
	}
}
