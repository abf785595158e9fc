package index

import (
	"fmt"
	"sort"

	"langcore/internal/diagnostics"
	"langcore/internal/entity"
	"langcore/internal/errkind"
	"langcore/internal/index/factgraph"
	"langcore/internal/logging"
)

// maxInheritanceDepth bounds inheritance walks: a chain longer than this is
// treated as a build error rather than walked indefinitely.
const maxInheritanceDepth = 64

// BrokenInheritanceError is fatal for a build.
type BrokenInheritanceError struct {
	Child, MissingParent string
}

func (e *BrokenInheritanceError) Error() string {
	return fmt.Sprintf("broken inheritance: %s references missing parent %s", e.Child, e.MissingParent)
}

func (e *BrokenInheritanceError) Unwrap() error { return errkind.ErrUnresolvedParent }

// CycleError is fatal: the inheritance graph must be acyclic.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic inheritance: %v", e.Cycle)
}

func (e *CycleError) Unwrap() error { return errkind.ErrCyclicInheritance }

// Builder accumulates entities and produces a Snapshot.
type Builder struct {
	entities []*entity.Entity
	lattice  [][2]string
}

// NewBuilder creates an empty Builder seeded with the default primitive
// subtype lattice.
func NewBuilder() *Builder {
	return &Builder{lattice: defaultLattice}
}

// Add stages one entity for the next Build call.
func (b *Builder) Add(e *entity.Entity) {
	b.entities = append(b.entities, e)
}

// AddLattice registers an additional primitive subtype pair.
func (b *Builder) AddLattice(from, to string) {
	b.lattice = append(b.lattice, [2]string{from, to})
}

// Build merges the staged entities into a Snapshot.
// A BrokenInheritanceError or CycleError aborts the build with no Snapshot
// produced; unresolved references and name collisions become diagnostics
// instead.
func (b *Builder) Build() (*Snapshot, []diagnostics.Diagnostic, error) {
	log := logging.Get(logging.CategoryIndex)
	var diags []diagnostics.Diagnostic

	byID := make(map[string]*entity.Entity, len(b.entities))
	byQualified := make(map[string]*entity.Entity, len(b.entities))
	byAlias := make(map[string]*entity.Entity, len(b.entities))
	byMethod := make(map[string]map[string]bool)

	// Stable build order: sort by qualified name so repeated builds over the
	// same inputs are byte-identical.
	sorted := append([]*entity.Entity(nil), b.entities...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].QualifiedName < sorted[j].QualifiedName })

	for _, e := range sorted {
		if _, dup := byID[e.ID]; dup {
			return nil, nil, fmt.Errorf("index: entity id %s: %w", e.ID, errkind.ErrDuplicateID)
		}
		byID[e.ID] = e

		key := lower(e.QualifiedName)
		if existing, collide := byQualified[key]; collide {
			if kindPriority[e.Type] < kindPriority[existing.Type] {
				byQualified[key] = e
			}
			diags = append(diags, diagnostics.Diagnostic{
				Code:     "NameCollision",
				Severity: diagnostics.SeverityWarning,
				Message:  fmt.Sprintf("qualified name %q is defined by both %s and %s entities; %s wins", e.QualifiedName, existing.Type, e.Type, byQualified[key].Type),
			})
		} else {
			byQualified[key] = e
		}

		if e.Alias != "" {
			aliasKey := lower(e.Alias)
			if existing, collide := byAlias[aliasKey]; collide {
				if kindPriority[e.Type] < kindPriority[existing.Type] {
					byAlias[aliasKey] = e
				}
			} else {
				byAlias[aliasKey] = e
			}
		}

		for _, m := range e.Methods {
			key := lower(m.Name)
			if byMethod[key] == nil {
				byMethod[key] = make(map[string]bool)
			}
			byMethod[key][e.ID] = true
		}
	}

	graph, err := factgraph.New()
	if err != nil {
		return nil, nil, fmt.Errorf("index: create fact graph: %w", err)
	}

	for _, e := range sorted {
		_ = graph.AddFact("entity_kind", e.ID, string(e.Kind))
		for _, ref := range e.References {
			if target, ok := byQualified[lower(ref)]; ok {
				_ = graph.AddFact("references", e.QualifiedName, target.QualifiedName)
			} else {
				diags = append(diags, diagnostics.Diagnostic{
					Code:     diagnostics.CodeUnknownType,
					Severity: diagnostics.SeverityWarning,
					Message:  fmt.Sprintf("%s references unresolved entity %q", e.QualifiedName, ref),
				})
			}
		}
		for _, iface := range e.Implements {
			_ = graph.AddFact("implements", e.QualifiedName, iface)
		}
	}

	for from, to := range b.latticePairs() {
		_ = graph.AddFact("primitive_subtype", from, to)
	}

	if err := assertInheritance(graph, sorted, byQualified); err != nil {
		return nil, diags, err
	}

	assignCache, refCache := newSnapshotCaches()
	snap := &Snapshot{
		byID:         byID,
		byQualified:  byQualified,
		byAlias:      byAlias,
		byMethodName: byMethod,
		graph:        graph,
		assignCache:  assignCache,
		refCache:     refCache,
	}

	log.Info("built unified index: %d entities, %d diagnostics", len(byID), len(diags))
	return snap, diags, nil
}

func (b *Builder) latticePairs() map[string]string {
	out := make(map[string]string, len(b.lattice))
	for _, p := range b.lattice {
		out[p[0]] = p[1]
	}
	return out
}

// assertInheritance validates each Parents reference resolves, asserts
// `inherits` facts, and rejects cycles / over-deep chains before any fact is
// queryable.
func assertInheritance(graph *factgraph.Engine, entities []*entity.Entity, byQualified map[string]*entity.Entity) error {
	for _, e := range entities {
		depth := 0
		cur := e
		path := []string{e.QualifiedName}
		seen := map[string]bool{lower(e.QualifiedName): true}
		for _, parentName := range cur.Parents {
			parent, ok := byQualified[lower(parentName)]
			if !ok {
				return &BrokenInheritanceError{Child: e.QualifiedName, MissingParent: parentName}
			}
			if seen[lower(parent.QualifiedName)] {
				return &CycleError{Cycle: append(path, parent.QualifiedName)}
			}
			_ = graph.AddFact("inherits", e.QualifiedName, parent.QualifiedName)
		}

		// Walk the full ancestor chain (not just direct parents) to catch
		// indirect cycles and depth overruns.
		frontier := append([]string(nil), cur.Parents...)
		for len(frontier) > 0 && depth < maxInheritanceDepth {
			next := []string{}
			for _, name := range frontier {
				if seen[lower(name)] {
					return &CycleError{Cycle: append(path, name)}
				}
				seen[lower(name)] = true
				path = append(path, name)
				if parent, ok := byQualified[lower(name)]; ok {
					next = append(next, parent.Parents...)
				}
			}
			frontier = next
			depth++
		}
		if depth >= maxInheritanceDepth {
			return fmt.Errorf("index: inheritance chain for %s exceeds depth %d", e.QualifiedName, maxInheritanceDepth)
		}
	}
	return nil
}
