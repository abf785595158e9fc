// Package index implements the Unified Type Index: the single
// queryable graph merging platform, configuration, form, and module
// entities, with O(1) name/alias lookup, inheritance/member resolution, and
// a reference graph backed by internal/index/factgraph.
package index

import (
	"context"
	"fmt"
	"sync"

	"langcore/internal/entity"
	"langcore/internal/index/factgraph"
)

// kindPriority orders entity.Type for name-collision resolution.
var kindPriority = map[entity.Type]int{
	entity.TypePlatform:      0,
	entity.TypeConfiguration: 1,
	entity.TypeForm:          2,
	entity.TypeModule:        3,
}

// defaultLattice declares the primitive subtype facts used by IsAssignable:
// subtyping between primitives follows this explicit, fixed lattice rather
// than structural inference.
var defaultLattice = [][2]string{
	{"Integer", "Number"},
	{"FixedArray", "Array"},
	{"FixedMap", "Map"},
	{"FixedStructure", "Structure"},
}

// Snapshot is a built, read-only Unified Index.
type Snapshot struct {
	byID         map[string]*entity.Entity
	byQualified  map[string]*entity.Entity // lower(qualifiedName) -> winning entity
	byAlias      map[string]*entity.Entity
	byMethodName map[string]map[string]bool // lower(methodName) -> set of entity IDs
	graph        *factgraph.Engine
	assignCache  *lruCache
	refCache     *lruCache
}

// defaultCacheCapacity bounds the per-snapshot query caches. A fresh,
// independently-sized pair of caches is created per snapshot so a rebuild
// never serves stale answers from the previous generation's cache.
const defaultCacheCapacity = 4096

func newSnapshotCaches() (*lruCache, *lruCache) {
	return newLRUCache(defaultCacheCapacity), newLRUCache(defaultCacheCapacity)
}

// FindByQualifiedName looks up an entity by its qualified name, case-
// insensitively.
func (s *Snapshot) FindByQualifiedName(name string) (*entity.Entity, bool) {
	e, ok := s.byQualified[lower(name)]
	return e, ok
}

// FindByAlias looks up an entity by its secondary-language alias.
func (s *Snapshot) FindByAlias(alias string) (*entity.Entity, bool) {
	e, ok := s.byAlias[lower(alias)]
	return e, ok
}

// ResolveMember walks the parent chain for a method or property named
// memberName, first match wins by declaration order.
func (s *Snapshot) ResolveMember(e *entity.Entity, memberName string) (*entity.Method, *entity.Property, bool) {
	seen := map[string]bool{}
	var walk func(cur *entity.Entity) (*entity.Method, *entity.Property)
	walk = func(cur *entity.Entity) (*entity.Method, *entity.Property) {
		if cur == nil || seen[cur.ID] {
			return nil, nil
		}
		seen[cur.ID] = true
		for i := range cur.Methods {
			if lower(cur.Methods[i].Name) == lower(memberName) {
				return &cur.Methods[i], nil
			}
		}
		for i := range cur.Properties {
			if lower(cur.Properties[i].Name) == lower(memberName) {
				return nil, &cur.Properties[i]
			}
		}
		for _, parentName := range cur.Parents {
			if parent, ok := s.FindByQualifiedName(parentName); ok {
				if m, p := walk(parent); m != nil || p != nil {
					return m, p
				}
			}
		}
		return nil, nil
	}
	m, p := walk(e)
	return m, p, m != nil || p != nil
}

// IsAssignable reports whether a value of type `from` may be used where
// `to` is expected.
func (s *Snapshot) IsAssignable(ctx context.Context, from, to string) (bool, string) {
	if lower(from) == lower(to) {
		return true, "equal"
	}

	cacheKey := lower(from) + "=>" + lower(to)
	if s.assignCache != nil {
		if cached, ok := s.assignCache.Get(cacheKey); ok {
			pair := cached.([2]string)
			return pair[0] == "1", pair[1]
		}
	}

	ok, rationale := false, ""
	rows, err := s.graph.Query(ctx, fmt.Sprintf("descendant(%q, %q)", from, to))
	if err == nil && len(rows) > 0 {
		ok, rationale = true, "descendant"
	} else if rows, err = s.graph.Query(ctx, fmt.Sprintf("implements(%q, %q)", from, to)); err == nil && len(rows) > 0 {
		ok, rationale = true, "implements"
	} else if rows, err = s.graph.Query(ctx, fmt.Sprintf("primitive_subtype(%q, %q)", from, to)); err == nil && len(rows) > 0 {
		ok, rationale = true, "primitive_subtype"
	}

	if s.assignCache != nil {
		flag := "0"
		if ok {
			flag = "1"
		}
		s.assignCache.Put(cacheKey, [2]string{flag, rationale})
	}
	return ok, rationale
}

// GetAllMethods returns e's own methods followed by inherited ones,
// deduplicated by name.
func (s *Snapshot) GetAllMethods(e *entity.Entity) []entity.Method {
	var out []entity.Method
	seen := map[string]bool{}
	visited := map[string]bool{}
	var walk func(cur *entity.Entity)
	walk = func(cur *entity.Entity) {
		if cur == nil || visited[cur.ID] {
			return
		}
		visited[cur.ID] = true
		for _, m := range cur.Methods {
			key := lower(m.Name)
			if !seen[key] {
				seen[key] = true
				out = append(out, m)
			}
		}
		for _, parentName := range cur.Parents {
			if parent, ok := s.FindByQualifiedName(parentName); ok {
				walk(parent)
			}
		}
	}
	walk(e)
	return out
}

// FindTypesWithMethod returns the ids of entities that declare a method
// named name, using the method-name index. Entities that only inherit the
// method are not included.
func (s *Snapshot) FindTypesWithMethod(name string) []string {
	set := s.byMethodName[lower(name)]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// GetReferences returns the qualified names e refers to.
func (s *Snapshot) GetReferences(ctx context.Context, e *entity.Entity) ([]string, error) {
	if s.refCache != nil {
		if cached, ok := s.refCache.Get(lower(e.QualifiedName)); ok {
			return cached.([]string), nil
		}
	}
	rows, err := s.graph.Query(ctx, fmt.Sprintf("references(%q, To)", e.QualifiedName))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if to, ok := r["To"].(string); ok {
			out = append(out, to)
		}
	}
	if s.refCache != nil {
		s.refCache.Put(lower(e.QualifiedName), out)
	}
	return out, nil
}

// ByID returns the entity with the given stable id.
func (s *Snapshot) ByID(id string) (*entity.Entity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// Len reports the number of entities in the snapshot.
func (s *Snapshot) Len() int { return len(s.byID) }

// All returns every entity in the snapshot, in no particular order. Used by
// the project store/unified-index persistence path, not by query code.
func (s *Snapshot) All() []*entity.Entity {
	out := make([]*entity.Entity, 0, len(s.byID))
	for _, e := range s.byID {
		out = append(out, e)
	}
	return out
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// Live holds the currently active Snapshot and swaps it atomically under a
// write lock on rebuild: readers always see a complete, consistent
// Snapshot, never one mid-build.
type Live struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// Current returns the active snapshot. Safe for concurrent readers.
func (l *Live) Current() *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

// Swap installs next as the active snapshot.
func (l *Live) Swap(next *Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snap = next
}
