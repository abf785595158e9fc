package factgraph

import (
	"context"
	"testing"
)

func TestNewEngineLoadsSchema(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if e == nil {
		t.Fatal("New() returned nil engine")
	}
}

func TestAddFactRejectsUndeclaredPredicate(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.AddFact("not_a_real_predicate", "X"); err == nil {
		t.Error("expected an error for an undeclared predicate")
	}
}

func TestAddFactRejectsWrongArity(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.AddFact("inherits", "Catalogs.Products"); err == nil {
		t.Error("expected an arity mismatch error for inherits/1 against inherits/2")
	}
}

func TestDescendantIsTransitive(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	facts := []Fact{
		{Predicate: "entity_kind", Args: []interface{}{"Catalogs.Products", "Catalog"}},
		{Predicate: "entity_kind", Args: []interface{}{"CatalogObject", "Collection"}},
		{Predicate: "entity_kind", Args: []interface{}{"Object", "Collection"}},
		{Predicate: "inherits", Args: []interface{}{"Catalogs.Products", "CatalogObject"}},
		{Predicate: "inherits", Args: []interface{}{"CatalogObject", "Object"}},
	}
	if err := e.AddFacts(facts); err != nil {
		t.Fatalf("AddFacts() error = %v", err)
	}

	rows, err := e.Query(context.Background(), `descendant("Catalogs.Products", Y)`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	var sawObject bool
	for _, row := range rows {
		if row["Y"] == "Object" {
			sawObject = true
		}
	}
	if !sawObject {
		t.Error("expected Catalogs.Products to transitively descend from Object")
	}
}

func TestAssignableHoldsReflexively(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.AddFact("entity_kind", "Catalogs.Products", "Catalog"); err != nil {
		t.Fatalf("AddFact() error = %v", err)
	}

	rows, err := e.Query(context.Background(), `assignable("Catalogs.Products", "Catalogs.Products")`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected exactly one row for an entity assignable to itself, got %d", len(rows))
	}
}

func TestGetFactsReturnsOnlyAssertedTuples(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.AddFacts([]Fact{
		{Predicate: "inherits", Args: []interface{}{"A", "B"}},
		{Predicate: "inherits", Args: []interface{}{"B", "C"}},
	}); err != nil {
		t.Fatalf("AddFacts() error = %v", err)
	}

	facts, err := e.GetFacts("inherits")
	if err != nil {
		t.Fatalf("GetFacts() error = %v", err)
	}
	if len(facts) != 2 {
		t.Errorf("GetFacts(\"inherits\") returned %d facts, want 2", len(facts))
	}

	// descendant is derived, not asserted, so no facts are asserted under it directly.
	derived, err := e.GetFacts("descendant")
	if err != nil {
		t.Fatalf("GetFacts() error = %v", err)
	}
	if len(derived) != 0 {
		t.Errorf("GetFacts(\"descendant\") returned %d facts, want 0 for a derived predicate with no asserted tuples", len(derived))
	}
}

func TestClearResetsStoreButKeepsSchema(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.AddFact("inherits", "A", "B"); err != nil {
		t.Fatalf("AddFact() error = %v", err)
	}

	e.Clear()

	facts, err := e.GetFacts("inherits")
	if err != nil {
		t.Fatalf("GetFacts() error = %v", err)
	}
	if len(facts) != 0 {
		t.Errorf("expected no facts after Clear(), got %d", len(facts))
	}

	// schema survives Clear: re-asserting and querying still works.
	if err := e.AddFact("inherits", "A", "B"); err != nil {
		t.Fatalf("AddFact() after Clear() error = %v", err)
	}
}
