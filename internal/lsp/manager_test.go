package lsp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langcore/internal/diagnostics"
	"langcore/internal/entity"
	"langcore/internal/index"
)

func buildSnapshot(t *testing.T, ents ...*entity.Entity) *index.Snapshot {
	t.Helper()
	b := index.NewBuilder()
	for _, e := range ents {
		b.Add(e)
	}
	snap, diags, err := b.Build()
	require.NoError(t, err)
	require.Empty(t, diags)
	return snap
}

func catalogObjectWithWrite() *entity.Entity {
	return &entity.Entity{
		ID:            "platform:CatalogObject",
		QualifiedName: "CatalogObject",
		Type:          entity.TypePlatform,
		Kind:          entity.KindCollection,
		Constructible: true,
		Methods: []entity.Method{
			{Name: "Write", Availability: []entity.Availability{entity.AvailabilityServer}},
		},
		Properties: []entity.Property{
			{Name: "Code", Type: "String"},
		},
	}
}

func catalogObjectWithoutMethods() *entity.Entity {
	return &entity.Entity{
		ID:            "platform:CatalogObject",
		QualifiedName: "CatalogObject",
		Type:          entity.TypePlatform,
		Kind:          entity.KindCollection,
		Constructible: true,
	}
}

func newTestManager(t *testing.T, ents ...*entity.Entity) (*Manager, *index.Live) {
	t.Helper()
	live := &index.Live{}
	live.Swap(buildSnapshot(t, ents...))
	return NewManager(live, entity.AvailabilityServer), live
}

const twoProcedureSource = `Procedure DoWork()
	Var Cat;
	Cat = New CatalogObject;
	Cat.Write();
EndProcedure

Procedure Broken()
	Var Cat;
	Cat = New CatalogObject;
	Cat.Write();
EndProcedure
`

func TestDidOpenReportsNoDiagnosticsForValidCalls(t *testing.T) {
	mgr, _ := newTestManager(t, catalogObjectWithWrite())
	diags := mgr.DidOpen(context.Background(), "file:///a.os", twoProcedureSource, 1)
	assert.Empty(t, diags)
}

func TestDidOpenReportsUnknownMember(t *testing.T) {
	mgr, _ := newTestManager(t, catalogObjectWithWrite())
	src := `Procedure Broken()
	Var Cat;
	Cat = New CatalogObject;
	Cat.Frobnicate();
EndProcedure
`
	diags := mgr.DidOpen(context.Background(), "file:///a.os", src, 1)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.CodeUnknownMember, diags[0].Code)
}

// TestDidChangeSkipsRevalidationForUnchangedUnit edits one procedure and
// swaps the live snapshot to one that would newly flag both procedures, then
// asserts the untouched procedure's diagnostics still reflect the snapshot
// in effect when it was last actually validated — proof its ValidateCalls
// pass was skipped rather than silently rerun.
func TestDidChangeSkipsRevalidationForUnchangedUnit(t *testing.T) {
	mgr, live := newTestManager(t, catalogObjectWithWrite())

	diags := mgr.DidOpen(context.Background(), "file:///a.os", twoProcedureSource, 1)
	require.Empty(t, diags)

	live.Swap(buildSnapshot(t, catalogObjectWithoutMethods()))

	changed := `Procedure DoWork()
	Var Cat;
	Cat = New CatalogObject;
	Cat.Write();
	Cat.Write();
EndProcedure

Procedure Broken()
	Var Cat;
	Cat = New CatalogObject;
	Cat.Write();
EndProcedure
`
	diags = mgr.DidChange(context.Background(), "file:///a.os", changed, 2)

	require.Len(t, diags, 2, "only the edited procedure should be revalidated against the new snapshot")
	for _, d := range diags {
		assert.Equal(t, diagnostics.CodeUnknownMember, d.Code)
	}
}

func TestDidChangeRevalidatesChangedUnitAgainstNewSnapshot(t *testing.T) {
	mgr, live := newTestManager(t, catalogObjectWithWrite())

	src := `Procedure DoWork()
	Var Cat;
	Cat = New CatalogObject;
	Cat.Write();
EndProcedure
`
	diags := mgr.DidOpen(context.Background(), "file:///a.os", src, 1)
	require.Empty(t, diags)

	live.Swap(buildSnapshot(t, catalogObjectWithoutMethods()))

	changed := `Procedure DoWork()
	Var Cat;
	Cat = New CatalogObject;
	Cat.Write();
	Cat.Write();
EndProcedure
`
	diags = mgr.DidChange(context.Background(), "file:///a.os", changed, 2)
	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, diagnostics.CodeUnknownMember, d.Code)
	}
}

func TestDidCloseDropsDocumentState(t *testing.T) {
	mgr, _ := newTestManager(t, catalogObjectWithWrite())
	mgr.DidOpen(context.Background(), "file:///a.os", twoProcedureSource, 1)
	mgr.DidClose("file:///a.os")

	_, err := mgr.Hover("file:///a.os", 0, 0)
	assert.Error(t, err)
}
