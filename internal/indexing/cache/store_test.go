package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langcore/internal/entity"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "project", "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesSchema(t *testing.T) {
	s := openTestStore(t)
	entities, err := s.LoadEntities()
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestReplaceEntitiesThenLoadRoundTrips(t *testing.T) {
	s := openTestStore(t)

	entities := []*entity.Entity{
		{ID: "config:1", QualifiedName: "Catalogs.Products", Kind: entity.KindCatalog, Type: entity.TypeConfiguration},
		{ID: "config:2", QualifiedName: "Documents.Orders", Kind: entity.KindDocument, Type: entity.TypeConfiguration},
	}
	require.NoError(t, s.ReplaceEntities(entities))

	loaded, err := s.LoadEntities()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Catalogs.Products", loaded[0].QualifiedName)
	assert.Equal(t, "Documents.Orders", loaded[1].QualifiedName)
}

func TestReplaceEntitiesDiscardsPreviousSet(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.ReplaceEntities([]*entity.Entity{
		{ID: "config:1", QualifiedName: "Catalogs.Old", Kind: entity.KindCatalog, Type: entity.TypeConfiguration},
	}))
	require.NoError(t, s.ReplaceEntities([]*entity.Entity{
		{ID: "config:2", QualifiedName: "Catalogs.New", Kind: entity.KindCatalog, Type: entity.TypeConfiguration},
	}))

	loaded, err := s.LoadEntities()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Catalogs.New", loaded[0].QualifiedName)
}

func TestEntityCountsGroupsByKind(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.ReplaceEntities([]*entity.Entity{
		{ID: "config:1", QualifiedName: "Catalogs.A", Kind: entity.KindCatalog, Type: entity.TypeConfiguration},
		{ID: "config:2", QualifiedName: "Catalogs.B", Kind: entity.KindCatalog, Type: entity.TypeConfiguration},
		{ID: "config:3", QualifiedName: "Documents.C", Kind: entity.KindDocument, Type: entity.TypeConfiguration},
	}))

	counts, err := s.EntityCounts()
	require.NoError(t, err)
	assert.Equal(t, 2, counts[string(entity.KindCatalog)])
	assert.Equal(t, 1, counts[string(entity.KindDocument)])
}
