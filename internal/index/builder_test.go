package index

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langcore/internal/entity"
	"langcore/internal/errkind"
)

func platformEntity(qualifiedName string, parents ...string) *entity.Entity {
	return &entity.Entity{
		ID:            "platform:" + qualifiedName,
		QualifiedName: qualifiedName,
		Type:          entity.TypePlatform,
		Kind:          entity.KindCollection,
		Parents:       parents,
	}
}

func TestBuildResolvesEntitiesByIDAndQualifiedName(t *testing.T) {
	b := NewBuilder()
	b.Add(platformEntity("CatalogRef"))
	b.Add(platformEntity("CatalogObject", "CatalogRef"))

	snap, diags, err := b.Build()
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, 2, snap.Len())

	e, ok := snap.ByID("platform:CatalogObject")
	require.True(t, ok)
	assert.Equal(t, "CatalogObject", e.QualifiedName)

	_, ok = snap.FindByQualifiedName("catalogobject")
	assert.True(t, ok, "lookup must be case-insensitive")
}

func TestBuildRejectsDuplicateID(t *testing.T) {
	b := NewBuilder()
	b.Add(platformEntity("CatalogRef"))
	dup := platformEntity("CatalogRef")
	dup.QualifiedName = "AnotherName"
	b.Add(dup)

	_, _, err := b.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, errkind.ErrDuplicateID)
}

func TestBuildFlagsNameCollisionButPlatformWins(t *testing.T) {
	b := NewBuilder()
	platform := platformEntity("Catalogs.Products")
	config := &entity.Entity{
		ID:            "config:Catalogs.Products",
		QualifiedName: "Catalogs.Products",
		Type:          entity.TypeConfiguration,
		Kind:          entity.KindCatalog,
	}
	b.Add(config)
	b.Add(platform)

	snap, diags, err := b.Build()
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "NameCollision", diags[0].Code)

	winner, ok := snap.FindByQualifiedName("Catalogs.Products")
	require.True(t, ok)
	assert.Equal(t, entity.TypePlatform, winner.Type, "platform entities outrank configuration ones on name collision")
}

func TestBuildRejectsUnresolvedParent(t *testing.T) {
	b := NewBuilder()
	b.Add(platformEntity("CatalogObject", "NoSuchParent"))

	_, _, err := b.Build()
	require.Error(t, err)
	var broken *BrokenInheritanceError
	require.True(t, errors.As(err, &broken))
	assert.Equal(t, "CatalogObject", broken.Child)
	assert.Equal(t, "NoSuchParent", broken.MissingParent)
	assert.ErrorIs(t, err, errkind.ErrUnresolvedParent)
}

func TestBuildRejectsInheritanceCycle(t *testing.T) {
	b := NewBuilder()
	b.Add(platformEntity("A", "B"))
	b.Add(platformEntity("B", "A"))

	_, _, err := b.Build()
	require.Error(t, err)
	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	assert.ErrorIs(t, err, errkind.ErrCyclicInheritance)
}

func TestBuildFlagsUnresolvedReference(t *testing.T) {
	b := NewBuilder()
	e := platformEntity("CatalogObject")
	e.References = []string{"NoSuchType"}
	b.Add(e)

	_, diags, err := b.Build()
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "UnknownType", diags[0].Code)
}
