package platformdocs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langcore/internal/entity"
	"langcore/internal/errkind"
)

func TestWriteCacheThenReadCacheRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "platform_cache", CacheFileName("8.3.24"))

	entities := []*entity.Entity{
		{ID: "platform:8.3.24:CatalogObject", QualifiedName: "CatalogObject", Type: entity.TypePlatform},
		{ID: "platform:8.3.24:CompareType", QualifiedName: "CompareType", Type: entity.TypePlatform},
	}

	require.NoError(t, WriteCache(path, entities))

	_, statErr := os.Stat(path)
	require.NoError(t, statErr)

	got, err := ReadCache(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "CatalogObject", got[0].QualifiedName)
	assert.Equal(t, "CompareType", got[1].QualifiedName)
}

func TestWriteCacheLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "platform_cache", CacheFileName("8.3.24"))
	require.NoError(t, WriteCache(path, nil))

	entries, err := os.ReadDir(filepath.Join(dir, "platform_cache"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, CacheFileName("8.3.24"), entries[0].Name())
}

func TestReadCacheMissingFileReportsCacheMissing(t *testing.T) {
	_, err := ReadCache(filepath.Join(t.TempDir(), "missing.jsonl"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errkind.ErrCacheMissing))
}
