package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobals clears the package-level logger registry between tests, since
// Get/Initialize share process-wide state.
func resetGlobals(t *testing.T) {
	t.Helper()
	mu.Lock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*logger)
	enabled = false
	minLevel = LevelInfo
	mu.Unlock()
}

func TestInitializeWithEmptyRootDisablesFileOutput(t *testing.T) {
	resetGlobals(t)
	require.NoError(t, Initialize("", "info"))

	l := Get(CategoryBoot)
	l.Info("hello")
	assert.Nil(t, l.file)
}

func TestInitializeCreatesLogDirectoryAndWritesJSONEntries(t *testing.T) {
	resetGlobals(t)
	root := t.TempDir()
	require.NoError(t, Initialize(root, "debug"))

	l := Get(CategoryParser)
	l.Info("parsed %d files", 3)
	Close()

	data, err := os.ReadFile(filepath.Join(root, "logs", "parser.log"))
	require.NoError(t, err)

	var entry Entry
	require.NoError(t, json.Unmarshal(data[:len(data)-1], &entry)) // trim trailing newline
	assert.Equal(t, "parser", entry.Category)
	assert.Equal(t, "info", entry.Level)
	assert.Equal(t, "parsed 3 files", entry.Message)
}

func TestWriteSuppressesEntriesBelowMinLevel(t *testing.T) {
	resetGlobals(t)
	root := t.TempDir()
	require.NoError(t, Initialize(root, "warn"))

	l := Get(CategoryIndex)
	l.Debug("should not appear")
	l.Error("should appear")
	Close()

	data, err := os.ReadFile(filepath.Join(root, "logs", "index.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "should not appear")
	assert.Contains(t, string(data), "should appear")
}

func TestGetReturnsSameLoggerForRepeatedCategory(t *testing.T) {
	resetGlobals(t)
	require.NoError(t, Initialize("", "info"))
	assert.Same(t, Get(CategoryLSP), Get(CategoryLSP))
}
