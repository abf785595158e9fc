package lsp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(items []CompletionItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func TestCompletionAfterDotProposesMembers(t *testing.T) {
	mgr, _ := newTestManager(t, catalogObjectWithWrite())
	mgr.DidOpen(context.Background(), "file:///a.os", twoProcedureSource, 1)

	// line 3 (0-based): "\tCat.Write();" - character 5 lands right after the dot.
	items, err := mgr.Completion("file:///a.os", 3, 5)
	require.NoError(t, err)
	got := labels(items)
	assert.Contains(t, got, "Write")
	assert.Contains(t, got, "Code")
}

func TestCompletionAfterNewProposesConstructibleTypes(t *testing.T) {
	mgr, _ := newTestManager(t, catalogObjectWithWrite())
	mgr.DidOpen(context.Background(), "file:///a.os", twoProcedureSource, 1)

	// line 2 (0-based): "\tCat = New CatalogObject;" - just after "New ".
	items, err := mgr.Completion("file:///a.os", 2, 12)
	require.NoError(t, err)
	got := labels(items)
	assert.Contains(t, got, "CatalogObject")
}

func TestCompletionBareIdentifierProposesLocals(t *testing.T) {
	mgr, _ := newTestManager(t, catalogObjectWithWrite())
	mgr.DidOpen(context.Background(), "file:///a.os", twoProcedureSource, 1)

	// line 2 (0-based): "\tCat = New CatalogObject;" - character 3 is inside "Cat".
	items, err := mgr.Completion("file:///a.os", 2, 3)
	require.NoError(t, err)
	got := labels(items)
	assert.Contains(t, got, "Cat")
}

func TestCompletionMemberPrefixFiltersResults(t *testing.T) {
	mgr, _ := newTestManager(t, catalogObjectWithWrite())
	mgr.DidOpen(context.Background(), "file:///a.os", twoProcedureSource, 1)

	// line 3: "\tCat.Write();" - character 7 lands after "Wr".
	items, err := mgr.Completion("file:///a.os", 3, 7)
	require.NoError(t, err)
	got := labels(items)
	assert.Contains(t, got, "Write")
	assert.NotContains(t, got, "Code")
}
