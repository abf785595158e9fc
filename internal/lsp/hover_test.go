package lsp

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoverOnMemberAccessDescribesMethod(t *testing.T) {
	mgr, _ := newTestManager(t, catalogObjectWithWrite())
	mgr.DidOpen(context.Background(), "file:///a.os", twoProcedureSource, 1)

	// line 3 (0-based): "\tCat.Write();" - character 5 lands on the 'W' of Write.
	result, err := mgr.Hover("file:///a.os", 3, 5)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Contains(t, result.Contents, "CatalogObject.Write")
}

func TestHoverOnUnknownMemberReportsNoMatch(t *testing.T) {
	mgr, _ := newTestManager(t, catalogObjectWithWrite())
	src := "Procedure Broken()\n\tVar Cat;\n\tCat = New CatalogObject;\n\tCat.Frobnicate();\nEndProcedure\n"
	mgr.DidOpen(context.Background(), "file:///a.os", src, 1)

	result, err := mgr.Hover("file:///a.os", 3, 5)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, strings.Contains(result.Contents, "no member"))
}

func TestHoverOnUnopenedDocumentErrors(t *testing.T) {
	mgr, _ := newTestManager(t, catalogObjectWithWrite())
	_, err := mgr.Hover("file:///never-opened.os", 0, 0)
	assert.Error(t, err)
}
