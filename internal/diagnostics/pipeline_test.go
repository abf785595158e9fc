package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langcore/internal/ast"
)

func TestPipelineDropsDisabledRules(t *testing.T) {
	profile := DefaultProfile()
	profile.Rules[CodeUnusedLocal] = RuleConfig{Enabled: false}

	p := NewPipeline(profile)
	p.Report([]Diagnostic{
		{File: "a.os", Span: ast.Span{Start: 0, Length: 1}, Code: CodeUnusedLocal, Severity: SeverityHint},
		{File: "a.os", Span: ast.Span{Start: 5, Length: 1}, Code: CodeUndefinedVariable, Severity: SeverityError},
	})

	diags := p.ForFile("a.os")
	require.Len(t, diags, 1)
	assert.Equal(t, CodeUndefinedVariable, diags[0].Code)
}

func TestPipelineOverridesSeverityWhenConfigured(t *testing.T) {
	profile := DefaultProfile()
	profile.Rules[CodeUseBeforeInit] = RuleConfig{Enabled: true, Severity: SeverityError}

	p := NewPipeline(profile)
	p.Report([]Diagnostic{
		{File: "a.os", Span: ast.Span{Start: 0, Length: 1}, Code: CodeUseBeforeInit, Severity: SeverityWarning},
	})

	diags := p.ForFile("a.os")
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityError, diags[0].Severity)
}

func TestPipelineDeduplicatesByKeyAndSortsBySpan(t *testing.T) {
	p := NewPipeline(DefaultProfile())
	p.Report([]Diagnostic{
		{File: "a.os", Span: ast.Span{Start: 10, Length: 1}, Code: CodeUndefinedVariable, Severity: SeverityError},
		{File: "a.os", Span: ast.Span{Start: 0, Length: 1}, Code: CodeUnknownMember, Severity: SeverityError},
		// Same file/span/code as the first: must collapse to one entry.
		{File: "a.os", Span: ast.Span{Start: 10, Length: 1}, Code: CodeUndefinedVariable, Severity: SeverityError, Message: "second report"},
	})

	diags := p.ForFile("a.os")
	require.Len(t, diags, 2)
	assert.Equal(t, uint32(0), diags[0].Span.Start)
	assert.Equal(t, uint32(10), diags[1].Span.Start)
	assert.Equal(t, "second report", diags[1].Message, "a later report for the same key replaces the earlier one")
}

func TestPipelineClearRemovesOnlyThatFile(t *testing.T) {
	p := NewPipeline(DefaultProfile())
	p.Report([]Diagnostic{
		{File: "a.os", Span: ast.Span{Start: 0, Length: 1}, Code: CodeUndefinedVariable, Severity: SeverityError},
	})
	p.Report([]Diagnostic{
		{File: "b.os", Span: ast.Span{Start: 0, Length: 1}, Code: CodeUndefinedVariable, Severity: SeverityError},
	})

	p.Clear("a.os")

	assert.Empty(t, p.ForFile("a.os"))
	assert.Len(t, p.ForFile("b.os"), 1)
	assert.Len(t, p.All(), 1)
}
