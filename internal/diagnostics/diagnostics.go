// Package diagnostics defines the Core's diagnostic record and the
// aggregation/dedup/rule-configuration pipeline that sits between the
// parser/analyzer/indexer and the LSP/CLI/report surfaces.
package diagnostics

import "langcore/internal/ast"

// Severity is the diagnostic level.
type Severity string

const (
	SeverityError   Severity = "Error"
	SeverityWarning Severity = "Warning"
	SeverityInfo    Severity = "Info"
	SeverityHint    Severity = "Hint"
)

// Suggestion is an optional fix-it attached to a Diagnostic.
type Suggestion struct {
	Message     string
	ReplaceSpan ast.Span
	ReplaceText string
}

// RelatedSpan points at a secondary location relevant to a Diagnostic (e.g.
// the first definition in an ambiguous-member report).
type RelatedSpan struct {
	File    string
	Span    ast.Span
	Message string
}

// Diagnostic is one reported finding. Its (File, Span, Code) triple is the
// stable identity used for dedup across passes and runs.
type Diagnostic struct {
	File        string
	Span        ast.Span
	Code        string
	Severity    Severity
	Message     string
	Suggestions []Suggestion
	Related     []RelatedSpan
}

// Key is the stable dedup identity for d.
type Key struct {
	File string
	Span ast.Span
	Code string
}

func (d Diagnostic) Key() Key {
	return Key{File: d.File, Span: d.Span, Code: d.Code}
}

// LineColumn resolves a Diagnostic's span into line/column using idx. This
// conversion only ever happens at an output boundary (CLI, LSP, report
// adapter) — internal passes move spans around, never (line, column).
type LineColumn struct {
	StartLine, StartColumn int
	EndLine, EndColumn     int
}

func (d Diagnostic) Resolve(idx *ast.LineIndex) LineColumn {
	sl, sc := idx.Position(d.Span.Start)
	el, ec := idx.Position(d.Span.End())
	return LineColumn{StartLine: sl, StartColumn: sc, EndLine: el, EndColumn: ec}
}

// Well-known rule codes referenced directly by the Semantic Analyzer and
// Unified Index builder.
const (
	CodeUndefinedVariable    = "UndefinedVariable"
	CodeUnknownMember        = "UnknownMember"
	CodeNotConstructible     = "NotConstructible"
	CodeWrongArgumentCount   = "WrongArgumentCount"
	CodeArgumentTypeMismatch = "ArgumentTypeMismatch"
	CodeAvailabilityViolation = "AvailabilityViolation"
	CodeAmbiguousMember      = "AmbiguousMember"
	CodeAmbiguousConstructor = "AmbiguousConstructor"
	CodeUseBeforeInit        = "UseBeforeInit"
	CodeDuplicateDeclaration = "DuplicateDeclaration"
	CodeUnusedLocal          = "UnusedLocal"
	CodeDeadCode             = "DeadCode"
	CodeUnknownType          = "UnknownType"
	CodeBrokenInheritance    = "BrokenInheritance"
	CodeExtraction           = "Extraction"
	CodeConfigParse          = "ConfigParse"
)
