package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"langcore/internal/ast"
	"langcore/internal/diagnostics"
	"langcore/internal/parser"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Parse-only syntax check, no semantic analysis or index required",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	symbols := ast.NewSymbolTable()
	totalErrors := 0

	for _, file := range args {
		src, err := os.ReadFile(file)
		if err != nil {
			return ioError(fmt.Errorf("read %s: %w", file, err))
		}

		tree := parser.Parse(file, 1, string(src), symbols)
		if len(tree.Errors) == 0 {
			continue
		}

		diags := make([]diagnostics.Diagnostic, 0, len(tree.Errors))
		for _, id := range tree.Errors {
			node := tree.Get(id)
			diags = append(diags, diagnostics.Diagnostic{
				File:     file,
				Span:     node.Span,
				Code:     "SyntaxError",
				Severity: diagnostics.SeverityError,
				Message:  "syntax error: could not parse this construct",
			})
		}
		totalErrors += printDiagnostics(diags, tree.LineIdx)
	}

	logger.Debug("check complete", zap.Int("files", len(args)), zap.Int("errors", totalErrors))
	if totalErrors > 0 {
		return analysisError(totalErrors)
	}
	return nil
}
