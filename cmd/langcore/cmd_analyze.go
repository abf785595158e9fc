package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"langcore/internal/ast"
	"langcore/internal/diagnostics"
	"langcore/internal/entity"
	"langcore/internal/parser"
	"langcore/internal/semantic"
)

var (
	analyzeConfigDir string
	analyzeExecCtx   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Parse and semantically analyze source files against the Unified Index",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeConfigDir, "config-dir", "", "Application configuration root to index alongside the platform cache")
	analyzeCmd.Flags().StringVar(&analyzeExecCtx, "context", string(entity.AvailabilityServer), "Execution context: Client|Server|MobileApp")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	execCtx := entity.Availability(analyzeExecCtx)
	logger.Debug("analyzing files", zap.Int("files", len(args)), zap.String("context", string(execCtx)))

	snap, err := loadSnapshot(cfg, analyzeWorkspaceRoot(args), analyzeConfigDir)
	if err != nil {
		return err
	}

	profile, err := loadProfile(profilePath)
	if err != nil {
		return err
	}
	pipeline := diagnostics.NewPipeline(profile)

	symbols := ast.NewSymbolTable()
	lineIdx := map[string]*ast.LineIndex{}

	for _, file := range args {
		src, err := os.ReadFile(file)
		if err != nil {
			return ioError(fmt.Errorf("read %s: %w", file, err))
		}

		tree := parser.Parse(file, 1, string(src), symbols)
		lineIdx[file] = tree.LineIdx

		var fileDiags []diagnostics.Diagnostic
		for _, id := range tree.Errors {
			node := tree.Get(id)
			fileDiags = append(fileDiags, diagnostics.Diagnostic{
				File:     file,
				Span:     node.Span,
				Code:     "SyntaxError",
				Severity: diagnostics.SeverityError,
				Message:  "syntax error: could not parse this construct",
			})
		}

		_, semDiags := semantic.Analyze(context.Background(), tree, string(src), snap, execCtx)
		fileDiags = append(fileDiags, semDiags...)
		pipeline.Report(fileDiags)
	}

	totalErrors := 0
	for _, file := range args {
		totalErrors += printDiagnostics(pipeline.ForFile(file), lineIdx[file])
	}

	logger.Info("analysis complete", zap.Int("files", len(args)), zap.Int("errors", totalErrors))
	if totalErrors > 0 {
		return analysisError(totalErrors)
	}
	return nil
}

// analyzeWorkspaceRoot derives the workspace root used to key the cache
// directory from the files being analyzed: the first file's parent directory
// when config-dir wasn't given explicitly.
func analyzeWorkspaceRoot(files []string) string {
	if analyzeConfigDir != "" {
		return analyzeConfigDir
	}
	if len(files) == 0 {
		return "."
	}
	return filepath.Dir(files[0])
}
