package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"langcore/internal/ast"
	"langcore/internal/config"
	"langcore/internal/diagnostics"
	"langcore/internal/index"
	"langcore/internal/indexing/builder"
)

// exitError carries the precise exit code spec §6 assigns: 0 success, 1
// analysis produced errors, 2 usage error, 3 IO/cache error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error { return &exitError{code: 2, err: err} }
func ioError(err error) error    { return &exitError{code: 3, err: err} }

func analysisError(errorCount int) error {
	return &exitError{code: 1, err: fmt.Errorf("%d diagnostic(s) at error severity", errorCount)}
}

// projectKey derives the per-project cache subdirectory name from an
// absolute workspace path, matching config.ProjectIndexPath's contract.
func projectKey(workspacePath string) string {
	abs, err := filepath.Abs(workspacePath)
	if err != nil {
		abs = workspacePath
	}
	h := fmt.Sprintf("%x", fnvHash(abs))
	return filepath.Base(abs) + "-" + h[:8]
}

func fnvHash(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	var h uint64 = offset64
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

// loadSnapshot resolves a Unified Index for workspace: it tries a persisted
// build first and falls back to building fresh from configDir when no
// persisted index exists yet or its platform version no longer matches.
func loadSnapshot(c *config.Config, workspaceRoot, configDir string) (*index.Snapshot, error) {
	key := projectKey(workspaceRoot)
	manifestPath := filepath.Join(c.CacheRoot, "projects", key, "manifest")
	unifiedIndexPath := filepath.Join(c.CacheRoot, "projects", key, "unified_index.bin")

	if result, err := builder.LoadPersisted(manifestPath, unifiedIndexPath, c.PlatformVersion); err == nil {
		return result.Snapshot, nil
	}

	in := builder.Inputs{
		PlatformCachePath: c.PlatformCachePath(c.PlatformVersion),
		ConfigDir:         configDir,
		ProjectStorePath:  c.ProjectIndexPath(key),
		ManifestPath:      manifestPath,
		UnifiedIndexPath:  unifiedIndexPath,
		PlatformVersion:   c.PlatformVersion,
	}
	result, err := builder.Build(context.Background(), in)
	if err != nil {
		return nil, ioError(fmt.Errorf("build index: %w", err))
	}
	return result.Snapshot, nil
}

// loadProfile reads the rule-configuration document at path, falling back to
// diagnostics.DefaultProfile when path is empty.
func loadProfile(path string) (diagnostics.RuleProfile, error) {
	if path == "" {
		return diagnostics.DefaultProfile(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return diagnostics.RuleProfile{}, ioError(fmt.Errorf("read rule profile %s: %w", path, err))
	}
	profile, err := diagnostics.LoadProfile(data)
	if err != nil {
		return diagnostics.RuleProfile{}, usageError(err)
	}
	return profile, nil
}

// printDiagnostics renders diags in source order as plain text
// "file:line:col: severity code: message" lines, resolving spans against
// idx, and reports how many are at Error severity.
func printDiagnostics(diags []diagnostics.Diagnostic, idx *ast.LineIndex) int {
	sort.Slice(diags, func(i, j int) bool { return diags[i].Span.Start < diags[j].Span.Start })
	errs := 0
	for _, d := range diags {
		lc := d.Resolve(idx)
		fmt.Printf("%s:%d:%d: %s %s: %s\n", d.File, lc.StartLine, lc.StartColumn, d.Severity, d.Code, d.Message)
		if d.Severity == diagnostics.SeverityError {
			errs++
		}
	}
	return errs
}

// printBuildDiagnostics renders diagnostics produced by the Unified Index
// Builder, which span many configuration files at once and so carry no
// single shared LineIndex; it reports byte offsets rather than line/column
// and returns the number of Error-severity diagnostics.
func printBuildDiagnostics(diags []diagnostics.Diagnostic) int {
	sort.Slice(diags, func(i, j int) bool {
		if diags[i].File != diags[j].File {
			return diags[i].File < diags[j].File
		}
		return diags[i].Span.Start < diags[j].Span.Start
	})
	errs := 0
	for _, d := range diags {
		fmt.Printf("%s@%d: %s %s: %s\n", d.File, d.Span.Start, d.Severity, d.Code, d.Message)
		if d.Severity == diagnostics.SeverityError {
			errs++
		}
	}
	return errs
}
