package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"langcore/internal/indexing/builder"
)

var validateConfigDir string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Build the Unified Index and report Build-level errors as a CI gate",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateConfigDir, "config-dir", "", "Application configuration root to validate")
}

func runValidate(cmd *cobra.Command, args []string) error {
	key := projectKey(validateConfigDir)
	in := builder.Inputs{
		PlatformCachePath: cfg.PlatformCachePath(cfg.PlatformVersion),
		ConfigDir:         validateConfigDir,
		ProjectStorePath:  cfg.ProjectIndexPath(key),
		ManifestPath:      filepath.Join(filepath.Dir(cfg.ProjectIndexPath(key)), "manifest"),
		UnifiedIndexPath:  filepath.Join(filepath.Dir(cfg.ProjectIndexPath(key)), "unified_index.bin"),
		PlatformVersion:   cfg.PlatformVersion,
	}

	logger.Debug("validating index", zap.String("project", key), zap.String("configDir", validateConfigDir))
	result, err := builder.Build(context.Background(), in)
	if err != nil {
		return ioError(fmt.Errorf("build index: %w", err))
	}

	errs := printBuildDiagnostics(result.Diagnostics)
	logger.Info("validation complete", zap.Int("entities", result.Snapshot.Len()), zap.Int("errors", errs))
	if errs > 0 {
		return analysisError(errs)
	}
	fmt.Printf("ok: %d entities, no errors\n", result.Snapshot.Len())
	return nil
}
