package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"langcore/internal/indexing/builder"
)

var (
	indexConfigDir string
	indexProject   string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build and persist the Unified Index for a configuration directory",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexConfigDir, "config-dir", "", "Application configuration root to index")
	indexCmd.Flags().StringVar(&indexProject, "project", "", "Project key under the cache root (default: derived from --config-dir)")
}

func runIndex(cmd *cobra.Command, args []string) error {
	key := indexProject
	if key == "" {
		key = projectKey(indexConfigDir)
	}

	in := builder.Inputs{
		PlatformCachePath: cfg.PlatformCachePath(cfg.PlatformVersion),
		ConfigDir:         indexConfigDir,
		ProjectStorePath:  cfg.ProjectIndexPath(key),
		ManifestPath:      filepath.Join(filepath.Dir(cfg.ProjectIndexPath(key)), "manifest"),
		UnifiedIndexPath:  filepath.Join(filepath.Dir(cfg.ProjectIndexPath(key)), "unified_index.bin"),
		PlatformVersion:   cfg.PlatformVersion,
	}

	logger.Debug("building index", zap.String("project", key), zap.String("configDir", indexConfigDir))
	result, err := builder.Build(context.Background(), in)
	if err != nil {
		return ioError(fmt.Errorf("build index: %w", err))
	}

	errs := printBuildDiagnostics(result.Diagnostics)
	logger.Info("index built", zap.Int("entities", result.Snapshot.Len()), zap.Int("errors", errs))
	fmt.Printf("indexed %d entities\n", result.Snapshot.Len())
	if errs > 0 {
		return analysisError(errs)
	}
	return nil
}
