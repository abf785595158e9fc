package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultUsesHomeCacheRoot(t *testing.T) {
	cfg := Default()
	assert.Contains(t, cfg.CacheRoot, ".langcore")
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadParsesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_root: /tmp/custom\nlog_level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom", cfg.CacheRoot)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_root: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesCacheRoot(t *testing.T) {
	t.Setenv("LANGCORE_HOME", "/custom/home")
	cfg := &Config{CacheRoot: "/default"}
	cfg.applyEnvOverrides()
	assert.Equal(t, "/custom/home", cfg.CacheRoot)
}

func TestEnvOverridesLogLevelAndProfile(t *testing.T) {
	t.Setenv("LANGCORE_LOG_LEVEL", "warn")
	t.Setenv("LANGCORE_PROFILE", "/rules.toml")
	t.Setenv("LANGCORE_PLATFORM_VERSION", "8.3.24")

	cfg := &Config{}
	cfg.applyEnvOverrides()
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/rules.toml", cfg.ProfilePath)
	assert.Equal(t, "8.3.24", cfg.PlatformVersion)
}

func TestApplyFlagsOverridesOnlySetValues(t *testing.T) {
	cfg := &Config{CacheRoot: "/env-root", LogLevel: "info"}
	cfg.ApplyFlags("", "/rules.yaml", "", "", false)
	assert.Equal(t, "/env-root", cfg.CacheRoot)
	assert.Equal(t, "/rules.yaml", cfg.ProfilePath)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestApplyFlagsVerboseForcesDebugLogging(t *testing.T) {
	cfg := &Config{LogLevel: "info"}
	cfg.ApplyFlags("", "", "", "", true)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestPlatformCachePath(t *testing.T) {
	cfg := &Config{CacheRoot: "/root/.langcore"}
	assert.Equal(t, "/root/.langcore/platform/8.3.24.jsonl", cfg.PlatformCachePath("8.3.24"))
}

func TestProjectIndexPath(t *testing.T) {
	cfg := &Config{CacheRoot: "/root/.langcore"}
	assert.Equal(t, "/root/.langcore/projects/abc123/index.db", cfg.ProjectIndexPath("abc123"))
}
