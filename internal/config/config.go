// Package config holds the layered configuration record shared by the CLI,
// the LSP façade, and the Tool-Call Server: flags override environment
// variables, which override the on-disk file, which overrides the built-in
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the fully-resolved configuration record.
type Config struct {
	// CacheRoot is where the platform-docs cache, the project index, and
	// log files are written. Defaults to $LANGCORE_HOME or $HOME/.langcore.
	CacheRoot string `yaml:"cache_root"`

	// ProfilePath points at the rule-configuration document (TOML or YAML,
	// format sniffed by internal/diagnostics.LoadProfile). Empty means the
	// built-in default profile.
	ProfilePath string `yaml:"profile_path"`

	// PlatformVersion selects which cached platform-docs extraction to load
	// from CacheRoot. The value is used as given: an empty version is not
	// resolved to the newest cached one.
	PlatformVersion string `yaml:"platform_version"`

	// LogLevel is one of debug|info|warn|error, passed to
	// internal/logging.Initialize.
	LogLevel string `yaml:"log_level"`

	// Verbose mirrors the CLI's --verbose flag into the ambient zap logger
	// built in main(); it is not itself a zap setting.
	Verbose bool `yaml:"-"`
}

// Default returns the configuration with no file or environment applied.
func Default() *Config {
	return &Config{
		CacheRoot: defaultCacheRoot(),
		LogLevel:  "info",
	}
}

func defaultCacheRoot() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".langcore")
	}
	return ".langcore"
}

// Load resolves the layered configuration: defaults, then the file at path
// (if non-empty and present), then environment variables. A missing file is
// not an error — Load falls back to defaults plus environment overrides,
// the same tolerance the teacher's config loader gives a missing YAML file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to defaults + environment
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if root := os.Getenv("LANGCORE_HOME"); root != "" {
		c.CacheRoot = root
	}
	if profile := os.Getenv("LANGCORE_PROFILE"); profile != "" {
		c.ProfilePath = profile
	}
	if level := os.Getenv("LANGCORE_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if version := os.Getenv("LANGCORE_PLATFORM_VERSION"); version != "" {
		c.PlatformVersion = version
	}
}

// ApplyFlags layers CLI flag values over the already-resolved config. An
// empty string (or a false verbose) counts as "flag not set" and leaves the
// corresponding value unchanged.
func (c *Config) ApplyFlags(cacheRoot, profilePath, platformVersion, logLevel string, verbose bool) {
	if cacheRoot != "" {
		c.CacheRoot = cacheRoot
	}
	if profilePath != "" {
		c.ProfilePath = profilePath
	}
	if platformVersion != "" {
		c.PlatformVersion = platformVersion
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if verbose {
		c.Verbose = true
		c.LogLevel = "debug"
	}
}

// PlatformCachePath returns the path the platform-docs cache file would be
// written to or read from for the configured platform version.
func (c *Config) PlatformCachePath(platformVersion string) string {
	return filepath.Join(c.CacheRoot, "platform", platformVersion+".jsonl")
}

// ProjectIndexPath returns the sqlite-backed project index path for a given
// project root, keyed by a short hash of the absolute path so unrelated
// projects never collide in one shared cache root.
func (c *Config) ProjectIndexPath(projectKey string) string {
	return filepath.Join(c.CacheRoot, "projects", projectKey, "index.db")
}
