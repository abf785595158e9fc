package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manifest records what a project's built index was built from, so a
// subsequent build can tell at a glance whether the platform cache or any
// source file has moved on since.
type Manifest struct {
	PlatformVersion    string            `json:"platform_version"`
	EntityCounts       map[string]int    `json:"entity_counts"`
	SourceFingerprints map[string]uint64 `json:"source_fingerprints"`
	BuiltAt            time.Time         `json:"built_at"`
}

// WriteManifest serializes m to path atomically (write-temp-then-rename), so
// a reader never observes a half-written manifest.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: marshal manifest: %w", err)
	}
	return atomicWrite(path, data)
}

// ReadManifest loads and parses the manifest at path.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("cache: read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("cache: parse manifest %s: %w", path, err)
	}
	return m, nil
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("cache: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("cache: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("cache: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cache: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("cache: rename into place: %w", err)
	}
	return nil
}
