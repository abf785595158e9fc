// Package builder orchestrates the Unified Index Builder: it loads the
// platform cache, parses the configuration directory, merges both into one
// entity table, builds the Unified Index, and persists the result (project
// store, manifest, unified_index.bin) so a later run can load it back
// without re-parsing anything.
package builder

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"time"

	"langcore/internal/diagnostics"
	"langcore/internal/errkind"
	"langcore/internal/index"
	"langcore/internal/indexing/cache"
	"langcore/internal/indexing/configxml"
	"langcore/internal/indexing/platformdocs"
	"langcore/internal/logging"
)

// Inputs names every path the build procedure needs. ConfigDir may be empty
// for a platform-only build (e.g. the `index` CLI subcommand run against a
// bare platform archive with no application configuration yet).
type Inputs struct {
	PlatformCachePath string // platform_cache/<version>.jsonl
	ConfigDir         string // application configuration root, optional
	ProjectStorePath  string // project_indices/<project>/index.db
	ManifestPath      string // project_indices/<project>/manifest
	UnifiedIndexPath  string // project_indices/<project>/unified_index.bin
	PlatformVersion   string
}

// Result is everything a caller (CLI, LSP façade, Tool-Call Server) needs
// after a build.
type Result struct {
	Snapshot    *index.Snapshot
	Diagnostics []diagnostics.Diagnostic
}

// Build runs the full procedure described for the Unified Index Builder:
// load platform cache, stream configuration entities from the project
// store, merge, build indices, then persist the indices and a manifest back
// to the project store.
func Build(ctx context.Context, in Inputs) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := logging.Get(logging.CategoryIndexing)
	var diags []diagnostics.Diagnostic

	platformEntities, err := platformdocs.ReadCache(in.PlatformCachePath)
	if err != nil {
		return nil, fmt.Errorf("builder: load platform cache: %w", err)
	}
	log.Info("loaded %d platform entities from %s", len(platformEntities), in.PlatformCachePath)

	store, err := cache.Open(in.ProjectStorePath)
	if err != nil {
		return nil, fmt.Errorf("builder: open project store: %w", err)
	}
	defer store.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fingerprints := map[string]uint64{}
	if in.ConfigDir != "" {
		configEntities, configDiags, err := configxml.WalkConfiguration(in.ConfigDir)
		if err != nil {
			return nil, fmt.Errorf("builder: walk configuration: %w", err)
		}
		diags = append(diags, configDiags...)
		log.Info("parsed %d configuration entities from %s", len(configEntities), in.ConfigDir)

		if err := store.ReplaceEntities(configEntities); err != nil {
			return nil, fmt.Errorf("builder: persist configuration entities: %w", err)
		}

		fingerprints, err = fingerprintSourceFiles(in.ConfigDir)
		if err != nil {
			return nil, fmt.Errorf("builder: fingerprint configuration sources: %w", err)
		}
	}

	configEntities, err := store.LoadEntities()
	if err != nil {
		return nil, fmt.Errorf("builder: load configuration entities: %w", err)
	}

	ib := index.NewBuilder()
	for _, e := range platformEntities {
		ib.Add(e)
	}
	for _, e := range configEntities {
		ib.Add(e)
	}

	snapshot, buildDiags, err := ib.Build()
	if err != nil {
		return nil, fmt.Errorf("builder: build index: %w", err)
	}
	diags = append(diags, buildDiags...)

	if err := persist(snapshot, store, in, fingerprints); err != nil {
		return nil, err
	}

	return &Result{Snapshot: snapshot, Diagnostics: diags}, nil
}

func persist(snapshot *index.Snapshot, store *cache.Store, in Inputs, fingerprints map[string]uint64) error {
	if err := cache.WriteUnifiedIndex(in.UnifiedIndexPath, snapshot.All()); err != nil {
		return fmt.Errorf("builder: write unified index: %w", err)
	}

	counts, err := store.EntityCounts()
	if err != nil {
		return fmt.Errorf("builder: compute entity counts: %w", err)
	}
	manifest := cache.Manifest{
		PlatformVersion:    in.PlatformVersion,
		EntityCounts:       counts,
		SourceFingerprints: fingerprints,
		BuiltAt:            time.Now(),
	}
	if err := cache.WriteManifest(in.ManifestPath, manifest); err != nil {
		return fmt.Errorf("builder: write manifest: %w", err)
	}
	return nil
}

// LoadPersisted loads a previously built index from disk without
// re-running the build, validating the manifest's platform version against
// what the caller expects and the unified_index.bin header against the
// current format. A version mismatch forces the caller back to Build.
func LoadPersisted(manifestPath, unifiedIndexPath, wantPlatformVersion string) (*Result, error) {
	manifest, err := cache.ReadManifest(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("builder: read manifest: %w", err)
	}
	if wantPlatformVersion != "" && manifest.PlatformVersion != wantPlatformVersion {
		return nil, fmt.Errorf("builder: manifest platform version %s, want %s: %w",
			manifest.PlatformVersion, wantPlatformVersion, errkind.ErrCacheVersionMismatch)
	}

	entities, err := cache.ReadUnifiedIndex(unifiedIndexPath)
	if err != nil {
		return nil, fmt.Errorf("builder: read unified index: %w", err)
	}

	ib := index.NewBuilder()
	for _, e := range entities {
		ib.Add(e)
	}
	snapshot, diags, err := ib.Build()
	if err != nil {
		return nil, fmt.Errorf("builder: rebuild snapshot from persisted entities: %w", err)
	}
	return &Result{Snapshot: snapshot, Diagnostics: diags}, nil
}

// fingerprintSourceFiles hashes every file under root so the manifest can
// record what the configuration looked like at build time.
func fingerprintSourceFiles(root string) (map[string]uint64, error) {
	fingerprints := map[string]uint64{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		h := fnv.New64a()
		h.Write(data)
		fingerprints[filepath.ToSlash(rel)] = h.Sum64()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fingerprints, nil
}
