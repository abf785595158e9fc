package platformdocs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"langcore/internal/entity"
	"langcore/internal/logging"
)

// maxConcurrentExtractions bounds how many archive files are decoded and
// parsed at once; the archive can hold tens of thousands of pages and
// opening them all at once would exhaust file descriptors.
const maxConcurrentExtractions = 16

// Result is everything one archive extraction run produced.
type Result struct {
	Entities []*entity.Entity
	Errors   []string // per-file extraction failures, collected rather than fatal
}

// ExtractArchive walks root (a directory tree of the unpacked platform help
// archive) and parses every page it recognizes into an Entity. A single
// malformed page never aborts the run: its error is recorded in
// Result.Errors and extraction continues. A page that is not recognized is
// skipped without an entry in Result.Errors.
func ExtractArchive(ctx context.Context, root, platformVersion string) (Result, error) {
	log := logging.Get(logging.CategoryIndexing)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".html" || ext == ".htm" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("platformdocs: walk %s: %w", root, err)
	}
	log.Info("found %d candidate pages under %s", len(paths), root)

	var (
		mu      sync.Mutex
		entites []*entity.Entity
		errs    []string
	)

	eg, egCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxConcurrentExtractions)

	for _, p := range paths {
		p := p
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-egCtx.Done():
				return nil
			}

			e, ferr := extractFile(root, p, platformVersion)

			mu.Lock()
			defer mu.Unlock()
			if ferr != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", relPath(root, p), ferr))
				return nil
			}
			if e != nil {
				entites = append(entites, e)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return Result{}, fmt.Errorf("platformdocs: extraction aborted: %w", err)
	}

	log.Info("extracted %d entities from %d pages (%d failures)", len(entites), len(paths), len(errs))
	return Result{Entities: entites, Errors: errs}, nil
}

func extractFile(root, path, platformVersion string) (*entity.Entity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePage(relPath(root, path), raw, platformVersion)
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
