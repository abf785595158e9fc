// Package errkind holds sentinel error values shared across the indexing
// and build pipeline, checked with errors.Is at call sites rather than by
// string comparison.
package errkind

import "errors"

var (
	// ErrCacheMissing means the requested platform version has no cache
	// file on disk; the caller should extract it instead.
	ErrCacheMissing = errors.New("errkind: cache not found")

	// ErrCacheVersionMismatch means a cache or index file's schema/format
	// version header does not match what this build expects; the file must
	// be rebuilt rather than decoded.
	ErrCacheVersionMismatch = errors.New("errkind: cache version mismatch")

	// ErrCacheCorrupt means a cache or index file's contents could not be
	// decoded despite a matching version header.
	ErrCacheCorrupt = errors.New("errkind: cache corrupt")

	// ErrDuplicateID means two entities were staged with the same id during
	// a build.
	ErrDuplicateID = errors.New("errkind: duplicate entity id")

	// ErrUnresolvedParent means an entity declares a parent type the
	// Unified Index has no record of.
	ErrUnresolvedParent = errors.New("errkind: unresolved parent type")

	// ErrCyclicInheritance means the parent graph contains a cycle.
	ErrCyclicInheritance = errors.New("errkind: cyclic inheritance")
)
