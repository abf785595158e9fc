package cache

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"langcore/internal/entity"
	"langcore/internal/errkind"
)

// indexMagic identifies a unified_index.bin file. indexFormatVersion is
// bumped whenever the payload encoding changes; a reader that sees a
// mismatched version rejects the file outright rather than attempting a
// best-effort decode, forcing the caller to rebuild.
var indexMagic = [8]byte{'L', 'N', 'G', 'C', 'I', 'D', 'X', 0}

const indexFormatVersion uint32 = 1

// headerSize is the fixed 16-byte magic+version header: 8 bytes magic, 4
// bytes format version, 4 bytes reserved for future use.
const headerSize = 16

// WriteUnifiedIndex serializes entities to path as a versioned, atomically
// written snapshot of the Unified Index's entity set.
func WriteUnifiedIndex(path string, entities []*entity.Entity) error {
	payload, err := json.Marshal(entities)
	if err != nil {
		return fmt.Errorf("cache: marshal unified index: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(indexMagic[:])
	var versionBytes [4]byte
	binary.BigEndian.PutUint32(versionBytes[:], indexFormatVersion)
	buf.Write(versionBytes[:])
	buf.Write([]byte{0, 0, 0, 0}) // reserved
	buf.Write(payload)

	return atomicWrite(path, buf.Bytes())
}

// ReadUnifiedIndex validates the header and decodes the entity set from
// path. A magic or version mismatch returns errkind.ErrCacheVersionMismatch;
// a truncated or malformed payload returns errkind.ErrCacheCorrupt.
func ReadUnifiedIndex(path string) ([]*entity.Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cache: read unified index %s: %w", path, err)
	}
	if len(data) < headerSize {
		return nil, fmt.Errorf("cache: %s: truncated header: %w", path, errkind.ErrCacheCorrupt)
	}
	if !bytes.Equal(data[:8], indexMagic[:]) {
		return nil, fmt.Errorf("cache: %s: bad magic: %w", path, errkind.ErrCacheVersionMismatch)
	}
	version := binary.BigEndian.Uint32(data[8:12])
	if version != indexFormatVersion {
		return nil, fmt.Errorf("cache: %s: format version %d, expected %d: %w", path, version, indexFormatVersion, errkind.ErrCacheVersionMismatch)
	}

	var entities []*entity.Entity
	if err := json.Unmarshal(data[headerSize:], &entities); err != nil {
		return nil, fmt.Errorf("cache: %s: decode payload: %w", path, errkind.ErrCacheCorrupt)
	}
	return entities, nil
}
