package ast

import "sort"

// LineIndex maps byte offsets to (line, column) in O(log n).
// Lines are 1-based to match editor conventions; columns are 0-based byte
// offsets within the line, which is sufficient since the analyzer never
// needs UTF-16 code-unit columns internally (the LSP façade converts at the
// output boundary).
type LineIndex struct {
	// starts[i] is the byte offset where line i+1 begins.
	starts []uint32
}

// NewLineIndex scans src once and records the offset of every line start.
func NewLineIndex(src string) *LineIndex {
	starts := []uint32{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}
	return &LineIndex{starts: starts}
}

// Position converts a byte offset into a 1-based line and 0-based column.
func (li *LineIndex) Position(offset uint32) (line, column int) {
	if len(li.starts) == 0 {
		return 1, int(offset)
	}
	// i is the first index whose start exceeds offset; since starts[0] == 0,
	// i is always >= 1 and i-1 is the containing line's start.
	i := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset })
	return i, int(offset - li.starts[i-1])
}

// Offset converts a 1-based line and 0-based column back to a byte offset.
func (li *LineIndex) Offset(line, column int) uint32 {
	if line < 1 {
		line = 1
	}
	idx := line - 1
	if idx >= len(li.starts) {
		idx = len(li.starts) - 1
	}
	return li.starts[idx] + uint32(column)
}
