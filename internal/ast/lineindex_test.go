package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineIndexPositionResolvesLineAndColumn(t *testing.T) {
	li := NewLineIndex("abc\ndef\nghi")

	line, col := li.Position(0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 0, col)

	line, col = li.Position(5) // 'e' on line 2
	assert.Equal(t, 2, line)
	assert.Equal(t, 1, col)

	line, col = li.Position(10) // last char, line 3
	assert.Equal(t, 3, line)
	assert.Equal(t, 2, col)
}

func TestLineIndexOffsetRoundTripsWithPosition(t *testing.T) {
	src := "abc\ndef\nghi"
	li := NewLineIndex(src)

	for offset := 0; offset < len(src); offset++ {
		line, col := li.Position(uint32(offset))
		assert.Equal(t, uint32(offset), li.Offset(line, col), "offset %d did not round-trip", offset)
	}
}

func TestLineIndexOffsetClampsOutOfRangeLine(t *testing.T) {
	li := NewLineIndex("abc\ndef")
	assert.Equal(t, uint32(0), li.Offset(0, 0), "line below 1 clamps to the first line")
	assert.Equal(t, li.Offset(2, 0), li.Offset(99, 0), "line past the last one clamps to the last line")
}

func TestLineIndexZeroValuePositionDoesNotPanic(t *testing.T) {
	var li LineIndex
	line, col := li.Position(5)
	assert.Equal(t, 1, line)
	assert.Equal(t, 5, col)
}
