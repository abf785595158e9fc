package platformdocs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestDecodeUTF8BOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Catalogs.Products")...)
	got, err := decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "Catalogs.Products", got)
}

func TestDecodePlainUTF8(t *testing.T) {
	raw := []byte("СправочникСсылка")
	got, err := decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "СправочникСсылка", got)
}

func TestDecodeLegacyWindows1251(t *testing.T) {
	want := "Справочники"
	raw, err := charmap.Windows1251.NewEncoder().String(want)
	require.NoError(t, err)

	got, err := decode([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeInvalidUTF8FallsBackToLegacyCodePage(t *testing.T) {
	raw := []byte{'a', 'b', 0xFF, 0xFE, 0xFD, 'c'}
	got, err := decode(raw)
	require.NoError(t, err)
	assert.NotContains(t, got, string(rune(0xFFFD)))
}

func TestSniffBOMVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want bool
	}{
		{"utf8 bom", []byte{0xEF, 0xBB, 0xBF, 'x'}, true},
		{"utf16le bom", []byte{0xFF, 0xFE, 'x', 0}, true},
		{"utf16be bom", []byte{0xFE, 0xFF, 0, 'x'}, true},
		{"no bom", []byte("plain text"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := sniffBOM(tt.raw)
			assert.Equal(t, tt.want, ok)
		})
	}
}
