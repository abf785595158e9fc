package platformdocs

import (
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decode converts raw platform documentation bytes to UTF-8. The archive
// ships pages in a mix of encodings across platform versions: modern
// releases write UTF-8 with a BOM, older ones write Windows-1251 (Cyrillic)
// with no BOM at all. decode sniffs the BOM when present and otherwise
// falls back through a fixed list of legacy code pages, accepting the
// first one that decodes without error and produces valid UTF-8.
func decode(raw []byte) (string, error) {
	if enc, rest, ok := sniffBOM(raw); ok {
		return decodeWith(enc, rest)
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	for _, enc := range legacyEncodings {
		if s, err := decodeWith(enc, raw); err == nil && utf8.Valid([]byte(s)) {
			return s, nil
		}
	}
	// Last resort: pass the bytes through, stripping invalid runes rather
	// than failing the whole extraction over one malformed file.
	return toValidUTF8(raw), nil
}

var legacyEncodings = []encoding.Encoding{
	charmap.Windows1251, // Cyrillic, most common in this platform's older docs
	charmap.Windows1252,
	charmap.ISO8859_1,
}

func sniffBOM(raw []byte) (encoding.Encoding, []byte, bool) {
	switch {
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		return unicode.UTF8BOM, raw[3:], true
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), raw, true
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), raw, true
	default:
		return nil, raw, false
	}
}

func decodeWith(enc encoding.Encoding, raw []byte) (string, error) {
	reader := transform.NewReader(bytes.NewReader(raw), enc.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func toValidUTF8(raw []byte) string {
	var buf bytes.Buffer
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		if r == utf8.RuneError && size <= 1 {
			raw = raw[1:]
			continue
		}
		buf.WriteRune(r)
		raw = raw[size:]
	}
	return buf.String()
}
