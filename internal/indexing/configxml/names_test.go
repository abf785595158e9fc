package configxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNamesNoSynonym(t *testing.T) {
	primary, alias := normalizeNames("Products", synonymBlock{})
	assert.Equal(t, "Products", primary)
	assert.Equal(t, "", alias)
}

func TestNormalizeNamesPrefersEnglish(t *testing.T) {
	syn := synonymBlock{Items: []synonymItem{
		{Lang: "ru", Content: "Номенклатура"},
		{Lang: "en", Content: "Products Catalog"},
	}}
	primary, alias := normalizeNames("Products", syn)
	assert.Equal(t, "Products", primary)
	assert.Equal(t, "Products Catalog", alias)
}

func TestNormalizeNamesFallsBackToFirstWhenNoEnglish(t *testing.T) {
	syn := synonymBlock{Items: []synonymItem{
		{Lang: "ru", Content: "Номенклатура"},
		{Lang: "de", Content: "Warenkatalog"},
	}}
	_, alias := normalizeNames("Products", syn)
	assert.Equal(t, "Номенклатура", alias)
}

func TestNormalizeNamesSkipsEmptyContent(t *testing.T) {
	syn := synonymBlock{Items: []synonymItem{
		{Lang: "en", Content: ""},
		{Lang: "ru", Content: "Номенклатура"},
	}}
	_, alias := normalizeNames("Products", syn)
	assert.Equal(t, "Номенклатура", alias)
}
