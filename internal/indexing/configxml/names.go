package configxml

import "strings"

// preferredAliasLangs orders which Synonym language entries become the
// secondary "alias" name when an object declares more than one; the
// configuration format allows any number of localized synonyms but the
// Unified Index keeps exactly one alias.
var preferredAliasLangs = []string{"en", "en-US"}

// normalizeNames returns (primary, alias) for an object or member: primary
// is always the declared XML Name (never localized, stable across
// languages); alias is the best-matching localized Synonym entry, or the
// first one if none match a preferred language.
func normalizeNames(name string, syn synonymBlock) (primary, alias string) {
	primary = strings.TrimSpace(name)
	if len(syn.Items) == 0 {
		return primary, ""
	}

	for _, want := range preferredAliasLangs {
		for _, item := range syn.Items {
			if strings.EqualFold(item.Lang, want) && item.Content != "" {
				return primary, item.Content
			}
		}
	}
	for _, item := range syn.Items {
		if item.Content != "" {
			return primary, item.Content
		}
	}
	return primary, ""
}
