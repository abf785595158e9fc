// Package platformdocs extracts platform Entity records (built-in types,
// their methods and properties) from the HTML help archive shipped with the
// platform distribution.
package platformdocs

import (
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"langcore/internal/entity"
)

// Category classifies a help page by its path within the archive, the only
// signal the archive gives beyond the HTML itself (there is no manifest).
type Category int

const (
	CategoryUnknown Category = iota
	CategoryObjectType
	CategoryGlobalFunction
	CategorySystemEnum
)

// categorize inspects path to decide which kind of page this is, mirroring
// the archive's directory convention (objects/, global-context/, enums/).
func categorize(path string) Category {
	p := "/" + filepath.ToSlash(strings.ToLower(path))
	switch {
	case strings.Contains(p, "/objects/"):
		return CategoryObjectType
	case strings.Contains(p, "/global-context/"), strings.Contains(p, "/globalcontext/"):
		return CategoryGlobalFunction
	case strings.Contains(p, "/enums/"):
		return CategorySystemEnum
	default:
		return CategoryUnknown
	}
}

// ParsePage decodes and parses one help page into an Entity. A page whose
// category can't be determined or whose heading can't be read returns
// (nil, nil) so the caller can skip it without treating it as an error.
func ParsePage(path string, raw []byte, platformVersion string) (*entity.Entity, error) {
	cat := categorize(path)
	if cat == CategoryUnknown {
		return nil, nil
	}

	text, err := decode(raw)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, err
	}

	page := extractPage(doc)
	if page.title == "" {
		return nil, nil
	}

	e := &entity.Entity{
		ID:            "platform:" + platformVersion + ":" + page.title,
		QualifiedName: page.title,
		DisplayName:   page.title,
		Alias:         page.alias,
		Type:          entity.TypePlatform,
		Source:        entity.SourcePlatformArchive,
		Constructible: cat == CategoryObjectType && page.hasConstructor,
	}

	switch cat {
	case CategoryObjectType:
		e.Kind = entity.KindCollection
	case CategoryGlobalFunction:
		e.Kind = entity.KindCommonModule
	case CategorySystemEnum:
		e.Kind = entity.KindEnum
	}

	e.Methods = page.methods
	e.Properties = page.properties
	return e, nil
}

// page is the intermediate result of walking one help document's DOM.
type page struct {
	title          string
	alias          string
	hasConstructor bool
	methods        []entity.Method
	properties     []entity.Property
}

// extractPage walks the document looking for the platform docs' fixed
// structure: an <h1> title (often "English (Native)" form), method/property
// names under <h2>/<h3> headings inside "Methods"/"Properties" sections. The
// archive's markup is inconsistent across versions, so this is a heuristic
// best-effort walk, not a strict schema parse (mirrors the teacher's
// `extractText`'s tolerant per-tag switch over x/net/html nodes).
func extractPage(doc *html.Node) page {
	var p page
	var section string // "methods", "properties", or ""

	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		if depth > 64 {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1":
				if p.title == "" {
					p.title = collectText(n)
				}
			case "h2", "h3":
				heading := strings.ToLower(collectText(n))
				switch {
				case strings.Contains(heading, "method"):
					section = "methods"
				case strings.Contains(heading, "propert"):
					section = "properties"
				default:
					section = ""
				}
			case "li", "tr":
				name := collectText(n)
				name = strings.TrimSpace(firstToken(name))
				if name != "" {
					switch section {
					case "methods":
						p.methods = append(p.methods, entity.Method{Name: name})
					case "properties":
						p.properties = append(p.properties, entity.Property{Name: name})
					}
				}
			case "a":
				if id := getAttr(n, "name"); id == "constructor" {
					p.hasConstructor = true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, depth+1)
		}
	}
	walk(doc, 0)
	return p
}

func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
