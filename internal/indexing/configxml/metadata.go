// Package configxml parses an application configuration directory tree
// (object metadata XML plus form XML) into Entity records, resolving
// attribute types and form/tabular-section structure the way the platform's
// own configuration format lays them out.
package configxml

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"

	"langcore/internal/entity"
)

// kindByDirectory maps a configuration directory's top-level folder name to
// the entity Kind its objects are parsed as.
var kindByDirectory = map[string]entity.Kind{
	"Catalogs":              entity.KindCatalog,
	"Documents":             entity.KindDocument,
	"InformationRegisters":  entity.KindRegister,
	"AccumulationRegisters": entity.KindRegister,
	"DataProcessors":        entity.KindProcessing,
	"Reports":               entity.KindReport,
	"Enums":                 entity.KindEnum,
	"CommonModules":         entity.KindCommonModule,
	"Roles":                 entity.KindRole,
}

// metaObject is the shape shared by every object descriptor's root element
// (Catalog.xml's <Catalog>, Document.xml's <Document>,
// InformationRegister.xml's <InformationRegister>, ...). The root element
// name itself varies by object kind and carries no information Unmarshal
// needs: every descriptor nests the same Properties/ChildObjects shape
// regardless of what the root tag is called, so XMLName is left unset and
// matches whatever tag is actually present.
type metaObject struct {
	XMLName      xml.Name
	UUID         string       `xml:"uuid,attr"`
	Properties   metaProps    `xml:"Properties"`
	ChildObjects metaChildren `xml:"ChildObjects"`
}

type metaProps struct {
	Name     string       `xml:"Name"`
	Synonym  synonymBlock `xml:"Synonym"`
	Comment  string       `xml:"Comment"`
}

type synonymBlock struct {
	Items []synonymItem `xml:"item"`
}

type synonymItem struct {
	Lang    string `xml:"lang"`
	Content string `xml:"content"`
}

type metaChildren struct {
	Attributes      []attributeXML      `xml:"Attribute"`
	TabularSections []tabularSectionXML `xml:"TabularSection"`
	Forms           []formRefXML        `xml:"Form"`
	Commands        []commandXML        `xml:"Command"`
}

type attributeXML struct {
	UUID       string    `xml:"uuid,attr"`
	Properties attrProps `xml:"Properties"`
}

type attrProps struct {
	Name    string       `xml:"Name"`
	Synonym synonymBlock `xml:"Synonym"`
	Type    typeXML      `xml:"Type"`
}

type typeXML struct {
	Types []string `xml:"Type"`
}

type tabularSectionXML struct {
	UUID       string         `xml:"uuid,attr"`
	Properties metaProps      `xml:"Properties"`
	Attributes []attributeXML `xml:"ChildObjects>Attribute"`
}

type formRefXML struct {
	UUID       string    `xml:"uuid,attr"`
	Properties metaProps `xml:"Properties"`
}

type commandXML struct {
	UUID       string    `xml:"uuid,attr"`
	Properties metaProps `xml:"Properties"`
}

// TabularSectionEntry is the Extended-payload shape for one tabular section,
// kept loosely typed (map[string]interface{} at the entity level) since the
// data model intentionally avoids a Go type per configuration object kind.
type TabularSectionEntry struct {
	Name       string            `json:"name"`
	Alias      string            `json:"alias,omitempty"`
	Properties []entity.Property `json:"properties"`
}

// ParseMetadataObject parses one object descriptor (e.g. Catalogs/Products/Catalog.xml)
// into an Entity. path is used only to derive the object's Kind from its
// enclosing directory; it is not re-parsed for the object name.
func ParseMetadataObject(path string, raw []byte) (*entity.Entity, error) {
	dir, kind, ok := kindFromPath(path)
	if !ok {
		return nil, nil
	}

	var doc metaObject
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("configxml: parse %s: %w", path, err)
	}
	if doc.Properties.Name == "" {
		return nil, fmt.Errorf("configxml: %s: missing object name", path)
	}

	qualified := dir + "." + doc.Properties.Name
	primary, alias := normalizeNames(doc.Properties.Name, doc.Properties.Synonym)

	e := &entity.Entity{
		ID:            "config:" + doc.UUID,
		QualifiedName: qualified,
		DisplayName:   primary,
		Alias:         alias,
		Type:          entity.TypeConfiguration,
		Kind:          kind,
		Source:        entity.SourceConfigurationXML,
		Constructible: true,
		Extended:      map[string]interface{}{},
	}

	for _, a := range doc.ChildObjects.Attributes {
		prop, ref := attributeToProperty(a)
		e.Properties = append(e.Properties, prop)
		if ref != "" {
			e.References = append(e.References, ref)
		}
	}

	var sections []TabularSectionEntry
	for _, ts := range doc.ChildObjects.TabularSections {
		tsPrimary, tsAlias := normalizeNames(ts.Properties.Name, ts.Properties.Synonym)
		entry := TabularSectionEntry{Name: tsPrimary, Alias: tsAlias}
		for _, a := range ts.Attributes {
			prop, ref := attributeToProperty(a)
			entry.Properties = append(entry.Properties, prop)
			if ref != "" {
				e.References = append(e.References, ref)
			}
		}
		sections = append(sections, entry)
	}
	if len(sections) > 0 {
		e.Extended["tabularSections"] = sections
	}

	var forms []string
	for _, f := range doc.ChildObjects.Forms {
		name, _ := normalizeNames(f.Properties.Name, f.Properties.Synonym)
		forms = append(forms, name)
		e.References = append(e.References, qualified+".Form."+name)
	}
	if len(forms) > 0 {
		e.Extended["forms"] = forms
	}

	var commands []string
	for _, c := range doc.ChildObjects.Commands {
		name, _ := normalizeNames(c.Properties.Name, c.Properties.Synonym)
		commands = append(commands, name)
	}
	if len(commands) > 0 {
		e.Extended["commands"] = commands
	}

	return e, nil
}

func attributeToProperty(a attributeXML) (entity.Property, string) {
	primary, alias := normalizeNames(a.Properties.Name, a.Properties.Synonym)
	typeName := ""
	if len(a.Properties.Type.Types) > 0 {
		typeName = normalizeTypeName(a.Properties.Type.Types[0])
	}
	return entity.Property{Name: primary, Alias: alias, Type: typeName}, typeName
}

// normalizeTypeName maps the configuration's XML type-string dialect (either
// a platform primitive in the "xs:" namespace or a qualified configuration
// object reference like "CatalogRef.Products") to the form the Unified
// Index's qualified names use.
func normalizeTypeName(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "xs:") {
		switch strings.TrimPrefix(raw, "xs:") {
		case "decimal", "integer", "long", "double":
			return "Number"
		case "string":
			return "String"
		case "boolean":
			return "Boolean"
		case "dateTime", "date":
			return "Date"
		}
	}
	if strings.HasSuffix(raw, "Ref") {
		return raw
	}
	return raw
}

// kindFromPath derives an object's directory and Kind from its path's
// top-level configuration directory (Catalogs/, Documents/, ...).
func kindFromPath(path string) (dir string, kind entity.Kind, ok bool) {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) == 0 {
		return "", "", false
	}
	k, ok := kindByDirectory[parts[0]]
	return parts[0], k, ok
}
