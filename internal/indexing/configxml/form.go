package configxml

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"

	"langcore/internal/entity"
)

// formXML covers both structural variants the configuration format has used
// across platform versions: older forms declare attributes as flat
// <Attribute><Name>/<Type> pairs, newer "managed form" XML wraps the same
// fields in a nested <Properties> block (matching object metadata's own
// shape). formAttributeXML's two field sets let one Unmarshal handle either
// without a prior format sniff.
type formXML struct {
	XMLName    xml.Name
	Attributes []formAttributeXML `xml:"Attributes>Attribute"`
	Commands   []formCommandXML   `xml:"Commands>Command"`
}

type formAttributeXML struct {
	// nested ("managed form") variant
	Properties *attrProps `xml:"Properties"`
	// flat (legacy) variant
	FlatName string  `xml:"Name"`
	FlatType typeXML `xml:"Type"`
}

func (a formAttributeXML) resolve() (name string, typeName string) {
	if a.Properties != nil {
		name = a.Properties.Name
		if len(a.Properties.Type.Types) > 0 {
			typeName = normalizeTypeName(a.Properties.Type.Types[0])
		}
		return name, typeName
	}
	name = a.FlatName
	if len(a.FlatType.Types) > 0 {
		typeName = normalizeTypeName(a.FlatType.Types[0])
	}
	return name, typeName
}

type formCommandXML struct {
	Properties *attrProps `xml:"Properties"`
	FlatName   string     `xml:"Name"`
}

func (c formCommandXML) resolve() string {
	if c.Properties != nil {
		return c.Properties.Name
	}
	return c.FlatName
}

// ParseForm parses a form definition file (Catalogs/Products/Forms/ItemForm/Form.xml)
// into an Entity of kind Form, owned by the configuration object its path
// names. The form's own attributes become Properties; the object it edits
// (conventionally named "Object") becomes a Reference.
func ParseForm(path string, raw []byte) (*entity.Entity, error) {
	ownerKind, owner, formName, ok := formOwnerFromPath(path)
	if !ok {
		return nil, nil
	}

	var doc formXML
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("configxml: parse form %s: %w", path, err)
	}

	qualified := owner + ".Form." + formName
	e := &entity.Entity{
		ID:            "config:form:" + qualified,
		QualifiedName: qualified,
		DisplayName:   formName,
		Type:          entity.TypeForm,
		Kind:          entity.KindForm,
		Source:        entity.SourceFormXML,
		Constructible: false,
		Extended:      map[string]interface{}{"ownerKind": string(ownerKind), "owner": owner},
	}

	for _, a := range doc.Attributes {
		name, typeName := a.resolve()
		if name == "" {
			continue
		}
		e.Properties = append(e.Properties, entity.Property{Name: name, Type: typeName})
		if typeName != "" {
			e.References = append(e.References, typeName)
		}
	}

	var commands []string
	for _, c := range doc.Commands {
		if name := c.resolve(); name != "" {
			commands = append(commands, name)
		}
	}
	if len(commands) > 0 {
		e.Extended["commands"] = commands
	}

	e.References = append(e.References, owner)
	return e, nil
}

// formOwnerFromPath expects .../<Kind-directory>/<ObjectName>/Forms/<FormName>/Form.xml.
func formOwnerFromPath(path string) (ownerKind entity.Kind, owner, formName string, ok bool) {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for i, p := range parts {
		if p == "Forms" && i >= 2 && i+1 < len(parts) {
			dir := parts[i-2]
			k, known := kindByDirectory[dir]
			if !known {
				return "", "", "", false
			}
			return k, dir + "." + parts[i-1], parts[i+1], true
		}
	}
	return "", "", "", false
}
