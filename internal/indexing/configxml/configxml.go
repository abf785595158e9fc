package configxml

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"langcore/internal/diagnostics"
	"langcore/internal/entity"
	"langcore/internal/logging"
)

// metadataFileNames lists the object-descriptor file names recognized under
// a configuration object's directory (Catalogs/Products/Catalog.xml,
// Documents/Order/Document.xml, ...): the file name mirrors the object's
// kind singular, one file per object, sitting beside its ChildObjects
// (Forms/, Templates/, ...) subdirectories.
var metadataFileNames = map[string]bool{
	"Catalog.xml":             true,
	"Document.xml":            true,
	"InformationRegister.xml": true,
	"AccumulationRegister.xml": true,
	"DataProcessor.xml":       true,
	"Report.xml":              true,
	"Enum.xml":                true,
	"CommonModule.xml":        true,
	"Role.xml":                true,
}

// WalkConfiguration parses every object metadata file and form file under
// root into Entities. A malformed object or form file produces a
// ConfigParse diagnostic and is skipped; the rest of the walk continues.
func WalkConfiguration(root string) ([]*entity.Entity, []diagnostics.Diagnostic, error) {
	log := logging.Get(logging.CategoryIndexing)

	var entities []*entity.Entity
	var diags []diagnostics.Diagnostic

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".xml" {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		base := filepath.Base(path)
		switch {
		case metadataFileNames[base]:
			e, perr := parseFileWithRecovery(rel, path, ParseMetadataObject)
			if perr != nil {
				diags = append(diags, configParseDiagnostic(rel, perr))
				return nil
			}
			if e != nil {
				entities = append(entities, e)
			}
		case base == "Form.xml":
			e, perr := parseFileWithRecovery(rel, path, ParseForm)
			if perr != nil {
				diags = append(diags, configParseDiagnostic(rel, perr))
				return nil
			}
			if e != nil {
				entities = append(entities, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("configxml: walk %s: %w", root, err)
	}

	log.Info("parsed %d configuration entities from %s (%d diagnostics)", len(entities), root, len(diags))
	return entities, diags, nil
}

func parseFileWithRecovery(rel, path string, parse func(path string, raw []byte) (*entity.Entity, error)) (e *entity.Entity, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(rel, raw)
}

func configParseDiagnostic(file string, err error) diagnostics.Diagnostic {
	return diagnostics.Diagnostic{
		File:     file,
		Code:     diagnostics.CodeConfigParse,
		Severity: diagnostics.SeverityError,
		Message:  strings.TrimPrefix(err.Error(), "configxml: "),
	}
}
