// Package schema validates imported YAML documents against embedded CUE
// schemas before the core ever sees them.
package schema

import (
	"embed"
	"fmt"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/dotcommander/topical/internal/types"
)

//go:embed schemas/*.cue
var schemaFS embed.FS

// Validator handles CUE validation
type Validator struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}
}

// LoadSchemas loads all CUE schema files from the embedded filesystem
func (v *Validator) LoadSchemas() error {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return fmt.Errorf("could not read embedded schemas: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".cue" {
			continue
		}
		content, err := schemaFS.ReadFile(filepath.Join("schemas", entry.Name()))
		if err != nil {
			continue
		}

		// Compile the CUE schema
		inst := v.ctx.CompileBytes(content, cue.Filename(entry.Name()))
		if instErr := inst.Err(); instErr != nil {
			return fmt.Errorf("compiling schema %s: %w", entry.Name(), instErr)
		}

		// topicmap.cue -> topicmap
		schemaName := strings.TrimSuffix(entry.Name(), ".cue")
		v.schemas[schemaName] = inst.Value()
	}

	if len(v.schemas) == 0 {
		return fmt.Errorf("no CUE schemas loaded")
	}

	return nil
}

// ValidateTopicMap validates a decoded topic-map document.
func (v *Validator) ValidateTopicMap(path string, data map[string]any) []types.Finding {
	return v.validateAgainstSchema("topicmap", "Topicmap", path, data)
}

// ValidateCatalog validates a decoded rule-catalog document.
func (v *Validator) ValidateCatalog(path string, data map[string]any) []types.Finding {
	return v.validateAgainstSchema("catalog", "Catalog", path, data)
}

// ValidateYAML parses raw YAML bytes and validates them as the given
// document type (types.DocTopicMap or types.DocCatalog).
func (v *Validator) ValidateYAML(path string, raw []byte, docType string) ([]types.Finding, error) {
	var data map[string]any
	if err := yamlv3.Unmarshal(raw, &data); err != nil {
		return []types.Finding{{
			Subject:  path,
			Message:  fmt.Sprintf("invalid YAML: %v", err),
			Severity: types.SeverityError,
		}}, nil
	}

	switch docType {
	case types.DocTopicMap:
		return v.ValidateTopicMap(path, data), nil
	case types.DocCatalog:
		return v.ValidateCatalog(path, data), nil
	default:
		return nil, fmt.Errorf("no schema for document type %q", docType)
	}
}

// validateAgainstSchema validates data against an embedded CUE definition.
func (v *Validator) validateAgainstSchema(schemaName, defName, path string, data map[string]any) []types.Finding {
	schema, ok := v.schemas[schemaName]
	if !ok {
		// Schema not loaded; nothing to check against.
		return nil
	}

	dataValue := v.ctx.Encode(data)
	if encErr := dataValue.Err(); encErr != nil {
		return []types.Finding{{
			Subject:  path,
			Message:  fmt.Sprintf("error encoding document: %v", encErr),
			Severity: types.SeverityError,
		}}
	}

	def := schema.LookupPath(cue.ParsePath("#" + defName))
	if !def.Exists() {
		return nil
	}

	// Unify checks if the document and the schema can both hold.
	unified := def.Unify(dataValue)
	if err := unified.Err(); err != nil {
		return findingsFromCUE(path, err)
	}
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return findingsFromCUE(path, err)
	}

	return nil
}

// findingsFromCUE converts CUE errors into findings.
func findingsFromCUE(path string, err error) []types.Finding {
	return []types.Finding{{
		Subject:  path,
		Message:  fmt.Sprintf("schema validation failed: %v", err),
		Severity: types.SeverityError,
	}}
}
