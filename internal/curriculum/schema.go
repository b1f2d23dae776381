package curriculum

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.schema.json
var catalogSchemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func catalogSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(catalogSchemaJSON))
	})
	return schema, schemaErr
}

// ValidateDocument checks raw catalog YAML against the catalog schema.
func ValidateDocument(data []byte) error {
	s, err := catalogSchema()
	if err != nil {
		return fmt.Errorf("compiling catalog schema: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing catalog YAML: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("catalog document is empty")
	}

	result, err := s.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("validating catalog: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("catalog does not match schema: %s", strings.Join(msgs, "; "))
}
