package snapshot

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"modbase/internal/services"
)

//go:embed schema.json
var schemaJSON []byte

// Validator checks documents against the embedded JSON schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile snapshot schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate returns an error marked services.ErrValidation listing every
// violation in doc.
func (v *Validator) Validate(doc []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return services.Wrap(services.ErrValidation, "snapshot", "validate", "document is not JSON", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		field := verr.Field()
		if field == "" {
			field = "(root)"
		}
		problems = append(problems, field+": "+verr.Description())
	}
	return services.Wrap(services.ErrValidation, "snapshot", "validate", strings.Join(problems, "; "), nil)
}
