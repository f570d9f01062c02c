// Package validation checks entity payloads against per-type JSON schemas
// before they are sent to the backend, catching shape errors without a
// network round trip.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Errors struct {
	Fields []FieldError `json:"errors"`
}

func (e *Errors) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return strings.Join(msgs, "; ")
}

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks data against schema. A nil or empty schema allows any
// payload. data may be a struct or a map; it is marshalled to JSON either
// way before evaluation.
func (v *Validator) Validate(data any, schema map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return err
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(dataJSON),
	)
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}

	verrs := &Errors{}
	for _, desc := range result.Errors() {
		verrs.Fields = append(verrs.Fields, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return verrs
}

// ValidatePartial checks a merge patch: the required constraint is dropped
// because a patch carries only the fields being changed.
func (v *Validator) ValidatePartial(data any, schema map[string]any) error {
	if len(schema) == 0 {
		return nil
	}
	partial := make(map[string]any, len(schema))
	for k, val := range schema {
		if k != "required" {
			partial[k] = val
		}
	}
	return v.Validate(data, partial)
}

func IsValidationError(err error) bool {
	var verrs *Errors
	return errors.As(err, &verrs)
}

func FieldErrors(err error) []FieldError {
	var verrs *Errors
	if errors.As(err, &verrs) {
		return verrs.Fields
	}
	return nil
}
