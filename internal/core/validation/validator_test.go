package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"email":      map[string]any{"type": "string", "format": "email"},
			"first_name": map[string]any{"type": "string", "minLength": 2},
		},
		"required": []any{"email", "first_name"},
	}
}

func TestValidateAcceptsValidPayload(t *testing.T) {
	v := NewValidator()
	err := v.Validate(map[string]any{
		"email":      "jane@example.com",
		"first_name": "Jane",
	}, userSchema())
	assert.NoError(t, err)
}

func TestValidateReportsFieldErrors(t *testing.T) {
	v := NewValidator()
	err := v.Validate(map[string]any{"first_name": "J"}, userSchema())
	require.Error(t, err)
	require.True(t, IsValidationError(err))

	fields := FieldErrors(err)
	assert.NotEmpty(t, fields)
}

func TestValidateStruct(t *testing.T) {
	v := NewValidator()
	payload := struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
	}{Email: "jane@example.com", FirstName: "Jane"}

	assert.NoError(t, v.Validate(payload, userSchema()))
}

func TestValidatePartialSkipsRequired(t *testing.T) {
	v := NewValidator()

	// A patch carrying only one field passes even though the schema
	// requires both.
	assert.NoError(t, v.ValidatePartial(map[string]any{"first_name": "Jane"}, userSchema()))

	// Constraints on present fields still apply.
	err := v.ValidatePartial(map[string]any{"first_name": "J"}, userSchema())
	assert.True(t, IsValidationError(err))
}

func TestValidateNilSchemaAllowsAnything(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(map[string]any{"anything": true}, nil))
}
