package jsonschema

import (
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSchema = `{
	"type": "object",
	"properties": {
		"type": { "enum": ["uniform", "sliding-window"] },
		"size": { "type": "integer", "minimum": 1 },
		"alpha": { "type": "number", "exclusiveMinimum": 0 }
	},
	"required": ["type"],
	"additionalProperties": false
}`

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		schema        string
		json          string
		expectedValid bool
		expectedError bool
	}{
		{
			name:          "valid document",
			schema:        sampleSchema,
			json:          `{"type": "uniform", "size": 1028, "alpha": 0.015}`,
			expectedValid: true,
		},
		{
			name:   "missing required property",
			schema: sampleSchema,
			json:   `{"size": 10}`,
		},
		{
			name:   "wrong type",
			schema: sampleSchema,
			json:   `{"type": "uniform", "size": "big"}`,
		},
		{
			name:   "unknown property",
			schema: sampleSchema,
			json:   `{"type": "uniform", "capacity": 10}`,
		},
		{
			name:          "invalid schema",
			schema:        `{"type": "invalid-type"}`,
			json:          `{}`,
			expectedError: true,
		},
		{
			name:          "invalid JSON",
			schema:        sampleSchema,
			json:          `{ invalid json }`,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, err := Validate(tt.json, tt.schema)
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedValid, valid)
		})
	}
}

func TestValidateWithErrors(t *testing.T) {
	tests := []struct {
		name           string
		json           string
		expectedErrors []string
	}{
		{
			name:           "missing required property",
			json:           `{}`,
			expectedErrors: []string{"type", "missing properties"},
		},
		{
			name:           "wrong type",
			json:           `{"type": "uniform", "size": "big"}`,
			expectedErrors: []string{"/size", "integer", "string"},
		},
		{
			name:           "multiple errors",
			json:           `{"type": "hdr", "size": 0}`,
			expectedErrors: []string{"/type", "/size", "must be >= 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, errs := ValidateWithErrors(tt.json, sampleSchema)
			assert.False(t, valid)
			require.NotEmpty(t, errs)

			for _, expected := range tt.expectedErrors {
				assert.Contains(t, errs.Error(), expected)
			}
			assert.True(t, errdefs.IsInvalidArgument(errs))
		})
	}
}

func TestSchema_ValidateDocument(t *testing.T) {
	s := MustCompile(sampleSchema)

	assert.Nil(t, s.ValidateDocument(map[string]interface{}{"type": "sliding-window", "size": 5.0}))

	errs := s.ValidateDocument(map[string]interface{}{"type": "uniform", "size": 0.5})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "/size")
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)

	assert.Panics(t, func() { MustCompile(`not json`) })
}

func TestValidationErrors_Error(t *testing.T) {
	assert.Equal(t, "", ValidationErrors{}.Error())
}
