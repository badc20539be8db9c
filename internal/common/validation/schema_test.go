// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"type": "object",
	"required": ["name", "age"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"age":  {"type": "integer", "minimum": 1, "maximum": 120}
	}
}`

func TestSchema_Validate(t *testing.T) {
	schema, err := Compile(personSchema)
	require.NoError(t, err)

	tests := []struct {
		name      string
		doc       interface{}
		valid     bool
		badFields []string
	}{
		{"valid", map[string]interface{}{"name": "Ana", "age": 30}, true, nil},
		{"missing age", map[string]interface{}{"name": "Ana"}, false, []string{"age"}},
		{"age out of range", map[string]interface{}{"name": "Ana", "age": 200}, false, []string{"age"}},
		{"wrong type", map[string]interface{}{"name": 5, "age": 30}, false, []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := schema.Validate(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
			for _, f := range tt.badFields {
				assert.True(t, res.HasErrors(f), "expected error on %s, got %v", f, res.GetErrorMessages())
			}
		})
	}
}

func TestSchema_ValidateDocument(t *testing.T) {
	schema := MustCompile(personSchema)

	res, err := schema.ValidateDocument([]byte(`{"name": "", "age": 5}`))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Len(t, res.GetErrorsForField("name"), 1)

	_, err = schema.ValidateDocument([]byte(`{`))
	assert.Error(t, err)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}

func TestValidateURL(t *testing.T) {
	assert.True(t, ValidateURL("https://example.com/product/1"))
	assert.True(t, ValidateURL(" http://localhost:8000 "))
	assert.False(t, ValidateURL("example.com"))
	assert.False(t, ValidateURL("https://"))
	assert.False(t, ValidateURL(""))
}

func TestValidateActivityNaming(t *testing.T) {
	assert.NoError(t, ValidateActivityNaming("verification.manual.verify"))
	assert.Error(t, ValidateActivityNaming("verify-manual"))
}
