package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const querySchema = `{
	"type": "object",
	"properties": {
		"query": {"type": "string", "minLength": 1},
		"useCache": {"type": "boolean"},
		"options": {
			"type": "object",
			"properties": {"limit": {"type": "integer", "minimum": 1}}
		}
	},
	"required": ["query"]
}`

func TestSchema_ValidateBytes(t *testing.T) {
	schema := MustCompile(querySchema)

	tests := []struct {
		name   string
		doc    string
		valid  bool
		fields []string
	}{
		{"valid", `{"query": "average income", "useCache": true}`, true, nil},
		{"missing query", `{"useCache": true}`, false, []string{"query"}},
		{"empty query", `{"query": ""}`, false, []string{"query"}},
		{"wrong type", `{"query": "x", "useCache": "yes"}`, false, []string{"useCache"}},
		{"nested", `{"query": "x", "options": {"limit": 0}}`, false, []string{"options.limit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := schema.ValidateBytes([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
			for _, f := range tt.fields {
				assert.True(t, res.HasErrors(f), "expected error on %s, got %v", f, res.GetErrorMessages())
			}
		})
	}
}

func TestSchema_ValidateObject(t *testing.T) {
	schema := MustCompile(querySchema)

	res, err := schema.ValidateObject(map[string]interface{}{"query": "hi"})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Error())
}

func TestSchema_GetErrorsForField(t *testing.T) {
	schema := MustCompile(querySchema)

	res, err := schema.ValidateBytes([]byte(`{"query": "x", "options": {"limit": 0}}`))
	require.NoError(t, err)
	assert.Len(t, res.GetErrorsForField("options"), 1)
	assert.Empty(t, res.GetErrorsForField("query"))
}

func TestSchema_MalformedDocument(t *testing.T) {
	schema := MustCompile(querySchema)

	_, err := schema.ValidateBytes([]byte(`{not json`))
	assert.Error(t, err)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(`{`) })
}
