package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate(`Route among {{ join ", " (quote .TeamMembers) }} or "FINISH". <b>`, map[string]any{
		"TeamMembers": []string{"coder", "browser"},
	})
	require.NoError(t, err)
	assert.Equal(t, `Route among "coder", "browser" or "FINISH". <b>`, out)
}

func TestRenderTemplate_NoMarkers(t *testing.T) {
	out, err := RenderTemplate("plain", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain", out)
}

func TestRenderTemplate_ParseError(t *testing.T) {
	_, err := RenderTemplate("{{ .Broken ", nil)
	assert.Error(t, err)
}

type searchArgs struct {
	Query string `json:"query" description:"search terms"`
	Limit int    `json:"limit,omitempty"`
}

func TestValidateParameters_RequiredFromCreateSchema(t *testing.T) {
	schema := CreateSchema(searchArgs{})

	err := ValidateParameters(map[string]any{"limit": 3.0}, schema)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "query", verr.Field)

	assert.NoError(t, ValidateParameters(map[string]any{"query": "go", "limit": 3.0}, schema))
}

func TestValidateParameters_TypeMismatch(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"limit": map[string]any{"type": "integer"}},
		"required":   []any{"limit"},
	}

	assert.Error(t, ValidateParameters(map[string]any{"limit": "three"}, schema))
	assert.Error(t, ValidateParameters(map[string]any{"limit": 1.5}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"limit": 2.0}, schema))
}
