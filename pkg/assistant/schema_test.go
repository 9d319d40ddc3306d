package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	Title string `json:"title"`
}

type outer struct {
	Flag  bool   `json:"flag"`
	Inner inner  `json:"inner"`
	Note  string `json:"note,omitempty"`
}

func TestGenerateSchema_Strict(t *testing.T) {
	s := GenerateSchema[outer]()

	assert.Equal(t, "object", s["type"])
	assert.Equal(t, false, s["additionalProperties"])
	assert.ElementsMatch(t, []string{"flag", "inner", "note"}, s["required"])
	assert.NotContains(t, s, "$schema")

	props, ok := s["properties"].(map[string]interface{})
	require.True(t, ok)
	in, ok := props["inner"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, in["additionalProperties"])
	assert.ElementsMatch(t, []string{"title"}, in["required"])
}
