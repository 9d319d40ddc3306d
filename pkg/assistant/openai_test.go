package assistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAI_ProcessPrompt(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "resp_1",
			"object": "response",
			"status": "completed",
			"output": [{
				"type": "message",
				"id": "msg_1",
				"role": "assistant",
				"status": "completed",
				"content": [{"type": "output_text", "text": "{\"logical_break_detected\": false}", "annotations": []}]
			}]
		}`)
	}))
	defer srv.Close()

	a, err := NewOpenAI("sk-test", "gpt-4o-mini", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	require.NoError(t, err)

	out, err := a.ProcessPrompt(context.Background(), NewAssistantInput("be brief", "go", &JSONSchema{
		Name:   "SlideReply",
		Schema: GenerateSchema[inner](),
	}))
	require.NoError(t, err)
	assert.Equal(t, `{"logical_break_detected": false}`, out.Text)
	assert.Equal(t, "resp_1", out.Id)
	assert.Equal(t, "openai", out.Provider)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.Equal(t, "be brief", body["instructions"])
	format := body["text"].(map[string]interface{})["format"].(map[string]interface{})
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, "SlideReply", format["name"])
	assert.Equal(t, true, format["strict"])
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	_, err := NewOpenAI("", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
