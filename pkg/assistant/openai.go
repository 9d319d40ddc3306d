package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

type openAIAssistant struct {
	client openai.Client
	model  string
}

func (o openAIAssistant) Name() string { return "openai" }

// ProcessPrompt implements Assistant with a single Responses API call.
func (o openAIAssistant) ProcessPrompt(
	ctx context.Context,
	input AssistantInput,
) (*AssistantOutput, error) {
	params := responses.ResponseNewParams{
		Model:        o.model,
		Instructions: openai.String(input.Instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(input.Prompt, responses.EasyInputMessageRoleUser),
			},
		},
	}
	if input.Schema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        input.Schema.Name,
					Schema:      input.Schema.Schema,
					Strict:      openai.Bool(true),
					Description: openai.String(input.Schema.Description),
					Type:        "json_schema",
				},
			},
		}
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai response: %w", err)
	}
	text := resp.OutputText()
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}
	return &AssistantOutput{
		Id:        resp.ID,
		Text:      text,
		Provider:  o.Name(),
		CreatedAt: time.Now(),
	}, nil
}

// NewOpenAI builds the OpenAI assistant. Extra options (base URL, retries) are
// appended after the API key.
func NewOpenAI(apiKey, model string, opts ...option.RequestOption) (Assistant, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai api key", ErrNotConfigured)
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return openAIAssistant{
		client: openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...),
		model:  model,
	}, nil
}
