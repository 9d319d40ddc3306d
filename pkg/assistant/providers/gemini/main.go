package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/xpanvictor/liveslides/internal/config"
	"github.com/xpanvictor/liveslides/pkg/assistant"
)

const defaultModel = "gemini-1.5-flash-latest"

// GeminiProvider answers prompts with a Gemini model in JSON mode.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

// New creates a new GeminiProvider instance.
func New(ctx context.Context, cfg config.GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key", assistant.ErrNotConfigured)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini API client: %w", err)
	}

	name := cfg.Model
	if name == "" {
		name = defaultModel
	}
	return &GeminiProvider{client: client, modelName: name}, nil
}

func (gp *GeminiProvider) Name() string { return "gemini" }

// ProcessPrompt implements assistant.Assistant.
func (gp *GeminiProvider) ProcessPrompt(ctx context.Context, input assistant.AssistantInput) (*assistant.AssistantOutput, error) {
	if gp.client == nil {
		return nil, fmt.Errorf("gemini client is not initialized")
	}

	model := gp.client.GenerativeModel(gp.modelName)
	model.SystemInstruction = genai.NewUserContent(genai.Text(input.Instructions))
	model.Temperature = &[]float32{0.2}[0]
	if input.Schema != nil {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(input.Prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, assistant.ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return nil, assistant.ErrEmptyResponse
	}
	return &assistant.AssistantOutput{
		Text:      sb.String(),
		Provider:  gp.Name(),
		CreatedAt: time.Now(),
	}, nil
}

func (gp *GeminiProvider) Close() error {
	return gp.client.Close()
}
