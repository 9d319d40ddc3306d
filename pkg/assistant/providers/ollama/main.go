package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/presbrey/ollamafarm"

	"github.com/xpanvictor/liveslides/internal/config"
	"github.com/xpanvictor/liveslides/pkg/Logger"
	"github.com/xpanvictor/liveslides/pkg/assistant"
)

// OllamaProvider sends prompts to the first online server of a farm.
type OllamaProvider struct {
	farm  *ollamafarm.Farm
	model string
}

func New(cfg config.OllamaConfig, logger *Logger.Logger) (*OllamaProvider, error) {
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("%w: no ollama urls", assistant.ErrNotConfigured)
	}
	farm := ollamafarm.New()

	registered := 0
	for _, u := range cfg.URLs {
		if err := farm.RegisterURL(u, nil); err != nil {
			logger.Warnf("ollama server %s not registered: %v", u, err)
			continue
		}
		registered++
	}
	if registered == 0 {
		return nil, fmt.Errorf("%w: no usable ollama server", assistant.ErrNotConfigured)
	}

	return &OllamaProvider{farm: farm, model: cfg.Model}, nil
}

func (o *OllamaProvider) Name() string { return "ollama" }

// ProcessPrompt implements assistant.Assistant.
func (o *OllamaProvider) ProcessPrompt(ctx context.Context, input assistant.AssistantInput) (*assistant.AssistantOutput, error) {
	// pick first available client
	server := o.farm.First(&ollamafarm.Where{Offline: false})
	if server == nil {
		return nil, fmt.Errorf("no ollama server online for model %v", o.model)
	}

	stream := false
	req := api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{Role: "system", Content: input.Instructions},
			{Role: "user", Content: input.Prompt},
		},
		Stream: &stream,
	}
	if input.Schema != nil {
		req.Format = "json"
	}

	var sb strings.Builder
	err := server.Client().Chat(ctx, &req, func(cr api.ChatResponse) error {
		sb.WriteString(cr.Message.Content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return nil, assistant.ErrEmptyResponse
	}
	return &assistant.AssistantOutput{
		Text:      sb.String(),
		Provider:  o.Name(),
		CreatedAt: time.Now(),
	}, nil
}
