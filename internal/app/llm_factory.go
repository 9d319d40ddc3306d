package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xpanvictor/liveslides/internal/config"
	"github.com/xpanvictor/liveslides/pkg/Logger"
	"github.com/xpanvictor/liveslides/pkg/assistant"
	"github.com/xpanvictor/liveslides/pkg/assistant/providers/gemini"
	"github.com/xpanvictor/liveslides/pkg/assistant/providers/ollama"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// AssistantFactory builds the text model used to replay recorded transcripts.
type AssistantFactory struct {
	cfg    *config.Settings
	logger *Logger.Logger
}

func NewAssistantFactory(cfg *config.Settings, logger *Logger.Logger) *AssistantFactory {
	return &AssistantFactory{cfg: cfg, logger: logger}
}

// Create returns the assistant for provider (falling back to replay.provider) and a
// closer for any client it opened. apiKey is only consulted for openai, when the
// config carries none.
func (f *AssistantFactory) Create(ctx context.Context, provider, apiKey string) (assistant.Assistant, io.Closer, error) {
	if provider == "" {
		provider = f.cfg.Replay.Provider
	}
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		key := f.cfg.OpenAI.APIKey
		if key == "" {
			key = apiKey
		}
		a, err := assistant.NewOpenAI(key, f.cfg.Replay.Model)
		if err != nil {
			return nil, nil, err
		}
		f.logger.Infof("replay assistant: openai (%s)", f.cfg.Replay.Model)
		return a, nopCloser{}, nil

	case ProviderGemini:
		g, err := gemini.New(ctx, f.cfg.Gemini)
		if err != nil {
			return nil, nil, err
		}
		f.logger.Infof("replay assistant: gemini (%s)", f.cfg.Gemini.Model)
		return g, g, nil

	case ProviderOllama:
		o, err := ollama.New(f.cfg.Ollama, f.logger.Named("ollama"))
		if err != nil {
			return nil, nil, err
		}
		f.logger.Infof("replay assistant: ollama %v (%s)", f.cfg.Ollama.URLs, f.cfg.Ollama.Model)
		return o, nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("unknown provider %q", provider)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
