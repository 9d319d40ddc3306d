package preferences

import (
	"strings"

	"github.com/xpanvictor/liveslides/internal/domains/presentation"
	"github.com/xpanvictor/liveslides/internal/domains/slides"
)

// StorageKey is the fixed name the preferences blob is stored under.
const StorageKey = "liveSlidesConfig"

const (
	DefaultModel          = "gpt-4o-realtime-preview"
	DefaultInitialTitle   = "Live Slides"
	DefaultInitialContent = "Start speaking to generate slides."
)

// Preferences is the user's persisted configuration.
// @Description User configuration blob
type Preferences struct {
	APIKey         string `json:"apiKey"`
	Model          string `json:"model" example:"gpt-4o-realtime-preview"`
	Theme          string `json:"theme" example:"black"`
	SystemPrompt   string `json:"systemPrompt"`
	InitialTitle   string `json:"initialTitle" example:"Live Slides"`
	InitialContent string `json:"initialContent"`
}

// UpdateRequest changes only the fields that are set.
// @Description Request body for updating preferences
type UpdateRequest struct {
	APIKey         *string `json:"apiKey,omitempty"`
	Model          *string `json:"model,omitempty"`
	Theme          *string `json:"theme,omitempty"`
	SystemPrompt   *string `json:"systemPrompt,omitempty"`
	InitialTitle   *string `json:"initialTitle,omitempty"`
	InitialContent *string `json:"initialContent,omitempty"`
}

// Response hides the API key.
// @Description Preferences returned by the API
type Response struct {
	HasAPIKey      bool   `json:"hasApiKey"`
	Model          string `json:"model"`
	Theme          string `json:"theme"`
	SystemPrompt   string `json:"systemPrompt"`
	InitialTitle   string `json:"initialTitle"`
	InitialContent string `json:"initialContent"`
}

func Defaults(model string) Preferences {
	if model == "" {
		model = DefaultModel
	}
	return Preferences{
		Model:          model,
		Theme:          presentation.DefaultTheme,
		SystemPrompt:   slides.DefaultPrompt,
		InitialTitle:   DefaultInitialTitle,
		InitialContent: DefaultInitialContent,
	}
}

// WithDefaults fills every empty field from d. The API key has no default.
func (p Preferences) WithDefaults(d Preferences) Preferences {
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}
	return Preferences{
		APIKey:         strings.TrimSpace(p.APIKey),
		Model:          pick(p.Model, d.Model),
		Theme:          presentation.NormalizeTheme(pick(p.Theme, d.Theme)),
		SystemPrompt:   pick(p.SystemPrompt, d.SystemPrompt),
		InitialTitle:   pick(p.InitialTitle, d.InitialTitle),
		InitialContent: pick(p.InitialContent, d.InitialContent),
	}
}

func (p Preferences) Apply(req UpdateRequest) Preferences {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.APIKey, req.APIKey)
	set(&p.Model, req.Model)
	set(&p.Theme, req.Theme)
	set(&p.SystemPrompt, req.SystemPrompt)
	set(&p.InitialTitle, req.InitialTitle)
	set(&p.InitialContent, req.InitialContent)
	return p
}

func (p Preferences) HasAPIKey() bool {
	return strings.TrimSpace(p.APIKey) != ""
}

func (p Preferences) ToResponse() Response {
	return Response{
		HasAPIKey:      p.HasAPIKey(),
		Model:          p.Model,
		Theme:          p.Theme,
		SystemPrompt:   p.SystemPrompt,
		InitialTitle:   p.InitialTitle,
		InitialContent: p.InitialContent,
	}
}
