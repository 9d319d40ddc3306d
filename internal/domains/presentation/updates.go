package presentation

import (
	"github.com/xpanvictor/liveslides/internal/domains/slides"
	"github.com/xpanvictor/liveslides/pkg/markdown"
)

// Update kinds understood by the live viewer script.
const (
	UpdateSlide = "slide"
	UpdateGoto  = "goto"
	UpdateTheme = "theme"
)

// Update is one message pushed to a live viewer.
type Update struct {
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
	HTML  string `json:"html,omitempty"`
	Index int    `json:"index"`
	Theme string `json:"theme,omitempty"`
}

// SlideUpdate carries a new slide. Title is escaped and content rendered the same way
// SlideSection does, so addSlide produces identical markup.
func SlideUpdate(s slides.Slide, index int) Update {
	return Update{Type: UpdateSlide, Title: markdown.Escape(s.Title), HTML: markdown.ToHTML(s.Content), Index: index}
}

func GotoUpdate(index int) Update {
	return Update{Type: UpdateGoto, Index: index}
}

func ThemeUpdate(name string) Update {
	return Update{Type: UpdateTheme, Theme: ThemeFile(name)}
}
