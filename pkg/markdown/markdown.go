// Package markdown turns the short markdown snippets the model writes into slide HTML.
package markdown

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in the source is dropped by goldmark's default renderer, which is what we
// want for model output that ends up inside the presentation window.
var renderer = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// models like to use "•" for bullets; goldmark only knows -, * and +.
var glyphBullet = regexp.MustCompile(`(?m)^(\s*)[•·▪]\s+`)

// ToHTML renders md to an HTML fragment. It never fails: on a renderer error the
// escaped source is returned in a single paragraph.
func ToHTML(md string) string {
	src := glyphBullet.ReplaceAllString(md, "$1- ")

	var buf bytes.Buffer
	if err := renderer.Convert([]byte(src), &buf); err != nil {
		return "<p>" + Escape(md) + "</p>"
	}
	return strings.TrimSpace(buf.String())
}

// Escape escapes text for use inside HTML element content or attribute values.
func Escape(text string) string {
	return html.EscapeString(text)
}
