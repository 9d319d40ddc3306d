package presentation

import "strings"

const (
	DefaultTheme = "black"
	revealBase   = "https://cdn.jsdelivr.net/npm/reveal.js@4.5.0/dist/"
)

// Themes maps the selectable theme names to reveal.js stylesheets.
var Themes = map[string]string{
	"league": "league.css",
	"black":  "black.css",
	"white":  "white.css",
	"moon":   "moon.css",
	"sky":    "sky.css",
	"serif":  "serif.css",
	"beige":  "beige.css",
}

// NormalizeTheme returns name if it is a known theme and DefaultTheme otherwise.
func NormalizeTheme(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := Themes[name]; ok {
		return name
	}
	return DefaultTheme
}

func ThemeFile(name string) string {
	return Themes[NormalizeTheme(name)]
}

func ThemeNames() []string {
	return []string{"league", "black", "white", "moon", "sky", "serif", "beige"}
}
