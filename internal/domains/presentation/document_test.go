package presentation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpanvictor/liveslides/internal/domains/slides"
)

var deckSlides = []slides.Slide{
	{Title: "Intro <b>", Content: "- one\n- **two**", Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
	{Title: "Next", Content: "plain text", Timestamp: time.Date(2025, 3, 1, 10, 1, 0, 0, time.UTC)},
}

func between(doc, start, end string) string {
	i := strings.Index(doc, start)
	j := strings.Index(doc, end)
	if i < 0 || j < i {
		return ""
	}
	return doc[i+len(start) : j]
}

func TestBuild_LiveAndExportShareSlideMarkup(t *testing.T) {
	d := Deck{Slides: deckSlides, Theme: "moon"}
	export, err := Build(d)
	require.NoError(t, err)

	d.Live = true
	live, err := Build(d)
	require.NoError(t, err)

	const startTag, endTag = `id="slides-container">`, `</div></div>`
	assert.Equal(t, between(export, startTag, endTag), between(live, startTag, endTag))
	assert.NotEmpty(t, between(export, startTag, endTag))

	assert.NotContains(t, export, "/ws/presentation")
	assert.Contains(t, live, "/ws/presentation")
	liveScript := live[strings.Index(live, "\n<script>\n(function"):strings.Index(live, "\n</body>")]
	assert.Equal(t, export, strings.Replace(live, liveScript, "", 1))
}

func TestBuild_SlideMarkup(t *testing.T) {
	doc, err := Build(Deck{Slides: deckSlides})
	require.NoError(t, err)

	assert.Contains(t, doc, `<section><h2>Intro &lt;b&gt;</h2><div class="slide-content"><ul>`)
	assert.Contains(t, doc, `<strong>two</strong>`)
	assert.Contains(t, doc, `<section><h2>Next</h2><div class="slide-content"><p>plain text</p></div></section>`)
	assert.Contains(t, doc, `theme/black.css" id="theme-link"`)
	assert.Contains(t, doc, "window.addSlide")
	assert.Contains(t, doc, "window.goToSlide")
	assert.Contains(t, doc, "window.updateTheme")
}

func TestBuild_Fallback(t *testing.T) {
	doc, err := Build(Deck{FallbackTitle: "Welcome & hi", FallbackContent: "Start <talking>", Theme: "serif"})
	require.NoError(t, err)
	assert.Contains(t, doc, `<section><h2>Welcome &amp; hi</h2><p>Start &lt;talking&gt;</p></section>`)
	assert.Contains(t, doc, "theme/serif.css")
}

func TestNormalizeTheme(t *testing.T) {
	assert.Equal(t, "sky", NormalizeTheme(" Sky "))
	assert.Equal(t, DefaultTheme, NormalizeTheme("neon"))
	assert.Equal(t, "black.css", ThemeFile(""))
	assert.Len(t, ThemeNames(), len(Themes))
}

func TestExportFilename(t *testing.T) {
	at := time.Date(2025, 1, 9, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "live-slides-2025-01-09.html", ExportFilename(at, "html"))
	assert.Equal(t, "live-slides-2025-01-09.docx", ExportFilename(at, ".docx"))
}

func TestPreview(t *testing.T) {
	assert.Contains(t, Preview(nil), "No slides yet.")
	p := Preview(&deckSlides[0])
	assert.Contains(t, p, "Intro &lt;b&gt;")
	assert.Contains(t, p, "<li>one</li>")
}

func TestWriteDocx(t *testing.T) {
	path := filepath.Join(t.TempDir(), ExportFilename(time.Now(), "docx"))
	require.NoError(t, WriteDocx(Deck{Slides: deckSlides}, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSlideUpdate_MatchesSection(t *testing.T) {
	u := SlideUpdate(deckSlides[0], 0)
	assert.Equal(t, UpdateSlide, u.Type)
	assert.Equal(t, SlideSection(deckSlides[0]), section(u.Title, u.HTML))

	assert.Equal(t, "beige.css", ThemeUpdate("beige").Theme)
	assert.Equal(t, 3, GotoUpdate(3).Index)
}
