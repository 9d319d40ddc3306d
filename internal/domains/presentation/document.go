// Package presentation builds the reveal.js document shown in the viewer window and
// written by the exports.
package presentation

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/xpanvictor/liveslides/internal/domains/slides"
	"github.com/xpanvictor/liveslides/pkg/markdown"
)

// Deck is the input of Build.
type Deck struct {
	Slides          []slides.Slide
	FallbackTitle   string
	FallbackContent string
	Theme           string
	// Live adds the script that follows /ws/presentation. Exports leave it off.
	Live bool
}

// SlideSection renders one slide exactly as it appears inside the document.
func SlideSection(s slides.Slide) string {
	return section(markdown.Escape(s.Title), markdown.ToHTML(s.Content))
}

// section matches the markup produced by window.addSlide.
func section(title, contentHTML string) string {
	return `<section><h2>` + title + `</h2><div class="slide-content">` + contentHTML + `</div></section>`
}

func fallbackSection(title, content string) string {
	return `<section><h2>` + markdown.Escape(title) + `</h2><p>` + markdown.Escape(content) + `</p></section>`
}

// Sections is the concatenated slide markup of a deck.
func Sections(d Deck) string {
	if len(d.Slides) == 0 {
		return fallbackSection(d.FallbackTitle, d.FallbackContent)
	}
	var b strings.Builder
	for _, s := range d.Slides {
		b.WriteString(SlideSection(s))
	}
	return b.String()
}

var documentTmpl = template.Must(template.New("deck").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Live Presentation</title>
<link rel="stylesheet" href="{{.Base}}reset.css">
<link rel="stylesheet" href="{{.Base}}reveal.css">
<link rel="stylesheet" href="{{.Base}}theme/{{.ThemeFile}}" id="theme-link">
<style>
.reveal{font-size:33px}
.reveal h2{font-size:2em;margin-bottom:.6em;font-weight:bold;line-height:1.2}
.reveal .slide-content{font-size:1.3em;line-height:1.6;text-align:left;padding:0 40px;max-width:100%;word-wrap:break-word}
.reveal section{text-align:center;padding:40px 20px;height:100%;display:flex;flex-direction:column;justify-content:center;align-items:center}
.reveal ul,.reveal ol{margin:0;padding:0;list-style-position:inside;text-align:left;width:100%}
.reveal li{margin-bottom:.4em;line-height:1.5}
</style></head><body>
<div class="reveal"><div class="slides" id="slides-container">{{.Sections}}</div></div>
<script src="{{.Base}}reveal.js"></script>
<script>
Reveal.initialize({width:800,height:600,margin:.05,minScale:.2,maxScale:1.5,hash:false,transition:'slide',controls:true,progress:true,center:true});
window.addSlide=function(t,c){var s=document.createElement('section');s.innerHTML='<h2>'+t+'</h2><div class="slide-content">'+c+'</div>';document.getElementById('slides-container').appendChild(s);Reveal.sync();Reveal.slide(Reveal.getTotalSlides()-1)};
window.goToSlide=function(i){Reveal.slide(i)};
window.updateTheme=function(n){document.getElementById('theme-link').href='{{.Base}}theme/'+n};
</script>
{{- if .Live}}
<script>
(function(){var p=location.protocol==='https:'?'wss://':'ws://';var ws=new WebSocket(p+location.host+'/ws/presentation');
ws.onmessage=function(e){var w=JSON.parse(e.data);if(w.type!=='update'||!w.data)return;var m=w.data;if(m.type==='slide')addSlide(m.title,m.html);else if(m.type==='goto')goToSlide(m.index);else if(m.type==='theme')updateTheme(m.theme);};})();
</script>
{{- end}}
</body></html>
`))

type documentData struct {
	Base      string
	ThemeFile string
	Sections  template.HTML
	Live      bool
}

// Build renders the complete reveal.js document for d.
func Build(d Deck) (string, error) {
	var buf bytes.Buffer
	err := documentTmpl.Execute(&buf, documentData{
		Base:      revealBase,
		ThemeFile: ThemeFile(d.Theme),
		Sections:  template.HTML(Sections(d)),
		Live:      d.Live,
	})
	if err != nil {
		return "", fmt.Errorf("render presentation: %w", err)
	}
	return buf.String(), nil
}

// ExportFilename names an exported document after the day it was produced.
func ExportFilename(at time.Time, ext string) string {
	return fmt.Sprintf("live-slides-%s.%s", at.Format("2006-01-02"), strings.TrimPrefix(ext, "."))
}

// Preview renders the compact view of the current slide for the control page.
func Preview(s *slides.Slide) string {
	if s == nil {
		return `<p class="text-muted text-center">No slides yet.</p>`
	}
	return `<h4 class="text-primary">` + markdown.Escape(s.Title) + `</h4><hr><div class="slide-body">` +
		markdown.ToHTML(s.Content) + `</div>`
}
