package presentation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/xpanvictor/liveslides/internal/domains/slides"
)

const (
	docxFont     = "Calibri"
	docxBodySize = 12
	docxColor    = "000000"
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[-*+•·▪]\s+(.+)$`)
	reNumber  = regexp.MustCompile(`^\d+\.\s+(.+)$`)
)

// WriteDocx writes the deck as a Word document: one bold heading per slide, followed
// by its bullets and paragraphs.
func WriteDocx(d Deck, path string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("new docx: %w", err)
	}

	if len(d.Slides) == 0 {
		addRun(doc.AddParagraph(""), d.FallbackTitle, true, 18)
		addRichText(doc.AddParagraph(""), d.FallbackContent)
		return doc.SaveTo(path)
	}

	for i, s := range d.Slides {
		addRun(doc.AddParagraph(""), fmt.Sprintf("%d. %s", i+1, s.Title), true, 18)
		addRun(doc.AddParagraph(""), s.Timestamp.Format("15:04:05"), false, 9)
		writeContent(doc, s)
		doc.AddParagraph("")
	}
	return doc.SaveTo(path)
}

func writeContent(doc *docx.RootDoc, s slides.Slide) {
	for _, line := range strings.Split(s.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}
		switch {
		case reHeading.MatchString(trimmed):
			m := reHeading.FindStringSubmatch(trimmed)
			addRun(doc.AddParagraph(""), m[2], true, 14)
		case reBullet.MatchString(trimmed):
			m := reBullet.FindStringSubmatch(trimmed)
			addRichText(doc.AddParagraph(""), "• "+m[1])
		case reNumber.MatchString(trimmed):
			addRichText(doc.AddParagraph(""), trimmed)
		default:
			addRichText(doc.AddParagraph(""), trimmed)
		}
	}
}

func addRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanInline(text)).Font(docxFont).Size(size).Color(docxColor)
	if bold {
		run.Bold(true)
	}
}

// addRichText keeps **bold** spans bold and drops the remaining inline markers.
func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)
	for i, part := range parts {
		if part != "" {
			p.AddText(cleanInline(part)).Font(docxFont).Size(docxBodySize).Color(docxColor)
		}
		if i < len(matches) {
			p.AddText(cleanInline(matches[i][1])).Font(docxFont).Size(docxBodySize).Color(docxColor).Bold(true)
		}
	}
}

func cleanInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
