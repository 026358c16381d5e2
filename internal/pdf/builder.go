package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Lllllllleong/ocrpdfbot/internal/models"
	"github.com/go-pdf/fpdf"
)

// Output page geometry, in points. Text is drawn as one line 750pt above the
// bottom edge of a US Letter page, 10pt from the left.
const (
	letterHeight = 792.0
	textX        = 10.0
	textY        = 750.0
	fontFamily   = "Helvetica"
	fontSize     = 12.0
)

// TextBuilder renders each page text as a single unwrapped line on its own page.
// Text running past the right edge is clipped by the page.
type TextBuilder struct{}

// NewTextBuilder returns a TextBuilder.
func NewTextBuilder() *TextBuilder {
	return &TextBuilder{}
}

// Build returns a PDF with exactly one page per entry of pages, in order.
func (b *TextBuilder) Build(ctx context.Context, pages []models.PageText) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to render")
	}

	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetCreator("ocrpdfbot", true)
	translate := doc.UnicodeTranslatorFromDescriptor("")

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc.AddPage()
		doc.SetFont(fontFamily, "", fontSize)
		// fpdf measures y from the top edge.
		doc.Text(textX, letterHeight-textY, translate(singleLine(page.Text)))
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	n, err := PageCount(buf.Bytes())
	if err != nil {
		return nil, err
	}
	if n != len(pages) {
		return nil, fmt.Errorf("rendered %d pages, expected %d", n, len(pages))
	}
	return buf.Bytes(), nil
}

// singleLine flattens line breaks and tabs so the text is drawn on one line.
func singleLine(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t', '\f', '\v':
			return ' '
		}
		return r
	}, s)
}
