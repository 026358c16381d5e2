//go:build tesseract

// Package tesseract provides a local OCR engine backed by libtesseract. It is
// only compiled with -tags tesseract so that other builds do not need the C library.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lllllllleong/ocrpdfbot/internal/models"
	"github.com/Lllllllleong/ocrpdfbot/internal/ocr"
	"github.com/otiai10/gosseract/v2"
)

// Extractor implements the text extractor with gosseract. A client is created
// per page because gosseract clients are not safe for concurrent use.
type Extractor struct {
	languages     []string
	maxDimension  int
	clientFactory func() *gosseract.Client
}

// NewExtractor returns an Extractor using the given tesseract languages.
func NewExtractor(languages []string, maxDimension int) *Extractor {
	return &Extractor{
		languages:     languages,
		maxDimension:  maxDimension,
		clientFactory: gosseract.NewClient,
	}
}

// ExtractText recognizes the page with tesseract.
func (e *Extractor) ExtractText(ctx context.Context, page models.PageImage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, err := ocr.EncodeJPEG(page.Image, e.maxDimension)
	if err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetImageFromBytes(content); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return strings.TrimSpace(text), nil
}
