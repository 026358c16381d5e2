//go:build !tesseract

package app

import (
	"fmt"

	"github.com/Lllllllleong/ocrpdfbot/internal/config"
	"github.com/Lllllllleong/ocrpdfbot/internal/services"
)

func newTesseractExtractor(cfg *config.Config) (services.TextExtractor, error) {
	return nil, fmt.Errorf("the tesseract engine requires a binary built with -tags tesseract")
}
