//go:build tesseract

package app

import (
	"github.com/Lllllllleong/ocrpdfbot/internal/config"
	"github.com/Lllllllleong/ocrpdfbot/internal/ocr/tesseract"
	"github.com/Lllllllleong/ocrpdfbot/internal/services"
)

func newTesseractExtractor(cfg *config.Config) (services.TextExtractor, error) {
	return tesseract.NewExtractor(cfg.TesseractLanguages, cfg.MaxImageDimension), nil
}
