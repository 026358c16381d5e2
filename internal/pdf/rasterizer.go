package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/ocrpdfbot/internal/models"
	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const headerSearchWindow = 1024

// FitzRasterizer renders PDF pages with MuPDF through go-fitz.
type FitzRasterizer struct {
	DPI float64
}

// NewFitzRasterizer returns a rasterizer rendering at dpi (150 if dpi <= 0).
func NewFitzRasterizer(dpi float64) *FitzRasterizer {
	if dpi <= 0 {
		dpi = 150
	}
	return &FitzRasterizer{DPI: dpi}
}

// Open parses data and returns its pages for on-demand rendering. Nothing is
// rendered yet. Input that is not a PDF yields an error wrapping models.ErrInvalidPDF.
func (r *FitzRasterizer) Open(ctx context.Context, data []byte) (models.PageSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !hasPDFHeader(data) {
		return nil, fmt.Errorf("%w: missing %%PDF- header", models.ErrInvalidPDF)
	}
	if err := validate(data); err != nil {
		// MuPDF repairs many files pdfcpu rejects, so this is only a warning.
		slog.Warn("PDF failed relaxed validation, attempting to render anyway.", "error", err)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidPDF, err)
	}
	return &fitzPages{doc: doc, dpi: r.DPI, numPages: doc.NumPage()}, nil
}

// fitzPages keeps the MuPDF document open for the request. go-fitz serializes
// calls on a document with its own mutex.
type fitzPages struct {
	doc      *fitz.Document
	dpi      float64
	numPages int
}

func (p *fitzPages) NumPages() int { return p.numPages }

func (p *fitzPages) RenderPage(ctx context.Context, number int) (models.PageImage, error) {
	if err := ctx.Err(); err != nil {
		return models.PageImage{}, err
	}
	if number < 1 || number > p.numPages {
		return models.PageImage{}, fmt.Errorf("page %d out of range 1..%d", number, p.numPages)
	}
	img, err := p.doc.ImageDPI(number-1, p.dpi)
	if err != nil {
		return models.PageImage{}, fmt.Errorf("unable to render page %d: %w", number, err)
	}
	return models.PageImage{Number: number, Image: img}, nil
}

func (p *fitzPages) Close() error { return p.doc.Close() }

func hasPDFHeader(data []byte) bool {
	window := data
	if len(window) > headerSearchWindow {
		window = window[:headerSearchWindow]
	}
	return bytes.Contains(window, []byte("%PDF-"))
}

func validate(data []byte) error {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return api.Validate(bytes.NewReader(data), cfg)
}

// PageCount returns the number of pages in data.
func PageCount(data []byte) (int, error) {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return n, nil
}
