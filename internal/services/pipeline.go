package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lllllllleong/ocrpdfbot/internal/models"
	"golang.org/x/sync/errgroup"
)

// Rasterizer opens a PDF for page-by-page rendering.
type Rasterizer interface {
	Open(ctx context.Context, pdf []byte) (models.PageSource, error)
}

// TextExtractor recognizes the text of a single page image.
type TextExtractor interface {
	ExtractText(ctx context.Context, page models.PageImage) (string, error)
}

// DocumentBuilder assembles ordered page texts into a new PDF.
type DocumentBuilder interface {
	Build(ctx context.Context, pages []models.PageText) ([]byte, error)
}

// ProgressFunc is called once per page, in page order, after that page's text is known.
type ProgressFunc func(ctx context.Context, page, total int) error

// PipelineConfig holds tuning for the pipeline. At most PageConcurrency page
// images are alive at once. MaxPages of 0 means no page limit.
type PipelineConfig struct {
	PageConcurrency int
	OCRTimeout      time.Duration
	MaxPages        int
}

// Pipeline drives one document through rasterize, extract and render.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	rasterizer Rasterizer
	extractor  TextExtractor
	builder    DocumentBuilder
	config     PipelineConfig
}

// NewPipeline wires the three collaborators. The extractor is expected to be
// built once at startup and shared across requests.
func NewPipeline(r Rasterizer, e TextExtractor, b DocumentBuilder, config PipelineConfig) *Pipeline {
	if config.PageConcurrency < 1 {
		config.PageConcurrency = 1
	}
	return &Pipeline{rasterizer: r, extractor: e, builder: b, config: config}
}

// ProcessDocument rasterizes doc, extracts every page and renders the output PDF.
// Any failure aborts the request; no partial document is returned.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc models.IncomingDocument, progress ProgressFunc) (*models.OutgoingDocument, error) {
	logCtx := slog.With("chatId", doc.ChatID, "fileName", doc.FileName)

	src, err := p.open(ctx, doc.Data)
	if err != nil {
		logCtx.Error("Rasterization failed.", "error", err)
		return nil, err
	}
	defer func() {
		if err := src.Close(); err != nil {
			logCtx.Warn("Failed to close PDF.", "error", err)
		}
	}()
	logCtx.Info("PDF opened.", "pageCount", src.NumPages())

	texts, err := p.extractAll(ctx, src, progress)
	if err != nil {
		logCtx.Error("Text extraction failed.", "error", err)
		return nil, err
	}

	data, err := p.builder.Build(ctx, texts)
	if err != nil {
		logCtx.Error("Failed to build output PDF.", "error", err)
		return nil, &RenderError{Err: err}
	}
	logCtx.Info("Output PDF built.", "bytes", len(data))

	return &models.OutgoingDocument{
		FileName:  models.OutputFileName,
		Data:      data,
		PageCount: len(texts),
	}, nil
}

// open parses the document and checks the page limits before anything is rendered.
func (p *Pipeline) open(ctx context.Context, data []byte) (models.PageSource, error) {
	src, err := p.rasterizer.Open(ctx, data)
	if err != nil {
		if errors.Is(err, models.ErrInvalidPDF) {
			return nil, &FormatError{Reason: "could not parse document", Err: err}
		}
		return nil, &RasterizeError{Err: err}
	}

	var reason string
	switch n := src.NumPages(); {
	case n == 0:
		reason = "document has no pages"
	case p.config.MaxPages > 0 && n > p.config.MaxPages:
		reason = fmt.Sprintf("document has %d pages, the limit is %d", n, p.config.MaxPages)
	default:
		return src, nil
	}
	src.Close()
	return nil, &FormatError{Reason: reason}
}

type pageResult struct {
	text string
	err  error
}

// extractAll renders and recognizes pages with at most PageConcurrency in flight
// and reports progress strictly in page order. A page image lives only inside its
// worker. The first failure cancels the remaining pages.
func (p *Pipeline) extractAll(ctx context.Context, src models.PageSource, progress ProgressFunc) ([]models.PageText, error) {
	total := src.NumPages()
	results := make([]chan pageResult, total)
	for i := range results {
		results[i] = make(chan pageResult, 1)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, gctx := errgroup.WithContext(runCtx)
	eg.SetLimit(p.config.PageConcurrency)

	launched := make(chan struct{})
	go func() {
		defer close(launched)
		for i := range total {
			eg.Go(func() error {
				text, err := p.processPage(gctx, src, i+1)
				results[i] <- pageResult{text: text, err: err}
				return err
			})
		}
	}()

	texts := make([]models.PageText, 0, total)
	var progressErr error
	failed := false
	for i := range results {
		res := <-results[i]
		if res.err != nil {
			failed = true
			break
		}
		texts = append(texts, models.PageText{Number: i + 1, Text: res.text})
		slog.Debug("Page extracted.", "page", i+1, "total", total, "chars", len(res.text))
		if progress != nil {
			if err := progress(ctx, i+1, total); err != nil {
				progressErr = err
				break
			}
		}
	}
	cancel()

	<-launched
	// The group keeps the first error returned; pages cancelled after it only
	// report context errors.
	waitErr := eg.Wait()
	if progressErr != nil {
		return nil, progressErr
	}
	if failed || waitErr != nil {
		return nil, waitErr
	}
	return texts, nil
}

// processPage renders one page and recognizes it. The image is released when it returns.
func (p *Pipeline) processPage(ctx context.Context, src models.PageSource, number int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	page, err := src.RenderPage(ctx, number)
	if err != nil {
		return "", &RasterizeError{Err: err}
	}
	text, err := p.extractPage(ctx, page)
	if err != nil {
		return "", &ExtractionError{Page: number, Err: err}
	}
	return text, nil
}

func (p *Pipeline) extractPage(ctx context.Context, page models.PageImage) (string, error) {
	if p.config.OCRTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.OCRTimeout)
		defer cancel()
	}
	return p.extractor.ExtractText(ctx, page)
}
