package pdf

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Lllllllleong/ocrpdfbot/internal/models"
	ledongthuc "github.com/ledongthuc/pdf"
)

func buildPDF(t *testing.T, texts ...string) []byte {
	t.Helper()
	pages := make([]models.PageText, len(texts))
	for i, text := range texts {
		pages[i] = models.PageText{Number: i + 1, Text: text}
	}
	data, err := NewTextBuilder().Build(context.Background(), pages)
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	return data
}

func readPageTexts(t *testing.T, data []byte) []string {
	t.Helper()
	r, err := ledongthuc.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open generated pdf: %v", err)
	}
	texts := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			t.Fatalf("read page %d: %v", i, err)
		}
		texts = append(texts, text)
	}
	return texts
}

func TestTextBuilder_OnePagePerText(t *testing.T) {
	data := buildPDF(t, "Hello World")

	n, err := PageCount(data)
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 page, got %d", n)
	}
	texts := readPageTexts(t, data)
	if !strings.Contains(texts[0], "Hello World") {
		t.Fatalf("expected drawn text on page 1, got %q", texts[0])
	}
}

func TestTextBuilder_EmptyPageText(t *testing.T) {
	data := buildPDF(t, "first", "", "third")

	n, err := PageCount(data)
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 pages, got %d", n)
	}
	texts := readPageTexts(t, data)
	if !strings.Contains(texts[0], "first") || !strings.Contains(texts[2], "third") {
		t.Fatalf("unexpected page texts: %q", texts)
	}
	if strings.TrimSpace(texts[1]) != "" {
		t.Fatalf("expected blank second page, got %q", texts[1])
	}
}

func TestTextBuilder_NoPages(t *testing.T) {
	if _, err := NewTextBuilder().Build(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty page list")
	}
}

func TestTextBuilder_LongAndMultilineText(t *testing.T) {
	long := strings.Repeat("overflowing text ", 200)
	data := buildPDF(t, "line one\nline two\tcafé", long)

	n, err := PageCount(data)
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 pages, got %d", n)
	}
}

func TestTextBuilder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTextBuilder().Build(ctx, []models.PageText{{Number: 1, Text: "x"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSingleLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "Hello World"},
		{"a\nb", "a b"},
		{"a\r\nb", "a  b"},
		{"tab\there", "tab here"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := singleLine(tt.in); got != tt.want {
			t.Errorf("singleLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFitzRasterizer_RejectsNonPDF(t *testing.T) {
	r := NewFitzRasterizer(72)

	_, err := r.Open(context.Background(), []byte("PK\x03\x04 this is a zip file"))
	if !errors.Is(err, models.ErrInvalidPDF) {
		t.Fatalf("expected ErrInvalidPDF, got %v", err)
	}
}

func TestFitzRasterizer_RejectsTruncatedPDF(t *testing.T) {
	r := NewFitzRasterizer(72)

	// MuPDF may repair the file into an empty document instead of failing.
	src, err := r.Open(context.Background(), []byte("%PDF-1.4\n"))
	if err == nil {
		defer src.Close()
		if src.NumPages() != 0 {
			t.Fatalf("expected error or no pages for truncated PDF, got %d pages", src.NumPages())
		}
	}
}

func TestFitzRasterizer_RendersPagesOnDemand(t *testing.T) {
	data := buildPDF(t, "one", "two", "three")
	r := NewFitzRasterizer(72)

	src, err := r.Open(context.Background(), data)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()

	if src.NumPages() != 3 {
		t.Fatalf("expected 3 pages, got %d", src.NumPages())
	}
	// Out of order on purpose: any page can be rendered at any time.
	for _, n := range []int{3, 1, 2} {
		page, err := src.RenderPage(context.Background(), n)
		if err != nil {
			t.Fatalf("render page %d: %v", n, err)
		}
		if page.Number != n {
			t.Fatalf("expected page number %d, got %d", n, page.Number)
		}
		b := page.Image.Bounds()
		// US Letter at 72 dpi.
		if b.Dx() < 610 || b.Dx() > 614 || b.Dy() < 790 || b.Dy() > 794 {
			t.Fatalf("unexpected page size %dx%d", b.Dx(), b.Dy())
		}
	}
}

func TestFitzRasterizer_RenderPageBounds(t *testing.T) {
	src, err := NewFitzRasterizer(72).Open(context.Background(), buildPDF(t, "only"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()

	for _, n := range []int{0, 2} {
		if _, err := src.RenderPage(context.Background(), n); err == nil {
			t.Fatalf("expected error for page %d", n)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.RenderPage(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFitzRasterizer_OpenDoesNotRender(t *testing.T) {
	texts := make([]string, 200)
	data := buildPDF(t, texts...)

	src, err := NewFitzRasterizer(150).Open(context.Background(), data)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()

	if src.NumPages() != 200 {
		t.Fatalf("expected 200 pages, got %d", src.NumPages())
	}
	// Rendering a single page of a long document stays cheap.
	page, err := src.RenderPage(context.Background(), 200)
	if err != nil || page.Number != 200 {
		t.Fatalf("render last page: %v", err)
	}
}

func TestNewFitzRasterizer_DefaultDPI(t *testing.T) {
	if r := NewFitzRasterizer(0); r.DPI != 150 {
		t.Fatalf("expected default 150 dpi, got %v", r.DPI)
	}
}

func TestHasPDFHeader(t *testing.T) {
	if !hasPDFHeader([]byte("%PDF-1.7\n...")) {
		t.Fatal("expected header at start to be found")
	}
	if !hasPDFHeader(append([]byte("junk before "), []byte("%PDF-1.3")...)) {
		t.Fatal("expected header after leading junk to be found")
	}
	if hasPDFHeader(append(bytes.Repeat([]byte{' '}, 2000), []byte("%PDF-1.3")...)) {
		t.Fatal("header beyond search window should not count")
	}
}
