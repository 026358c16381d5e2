package services

import "fmt"

// FormatError reports that the upload is not a usable PDF.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("not a valid PDF: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("not a valid PDF: %s", e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// RasterizeError reports a failure turning a valid PDF into page images.
type RasterizeError struct {
	Err error
}

func (e *RasterizeError) Error() string { return fmt.Sprintf("failed to rasterize PDF: %v", e.Err) }

func (e *RasterizeError) Unwrap() error { return e.Err }

// ExtractionError reports an OCR failure on a single page (1-based).
type ExtractionError struct {
	Page int
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("text extraction failed on page %d: %v", e.Page, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// RenderError reports a failure building the output PDF.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("failed to build output PDF: %v", e.Err) }

func (e *RenderError) Unwrap() error { return e.Err }

// TransportError reports a failed call to the chat platform.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }
