package models

import (
	"context"
	"image"
)

// These structs carry a single document through the conversion pipeline.
// None of them outlive the request that created them.

// OutputFileName is the name of the generated attachment sent back to the user.
const OutputFileName = "output.pdf"

// PDFMIMEType is the only upload type routed to the document handler.
const PDFMIMEType = "application/pdf"

// IncomingDocument is an uploaded PDF and where it came from.
type IncomingDocument struct {
	ChatID    int64
	MessageID int
	FileID    string
	FileName  string
	MIMEType  string
	Size      int
	Data      []byte
}

// PageImage is one rasterized page. Number is 1-based.
type PageImage struct {
	Number int
	Image  image.Image
}

// PageSource is an open document whose pages are rendered on demand, so that
// only pages currently being recognized are held in memory. Implementations
// must allow RenderPage to be called from several goroutines.
type PageSource interface {
	NumPages() int
	// RenderPage renders the page with the given 1-based number.
	RenderPage(ctx context.Context, number int) (PageImage, error)
	Close() error
}

// PageText is the recognized text for one page, possibly empty.
type PageText struct {
	Number int
	Text   string
}

// OutgoingDocument is the generated PDF returned to the sender.
type OutgoingDocument struct {
	FileName  string
	Data      []byte
	PageCount int
}

// StartRequest is a session-start command from a user.
type StartRequest struct {
	ChatID    int64
	MessageID int
	FirstName string
}
