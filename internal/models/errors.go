package models

import "errors"

// ErrInvalidPDF is wrapped by rasterizers when the input is not a parseable PDF.
var ErrInvalidPDF = errors.New("invalid PDF")
