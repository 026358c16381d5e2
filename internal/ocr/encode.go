package ocr

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// JPEGQuality is used for every page image submitted to an OCR engine.
const JPEGQuality = 90

// EncodeJPEG scales img so its longest side is at most maxDimension (0 means no
// limit) and encodes it as JPEG.
func EncodeJPEG(img image.Image, maxDimension int) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("page image is nil")
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("page image is empty")
	}
	if maxDimension > 0 && (b.Dx() > maxDimension || b.Dy() > maxDimension) {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode page image: %w", err)
	}
	return buf.Bytes(), nil
}
