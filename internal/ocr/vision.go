package ocr

import (
	"context"
	"fmt"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/Lllllllleong/ocrpdfbot/internal/models"
	"github.com/googleapis/gax-go/v2"
)

// ImageAnnotator is the part of the Cloud Vision client used for text detection.
// *vision.ImageAnnotatorClient satisfies it.
type ImageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
}

// VisionExtractor runs Cloud Vision TEXT_DETECTION on each page.
type VisionExtractor struct {
	client       ImageAnnotator
	maxDimension int
}

// NewVisionExtractor wraps an already authenticated client, shared by all requests.
func NewVisionExtractor(client ImageAnnotator, maxDimension int) *VisionExtractor {
	return &VisionExtractor{client: client, maxDimension: maxDimension}
}

// ExtractText returns the full-text description of the page, or "" when Vision
// finds no text.
func (e *VisionExtractor) ExtractText(ctx context.Context, page models.PageImage) (string, error) {
	content, err := EncodeJPEG(page.Image, e.maxDimension)
	if err != nil {
		return "", err
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: content},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_TEXT_DETECTION}},
		}},
	}
	resp, err := e.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision text detection: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return "", fmt.Errorf("vision text detection: empty response")
	}

	res := resp.GetResponses()[0]
	if st := res.GetError(); st != nil && st.GetCode() != 0 {
		return "", fmt.Errorf("vision text detection: code %d: %s", st.GetCode(), st.GetMessage())
	}
	annotations := res.GetTextAnnotations()
	if len(annotations) == 0 {
		return "", nil
	}
	// The first annotation holds the text of the whole image.
	return annotations[0].GetDescription(), nil
}
