package ocr

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/ocrpdfbot/internal/models"
)

// TranscriptionPrompt asks the model for a verbatim transcription of one page.
const TranscriptionPrompt = `Transcribe all text visible in this page image exactly as written.
Return only the transcribed text with no commentary, headings or code fences.
If the page contains no text, return an empty response.`

// ContentGenerator is the part of a Gemini model the extractor uses.
// *genai.GenerativeModel satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiExtractor transcribes page images with a Vertex AI Gemini model.
type GeminiExtractor struct {
	model        ContentGenerator
	maxDimension int
}

// NewGeminiExtractor wraps a configured model.
func NewGeminiExtractor(model ContentGenerator, maxDimension int) *GeminiExtractor {
	return &GeminiExtractor{model: model, maxDimension: maxDimension}
}

// ExtractText returns the model's transcription of the page.
func (e *GeminiExtractor) ExtractText(ctx context.Context, page models.PageImage) (string, error) {
	content, err := EncodeJPEG(page.Image, e.maxDimension)
	if err != nil {
		return "", err
	}

	resp, err := e.model.GenerateContent(ctx, genai.ImageData("jpeg", content), genai.Text(TranscriptionPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	return extractText(resp), nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}

	s := strings.TrimSpace(text.String())
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
