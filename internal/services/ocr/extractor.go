package ocr

import (
	"context"
	"io"

	"github.com/otiai10/gosseract/v2"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/common"
	"github.com/ternarybob/scandex/internal/interfaces"
)

// Extractor implements interfaces.TextExtractor with Tesseract. A fresh
// client is created per extraction; gosseract clients are not safe for
// concurrent use.
type Extractor struct {
	blobs    interfaces.BlobStore
	language string
	logger   arbor.ILogger
}

// Compile-time assertion
var _ interfaces.TextExtractor = (*Extractor)(nil)

// NewExtractor creates a Tesseract-backed text extractor.
func NewExtractor(blobs interfaces.BlobStore, config *common.OCRConfig, logger arbor.ILogger) *Extractor {
	language := config.Language
	if language == "" {
		language = "eng"
	}
	return &Extractor{
		blobs:    blobs,
		language: language,
		logger:   logger,
	}
}

// Extract runs OCR over a stored page image and returns the recognized text.
func (e *Extractor) Extract(ctx context.Context, imageLocator string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rc, err := e.blobs.Open(imageLocator)
	if err != nil {
		return "", &interfaces.ExtractionError{Locator: imageLocator, Err: err}
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return "", &interfaces.ExtractionError{Locator: imageLocator, Err: err}
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		return "", &interfaces.ExtractionError{Locator: imageLocator, Err: err}
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", &interfaces.ExtractionError{Locator: imageLocator, Err: err}
	}

	text, err := client.Text()
	if err != nil {
		return "", &interfaces.ExtractionError{Locator: imageLocator, Err: err}
	}

	e.logger.Debug().
		Str("locator", imageLocator).
		Int("text_len", len(text)).
		Msg("Text extracted from page image")
	return text, nil
}

// Disabled is a TextExtractor that always yields empty text. Used when OCR is
// switched off in configuration; ingestion degrades exactly as it does on an
// extraction failure.
type Disabled struct{}

// Extract returns empty text.
func (Disabled) Extract(ctx context.Context, imageLocator string) (string, error) {
	return "", nil
}
