package interfaces

import "context"

// TextExtractor is the external OCR capability. The core invokes it through
// this interface and never depends on the recognition algorithm itself.
type TextExtractor interface {
	// Extract returns the recognized plain text for a stored page image, or
	// an ExtractionError. Callers treat failures as non-fatal.
	Extract(ctx context.Context, imageLocator string) (string, error)
}
