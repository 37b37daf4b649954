package interfaces

import (
	"errors"
	"fmt"
)

// ErrNotFound reports an operation targeting a document id that does not exist.
// An empty list/search result is a successful state, never ErrNotFound.
var ErrNotFound = errors.New("document not found")

// StorageError wraps a transaction failure in the document store (constraint
// violation, disk or index fault). The whole write unit has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IngestionError reports an unrecoverable ingestion failure, such as no page
// surviving the blob copy step.
type IngestionError struct {
	Reason string
	Err    error
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingestion failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("ingestion failed: %s", e.Reason)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// ExtractionError reports a text-recognition failure. Ingestion absorbs it and
// degrades to empty text; it never gates a scan.
type ExtractionError struct {
	Locator string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("text extraction failed for %s: %v", e.Locator, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ExportError reports a failed export. A decode failure on any single page
// fails the whole artifact; no partial output is returned.
type ExportError struct {
	DocumentID string
	Page       int
	Err        error
}

func (e *ExportError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("export of %s failed at page %d: %v", e.DocumentID, e.Page, e.Err)
	}
	return fmt.Sprintf("export of %s failed: %v", e.DocumentID, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
