package models

import "io"

// PageSource is one captured page image handed to the ingestion pipeline.
// The reader may be ephemeral; the pipeline copies its bytes into the blob
// store before anything is persisted.
type PageSource struct {
	Name string    `json:"name"` // original filename, used only for the extension hint
	Data io.Reader `json:"-"`
}

// ScanStatus discriminates the ScanOutcome union.
type ScanStatus string

const (
	ScanStatusSuccess ScanStatus = "success"
	ScanStatusFailure ScanStatus = "failure"
)

// ScanOutcome is the tagged result of an ingestion attempt, returned across
// the presentation boundary so callers can branch exhaustively.
type ScanOutcome struct {
	Status     ScanStatus `json:"status"`
	DocumentID string     `json:"document_id,omitempty"`
	PagesSaved int        `json:"pages_saved,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// ScanSucceeded builds a success outcome.
func ScanSucceeded(documentID string, pagesSaved int) ScanOutcome {
	return ScanOutcome{Status: ScanStatusSuccess, DocumentID: documentID, PagesSaved: pagesSaved}
}

// ScanFailed builds a failure outcome with a human-readable cause.
func ScanFailed(message string) ScanOutcome {
	return ScanOutcome{Status: ScanStatusFailure, Message: message}
}

// ExportStatus discriminates the ExportState union used by viewers.
type ExportStatus string

const (
	ExportStatusLoading ExportStatus = "loading"
	ExportStatusSuccess ExportStatus = "success"
	ExportStatusError   ExportStatus = "error"
)

// ExportState reports export progress/result to the presentation layer.
type ExportState struct {
	Status          ExportStatus `json:"status"`
	ArtifactLocator string       `json:"artifact_locator,omitempty"`
	Message         string       `json:"message,omitempty"`
}
