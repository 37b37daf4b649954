package models

import "time"

// Document represents one scanned, titled document. The ID is assigned by the
// store on creation and is stable for the document's lifetime; only the title
// is mutable afterwards.
type Document struct {
	ID        string    `json:"id"` // doc_{uuid}
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Page is a single scanned image belonging to exactly one document.
// PageNumber is 1-based and defines display and export order.
type Page struct {
	ID           string `json:"id"` // page_{uuid}
	DocumentID   string `json:"document_id"`
	PageNumber   int    `json:"page_number"`
	ImageLocator string `json:"image_locator"` // opaque blob store locator
	OCRText      string `json:"ocr_text"`      // populated for page 1 only
}

// DocumentWithPages is a document together with its pages ordered by page number.
type DocumentWithPages struct {
	Document
	Pages []*Page `json:"pages"`
}

// DocumentSummary is the list/search projection of a document.
type DocumentSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	PageCount int       `json:"page_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary projects a DocumentWithPages onto its list representation.
func (d *DocumentWithPages) Summary() DocumentSummary {
	return DocumentSummary{
		ID:        d.ID,
		Title:     d.Title,
		PageCount: len(d.Pages),
		CreatedAt: d.CreatedAt,
	}
}

// Summaries converts a result set to its list projection.
func Summaries(docs []*DocumentWithPages) []DocumentSummary {
	out := make([]DocumentSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Summary())
	}
	return out
}
