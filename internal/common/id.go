package common

import (
	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID.
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewPageID generates a unique page ID.
// Format: page_<uuid>
func NewPageID() string {
	return "page_" + uuid.New().String()
}
