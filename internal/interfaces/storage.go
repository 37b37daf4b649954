package interfaces

import (
	"context"

	"github.com/ternarybob/scandex/internal/models"
)

// DocumentStorage is the relational persistence contract for documents and
// their ordered pages. Every mutation executes as a single atomic transaction;
// the FTS index over page text is maintained inside the same transaction via
// database triggers, so index and rows never diverge.
type DocumentStorage interface {
	// InsertDocumentWithPages creates one document row and its page rows with
	// contiguous page numbers 1..N as one transaction. No partial document is
	// ever visible to concurrent readers.
	InsertDocumentWithPages(ctx context.Context, doc *models.Document, pages []*models.Page) error

	// RenameDocument updates the title only. Returns ErrNotFound for a missing id.
	RenameDocument(ctx context.Context, id, newTitle string) error

	// DeleteDocument removes the document row; page rows cascade at the
	// database level. It returns the image locators the deleted pages held so
	// the caller can clean up blobs afterwards. Returns ErrNotFound for a
	// missing id.
	DeleteDocument(ctx context.Context, id string) ([]string, error)

	// GetDocumentWithPages returns a document and its pages ordered by page
	// number ascending, or ErrNotFound.
	GetDocumentWithPages(ctx context.Context, id string) (*models.DocumentWithPages, error)

	// ListDocuments returns all documents ordered by creation timestamp descending.
	ListDocuments(ctx context.Context) ([]*models.DocumentWithPages, error)

	// SearchDocuments returns documents whose page text matches the FTS MATCH
	// expression or whose title contains rawQuery case-insensitively,
	// deduplicated, ordered by creation timestamp descending.
	SearchDocuments(ctx context.Context, ftsQuery, rawQuery string) ([]*models.DocumentWithPages, error)

	// CountDocuments returns the total number of documents.
	CountDocuments(ctx context.Context) (int, error)
}

// SettingsStorage persists the application preference snapshot.
type SettingsStorage interface {
	Load(ctx context.Context) (*models.AppSettings, error)
	Save(ctx context.Context, settings *models.AppSettings) error
}

// StorageManager owns the database connections and hands out storage instances.
type StorageManager interface {
	DocumentStorage() DocumentStorage
	SettingsStorage() SettingsStorage
	Close() error
}
