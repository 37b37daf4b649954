package interfaces

import (
	"context"

	"github.com/ternarybob/scandex/internal/models"
)

// DocumentService is the read/mutate surface consumed by the presentation
// layer. The Watch variants are live views: the returned channel delivers an
// initial snapshot and then a fresh snapshot after every underlying change,
// until ctx is cancelled (the service closes the channel).
type DocumentService interface {
	ListDocuments(ctx context.Context) ([]*models.DocumentWithPages, error)
	GetDocument(ctx context.Context, id string) (*models.DocumentWithPages, error)
	SearchDocuments(ctx context.Context, query string) ([]*models.DocumentWithPages, error)

	WatchDocuments(ctx context.Context) (<-chan []*models.DocumentWithPages, error)
	WatchDocument(ctx context.Context, id string) (<-chan *models.DocumentWithPages, error)
	WatchSearch(ctx context.Context, query string) (<-chan []*models.DocumentWithPages, error)

	// RenameDocument updates the title; the id and creation timestamp are
	// unaffected. Returns ErrNotFound for a missing id.
	RenameDocument(ctx context.Context, id, newTitle string) error

	// DeleteDocument removes the document and its pages (row cascade inside
	// the store transaction), then best-effort deletes the page blobs,
	// tolerating individual failures. Returns ErrNotFound for a missing id.
	DeleteDocument(ctx context.Context, id string) error
}

// SearchService filters documents for a query. Blank queries list everything.
type SearchService interface {
	Search(ctx context.Context, query string) ([]*models.DocumentWithPages, error)
}

// IngestService turns an ordered, non-empty sequence of page sources into one
// persisted document. It returns the new document id and the number of pages
// that survived the copy fan-out.
type IngestService interface {
	Ingest(ctx context.Context, sources []models.PageSource) (string, int, error)
}

// ExportService renders a document's ordered pages into a single PDF artifact
// in the transient cache and returns its locator.
type ExportService interface {
	Export(ctx context.Context, documentID string) (string, error)
}

// SettingsService exposes the preference snapshot with explicit mutators and
// a subscribable view, replacing ad-hoc global state.
type SettingsService interface {
	Get(ctx context.Context) (models.AppSettings, error)
	Watch(ctx context.Context) (<-chan models.AppSettings, error)

	SetBiometricLockEnabled(ctx context.Context, enabled bool) error
	SetThemeMode(ctx context.Context, mode models.ThemeMode) error
	IncrementScanCount(ctx context.Context) error
	UpdateReviewRequestTimestamp(ctx context.Context) error
}
