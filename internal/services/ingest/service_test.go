package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/common"
	"github.com/ternarybob/scandex/internal/interfaces"
	"github.com/ternarybob/scandex/internal/models"
	"github.com/ternarybob/scandex/internal/services/analyze"
	"github.com/ternarybob/scandex/internal/services/events"
)

// memBlobStore is an in-memory BlobStore that can fail selected puts.
type memBlobStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	nextID  int
	failFor map[string]bool // nameHint -> fail
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{
		blobs:   make(map[string][]byte),
		failFor: make(map[string]bool),
	}
}

func (m *memBlobStore) Put(ctx context.Context, source io.Reader, nameHint string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[nameHint] {
		return "", errors.New("simulated copy failure")
	}
	data, err := io.ReadAll(source)
	if err != nil {
		return "", err
	}
	m.nextID++
	locator := fmt.Sprintf("blob_%d_%s", m.nextID, nameHint)
	m.blobs[locator] = data
	return locator, nil
}

func (m *memBlobStore) Open(locator string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[locator]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memBlobStore) Delete(locator string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, locator)
	return nil
}

func (m *memBlobStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

// recordingStorage captures the inserted document and pages.
type recordingStorage struct {
	mu        sync.Mutex
	doc       *models.Document
	pages     []*models.Page
	insertErr error
}

func (r *recordingStorage) InsertDocumentWithPages(ctx context.Context, doc *models.Document, pages []*models.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	for i, page := range pages {
		page.DocumentID = doc.ID
		page.PageNumber = i + 1
	}
	r.doc = doc
	r.pages = pages
	return nil
}

func (r *recordingStorage) RenameDocument(ctx context.Context, id, newTitle string) error { return nil }
func (r *recordingStorage) DeleteDocument(ctx context.Context, id string) ([]string, error) {
	return nil, nil
}
func (r *recordingStorage) GetDocumentWithPages(ctx context.Context, id string) (*models.DocumentWithPages, error) {
	return nil, interfaces.ErrNotFound
}
func (r *recordingStorage) ListDocuments(ctx context.Context) ([]*models.DocumentWithPages, error) {
	return nil, nil
}
func (r *recordingStorage) SearchDocuments(ctx context.Context, ftsQuery, rawQuery string) ([]*models.DocumentWithPages, error) {
	return nil, nil
}
func (r *recordingStorage) CountDocuments(ctx context.Context) (int, error) { return 0, nil }

// markerExtractor returns recognizable text per locator.
type markerExtractor struct{}

func (markerExtractor) Extract(ctx context.Context, imageLocator string) (string, error) {
	return "Extracted Text from " + imageLocator, nil
}

func newTestService(blobs interfaces.BlobStore, storage interfaces.DocumentStorage) *Service {
	logger := arbor.NewLogger()
	analyzer := analyze.NewAnalyzer(markerExtractor{}, logger)
	eventService := events.NewService(logger)
	return NewService(blobs, storage, analyzer, eventService, nil, &common.IngestConfig{Concurrency: 2}, logger)
}

func sources(names ...string) []models.PageSource {
	out := make([]models.PageSource, len(names))
	for i, name := range names {
		out[i] = models.PageSource{Name: name, Data: strings.NewReader("image bytes for " + name)}
	}
	return out
}

func TestIngestMultiPageScan(t *testing.T) {
	blobs := newMemBlobStore()
	storage := &recordingStorage{}
	svc := newTestService(blobs, storage)

	docID, saved, err := svc.Ingest(context.Background(), sources("p1.jpg", "p2.jpg", "p3.jpg"))
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if docID == "" || storage.doc == nil || storage.doc.ID != docID {
		t.Fatalf("Expected inserted document with id %q", docID)
	}
	if saved != 3 || len(storage.pages) != 3 {
		t.Fatalf("Expected 3 pages saved, got %d / %d", saved, len(storage.pages))
	}

	// Pages keep capture order and contiguous numbering.
	for i, page := range storage.pages {
		if page.PageNumber != i+1 {
			t.Errorf("Page %d has number %d", i, page.PageNumber)
		}
		want := fmt.Sprintf("p%d.jpg", i+1)
		if !strings.HasSuffix(page.ImageLocator, want) {
			t.Errorf("Page %d locator %q out of order, want suffix %q", i, page.ImageLocator, want)
		}
	}

	// Only the first page carries extracted text.
	if storage.pages[0].OCRText == "" {
		t.Error("First page should carry extracted text")
	}
	for _, page := range storage.pages[1:] {
		if page.OCRText != "" {
			t.Errorf("Page %d should have empty text, got %q", page.PageNumber, page.OCRText)
		}
	}

	// Title derives from the first page's text.
	if !strings.HasPrefix(storage.doc.Title, "Extracted Text from ") {
		t.Errorf("Unexpected title %q", storage.doc.Title)
	}
}

func TestIngestDropsFailedPage(t *testing.T) {
	blobs := newMemBlobStore()
	blobs.failFor["p2.jpg"] = true
	storage := &recordingStorage{}
	svc := newTestService(blobs, storage)

	_, saved, err := svc.Ingest(context.Background(), sources("p1.jpg", "p2.jpg", "p3.jpg"))
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if saved != 2 || len(storage.pages) != 2 {
		t.Fatalf("Expected 2 surviving pages, got %d / %d", saved, len(storage.pages))
	}

	// Survivors keep relative order and renumber contiguously.
	if !strings.HasSuffix(storage.pages[0].ImageLocator, "p1.jpg") ||
		!strings.HasSuffix(storage.pages[1].ImageLocator, "p3.jpg") {
		t.Errorf("Survivors out of order: %q, %q", storage.pages[0].ImageLocator, storage.pages[1].ImageLocator)
	}
	if storage.pages[0].PageNumber != 1 || storage.pages[1].PageNumber != 2 {
		t.Errorf("Expected renumbered pages 1,2 got %d,%d", storage.pages[0].PageNumber, storage.pages[1].PageNumber)
	}
}

func TestIngestFailsWhenAllPagesFail(t *testing.T) {
	blobs := newMemBlobStore()
	blobs.failFor["p1.jpg"] = true
	blobs.failFor["p2.jpg"] = true
	storage := &recordingStorage{}
	svc := newTestService(blobs, storage)

	_, _, err := svc.Ingest(context.Background(), sources("p1.jpg", "p2.jpg"))
	var ingestErr *interfaces.IngestionError
	if !errors.As(err, &ingestErr) {
		t.Fatalf("Expected IngestionError, got %v", err)
	}
	if storage.doc != nil {
		t.Error("No document should be persisted when every page fails")
	}
}

func TestIngestRejectsEmptySources(t *testing.T) {
	svc := newTestService(newMemBlobStore(), &recordingStorage{})

	_, _, err := svc.Ingest(context.Background(), nil)
	var ingestErr *interfaces.IngestionError
	if !errors.As(err, &ingestErr) {
		t.Fatalf("Expected IngestionError for empty sources, got %v", err)
	}
}

func TestIngestCancellationCleansUpBlobs(t *testing.T) {
	blobs := newMemBlobStore()
	storage := &recordingStorage{}
	svc := newTestService(blobs, storage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := svc.Ingest(ctx, sources("p1.jpg", "p2.jpg"))
	var ingestErr *interfaces.IngestionError
	if !errors.As(err, &ingestErr) {
		t.Fatalf("Expected IngestionError on cancellation, got %v", err)
	}
	if storage.doc != nil {
		t.Error("No document should be persisted after cancellation")
	}
	if blobs.count() != 0 {
		t.Errorf("Expected copied blobs discarded, %d left", blobs.count())
	}
}

func TestIngestInsertFailureDiscardsBlobs(t *testing.T) {
	blobs := newMemBlobStore()
	storage := &recordingStorage{insertErr: &interfaces.StorageError{Op: "insert", Err: errors.New("disk full")}}
	svc := newTestService(blobs, storage)

	_, _, err := svc.Ingest(context.Background(), sources("p1.jpg"))
	var storageErr *interfaces.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("Expected StorageError, got %v", err)
	}
	if blobs.count() != 0 {
		t.Errorf("Expected blobs discarded after insert failure, %d left", blobs.count())
	}
}
