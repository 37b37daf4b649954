package documents

import (
	"context"
	"errors"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/interfaces"
	"github.com/ternarybob/scandex/internal/models"
)

var errBlankTitle = errors.New("title cannot be blank")

// Service implements interfaces.DocumentService
type Service struct {
	storage interfaces.DocumentStorage
	blobs   interfaces.BlobStore
	search  interfaces.SearchService
	events  interfaces.EventService
	logger  arbor.ILogger
}

// Compile-time assertion
var _ interfaces.DocumentService = (*Service)(nil)

// NewService creates a new document service
func NewService(
	storage interfaces.DocumentStorage,
	blobs interfaces.BlobStore,
	search interfaces.SearchService,
	events interfaces.EventService,
	logger arbor.ILogger,
) *Service {
	return &Service{
		storage: storage,
		blobs:   blobs,
		search:  search,
		events:  events,
		logger:  logger,
	}
}

// ListDocuments returns all documents, newest first.
func (s *Service) ListDocuments(ctx context.Context) ([]*models.DocumentWithPages, error) {
	return s.storage.ListDocuments(ctx)
}

// GetDocument retrieves a document with its ordered pages.
func (s *Service) GetDocument(ctx context.Context, id string) (*models.DocumentWithPages, error) {
	return s.storage.GetDocumentWithPages(ctx, id)
}

// SearchDocuments delegates to the search service.
func (s *Service) SearchDocuments(ctx context.Context, query string) ([]*models.DocumentWithPages, error) {
	return s.search.Search(ctx, query)
}

// RenameDocument updates the title; id and creation timestamp are unaffected.
func (s *Service) RenameDocument(ctx context.Context, id, newTitle string) error {
	if strings.TrimSpace(newTitle) == "" {
		return &interfaces.StorageError{Op: "rename", Err: errBlankTitle}
	}

	if err := s.storage.RenameDocument(ctx, id, newTitle); err != nil {
		return err
	}

	s.logger.Info().Str("doc_id", id).Str("title", newTitle).Msg("Document renamed")

	s.events.Publish(ctx, interfaces.Event{
		Type:    interfaces.EventDocumentRenamed,
		Payload: map[string]interface{}{"document_id": id, "title": newTitle},
	})
	return nil
}

// DeleteDocument removes the document (pages cascade inside the store
// transaction), then best-effort deletes the page blobs. A missing blob never
// aborts the deletion: rows go first, files after, so a crash in between
// leaves only an orphaned file, never a dangling reference.
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	locators, err := s.storage.DeleteDocument(ctx, id)
	if err != nil {
		return err
	}

	for _, locator := range locators {
		if err := s.blobs.Delete(locator); err != nil {
			s.logger.Warn().
				Err(err).
				Str("doc_id", id).
				Str("locator", locator).
				Msg("Failed to delete page blob, continuing")
		}
	}

	s.logger.Info().Str("doc_id", id).Int("pages", len(locators)).Msg("Document deleted")

	s.events.Publish(ctx, interfaces.Event{
		Type:    interfaces.EventDocumentDeleted,
		Payload: map[string]interface{}{"document_id": id},
	})
	return nil
}

// WatchDocuments is the live list view: an initial snapshot, then a fresh
// snapshot after every document change, until ctx is cancelled.
func (s *Service) WatchDocuments(ctx context.Context) (<-chan []*models.DocumentWithPages, error) {
	return s.watchQuery(ctx, func(ctx context.Context) ([]*models.DocumentWithPages, error) {
		return s.storage.ListDocuments(ctx)
	})
}

// WatchSearch is the live search view for a fixed query.
func (s *Service) WatchSearch(ctx context.Context, query string) (<-chan []*models.DocumentWithPages, error) {
	return s.watchQuery(ctx, func(ctx context.Context) ([]*models.DocumentWithPages, error) {
		return s.search.Search(ctx, query)
	})
}

// WatchDocument is the live detail view for one document. After the document
// is deleted the channel delivers nil and stays open until cancellation.
func (s *Service) WatchDocument(ctx context.Context, id string) (<-chan *models.DocumentWithPages, error) {
	out := make(chan *models.DocumentWithPages, 1)

	requery := func(ctx context.Context) (*models.DocumentWithPages, error) {
		doc, err := s.storage.GetDocumentWithPages(ctx, id)
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil
		}
		return doc, err
	}

	initial, err := requery(ctx)
	if err != nil {
		close(out)
		return nil, err
	}
	out <- initial

	notify := make(chan struct{}, 1)
	cancel, err := s.subscribeDocumentEvents(notify)
	if err != nil {
		close(out)
		return nil, err
	}

	go func() {
		defer cancel()
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-notify:
				doc, err := requery(ctx)
				if err != nil {
					s.logger.Warn().Err(err).Str("doc_id", id).Msg("Live view re-query failed")
					continue
				}
				deliverLatest(ctx, out, doc)
			}
		}
	}()

	return out, nil
}

// watchQuery runs the shared snapshot-then-requery loop behind the list and
// search live views.
func (s *Service) watchQuery(
	ctx context.Context,
	requery func(context.Context) ([]*models.DocumentWithPages, error),
) (<-chan []*models.DocumentWithPages, error) {
	out := make(chan []*models.DocumentWithPages, 1)

	initial, err := requery(ctx)
	if err != nil {
		close(out)
		return nil, err
	}
	out <- initial

	notify := make(chan struct{}, 1)
	cancel, err := s.subscribeDocumentEvents(notify)
	if err != nil {
		close(out)
		return nil, err
	}

	go func() {
		defer cancel()
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-notify:
				snapshot, err := requery(ctx)
				if err != nil {
					s.logger.Warn().Err(err).Msg("Live view re-query failed")
					continue
				}
				deliverLatest(ctx, out, snapshot)
			}
		}
	}()

	return out, nil
}

// subscribeDocumentEvents coalesces all document events onto one notify
// channel and returns a combined cancel.
func (s *Service) subscribeDocumentEvents(notify chan<- struct{}) (func(), error) {
	handler := func(ctx context.Context, event interfaces.Event) error {
		select {
		case notify <- struct{}{}:
		default: // a re-query is already pending
		}
		return nil
	}

	var cancels []func()
	for _, eventType := range interfaces.DocumentEventTypes() {
		cancel, err := s.events.Subscribe(eventType, handler)
		if err != nil {
			for _, c := range cancels {
				c()
			}
			return nil, err
		}
		cancels = append(cancels, cancel)
	}

	return func() {
		for _, c := range cancels {
			c()
		}
	}, nil
}

// deliverLatest replaces any undelivered snapshot so subscribers always see
// the freshest state.
func deliverLatest[T any](ctx context.Context, out chan T, value T) {
	for {
		select {
		case <-ctx.Done():
			return
		case out <- value:
			return
		default:
			select {
			case <-out: // drop the stale snapshot
			default:
			}
		}
	}
}
