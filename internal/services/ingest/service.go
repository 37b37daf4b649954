package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/common"
	"github.com/ternarybob/scandex/internal/interfaces"
	"github.com/ternarybob/scandex/internal/models"
	"github.com/ternarybob/scandex/internal/services/analyze"
)

// Service implements interfaces.IngestService: blob copy fan-out, first-page
// text extraction, title derivation, then one atomic document+pages insert.
type Service struct {
	blobs       interfaces.BlobStore
	storage     interfaces.DocumentStorage
	analyzer    *analyze.Analyzer
	events      interfaces.EventService
	settings    interfaces.SettingsService
	concurrency int
	logger      arbor.ILogger
}

// Compile-time assertion
var _ interfaces.IngestService = (*Service)(nil)

// NewService creates a new ingestion service. The settings service is
// optional; when present the scan counter is incremented per successful scan.
func NewService(
	blobs interfaces.BlobStore,
	storage interfaces.DocumentStorage,
	analyzer *analyze.Analyzer,
	events interfaces.EventService,
	settings interfaces.SettingsService,
	config *common.IngestConfig,
	logger arbor.ILogger,
) *Service {
	concurrency := config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		blobs:       blobs,
		storage:     storage,
		analyzer:    analyzer,
		events:      events,
		settings:    settings,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Ingest turns an ordered sequence of page sources into one persisted
// document and returns its id.
//
// Per-page blob copy failures drop that page only; the scan fails with an
// IngestionError when no page survives. Extraction failures degrade to empty
// text. Cancellation before the final insert removes any copied blobs and
// leaves zero rows behind.
func (s *Service) Ingest(ctx context.Context, sources []models.PageSource) (string, int, error) {
	if len(sources) == 0 {
		return "", 0, &interfaces.IngestionError{Reason: "no pages captured"}
	}

	locators := s.copyPages(ctx, sources)

	if err := ctx.Err(); err != nil {
		s.discardBlobs(locators)
		return "", 0, &interfaces.IngestionError{Reason: "scan cancelled", Err: err}
	}

	if len(locators) == 0 {
		return "", 0, &interfaces.IngestionError{Reason: "no pages captured"}
	}

	// OCR the first page only; remaining pages carry no extracted text.
	analysis := s.analyzer.AnalyzeFirstPage(ctx, locators[0])

	if err := ctx.Err(); err != nil {
		s.discardBlobs(locators)
		return "", 0, &interfaces.IngestionError{Reason: "scan cancelled", Err: err}
	}

	doc := &models.Document{
		ID:        common.NewDocumentID(),
		Title:     analysis.Title,
		CreatedAt: time.Now().UTC(),
	}

	pages := make([]*models.Page, 0, len(locators))
	for i, locator := range locators {
		text := ""
		if i == 0 {
			text = analysis.FullText
		}
		pages = append(pages, &models.Page{
			ID:           common.NewPageID(),
			ImageLocator: locator,
			OCRText:      text,
		})
	}

	if err := s.storage.InsertDocumentWithPages(ctx, doc, pages); err != nil {
		s.discardBlobs(locators)
		return "", 0, err
	}

	s.logger.Info().
		Str("doc_id", doc.ID).
		Str("title", doc.Title).
		Int("pages", len(pages)).
		Msg("Scan ingested")

	if s.settings != nil {
		if err := s.settings.IncrementScanCount(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to increment scan counter")
		}
	}

	s.events.Publish(ctx, interfaces.Event{
		Type:    interfaces.EventDocumentCreated,
		Payload: map[string]interface{}{"document_id": doc.ID, "pages": len(pages)},
	})

	return doc.ID, len(pages), nil
}

// copyPages fans the blob copies out across a bounded worker set. Surviving
// locators keep input order; a failed copy drops that page only.
func (s *Service) copyPages(ctx context.Context, sources []models.PageSource) []string {
	results := make([]string, len(sources))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, source := range sources {
		wg.Add(1)
		go func(i int, source models.PageSource) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			locator, err := s.blobs.Put(ctx, source.Data, source.Name)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Int("page_index", i).
					Str("name", source.Name).
					Msg("Page copy failed, dropping page")
				return
			}
			results[i] = locator
		}(i, source)
	}
	wg.Wait()

	locators := make([]string, 0, len(results))
	for _, locator := range results {
		if locator != "" {
			locators = append(locators, locator)
		}
	}
	return locators
}

// discardBlobs removes blobs copied for a scan that will not be persisted.
func (s *Service) discardBlobs(locators []string) {
	for _, locator := range locators {
		if err := s.blobs.Delete(locator); err != nil {
			s.logger.Warn().Err(err).Str("locator", locator).Msg("Failed to discard blob")
		}
	}
}
