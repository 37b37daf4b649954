// -----------------------------------------------------------------------
// Last Modified: Monday, 31st August 2026 10:12:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/common"
	"github.com/ternarybob/scandex/internal/handlers"
	"github.com/ternarybob/scandex/internal/interfaces"
	"github.com/ternarybob/scandex/internal/services/analyze"
	"github.com/ternarybob/scandex/internal/services/blob"
	"github.com/ternarybob/scandex/internal/services/documents"
	"github.com/ternarybob/scandex/internal/services/events"
	"github.com/ternarybob/scandex/internal/services/export"
	"github.com/ternarybob/scandex/internal/services/ingest"
	"github.com/ternarybob/scandex/internal/services/ocr"
	"github.com/ternarybob/scandex/internal/services/scheduler"
	"github.com/ternarybob/scandex/internal/services/search"
	"github.com/ternarybob/scandex/internal/services/settings"
	"github.com/ternarybob/scandex/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Core services
	BlobStore       interfaces.BlobStore
	EventService    interfaces.EventService
	SearchService   interfaces.SearchService
	DocumentService interfaces.DocumentService
	IngestService   interfaces.IngestService
	ExportService   interfaces.ExportService
	SettingsService interfaces.SettingsService

	SchedulerService *scheduler.Service

	// HTTP handlers
	ScanHandler     *handlers.ScanHandler
	DocumentHandler *handlers.DocumentHandler
	ExportHandler   *handlers.ExportHandler
	SettingsHandler *handlers.SettingsHandler
	WSHandler       *handlers.WebSocketHandler
}

// New wires the application together from configuration.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.StorageManager = storageManager

	blobStore, err := blob.NewService(&config.Storage.Blobs, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}
	a.BlobStore = blobStore

	a.EventService = events.NewService(logger)

	var extractor interfaces.TextExtractor
	if config.OCR.Enabled {
		extractor = ocr.NewExtractor(blobStore, &config.OCR, logger)
	} else {
		logger.Info().Msg("OCR disabled, scans will use fallback titles")
		extractor = ocr.Disabled{}
	}
	analyzer := analyze.NewAnalyzer(extractor, logger)

	documentStorage := storageManager.DocumentStorage()

	a.SettingsService = settings.NewService(storageManager.SettingsStorage(), a.EventService, logger)
	a.SearchService = search.NewService(documentStorage, logger)
	a.DocumentService = documents.NewService(documentStorage, blobStore, a.SearchService, a.EventService, logger)
	a.IngestService = ingest.NewService(blobStore, documentStorage, analyzer, a.EventService, a.SettingsService, &config.Ingest, logger)

	exportService, err := export.NewService(documentStorage, blobStore, &config.Export, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize export service: %w", err)
	}
	a.ExportService = exportService

	a.SchedulerService = scheduler.NewService(&config.Export, logger)
	if err := a.SchedulerService.Start(); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	a.ScanHandler = handlers.NewScanHandler(a.IngestService, &config.Ingest, logger)
	a.DocumentHandler = handlers.NewDocumentHandler(a.DocumentService, documentStorage, logger)
	a.ExportHandler = handlers.NewExportHandler(a.ExportService, logger)
	a.SettingsHandler = handlers.NewSettingsHandler(a.SettingsService, logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.DocumentService, a.SettingsService, logger)

	logger.Info().Msg("Application initialized")
	return a, nil
}

// Close releases application resources in reverse dependency order.
func (a *App) Close() error {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}
	if a.EventService != nil {
		a.EventService.Close()
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
			return err
		}
	}
	return nil
}
