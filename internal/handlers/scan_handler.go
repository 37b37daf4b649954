// -----------------------------------------------------------------------
// Last Modified: Monday, 31st August 2026 10:12:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/common"
	"github.com/ternarybob/scandex/internal/interfaces"
	"github.com/ternarybob/scandex/internal/models"
	"golang.org/x/time/rate"
)

// maxScanUploadBytes caps a multipart scan upload (all pages combined).
const maxScanUploadBytes = 256 << 20

type ScanHandler struct {
	ingestService interfaces.IngestService
	limiter       *rate.Limiter // nil = unlimited
	logger        arbor.ILogger
}

func NewScanHandler(ingestService interfaces.IngestService, config *common.IngestConfig, logger arbor.ILogger) *ScanHandler {
	h := &ScanHandler{
		ingestService: ingestService,
		logger:        logger,
	}

	if interval := config.IngestInterval(); interval > 0 {
		burst := config.RateBurst
		if burst < 1 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Every(interval), burst)
		logger.Debug().
			Str("interval", interval.String()).
			Int("burst", burst).
			Msg("Scan rate limiter initialized")
	}

	return h
}

// IngestHandler accepts a multipart upload of page images (form field "pages",
// repeated, in capture order) and runs the ingestion pipeline.
func (h *ScanHandler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if h.limiter != nil && !h.limiter.Allow() {
		WriteError(w, http.StatusTooManyRequests, "Scan rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxScanUploadBytes)
	reader, err := r.MultipartReader()
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Expected multipart upload")
		return
	}

	// Multipart parts are only valid until the next NextPart call, and the
	// pipeline copies pages concurrently, so each part is buffered before it
	// becomes a page source. Part order is page order.
	var sources []models.PageSource
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Malformed multipart upload")
			return
		}
		if part.FormName() != "pages" {
			continue
		}
		data, err := io.ReadAll(part)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Failed to read page upload")
			return
		}
		sources = append(sources, models.PageSource{
			Name: part.FileName(),
			Data: bytes.NewReader(data),
		})
	}

	docID, pagesSaved, err := h.ingestService.Ingest(r.Context(), sources)
	if err != nil {
		var ingestErr *interfaces.IngestionError
		if errors.As(err, &ingestErr) {
			h.logger.Warn().Err(err).Msg("Scan rejected")
			WriteJSON(w, http.StatusUnprocessableEntity, models.ScanFailed(ingestErr.Reason))
			return
		}
		h.logger.Error().Err(err).Msg("Scan failed")
		WriteJSON(w, http.StatusInternalServerError, models.ScanFailed("internal error"))
		return
	}

	WriteJSON(w, http.StatusCreated, models.ScanSucceeded(docID, pagesSaved))
}
