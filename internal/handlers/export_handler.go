package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/interfaces"
	"github.com/ternarybob/scandex/internal/models"
)

type ExportHandler struct {
	exportService interfaces.ExportService
	logger        arbor.ILogger
}

func NewExportHandler(exportService interfaces.ExportService, logger arbor.ILogger) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		logger:        logger,
	}
}

// ExportHandler renders the document into a PDF artifact and streams it back.
// The artifact also stays in the export cache until swept.
func (h *ExportHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := documentID(r)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Document ID required")
		return
	}

	path, err := h.exportService.Export(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Document not found")
			return
		}
		h.logger.Error().Err(err).Str("doc_id", id).Msg("Failed to export document")
		WriteError(w, http.StatusInternalServerError, "Failed to export document")
		return
	}

	// JSON clients get the artifact locator; everyone else gets the bytes.
	if r.URL.Query().Get("format") == "json" {
		WriteJSON(w, http.StatusOK, models.ExportState{
			Status:          models.ExportStatusSuccess,
			ArtifactLocator: path,
		})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.pdf"`)
	http.ServeFile(w, r, path)
}
