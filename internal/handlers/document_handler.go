// -----------------------------------------------------------------------
// Last Modified: Monday, 31st August 2026 10:12:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/interfaces"
	"github.com/ternarybob/scandex/internal/models"
)

type DocumentHandler struct {
	documentService interfaces.DocumentService
	documentStorage interfaces.DocumentStorage
	logger          arbor.ILogger
}

func NewDocumentHandler(documentService interfaces.DocumentService, documentStorage interfaces.DocumentStorage, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		documentStorage: documentStorage,
		logger:          logger,
	}
}

// ListHandler returns all documents, newest first. With a non-blank ?q= it
// behaves as a search over page text and titles.
func (h *DocumentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx := r.Context()
	query := r.URL.Query().Get("q")

	docs, err := h.documentService.SearchDocuments(ctx, query)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list documents")
		WriteError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": models.Summaries(docs),
		"count":     len(docs),
	})
}

// StatsHandler returns document statistics
func (h *DocumentHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	count, err := h.documentStorage.CountDocuments(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get document stats")
		WriteError(w, http.StatusInternalServerError, "Failed to get statistics")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"total_documents": count,
	})
}

// GetHandler returns one document with its ordered pages.
func (h *DocumentHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := documentID(r)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Document ID required")
		return
	}

	doc, err := h.documentService.GetDocument(r.Context(), id)
	if err != nil {
		h.writeDocumentError(w, id, err, "Failed to get document")
		return
	}

	WriteJSON(w, http.StatusOK, doc)
}

// RenameHandler updates a document's title.
func (h *DocumentHandler) RenameHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	id := documentID(r)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Document ID required")
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		WriteError(w, http.StatusBadRequest, "Title cannot be blank")
		return
	}

	if err := h.documentService.RenameDocument(r.Context(), id, req.Title); err != nil {
		h.writeDocumentError(w, id, err, "Failed to rename document")
		return
	}

	WriteSuccess(w, "Document renamed")
}

// DeleteHandler removes a document, its pages and its stored page images.
func (h *DocumentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := documentID(r)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Document ID required")
		return
	}

	if err := h.documentService.DeleteDocument(r.Context(), id); err != nil {
		h.writeDocumentError(w, id, err, "Failed to delete document")
		return
	}

	WriteSuccess(w, "Document deleted")
}

func (h *DocumentHandler) writeDocumentError(w http.ResponseWriter, id string, err error, message string) {
	if errors.Is(err, interfaces.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Document not found")
		return
	}
	h.logger.Error().Err(err).Str("doc_id", id).Msg(message)
	WriteError(w, http.StatusInternalServerError, message)
}

// documentID extracts the id path segment from /api/documents/{id}[/...].
func documentID(r *http.Request) string {
	path := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	if idx := strings.Index(path, "/"); idx >= 0 {
		path = path[:idx]
	}
	return path
}
