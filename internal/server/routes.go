// -----------------------------------------------------------------------
// Last Modified: Monday, 31st August 2026 10:12:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (live document/search/settings views)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Scans (ingestion)
	mux.HandleFunc("/api/scans", s.app.ScanHandler.IngestHandler) // POST multipart "pages"

	// API routes - Documents
	mux.HandleFunc("/api/documents/stats", s.app.DocumentHandler.StatsHandler)
	mux.HandleFunc("/api/documents", s.app.DocumentHandler.ListHandler) // GET, ?q= for search
	mux.HandleFunc("/api/documents/", s.handleDocumentRoutes)           // GET/PUT/DELETE /{id}, GET /{id}/export

	// API routes - Settings
	mux.HandleFunc("/api/settings", s.handleSettingsRoute)
	mux.HandleFunc("/api/settings/review-requested", s.app.SettingsHandler.ReviewRequestedHandler)

	// Health check
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	return mux
}

// handleDocumentRoutes dispatches /api/documents/{id} and its sub-resources.
func (s *Server) handleDocumentRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/documents/")

	if strings.HasSuffix(path, "/export") {
		s.app.ExportHandler.ExportHandler(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.app.DocumentHandler.GetHandler(w, r)
	case http.MethodPut:
		s.app.DocumentHandler.RenameHandler(w, r)
	case http.MethodDelete:
		s.app.DocumentHandler.DeleteHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSettingsRoute dispatches /api/settings by method.
func (s *Server) handleSettingsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.app.SettingsHandler.GetHandler(w, r)
	case http.MethodPut:
		s.app.SettingsHandler.UpdateHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
