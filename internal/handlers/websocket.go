// -----------------------------------------------------------------------
// Last Modified: Monday, 31st August 2026 10:12:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/interfaces"
	"github.com/ternarybob/scandex/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// WebSocketHandler streams the live views over a WebSocket connection. A
// client picks a view with query parameters:
//
//	/ws?view=documents          live document list
//	/ws?view=document&id=...    live single document (nil after deletion)
//	/ws?view=search&q=...       live search results for a fixed query
//	/ws?view=settings           live settings snapshot
//
// Each frame is the full fresh snapshot; the client replaces, never merges.
type WebSocketHandler struct {
	documentService interfaces.DocumentService
	settingsService interfaces.SettingsService
	logger          arbor.ILogger
}

func NewWebSocketHandler(documentService interfaces.DocumentService, settingsService interfaces.SettingsService, logger arbor.ILogger) *WebSocketHandler {
	return &WebSocketHandler{
		documentService: documentService,
		settingsService: settingsService,
		logger:          logger,
	}
}

// HandleWebSocket upgrades the connection and streams the requested view
// until the client disconnects.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The read loop exists only to notice the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var writeMu sync.Mutex
	send := func(payload interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(payload)
	}

	go h.keepAlive(ctx, conn, &writeMu)

	query := r.URL.Query()
	switch query.Get("view") {
	case "", "documents":
		err = h.streamDocumentList(ctx, send, func(ctx context.Context) (<-chan []*models.DocumentWithPages, error) {
			return h.documentService.WatchDocuments(ctx)
		})
	case "search":
		q := query.Get("q")
		err = h.streamDocumentList(ctx, send, func(ctx context.Context) (<-chan []*models.DocumentWithPages, error) {
			return h.documentService.WatchSearch(ctx, q)
		})
	case "document":
		err = h.streamDocument(ctx, send, query.Get("id"))
	case "settings":
		err = h.streamSettings(ctx, send)
	default:
		send(map[string]string{"type": "error", "error": "unknown view"})
		return
	}

	if err != nil && ctx.Err() == nil {
		h.logger.Warn().Err(err).Msg("WebSocket view stream ended with error")
	}
}

func (h *WebSocketHandler) streamDocumentList(
	ctx context.Context,
	send func(interface{}) error,
	watch func(context.Context) (<-chan []*models.DocumentWithPages, error),
) error {
	ch, err := watch(ctx)
	if err != nil {
		send(map[string]string{"type": "error", "error": "failed to open view"})
		return err
	}

	for snapshot := range ch {
		frame := map[string]interface{}{
			"type":      "snapshot",
			"documents": models.Summaries(snapshot),
			"count":     len(snapshot),
		}
		if err := send(frame); err != nil {
			return err
		}
	}
	return nil
}

func (h *WebSocketHandler) streamDocument(ctx context.Context, send func(interface{}) error, id string) error {
	if id == "" {
		send(map[string]string{"type": "error", "error": "document id required"})
		return nil
	}

	ch, err := h.documentService.WatchDocument(ctx, id)
	if err != nil {
		send(map[string]string{"type": "error", "error": "failed to open view"})
		return err
	}

	for snapshot := range ch {
		frame := map[string]interface{}{
			"type":     "snapshot",
			"document": snapshot, // nil after deletion
		}
		if err := send(frame); err != nil {
			return err
		}
	}
	return nil
}

func (h *WebSocketHandler) streamSettings(ctx context.Context, send func(interface{}) error) error {
	ch, err := h.settingsService.Watch(ctx)
	if err != nil {
		send(map[string]string{"type": "error", "error": "failed to open view"})
		return err
	}

	for snapshot := range ch {
		frame := map[string]interface{}{
			"type":     "snapshot",
			"settings": snapshot,
		}
		if err := send(frame); err != nil {
			return err
		}
	}
	return nil
}

// keepAlive pings the client so idle views survive proxies with read timeouts.
func (h *WebSocketHandler) keepAlive(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
