package interfaces

import "context"

// EventType identifies a class of change notification.
type EventType string

const (
	EventDocumentCreated EventType = "document_created"
	EventDocumentRenamed EventType = "document_renamed"
	EventDocumentDeleted EventType = "document_deleted"
	EventSettingsChanged EventType = "settings_changed"
)

// DocumentEventTypes lists the events that invalidate document views.
func DocumentEventTypes() []EventType {
	return []EventType{EventDocumentCreated, EventDocumentRenamed, EventDocumentDeleted}
}

// Event is a change notification published after a committed mutation.
type Event struct {
	Type    EventType              `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// EventHandler processes a published event.
type EventHandler func(ctx context.Context, event Event) error

// EventService is the pub/sub mechanism behind live views: stores publish
// after each committed write, views re-query on notification.
type EventService interface {
	// Subscribe registers a handler and returns its cancel function.
	Subscribe(eventType EventType, handler EventHandler) (func(), error)

	// Publish delivers the event to subscribers asynchronously.
	Publish(ctx context.Context, event Event) error

	// PublishSync delivers the event and waits for all handlers.
	PublishSync(ctx context.Context, event Event) error

	Close() error
}
