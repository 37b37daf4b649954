package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/interfaces"
)

func TestPublishSyncDeliversToSubscribers(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	defer svc.Close()

	var calls int32
	for i := 0; i < 3; i++ {
		_, err := svc.Subscribe(interfaces.EventDocumentCreated, func(ctx context.Context, event interfaces.Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
		if err != nil {
			t.Fatalf("Subscribe failed: %v", err)
		}
	}

	err := svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventDocumentCreated})
	if err != nil {
		t.Fatalf("PublishSync failed: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected 3 handler calls, got %d", got)
	}
}

func TestPublishOnlyMatchingType(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	defer svc.Close()

	var calls int32
	if _, err := svc.Subscribe(interfaces.EventDocumentDeleted, func(ctx context.Context, event interfaces.Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventDocumentCreated}); err != nil {
		t.Fatalf("PublishSync failed: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("Handler for another type was called %d times", got)
	}
}

func TestSubscribeCancelStopsDelivery(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	defer svc.Close()

	var calls int32
	cancel, err := svc.Subscribe(interfaces.EventDocumentRenamed, func(ctx context.Context, event interfaces.Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventDocumentRenamed}); err != nil {
		t.Fatalf("PublishSync failed: %v", err)
	}

	cancel()

	if err := svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventDocumentRenamed}); err != nil {
		t.Fatalf("PublishSync failed: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 call after cancel, got %d", got)
	}
}

func TestPublishSyncReportsHandlerErrors(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	defer svc.Close()

	if _, err := svc.Subscribe(interfaces.EventSettingsChanged, func(ctx context.Context, event interfaces.Event) error {
		return errors.New("handler broke")
	}); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventSettingsChanged}); err == nil {
		t.Error("Expected PublishSync to surface handler error")
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	defer svc.Close()

	if _, err := svc.Subscribe(interfaces.EventDocumentCreated, nil); err == nil {
		t.Error("Expected error for nil handler")
	}
}

func TestAsyncPublishEventuallyDelivers(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	defer svc.Close()

	done := make(chan struct{})
	if _, err := svc.Subscribe(interfaces.EventDocumentCreated, func(ctx context.Context, event interfaces.Event) error {
		close(done)
		return nil
	}); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := svc.Publish(context.Background(), interfaces.Event{Type: interfaces.EventDocumentCreated}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Async handler never ran")
	}
}
