package settings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/models"
	"github.com/ternarybob/scandex/internal/services/events"
)

// memSettingsStorage keeps the snapshot in memory.
type memSettingsStorage struct {
	mu       sync.Mutex
	settings models.AppSettings
}

func (m *memSettingsStorage) Load(ctx context.Context) (*models.AppSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.settings
	return &s, nil
}

func (m *memSettingsStorage) Save(ctx context.Context, settings *models.AppSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = *settings
	return nil
}

func newTestService() *Service {
	logger := arbor.NewLogger()
	storage := &memSettingsStorage{settings: models.DefaultAppSettings()}
	return NewService(storage, events.NewService(logger), logger)
}

func TestGetReturnsDefaults(t *testing.T) {
	svc := newTestService()

	settings, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if settings.BiometricLockEnabled {
		t.Error("Expected biometric lock disabled by default")
	}
	if settings.ScanCount != 0 {
		t.Errorf("Expected scan count 0, got %d", settings.ScanCount)
	}
	if settings.ThemeMode != models.ThemeModeSystem {
		t.Errorf("Expected system theme, got %q", settings.ThemeMode)
	}
}

func TestMutatorsPersist(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if err := svc.SetBiometricLockEnabled(ctx, true); err != nil {
		t.Fatalf("SetBiometricLockEnabled failed: %v", err)
	}
	if err := svc.SetThemeMode(ctx, models.ThemeModeDark); err != nil {
		t.Fatalf("SetThemeMode failed: %v", err)
	}
	if err := svc.UpdateReviewRequestTimestamp(ctx); err != nil {
		t.Fatalf("UpdateReviewRequestTimestamp failed: %v", err)
	}

	settings, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !settings.BiometricLockEnabled {
		t.Error("Biometric lock not persisted")
	}
	if settings.ThemeMode != models.ThemeModeDark {
		t.Errorf("Theme mode not persisted, got %q", settings.ThemeMode)
	}
	if settings.LastReviewRequest.IsZero() {
		t.Error("Review request timestamp not persisted")
	}
}

func TestIncrementScanCountIsSerialized(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.IncrementScanCount(ctx); err != nil {
				t.Errorf("IncrementScanCount failed: %v", err)
			}
		}()
	}
	wg.Wait()

	settings, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if settings.ScanCount != n {
		t.Errorf("Lost updates: expected %d, got %d", n, settings.ScanCount)
	}
}

func TestWatchDeliversUpdates(t *testing.T) {
	svc := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := svc.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	// Initial snapshot arrives first.
	select {
	case initial := <-ch:
		if initial.ScanCount != 0 {
			t.Errorf("Expected initial scan count 0, got %d", initial.ScanCount)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("No initial snapshot")
	}

	if err := svc.IncrementScanCount(ctx); err != nil {
		t.Fatalf("IncrementScanCount failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snapshot := <-ch:
			if snapshot.ScanCount == 1 {
				return
			}
		case <-deadline:
			t.Fatal("Updated snapshot never delivered")
		}
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	svc := newTestService()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := svc.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	<-ch // initial snapshot

	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			// A buffered snapshot may still drain; the next read must close.
			if _, ok := <-ch; ok {
				t.Error("Channel still open after cancel")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Channel never closed after cancel")
	}
}
