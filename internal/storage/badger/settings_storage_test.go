package badger

import (
	"context"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/common"
	"github.com/ternarybob/scandex/internal/interfaces"
	"github.com/ternarybob/scandex/internal/models"
)

func setupTestStorage(t *testing.T) (interfaces.SettingsStorage, func()) {
	t.Helper()
	logger := arbor.NewLogger()

	db, err := NewBadgerDB(logger, &common.BadgerConfig{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to open badger store: %v", err)
	}

	return NewSettingsStorage(db, logger), func() { db.Close() }
}

func TestLoadReturnsDefaultsWhenEmpty(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	settings, err := storage.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	defaults := models.DefaultAppSettings()
	if settings.BiometricLockEnabled != defaults.BiometricLockEnabled ||
		settings.ScanCount != defaults.ScanCount ||
		settings.ThemeMode != defaults.ThemeMode {
		t.Errorf("Expected defaults, got %+v", settings)
	}
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	want := &models.AppSettings{
		BiometricLockEnabled: true,
		ScanCount:            7,
		LastReviewRequest:    time.Now().UTC().Truncate(time.Second),
		ThemeMode:            models.ThemeModeDark,
	}
	if err := storage.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := storage.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.BiometricLockEnabled != want.BiometricLockEnabled ||
		got.ScanCount != want.ScanCount ||
		got.ThemeMode != want.ThemeMode ||
		!got.LastReviewRequest.Equal(want.LastReviewRequest) {
		t.Errorf("Roundtrip mismatch: got %+v, want %+v", got, want)
	}
}

func TestSaveOverwrites(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first := models.DefaultAppSettings()
	first.ScanCount = 1
	if err := storage.Save(ctx, &first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := first
	second.ScanCount = 2
	if err := storage.Save(ctx, &second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := storage.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.ScanCount != 2 {
		t.Errorf("Expected scan count 2, got %d", got.ScanCount)
	}
}
