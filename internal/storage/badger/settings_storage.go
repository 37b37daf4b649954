package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/interfaces"
	"github.com/ternarybob/scandex/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

const settingsKey = "app_settings"

// storedSettings is the persisted shape of the preference snapshot.
type storedSettings struct {
	BiometricLockEnabled bool
	ScanCount            int
	LastReviewRequest    time.Time
	ThemeMode            string
	UpdatedAt            time.Time
}

// SettingsStorage implements interfaces.SettingsStorage on badgerhold.
type SettingsStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSettingsStorage creates a new settings storage instance
func NewSettingsStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SettingsStorage {
	return &SettingsStorage{
		db:     db,
		logger: logger,
	}
}

// Load returns the persisted snapshot, or defaults when nothing has been saved yet.
func (s *SettingsStorage) Load(ctx context.Context) (*models.AppSettings, error) {
	var stored storedSettings
	err := s.db.Store().Get(settingsKey, &stored)
	if errors.Is(err, badgerhold.ErrNotFound) {
		defaults := models.DefaultAppSettings()
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	return &models.AppSettings{
		BiometricLockEnabled: stored.BiometricLockEnabled,
		ScanCount:            stored.ScanCount,
		LastReviewRequest:    stored.LastReviewRequest,
		ThemeMode:            models.ThemeMode(stored.ThemeMode),
	}, nil
}

// Save persists the snapshot.
func (s *SettingsStorage) Save(ctx context.Context, settings *models.AppSettings) error {
	stored := storedSettings{
		BiometricLockEnabled: settings.BiometricLockEnabled,
		ScanCount:            settings.ScanCount,
		LastReviewRequest:    settings.LastReviewRequest,
		ThemeMode:            string(settings.ThemeMode),
		UpdatedAt:            time.Now(),
	}

	if err := s.db.Store().Upsert(settingsKey, &stored); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Debug().Int("scan_count", settings.ScanCount).Msg("Settings saved")
	return nil
}
