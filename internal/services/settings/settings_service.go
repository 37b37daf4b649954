package settings

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/interfaces"
	"github.com/ternarybob/scandex/internal/models"
)

// Service implements interfaces.SettingsService over the settings store. A
// mutex serializes the load-modify-save cycle so concurrent mutators never
// lose updates.
type Service struct {
	storage interfaces.SettingsStorage
	events  interfaces.EventService
	logger  arbor.ILogger
	mu      sync.Mutex
}

// Compile-time assertion
var _ interfaces.SettingsService = (*Service)(nil)

// NewService creates a new settings service
func NewService(storage interfaces.SettingsStorage, events interfaces.EventService, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		events:  events,
		logger:  logger,
	}
}

// Get returns the current preference snapshot.
func (s *Service) Get(ctx context.Context) (models.AppSettings, error) {
	settings, err := s.storage.Load(ctx)
	if err != nil {
		return models.AppSettings{}, err
	}
	return *settings, nil
}

// Watch delivers the current snapshot, then a fresh one after every settings
// change, until ctx is cancelled.
func (s *Service) Watch(ctx context.Context) (<-chan models.AppSettings, error) {
	out := make(chan models.AppSettings, 1)

	initial, err := s.Get(ctx)
	if err != nil {
		close(out)
		return nil, err
	}
	out <- initial

	notify := make(chan struct{}, 1)
	cancel, err := s.events.Subscribe(interfaces.EventSettingsChanged, func(ctx context.Context, event interfaces.Event) error {
		select {
		case notify <- struct{}{}:
		default:
		}
		return nil
	})
	if err != nil {
		close(out)
		return nil, err
	}

	go func() {
		defer cancel()
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-notify:
				snapshot, err := s.Get(ctx)
				if err != nil {
					s.logger.Warn().Err(err).Msg("Settings re-load failed")
					continue
				}
				select {
				case <-ctx.Done():
					return
				case out <- snapshot:
				default:
					select {
					case <-out:
					default:
					}
					out <- snapshot
				}
			}
		}
	}()

	return out, nil
}

// SetBiometricLockEnabled toggles the app lock preference.
func (s *Service) SetBiometricLockEnabled(ctx context.Context, enabled bool) error {
	return s.update(ctx, "biometric_lock", func(settings *models.AppSettings) {
		settings.BiometricLockEnabled = enabled
	})
}

// SetThemeMode selects the theme preference.
func (s *Service) SetThemeMode(ctx context.Context, mode models.ThemeMode) error {
	return s.update(ctx, "theme_mode", func(settings *models.AppSettings) {
		settings.ThemeMode = mode
	})
}

// IncrementScanCount bumps the lifetime successful-scan counter.
func (s *Service) IncrementScanCount(ctx context.Context) error {
	return s.update(ctx, "scan_count", func(settings *models.AppSettings) {
		settings.ScanCount++
	})
}

// UpdateReviewRequestTimestamp records that a review prompt was shown now.
func (s *Service) UpdateReviewRequestTimestamp(ctx context.Context) error {
	return s.update(ctx, "last_review_request", func(settings *models.AppSettings) {
		settings.LastReviewRequest = time.Now().UTC()
	})
}

// update runs a serialized load-modify-save cycle and publishes the change.
func (s *Service) update(ctx context.Context, field string, mutate func(*models.AppSettings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.storage.Load(ctx)
	if err != nil {
		return err
	}

	mutate(settings)

	if err := s.storage.Save(ctx, settings); err != nil {
		return err
	}

	s.logger.Debug().Str("field", field).Msg("Settings updated")

	s.events.Publish(ctx, interfaces.Event{
		Type:    interfaces.EventSettingsChanged,
		Payload: map[string]interface{}{"field": field},
	})
	return nil
}
