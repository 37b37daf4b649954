package scheduler

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/common"
)

// Service owns the background cron jobs. Currently a single job: sweeping
// expired PDF artifacts out of the export cache.
type Service struct {
	cron     *cron.Cron
	cacheDir string
	maxAge   time.Duration
	schedule string
	logger   arbor.ILogger
}

// NewService creates the scheduler from the export configuration.
func NewService(config *common.ExportConfig, logger arbor.ILogger) *Service {
	return &Service{
		cron:     cron.New(cron.WithSeconds()),
		cacheDir: config.CacheDir,
		maxAge:   config.MaxArtifactAgeDuration(),
		schedule: config.SweepSchedule,
		logger:   logger,
	}
}

// Start registers the sweep job and starts the cron loop. An empty schedule
// disables the sweeper.
func (s *Service) Start() error {
	if s.schedule == "" {
		s.logger.Info().Msg("Export cache sweep disabled (no schedule)")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", s.schedule).
		Str("max_age", s.maxAge.String()).
		Msg("Export cache sweep scheduled")
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// sweep removes PDF artifacts older than the configured age. Artifacts are
// transient; anything swept can be re-exported on demand.
func (s *Service) sweep() {
	entries, err := os.ReadDir(s.cacheDir)
	if err != nil {
		s.logger.Warn().Err(err).Str("dir", s.cacheDir).Msg("Export cache sweep failed to read dir")
		return
	}

	cutoff := time.Now().Add(-s.maxAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.cacheDir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Failed to sweep artifact")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("Export cache swept")
	}
}
