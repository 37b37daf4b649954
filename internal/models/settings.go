package models

import "time"

// ThemeMode selects the shell's colour scheme preference.
type ThemeMode string

const (
	ThemeModeSystem ThemeMode = "system"
	ThemeModeLight  ThemeMode = "light"
	ThemeModeDark   ThemeMode = "dark"
)

// AppSettings is the subscribable preference snapshot owned by the
// application shell. The core only touches ScanCount.
type AppSettings struct {
	BiometricLockEnabled bool      `json:"biometric_lock_enabled"`
	ScanCount            int       `json:"scan_count"`
	LastReviewRequest    time.Time `json:"last_review_request"`
	ThemeMode            ThemeMode `json:"theme_mode"`
}

// DefaultAppSettings returns the settings used before any mutation is persisted.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		BiometricLockEnabled: false,
		ScanCount:            0,
		ThemeMode:            ThemeModeSystem,
	}
}
