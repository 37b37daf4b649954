package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/interfaces"
	"github.com/ternarybob/scandex/internal/models"
)

type SettingsHandler struct {
	settingsService interfaces.SettingsService
	logger          arbor.ILogger
}

func NewSettingsHandler(settingsService interfaces.SettingsService, logger arbor.ILogger) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		logger:          logger,
	}
}

// GetHandler returns the current settings snapshot.
func (h *SettingsHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load settings")
		WriteError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	WriteJSON(w, http.StatusOK, settings)
}

// UpdateHandler applies the mutations present in the request body. Absent
// fields are left untouched.
func (h *SettingsHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	var req struct {
		BiometricLockEnabled *bool             `json:"biometric_lock_enabled"`
		ThemeMode            *models.ThemeMode `json:"theme_mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()

	if req.BiometricLockEnabled != nil {
		if err := h.settingsService.SetBiometricLockEnabled(ctx, *req.BiometricLockEnabled); err != nil {
			h.logger.Error().Err(err).Msg("Failed to update biometric lock setting")
			WriteError(w, http.StatusInternalServerError, "Failed to update settings")
			return
		}
	}

	if req.ThemeMode != nil {
		switch *req.ThemeMode {
		case models.ThemeModeSystem, models.ThemeModeLight, models.ThemeModeDark:
		default:
			WriteError(w, http.StatusBadRequest, "Invalid theme mode")
			return
		}
		if err := h.settingsService.SetThemeMode(ctx, *req.ThemeMode); err != nil {
			h.logger.Error().Err(err).Msg("Failed to update theme mode")
			WriteError(w, http.StatusInternalServerError, "Failed to update settings")
			return
		}
	}

	settings, err := h.settingsService.Get(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to reload settings")
		WriteError(w, http.StatusInternalServerError, "Failed to reload settings")
		return
	}

	WriteJSON(w, http.StatusOK, settings)
}

// ReviewRequestedHandler records that a store review prompt was shown.
func (h *SettingsHandler) ReviewRequestedHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := h.settingsService.UpdateReviewRequestTimestamp(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Failed to record review request")
		WriteError(w, http.StatusInternalServerError, "Failed to record review request")
		return
	}

	WriteSuccess(w, "Review request recorded")
}
