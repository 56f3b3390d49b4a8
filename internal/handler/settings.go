package handler

import (
	"log/slog"
	"net/http"

	"familytree/internal/domain/models"
	"familytree/internal/domain/services"
	"familytree/internal/httputil"
)

// SettingsHandler handles application settings
type SettingsHandler struct {
	settingsService services.SettingsService
	logger          *slog.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService services.SettingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		logger:          logger,
	}
}

// GetSettings returns {settings, kinds}
// GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	view, err := h.settingsService.GetSettings(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// putSettingResponse keeps the {ok, settings} shape clients already read
type putSettingResponse struct {
	OK bool `json:"ok"`
	*models.SettingsView
}

// PutSetting upserts one key
// PUT /api/settings
func (h *SettingsHandler) PutSetting(w http.ResponseWriter, r *http.Request) {
	var req models.PutSettingRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	view, err := h.settingsService.PutSetting(r.Context(), &req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, putSettingResponse{OK: true, SettingsView: view})
}
