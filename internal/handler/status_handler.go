package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"janus/internal/assets"
	"janus/internal/classifier"
)

// StatusHandler reports service metadata and non-fatal warnings.
type StatusHandler struct {
	logo     *assets.Image
	warnings []string
}

// NewStatusHandler creates a status handler. A nil logo means the asset
// failed to load; assetErr is then reported as a warning.
func NewStatusHandler(logo *assets.Image, assetErr error) *StatusHandler {
	h := &StatusHandler{logo: logo}
	if assetErr != nil {
		h.warnings = append(h.warnings, assetErr.Error())
	}
	return h
}

// StatusResponse represents the status payload.
type StatusResponse struct {
	Name     string   `json:"name"`
	Emotions []string `json:"emotions"`
	Logo     string   `json:"logo,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Status godoc
// @Summary Service status, branding and warnings
// @Tags status
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /status [get]
func (h *StatusHandler) Status(c echo.Context) error {
	resp := StatusResponse{
		Name:     "Janus",
		Warnings: h.warnings,
	}
	for _, e := range classifier.Emotions {
		resp.Emotions = append(resp.Emotions, string(e))
	}
	if h.logo != nil {
		resp.Logo = h.logo.DataURI()
	}
	return c.JSON(http.StatusOK, resp)
}
