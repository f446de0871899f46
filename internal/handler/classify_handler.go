package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"janus/internal/errors"
	"janus/internal/service"
)

// ClassifyHandler handles emotion classification endpoints.
type ClassifyHandler struct {
	classificationService service.ClassificationService
	logger                *slog.Logger
}

// NewClassifyHandler creates a new classify handler.
func NewClassifyHandler(classificationService service.ClassificationService, logger *slog.Logger) *ClassifyHandler {
	return &ClassifyHandler{classificationService: classificationService, logger: logger}
}

// ClassifyRequest represents a classification request.
type ClassifyRequest struct {
	Text string `json:"text" form:"text" validate:"required,max=4000"`
}

// Classify godoc
// @Summary Detect the emotion expressed in a text
// @Description Spends one use of the account quota. The use is not returned if classification fails.
// @Tags classify
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ClassifyRequest true "Text in English"
// @Success 200 {object} service.ClassificationResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /classify [post]
func (h *ClassifyHandler) Classify(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return errorJSON(err)
	}

	var req ClassifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	result, err := h.classificationService.Submit(c.Request().Context(), session.ID, req.Text)
	if err != nil {
		return errorJSON(err)
	}

	return c.JSON(http.StatusOK, result)
}
