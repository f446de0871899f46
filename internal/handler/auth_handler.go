package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"janus/internal/errors"
	"janus/internal/model"
	"janus/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=64"`
	Password string `json:"password" form:"password" validate:"required"`
}

// AuthResponse represents a successful login.
type AuthResponse struct {
	Token            string             `json:"token"`
	Username         string             `json:"username"`
	RemainingQueries int                `json:"remaining_queries"`
	State            model.SessionState `json:"state"`
	Message          string             `json:"message"`
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	Username         string             `json:"username"`
	RemainingQueries int                `json:"remaining_queries"`
	State            model.SessionState `json:"state"`
}

// Login godoc
// @Summary Log in with a demo account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
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

	ctx := c.Request().Context()

	// Visiting login while signed in ends the previous session.
	if previous := presentedToken(c); previous != "" {
		if err := h.authService.LogoutToken(ctx, previous); err != nil {
			h.logger.WarnContext(ctx, "revoke previous session", "error", err)
		}
	}

	token, session, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if err != errors.ErrInvalidCredentials && err != errors.ErrQuotaExhausted {
			h.logger.ErrorContext(ctx, "login failed", "error", err)
		}
		return errorJSON(err)
	}

	c.SetCookie(sessionCookie(c, session, token))
	return c.JSON(http.StatusOK, AuthResponse{
		Token:            token,
		Username:         session.Username,
		RemainingQueries: session.RemainingQueries,
		State:            session.State(),
		Message:          "Welcome, " + session.Username + "!",
	})
}

// Logout godoc
// @Summary Log out and end the session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return errorJSON(err)
	}

	if err := h.authService.Logout(c.Request().Context(), session.ID); err != nil {
		h.logger.ErrorContext(c.Request().Context(), "logout failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to logout",
			Code:  "LOGOUT_FAILED",
		})
	}

	c.SetCookie(clearedCookie())
	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// Me godoc
// @Summary Show the current session and remaining quota
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SessionResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	session, err := currentSession(c)
	if err != nil {
		return errorJSON(err)
	}
	return c.JSON(http.StatusOK, SessionResponse{
		Username:         session.Username,
		RemainingQueries: session.RemainingQueries,
		State:            session.State(),
	})
}
