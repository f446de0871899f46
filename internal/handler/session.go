package handler

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"janus/internal/auth"
	"janus/internal/errors"
	"janus/internal/model"
	"janus/internal/service"
)

const (
	// SessionCookie carries the session token for browser clients.
	SessionCookie = "janus_session"
	// TokenContextKey is where echo-jwt leaves the parsed token.
	TokenContextKey   = "user"
	sessionContextKey = "session"
)

// RequireSession resolves the session named by the validated token and
// stores it on the context. It must run after the echo-jwt middleware.
func RequireSession(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(TokenContextKey).(*jwt.Token)
			if !ok {
				return errorJSON(errors.ErrSessionNotFound)
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok || claims.SessionID() == "" {
				return errorJSON(errors.ErrSessionNotFound)
			}

			session, err := authService.Session(c.Request().Context(), claims.SessionID())
			if err != nil {
				return errorJSON(err)
			}
			c.Set(sessionContextKey, session)
			return next(c)
		}
	}
}

// currentSession returns the session stored by RequireSession.
func currentSession(c echo.Context) (*model.Session, error) {
	session, ok := c.Get(sessionContextKey).(*model.Session)
	if !ok || session == nil {
		return nil, errors.ErrSessionNotFound
	}
	return session, nil
}

// presentedToken returns the raw session token from the Authorization header
// or the session cookie, if any.
func presentedToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func sessionCookie(c echo.Context, session *model.Session, token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	}
}

func clearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// errorJSON converts a domain error into an echo HTTP error with the
// standard ErrorResponse body.
func errorJSON(err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
