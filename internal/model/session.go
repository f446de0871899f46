package model

import "time"

// SessionState is the position of a visitor in the login/quota flow.
type SessionState string

const (
	SessionAnonymous     SessionState = "anonymous"
	SessionAuthenticated SessionState = "authenticated"
	SessionExhausted     SessionState = "exhausted"
)

// Session is the per-visitor state kept between requests.
type Session struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	RemainingQueries int       `json:"remaining_queries"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// State derives the flow state. A nil session is anonymous.
func (s *Session) State() SessionState {
	switch {
	case s == nil || s.Username == "":
		return SessionAnonymous
	case s.RemainingQueries <= 0:
		return SessionExhausted
	default:
		return SessionAuthenticated
	}
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
