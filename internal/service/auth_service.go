package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"janus/internal/auth"
	"janus/internal/errors"
	"janus/internal/model"
	"janus/internal/repository"
)

// AuthService handles login, logout and session lookup.
type AuthService interface {
	Login(ctx context.Context, username, password string) (token string, session *model.Session, err error)
	Logout(ctx context.Context, sessionID string) error
	// LogoutToken ends the session behind a raw token, if it is still valid.
	LogoutToken(ctx context.Context, token string) error
	Session(ctx context.Context, sessionID string) (*model.Session, error)
	UpdateSession(ctx context.Context, session *model.Session) error
}

type authService struct {
	accountRepo repository.AccountRepository
	jwtService  *auth.JWTService
	sessions    auth.SessionStore
	now         func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(accountRepo repository.AccountRepository, jwtService *auth.JWTService, sessions auth.SessionStore) AuthService {
	return &authService{
		accountRepo: accountRepo,
		jwtService:  jwtService,
		sessions:    sessions,
		now:         time.Now,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnPasswordCheck spends the same bcrypt work as a real comparison so
// unknown usernames cannot be told apart by response time.
func burnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = auth.HashPassword("janus-unknown-user")
	})
	auth.CheckPassword(dummyHash, password)
}

// Login verifies credentials and opens a session holding the account's
// remaining quota.
func (s *authService) Login(ctx context.Context, username, password string) (string, *model.Session, error) {
	account, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			burnPasswordCheck(password)
			return "", nil, errors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find account: %w", err)
	}

	if !auth.CheckPassword(account.PasswordHash, password) {
		return "", nil, errors.ErrInvalidCredentials
	}
	if account.Exhausted() {
		return "", nil, errors.ErrQuotaExhausted
	}
	if !account.Active {
		return "", nil, errors.ErrInvalidCredentials
	}

	now := s.now()
	session := &model.Session{
		ID:               uuid.NewString(),
		Username:         account.Username,
		RemainingQueries: account.UsesAvailable,
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.jwtService.Expiry()),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", nil, fmt.Errorf("store session: %w", err)
	}

	token, err := s.jwtService.GenerateSessionToken(session.ID, session.Username, session.ExpiresAt)
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID)
		return "", nil, fmt.Errorf("generate session token: %w", err)
	}
	return token, session, nil
}

// Logout deletes the session, returning the visitor to anonymous.
func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// LogoutToken ignores tokens that no longer validate; there is nothing to end.
func (s *authService) LogoutToken(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil
	}
	return s.Logout(ctx, claims.SessionID())
}

// Session resolves a live session.
func (s *authService) Session(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil || session.Expired(s.now()) {
		return nil, errors.ErrSessionNotFound
	}
	return session, nil
}

// UpdateSession persists changes to a session's cached quota.
func (s *authService) UpdateSession(ctx context.Context, session *model.Session) error {
	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}
