package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"janus/internal/classifier"
	"janus/internal/errors"
	"janus/internal/model"
)

// Classifier maps text to one emotion label.
type Classifier interface {
	Classify(ctx context.Context, systemInstructions, text, model string) (classifier.Emotion, error)
}

// ClassificationConfig controls how submissions reach the classifier.
type ClassificationConfig struct {
	SystemMessage string
	ModelID       string
	Timeout       time.Duration
	// RefundOnFailure gives the consumed use back when the classifier fails.
	// Off by default: a use is spent as soon as the text is accepted.
	RefundOnFailure bool
}

// ClassificationResult is the outcome of one accepted submission.
type ClassificationResult struct {
	Emotion          classifier.Emotion `json:"emotion"`
	Label            string             `json:"label"`
	Emoji            string             `json:"emoji"`
	RemainingQueries int                `json:"remaining_queries"`
}

// ClassificationService gates submissions on the session's quota.
type ClassificationService interface {
	Submit(ctx context.Context, sessionID, text string) (*ClassificationResult, error)
}

type classificationService struct {
	authService    AuthService
	accountService AccountService
	classifier     Classifier
	cfg            ClassificationConfig
	logger         *slog.Logger
}

// NewClassificationService creates a new classification service.
func NewClassificationService(
	authService AuthService,
	accountService AccountService,
	emotionClassifier Classifier,
	cfg ClassificationConfig,
	logger *slog.Logger,
) ClassificationService {
	if cfg.SystemMessage == "" {
		cfg.SystemMessage = classifier.SystemMessage
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &classificationService{
		authService:    authService,
		accountService: accountService,
		classifier:     emotionClassifier,
		cfg:            cfg,
		logger:         logger,
	}
}

// Submit spends one use, then classifies text. The use is persisted before
// the classifier is called, so a failed call still costs a use unless
// RefundOnFailure is set.
func (s *classificationService) Submit(ctx context.Context, sessionID, text string) (*ClassificationResult, error) {
	session, err := s.authService.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State() == model.SessionExhausted {
		return nil, errors.ErrQuotaExhausted
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.ErrEmptyText
	}

	account, err := s.accountService.Consume(ctx, session.Username)
	if err != nil {
		switch err {
		case errors.ErrQuotaExhausted:
			session.RemainingQueries = 0
			s.saveSession(ctx, session)
		case errors.ErrAccountSuspended:
			// The cached quota stays as is so a reactivated account resumes.
			s.logger.InfoContext(ctx, "submission from suspended account", "username", session.Username)
		}
		return nil, err
	}
	session.RemainingQueries = account.UsesAvailable
	s.saveSession(ctx, session)

	emotion, err := s.classify(ctx, text)
	if err != nil {
		log := s.logger.With("username", session.Username, "remaining", session.RemainingQueries)
		log.WarnContext(ctx, "classification failed", "error", err)
		if s.cfg.RefundOnFailure {
			if refunded, rerr := s.accountService.Refund(ctx, session.Username); rerr != nil {
				log.ErrorContext(ctx, "quota refund failed", "error", rerr)
			} else {
				session.RemainingQueries = refunded.UsesAvailable
				s.saveSession(ctx, session)
			}
		}
		return nil, fmt.Errorf("%w: %w", errors.ErrClassificationFailure, err)
	}

	return &ClassificationResult{
		Emotion:          emotion,
		Label:            emotion.Title(),
		Emoji:            emotion.Emoji(),
		RemainingQueries: session.RemainingQueries,
	}, nil
}

func (s *classificationService) classify(ctx context.Context, text string) (classifier.Emotion, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	return s.classifier.Classify(ctx, s.cfg.SystemMessage, text, s.cfg.ModelID)
}

// saveSession is best effort; the store already holds the authoritative quota.
func (s *classificationService) saveSession(ctx context.Context, session *model.Session) {
	if err := s.authService.UpdateSession(ctx, session); err != nil {
		s.logger.WarnContext(ctx, "session update failed", "session", session.ID, "error", err)
	}
}
