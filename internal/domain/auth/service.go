package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"snapbook/internal/domain"
	"snapbook/internal/pkg/jwt"
	"snapbook/internal/pkg/session"
)

type Service struct {
	users    UserRepository
	sessions SessionStore
	tokens   *jwt.Service
	log      logrus.FieldLogger
}

func NewService(users UserRepository, sessions SessionStore, tokens *jwt.Service, log logrus.FieldLogger) *Service {
	return &Service{users: users, sessions: sessions, tokens: tokens, log: log}
}

type SignInResult struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *domain.User `json:"user"`
}

// SignIn checks the password and opens a server-side session bound to the
// returned token.
func (s *Service) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := CheckPassword(password, u.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	sess := session.Session{ID: uuid.NewString(), UserID: u.ID, Role: string(u.Role)}
	if err := s.sessions.Save(ctx, sess, s.tokens.TTL()); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	token, err := s.tokens.GenerateSessionToken(u.ID, sess.Role, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("signed in")
	return &SignInResult{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(s.tokens.TTL()).UTC(),
		User:        u,
	}, nil
}

// SignOut drops the session so its token stops working.
func (s *Service) SignOut(ctx context.Context, sess session.Session) error {
	if sess.ID == "" {
		return ErrUnauthorized
	}
	return s.sessions.Delete(ctx, sess.ID)
}

// Authenticate resolves a bearer token to its live session.
func (s *Service) Authenticate(ctx context.Context, token string) (session.Session, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return session.Session{}, ErrUnauthorized
	}
	if claims.SessionID == "" {
		return session.Session{}, ErrUnauthorized
	}
	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return session.Session{}, err
	}
	if sess.UserID != claims.UserID {
		return session.Session{}, ErrUnauthorized
	}
	return sess, nil
}

func (s *Service) Me(ctx context.Context, sess session.Session) (*domain.User, error) {
	return s.users.GetByID(ctx, sess.UserID)
}
