package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quizapi/internal/domain"
	"quizapi/internal/repository"
	"quizapi/internal/security"

	"gorm.io/datatypes"
)

// AuthService handles registration, login, token refresh, logout, and
// password changes.
type AuthService struct {
	users  repository.UserRepository
	tokens *TokenService
	guard  LoginGuard
	logger *slog.Logger
}

func NewAuthService(users repository.UserRepository, tokens *TokenService, guard LoginGuard, logger *slog.Logger) *AuthService {
	if guard == nil {
		guard = NewNoopLoginGuard()
	}
	return &AuthService{users: users, tokens: tokens, guard: guard, logger: logger}
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)

	if _, err := s.users.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user := &domain.User{
		Email:          email,
		Name:           strings.TrimSpace(in.Name),
		PasswordHash:   hash,
		IsActive:       true,
		RegisteredAt:   time.Now().UTC(),
		AttemptHistory: datatypes.NewJSONType([]domain.AttemptSummary{}),
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

// Login authenticates the credentials and issues a token pair. The
// same ErrInvalidCredentials covers both unknown email and wrong
// password so responses do not reveal which part failed. clientKey
// scopes the failed-login throttle, typically email plus remote
// address.
func (s *AuthService) Login(ctx context.Context, email, password, clientKey string) (*LoginResult, error) {
	email = normalizeEmail(email)

	allowed, err := s.guard.Allow(ctx, clientKey)
	if err != nil {
		// Fail open: a broken throttle store must not lock everyone out.
		s.logger.WarnContext(ctx, "login guard unavailable", "error", err)
		allowed = true
	}
	if !allowed {
		return nil, ErrTooManyLoginAttempts
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.recordLoginFailure(ctx, clientKey)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !security.VerifyPassword(password, user.PasswordHash) {
		s.recordLoginFailure(ctx, clientKey)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := s.users.UpdateLastLogin(user.ID, time.Now().UTC()); err != nil {
		s.logger.WarnContext(ctx, "failed to record last login", "user_id", user.ID, "error", err)
	}

	access, refresh, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.guard.Reset(ctx, clientKey); err != nil {
		s.logger.WarnContext(ctx, "login guard reset failed", "error", err)
	}

	return &LoginResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself stays valid until it expires or is revoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Verify(refreshToken, security.TokenKindRefresh)
	if err != nil {
		return "", err
	}
	userID, err := claims.UserID()
	if err != nil {
		return "", ErrInvalidToken
	}
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("refresh: %w", err)
	}
	if !user.IsActive {
		return "", ErrAccountDisabled
	}
	return s.tokens.IssueAccess(user)
}

// Logout revokes whichever tokens were presented. It never fails:
// undecodable tokens are revoked by raw string, and revoking an
// already revoked token is a no-op.
func (s *AuthService) Logout(accessToken, refreshToken string) {
	s.tokens.Revoke(accessToken)
	s.tokens.Revoke(refreshToken)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !security.VerifyPassword(current, user.PasswordHash) {
		return ErrPasswordMismatch
	}
	hash, err := security.HashPassword(next)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.users.UpdatePassword(userID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (s *AuthService) recordLoginFailure(ctx context.Context, clientKey string) {
	if err := s.guard.RecordFailure(ctx, clientKey); err != nil {
		s.logger.WarnContext(ctx, "login guard record failed", "error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
