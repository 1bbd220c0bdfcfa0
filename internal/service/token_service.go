package service

import (
	"errors"
	"time"

	"quizapi/internal/domain"
	"quizapi/internal/security"
)

// TokenService issues, verifies, and revokes session tokens. It owns
// the process-local revocation list; a token is valid iff its signature
// verifies, it has not expired, and neither its jti nor its raw string
// has been revoked.
type TokenService struct {
	jwtMgr     *security.JWTManager
	revoked    *security.RevocationList
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(jwtMgr *security.JWTManager, revoked *security.RevocationList, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		jwtMgr:     jwtMgr,
		revoked:    revoked,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *TokenService) IssueAccess(user *domain.User) (string, error) {
	return s.jwtMgr.SignAccessToken(user.ID, user.Email, user.IsAdmin, s.accessTTL)
}

func (s *TokenService) IssueRefresh(user *domain.User) (string, error) {
	return s.jwtMgr.SignRefreshToken(user.ID, s.refreshTTL)
}

// IssuePair mints the access+refresh pair returned at login.
func (s *TokenService) IssuePair(user *domain.User) (access string, refresh string, err error) {
	access, err = s.IssueAccess(user)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.IssueRefresh(user)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Verify resolves a raw token of the given kind into its claims.
// Expired, revoked, and malformed tokens all fail with ErrInvalidToken;
// only a wrong-kind token gets the distinct ErrInvalidTokenKind.
func (s *TokenService) Verify(raw string, kind security.TokenKind) (*security.Claims, error) {
	if s.revoked.ContainsRaw(raw) {
		return nil, ErrInvalidToken
	}
	claims, err := s.jwtMgr.Parse(raw, kind)
	if err != nil {
		if errors.Is(err, security.ErrTokenKindMismatch) {
			return nil, ErrInvalidTokenKind
		}
		return nil, ErrInvalidToken
	}
	if s.revoked.ContainsJTI(claims.ID) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Revoke never fails: if the token decodes, its jti is revoked; if it
// does not (malformed or already expired), the raw string is revoked
// instead so logout always succeeds. A string-revoked token is only
// matched again by presenting the identical string.
func (s *TokenService) Revoke(raw string) {
	if raw == "" {
		return
	}
	claims, err := s.jwtMgr.ParseAny(raw)
	if err != nil {
		s.revoked.RevokeRaw(raw)
		return
	}
	s.revoked.RevokeJTI(claims.ID)
}

func (s *TokenService) IsRevoked(raw string) bool {
	claims, err := s.jwtMgr.ParseAny(raw)
	if err != nil {
		return s.revoked.ContainsRaw(raw)
	}
	return s.revoked.ContainsJTI(claims.ID) || s.revoked.ContainsRaw(raw)
}
