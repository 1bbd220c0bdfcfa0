package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// ErrTokenKindMismatch is returned when a structurally valid token of
// the wrong kind is presented, e.g. a refresh token where an access
// token is expected.
var ErrTokenKindMismatch = errors.New("unexpected token kind")

// Claims is the fixed wire shape of a session token. The "type" claim
// name is what existing clients already decode.
type Claims struct {
	TokenKind TokenKind `json:"type"`
	Email     string    `json:"email,omitempty"`
	IsAdmin   bool      `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject: %w", err)
	}
	return uint(id), nil
}

// JWTManager signs and verifies HS256 session tokens. Access and
// refresh tokens share a single secret; the kind claim keeps them
// apart.
type JWTManager struct {
	issuer string
	secret []byte
}

func NewJWTManager(issuer, secret string) *JWTManager {
	return &JWTManager{issuer: issuer, secret: []byte(secret)}
}

func (m *JWTManager) SignAccessToken(userID uint, email string, isAdmin bool, ttl time.Duration) (string, error) {
	return m.sign(userID, TokenKindAccess, email, isAdmin, ttl)
}

func (m *JWTManager) SignRefreshToken(userID uint, ttl time.Duration) (string, error) {
	return m.sign(userID, TokenKindRefresh, "", false, ttl)
}

func (m *JWTManager) sign(userID uint, kind TokenKind, email string, isAdmin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenKind: kind,
		Email:     email,
		IsAdmin:   isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   fmt.Sprintf("%d", userID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies signature and expiry and requires the given kind.
func (m *JWTManager) Parse(raw string, kind TokenKind) (*Claims, error) {
	claims, err := m.ParseAny(raw)
	if err != nil {
		return nil, err
	}
	if claims.TokenKind != kind {
		return nil, fmt.Errorf("%w: %s", ErrTokenKindMismatch, claims.TokenKind)
	}
	return claims, nil
}

// ParseAny verifies signature and expiry without constraining the kind.
func (m *JWTManager) ParseAny(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing algorithm")
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
