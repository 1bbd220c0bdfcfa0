package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// LoginGuard throttles repeated failed logins per client key. Allow
// reports whether another attempt may proceed; RecordFailure counts a
// rejected attempt; Reset clears the counter after a successful login.
type LoginGuard interface {
	Allow(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// NoopLoginGuard never throttles. Used when Redis is not configured.
type NoopLoginGuard struct{}

func NewNoopLoginGuard() *NoopLoginGuard { return &NoopLoginGuard{} }

func (*NoopLoginGuard) Allow(context.Context, string) (bool, error) { return true, nil }

func (*NoopLoginGuard) RecordFailure(context.Context, string) error { return nil }

func (*NoopLoginGuard) Reset(context.Context, string) error { return nil }

// guardKey hashes the client key so raw emails and addresses never
// appear in store keys.
func guardKey(key string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(key))))
	return hex.EncodeToString(sum[:])
}
