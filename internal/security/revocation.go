package security

import "sync"

// RevocationList tracks revoked token identifiers for the lifetime of
// the process. It is intentionally memory-only: tokens self-expire
// within bounded TTLs, so a restart losing the list is an accepted
// trade, not a bug. Tokens that cannot be decoded far enough to yield
// a jti are tracked by their raw string instead.
//
// The list is shared by every in-flight request and must be safe under
// concurrent reads and writes.
type RevocationList struct {
	mu   sync.RWMutex
	jtis map[string]struct{}
	raw  map[string]struct{}
}

func NewRevocationList() *RevocationList {
	return &RevocationList{
		jtis: make(map[string]struct{}),
		raw:  make(map[string]struct{}),
	}
}

func (l *RevocationList) RevokeJTI(jti string) {
	if jti == "" {
		return
	}
	l.mu.Lock()
	l.jtis[jti] = struct{}{}
	l.mu.Unlock()
}

func (l *RevocationList) RevokeRaw(token string) {
	if token == "" {
		return
	}
	l.mu.Lock()
	l.raw[token] = struct{}{}
	l.mu.Unlock()
}

func (l *RevocationList) ContainsJTI(jti string) bool {
	l.mu.RLock()
	_, ok := l.jtis[jti]
	l.mu.RUnlock()
	return ok
}

func (l *RevocationList) ContainsRaw(token string) bool {
	l.mu.RLock()
	_, ok := l.raw[token]
	l.mu.RUnlock()
	return ok
}
