package service

import (
	"context"
	"sync"
	"time"
)

// MissCacheStore remembers lookups that came back not-found so hot
// paths can skip the database for repeat misses. Entries are scoped to
// a namespace so a write can invalidate every cached miss for an
// entity kind at once.
type MissCacheStore interface {
	Contains(ctx context.Context, namespace, key string) (bool, error)
	Remember(ctx context.Context, namespace, key string, ttl time.Duration) error
	Invalidate(ctx context.Context, namespace string) error
}

type NoopMissCacheStore struct{}

func NewNoopMissCacheStore() *NoopMissCacheStore { return &NoopMissCacheStore{} }

func (*NoopMissCacheStore) Contains(context.Context, string, string) (bool, error) {
	return false, nil
}

func (*NoopMissCacheStore) Remember(context.Context, string, string, time.Duration) error {
	return nil
}

func (*NoopMissCacheStore) Invalidate(context.Context, string) error { return nil }

type InMemoryMissCacheStore struct {
	mu      sync.RWMutex
	entries map[string]map[string]time.Time
}

func NewInMemoryMissCacheStore() *InMemoryMissCacheStore {
	return &InMemoryMissCacheStore{entries: make(map[string]map[string]time.Time)}
}

func (s *InMemoryMissCacheStore) Contains(_ context.Context, namespace, key string) (bool, error) {
	now := time.Now().UTC()
	s.mu.RLock()
	ns, ok := s.entries[namespace]
	if !ok {
		s.mu.RUnlock()
		return false, nil
	}
	expiresAt, ok := ns[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if now.After(expiresAt) {
		s.mu.Lock()
		if ns, ok := s.entries[namespace]; ok {
			delete(ns, key)
			if len(ns) == 0 {
				delete(s.entries, namespace)
			}
		}
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (s *InMemoryMissCacheStore) Remember(_ context.Context, namespace, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.entries[namespace]
	if !ok {
		ns = make(map[string]time.Time)
		s.entries[namespace] = ns
	}
	ns[key] = time.Now().UTC().Add(ttl)
	return nil
}

func (s *InMemoryMissCacheStore) Invalidate(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, namespace)
	return nil
}
