package session

import (
	"context"
	"sync"
)

// Store is key-value storage scoped to one session.
type Store interface {
	// Get returns "" when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context, keys ...string) error
}

// Provider opens the Store of a session id.
type Provider interface {
	Open(sessionID string) Store
}

// MemoryProvider keeps sessions in process memory.
type MemoryProvider struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{data: make(map[string]map[string]string)}
}

// Open returns the store of sessionID.
func (p *MemoryProvider) Open(sessionID string) Store {
	return &memoryStore{provider: p, sid: sessionID}
}

type memoryStore struct {
	provider *MemoryProvider
	sid      string
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.provider.mu.RLock()
	defer s.provider.mu.RUnlock()
	return s.provider.data[s.sid][key], nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()
	entry, ok := s.provider.data[s.sid]
	if !ok {
		entry = make(map[string]string, 2)
		s.provider.data[s.sid] = entry
	}
	entry[key] = value
	return nil
}

func (s *memoryStore) Clear(_ context.Context, keys ...string) error {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()
	entry := s.provider.data[s.sid]
	for _, key := range keys {
		delete(entry, key)
	}
	if len(entry) == 0 {
		delete(s.provider.data, s.sid)
	}
	return nil
}
