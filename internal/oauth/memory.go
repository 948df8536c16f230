package oauth

import (
	"context"
	"sync"
	"time"
)

// MemoryStateStore keeps states in process memory. It is only suitable for a
// single server instance.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]memoryState
	now    func() time.Time
}

type memoryState struct {
	provider  Provider
	expiresAt time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		states: make(map[string]memoryState),
		now:    time.Now,
	}
}

func (s *MemoryStateStore) Save(_ context.Context, state string, provider Provider, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, v := range s.states {
		if !now.Before(v.expiresAt) {
			delete(s.states, k)
		}
	}
	s.states[state] = memoryState{provider: provider, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStateStore) Consume(_ context.Context, state string) (Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[state]
	if !ok {
		return "", ErrInvalidState
	}
	delete(s.states, state)

	if !s.now().Before(st.expiresAt) {
		return "", ErrInvalidState
	}
	return st.provider, nil
}
