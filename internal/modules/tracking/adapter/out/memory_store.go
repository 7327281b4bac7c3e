package out

import (
	"context"
	"sync"

	trackingout "scormtrack/internal/modules/tracking/port/out"
	apperrors "scormtrack/internal/platform/errors"
)

// MemoryStore is a process-local tier. It backs the tab tier everywhere and
// the origin tier when no shared backend is configured.
type MemoryStore struct {
	mu          sync.Mutex
	values      map[string]string
	unavailable bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

var _ trackingout.KeyValueStore = (*MemoryStore)(nil)

// SetUnavailable makes every call fail, as storage blocked by privacy
// settings would.
func (s *MemoryStore) SetUnavailable(unavailable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = unavailable
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return "", false, apperrors.ErrStorageUnavailable
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return apperrors.ErrStorageUnavailable
	}
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return apperrors.ErrStorageUnavailable
	}
	delete(s.values, key)
	return nil
}

// Clear drops every value, as closing a tab drops tab storage.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string]string{}
}
