package slot

import (
	"context"
	"sync"
)

// MemoryStorage - слоты в памяти процесса. Используется в тестах и при storage: memory.
type MemoryStorage struct {
	mu    sync.RWMutex
	slots map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		slots: make(map[string]string),
	}
}

func (s *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.slots[key]
	return value, ok, nil
}

func (s *MemoryStorage) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = value
	return nil
}

func (s *MemoryStorage) Ping(context.Context) error {
	return nil
}
