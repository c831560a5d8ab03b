package store

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/io"
)

// MemoryStore keeps boards in process memory. Documents are copied on the
// way in and out, so callers never share state with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	boards map[string]*io.Board
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{boards: make(map[string]*io.Board)}
}

func (s *MemoryStore) Name() string { return BackendMemory }

func (s *MemoryStore) Load(ctx context.Context, id string) (*io.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boards[id]
	if !ok {
		return nil, notFound(id)
	}
	return b.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, id string, b *io.Board) error {
	if err := errors.ValidateBoardID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[id] = b.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.boards, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.boards))
	for id := range s.boards {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
