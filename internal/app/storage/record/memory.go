package record

import (
	"context"
	"sync"

	"koenote-pipeline/internal/app/model"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu         sync.RWMutex
	recordings map[string]model.FinishedRecording
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recordings: make(map[string]model.FinishedRecording)}
}

func (s *MemoryStore) Put(ctx context.Context, rec model.FinishedRecording) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordings[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (model.FinishedRecording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recordings[id]
	if !ok {
		return model.FinishedRecording{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recordings, id)
	return nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]model.FinishedRecording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.FinishedRecording
	for _, rec := range s.recordings {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
