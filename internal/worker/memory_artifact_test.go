package worker

import (
	"context"
	"sync"

	"github.com/furnicam/furnicam/internal/artifact"
	"github.com/furnicam/furnicam/internal/camerr"
)

// memoryArtifactStore is a fake ArtifactStore over an in-process map,
// standing in for the S3-compatible endpoint *artifact.Store wraps —
// exercised here the way jobs.MemoryRepository stands in for Postgres.
type memoryArtifactStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func newMemoryArtifactStore() *memoryArtifactStore {
	return &memoryArtifactStore{data: map[string][]byte{}}
}

func (s *memoryArtifactStore) PutArtifact(_ context.Context, kind artifact.Kind, jobID string, data []byte) (string, error) {
	key := artifact.Key(kind, jobID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return key, nil
}

func (s *memoryArtifactStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, camerr.InvalidInput("artifact %s does not exist", key)
	}
	return append([]byte(nil), data...), nil
}
