package blob

import (
	"bytes"
	"context"
	"io"
	"sync"

	apperrors "github.com/civiclens/councilscribe/pkg/errors"

	"github.com/civiclens/councilscribe/internal/domain/records"
)

type memoryObject struct {
	data     []byte
	mimeType string
}

// MemoryStorage keeps blobs in process memory for tests/dev.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

// NewMemoryStorage constructs the in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]memoryObject)}
}

func (s *MemoryStorage) Put(_ context.Context, key string, data []byte, mimeType string) (records.StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[key] = memoryObject{data: stored, mimeType: mimeType}
	return records.StoredObject{Key: key, Size: int64(len(data)), MimeType: mimeType}, nil
}

func (s *MemoryStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "object not found: "+key, nil)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

var _ records.BlobStorage = (*MemoryStorage)(nil)
