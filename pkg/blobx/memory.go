package blobx

import (
	"context"
	"sync"
)

// MemoryStore keeps objects in a map. Used in tests and when no blob
// backend is configured for local runs.
type MemoryStore struct {
	BaseURL string

	mu      sync.Mutex
	objects map[string]Object
	puts    int
}

// Object is a stored blob.
type Object struct {
	ContentType string
	Data        []byte
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{BaseURL: baseURL, objects: make(map[string]Object)}
}

func (s *MemoryStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	s.objects[key] = Object{ContentType: contentType, Data: append([]byte(nil), data...)}
	return joinURL(s.BaseURL, key), nil
}

// Puts is the number of objects written so far.
func (s *MemoryStore) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

// Get returns a stored object.
func (s *MemoryStore) Get(key string) (Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[key]
	return o, ok
}
