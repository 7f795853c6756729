package assets

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used in tests and local development.
// Uploaded data is held in a map keyed by the generated URL.
type MemoryStore struct {
	// BaseURL prefixes every generated URL. Defaults to "memory://assets".
	BaseURL string

	mu      sync.Mutex
	objects map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		BaseURL: "memory://assets",
		objects: make(map[string]string),
	}
}

// UploadImage stores data under a fresh URL of the form
// {base}/{bookID}/{pageID}/{uuid}.
func (s *MemoryStore) UploadImage(ctx context.Context, bookID, pageID string, data string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/%s/%s/%s", s.BaseURL, bookID, pageID, uuid.NewString())
	s.mu.Lock()
	s.objects[url] = data
	s.mu.Unlock()
	return url, nil
}

// Delete drops the given URLs. Unknown URLs are ignored.
func (s *MemoryStore) Delete(ctx context.Context, urls []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range urls {
		delete(s.objects, u)
	}
	return nil
}

// Get returns the stored data for url. Test helper.
func (s *MemoryStore) Get(url string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[url]
	return data, ok
}

// Len reports the number of stored objects. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
