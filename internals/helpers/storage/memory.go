package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"
	"time"
)

// MemoryStore: driver lokal/dev; objek hanya disimpan di memori proses.
type MemoryStore struct {
	BaseURL string

	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{BaseURL: baseURL, objects: map[string][]byte{}}
}

func (m *MemoryStore) Upload(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error) {
	f, err := prepareUpload(fh)
	if err != nil {
		return "", err
	}
	key := buildObjectKey("", folder, f.ext, time.Now())
	m.mu.Lock()
	m.objects[key] = f.body
	m.mu.Unlock()
	return m.BaseURL + "/" + key, nil
}

func (m *MemoryStore) DeleteByURL(ctx context.Context, publicURL string) error {
	key, err := keyFromURL(publicURL, "")
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return fmt.Errorf("object %s not found", key)
	}
	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) Has(publicURL string) bool {
	key, err := keyFromURL(publicURL, "")
	if err != nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}
