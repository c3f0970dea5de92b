package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/ryanekas417-dev/botenak2/pkg/mediagate"
)

// Backend is an in-memory implementation of the mediagate.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates a new in-memory storage backend
func New() mediagate.BlobStore {
	return &Backend{
		objects: make(map[string][]byte),
	}
}

// Upload stores content directly in memory
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[objectKey] = data

	return nil
}

// Download retrieves content directly from memory
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, errors.New("object not found")
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes content from memory
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return errors.New("object not found")
	}
	delete(b.objects, objectKey)

	return nil
}

// GetDownloadURL returns a URL for downloading content
// In-memory implementation doesn't serve URLs
func (b *Backend) GetDownloadURL(ctx context.Context, objectKey string) (string, error) {
	return "", errors.New("direct download required for memory backend")
}
