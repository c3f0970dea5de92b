package memory

import (
	"context"
	"sync"

	"github.com/ryanekas417-dev/botenak2/pkg/mediagate"
)

// Repository implements mediagate.Repository using in-memory storage
type Repository struct {
	mu       sync.RWMutex
	records  map[string]*mediagate.MediaRecord
	settings map[string]string
}

// New creates a new in-memory repository
func New() mediagate.Repository {
	return &Repository{
		records:  make(map[string]*mediagate.MediaRecord),
		settings: make(map[string]string),
	}
}

// Record operations

func (r *Repository) PutRecord(ctx context.Context, record *mediagate.MediaRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[record.Code]; exists {
		return mediagate.ErrDuplicateCode
	}

	// Create a copy to avoid external modifications
	recordCopy := *record
	r.records[record.Code] = &recordCopy

	return nil
}

func (r *Repository) GetRecord(ctx context.Context, code string) (*mediagate.MediaRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[code]
	if !exists {
		return nil, mediagate.ErrRecordNotFound
	}

	// Return a copy to prevent external modifications
	recordCopy := *record
	return &recordCopy, nil
}

// Settings operations

func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, exists := r.settings[key]
	if !exists {
		return "", mediagate.ErrSettingNotFound
	}
	return value, nil
}

func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings[key] = value
	return nil
}
