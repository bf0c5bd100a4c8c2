package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"outagemonitor/internal/models"
)

// ErrNoSnapshot is returned when no page has been cached yet.
var ErrNoSnapshot = errors.New("no cached page snapshot")

// PageStore keeps the single cached copy of the outage page.
type PageStore interface {
	Load(ctx context.Context) (models.Snapshot, error)
	Save(ctx context.Context, snap models.Snapshot) error
}

// FileStore persists the raw page markup to disk.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// NewFileStore creates a file-backed store, ensuring the data directory exists.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the snapshot file location.
func (s *FileStore) Path() string { return s.path }

// Load reads the cached page. The fetch time is the file's modification time.
func (s *FileStore) Load(_ context.Context) (models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Snapshot{}, ErrNoSnapshot
		}
		return models.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	if len(data) == 0 {
		return models.Snapshot{}, ErrNoSnapshot
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("stat snapshot: %w", err)
	}
	return models.Snapshot{Body: string(data), FetchedAt: info.ModTime().UTC()}, nil
}

// Save atomically replaces the cached page.
func (s *FileStore) Save(_ context.Context, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmpPath := fmt.Sprintf("%s.%d.tmp", s.path, time.Now().UnixNano())
	if err := os.WriteFile(tmpPath, []byte(snap.Body), 0o644); err != nil {
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if !snap.FetchedAt.IsZero() {
		_ = os.Chtimes(tmpPath, snap.FetchedAt, snap.FetchedAt)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}
