package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"collect-and-cruise/internal/models"
)

// CartStore persists the guest cart on the local device.
type CartStore interface {
	Load() ([]models.CartItem, error)
	Save(items []models.CartItem) error
	Clear() error
}

// FileCartStore keeps the guest cart as a JSON array in a single file.
type FileCartStore struct {
	Path string
	mu   sync.Mutex
}

func NewFileCartStore(path string) *FileCartStore {
	return &FileCartStore{Path: path}
}

// Load returns an empty cart when the file does not exist.
func (s *FileCartStore) Load() ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, err
	}
	var items []models.CartItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("decode guest cart %s: %w", s.Path, err)
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

func (s *FileCartStore) Save(items []models.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if items == nil {
		items = []models.CartItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

func (s *FileCartStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

type MemoryCartStore struct {
	mu    sync.Mutex
	items []models.CartItem
}

func (s *MemoryCartStore) Load() ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartItem{}, s.items...), nil
}

func (s *MemoryCartStore) Save(items []models.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]models.CartItem{}, items...)
	return nil
}

func (s *MemoryCartStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}
