package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/orderline/pkg/orderline/internalerr"
	"github.com/cognicore/orderline/pkg/orderline/menu"
)

// Store is an in-memory implementation of store.Store for tests and
// single-process deployments.
type Store struct {
	mu    sync.RWMutex
	menus map[string]*menu.Menu
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{menus: make(map[string]*menu.Menu)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// GetMenu returns a copy of the menu stored under key.
func (s *Store) GetMenu(ctx context.Context, key string) (*menu.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.menus[key]
	if !ok {
		return nil, fmt.Errorf("menu %q: %w", key, internalerr.ErrNotFound)
	}
	return m.Clone(), nil
}

// PutMenu stores a copy of m, replacing any previous menu for its key.
func (s *Store) PutMenu(ctx context.Context, m *menu.Menu) error {
	if m == nil || m.Key == "" {
		return fmt.Errorf("put menu: %w: missing restaurant key", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.menus[m.Key] = m.Clone()
	return nil
}

// DeleteMenu removes the menu stored under key.
func (s *Store) DeleteMenu(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.menus, key)
	return nil
}

// ListKeys returns every stored restaurant key, sorted.
func (s *Store) ListKeys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.menus))
	for k := range s.menus {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
