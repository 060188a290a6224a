package store

import (
	"context"

	"github.com/cognicore/orderline/pkg/orderline/menu"
)

// Store persists restaurant menu snapshots keyed by restaurant.
type Store interface {
	Close() error

	// GetMenu returns the menu for key, or an error wrapping
	// internalerr.ErrNotFound.
	GetMenu(ctx context.Context, key string) (*menu.Menu, error)
	// PutMenu replaces the stored menu for m.Key.
	PutMenu(ctx context.Context, m *menu.Menu) error
	// DeleteMenu removes the menu for key. Deleting a missing key is not an
	// error.
	DeleteMenu(ctx context.Context, key string) error
	ListKeys(ctx context.Context) ([]string, error)
}
