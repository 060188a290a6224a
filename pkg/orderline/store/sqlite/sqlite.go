package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/orderline/pkg/orderline/internalerr"
	"github.com/cognicore/orderline/pkg/orderline/menu"
	"github.com/cognicore/orderline/pkg/orderline/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// dsn sets per-connection pragmas so every pooled connection enforces
// cascading deletes.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS restaurants (
	key TEXT PRIMARY KEY,
	version TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	restaurant_key TEXT NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	FOREIGN KEY(restaurant_key) REFERENCES restaurants(key) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	category_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	price TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	FOREIGN KEY(category_id) REFERENCES categories(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS modifier_groups (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	item_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	required INTEGER NOT NULL DEFAULT 0,
	min_selections INTEGER NOT NULL DEFAULT 0,
	max_selections INTEGER NOT NULL DEFAULT 0,
	multi_select INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY(item_id) REFERENCES items(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS modifier_options (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	group_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	price_delta TEXT NOT NULL,
	is_default INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY(group_id) REFERENCES modifier_groups(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_categories_restaurant ON categories(restaurant_key, position);
CREATE INDEX IF NOT EXISTS idx_items_category ON items(category_id, position);
CREATE INDEX IF NOT EXISTS idx_groups_item ON modifier_groups(item_id, position);
CREATE INDEX IF NOT EXISTS idx_options_group ON modifier_options(group_id, position);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// GetMenu loads the full category/item/modifier tree for key.
func (s *sqliteStore) GetMenu(ctx context.Context, key string) (*menu.Menu, error) {
	var version string
	err := s.db.QueryRowContext(ctx, `SELECT version FROM restaurants WHERE key = ?`, key).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("menu %q: %w", key, internalerr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("menu %q: %w", key, err)
	}

	a := store.NewAssembler(key, version)

	catRows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM categories WHERE restaurant_key = ? ORDER BY position`, key)
	if err != nil {
		return nil, err
	}
	defer catRows.Close()
	for catRows.Next() {
		var id int64
		var name string
		if err := catRows.Scan(&id, &name); err != nil {
			return nil, err
		}
		a.Category(id, name)
	}
	if err := catRows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.category_id, i.name, i.price, i.description
		FROM items i JOIN categories c ON c.id = i.category_id
		WHERE c.restaurant_key = ?
		ORDER BY c.position, i.position`, key)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var id, catID int64
		var name, price, desc string
		if err := itemRows.Scan(&id, &catID, &name, &price, &desc); err != nil {
			return nil, err
		}
		if err := a.Item(id, catID, name, price, desc); err != nil {
			return nil, err
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	groupRows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.item_id, g.name, g.required, g.min_selections, g.max_selections, g.multi_select
		FROM modifier_groups g
		JOIN items i ON i.id = g.item_id
		JOIN categories c ON c.id = i.category_id
		WHERE c.restaurant_key = ?
		ORDER BY c.position, i.position, g.position`, key)
	if err != nil {
		return nil, err
	}
	defer groupRows.Close()
	for groupRows.Next() {
		var id, itemID int64
		var g menu.ModifierGroup
		if err := groupRows.Scan(&id, &itemID, &g.Name, &g.Required, &g.MinSelections, &g.MaxSelections, &g.MultiSelect); err != nil {
			return nil, err
		}
		if err := a.Group(id, itemID, g); err != nil {
			return nil, err
		}
	}
	if err := groupRows.Err(); err != nil {
		return nil, err
	}

	optRows, err := s.db.QueryContext(ctx, `
		SELECT o.group_id, o.name, o.price_delta, o.is_default
		FROM modifier_options o
		JOIN modifier_groups g ON g.id = o.group_id
		JOIN items i ON i.id = g.item_id
		JOIN categories c ON c.id = i.category_id
		WHERE c.restaurant_key = ?
		ORDER BY c.position, i.position, g.position, o.position`, key)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()
	for optRows.Next() {
		var groupID int64
		var name, price string
		var isDefault bool
		if err := optRows.Scan(&groupID, &name, &price, &isDefault); err != nil {
			return nil, err
		}
		if err := a.Option(groupID, name, price, isDefault); err != nil {
			return nil, err
		}
	}
	if err := optRows.Err(); err != nil {
		return nil, err
	}

	return a.Menu(), nil
}

// PutMenu replaces the whole menu tree for m.Key in one transaction.
func (s *sqliteStore) PutMenu(ctx context.Context, m *menu.Menu) error {
	if m == nil || m.Key == "" {
		return fmt.Errorf("put menu: %w: missing restaurant key", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM restaurants WHERE key = ?`, m.Key); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO restaurants (key, version, updated_at) VALUES (?, ?, ?)`,
		m.Key, m.Version, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	for ci, cat := range m.Categories {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO categories (restaurant_key, position, name) VALUES (?, ?, ?)`,
			m.Key, ci, cat.Name)
		if err != nil {
			return err
		}
		catID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for ii, it := range cat.Items {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO items (category_id, position, name, price, description) VALUES (?, ?, ?, ?, ?)`,
				catID, ii, it.Name, it.BasePrice.String(), it.Description)
			if err != nil {
				return err
			}
			itemID, err := res.LastInsertId()
			if err != nil {
				return err
			}
			for gi, g := range it.ModifierGroups {
				res, err := tx.ExecContext(ctx, `
					INSERT INTO modifier_groups (item_id, position, name, required, min_selections, max_selections, multi_select)
					VALUES (?, ?, ?, ?, ?, ?, ?)`,
					itemID, gi, g.Name, g.Required, g.MinSelections, g.MaxSelections, g.MultiSelect)
				if err != nil {
					return err
				}
				groupID, err := res.LastInsertId()
				if err != nil {
					return err
				}
				for oi, o := range g.Options {
					if _, err := tx.ExecContext(ctx, `
						INSERT INTO modifier_options (group_id, position, name, price_delta, is_default)
						VALUES (?, ?, ?, ?, ?)`,
						groupID, oi, o.Name, o.PriceDelta.String(), o.IsDefault); err != nil {
						return err
					}
				}
			}
		}
	}

	return tx.Commit()
}

// DeleteMenu removes the menu for key; child rows cascade.
func (s *sqliteStore) DeleteMenu(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM restaurants WHERE key = ?`, key)
	return err
}

// ListKeys returns every stored restaurant key, sorted.
func (s *sqliteStore) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM restaurants ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
