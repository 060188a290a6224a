package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cognicore/orderline/pkg/orderline/internalerr"
	"github.com/cognicore/orderline/pkg/orderline/menu"
	"github.com/cognicore/orderline/pkg/orderline/store"
)

// postgresStore implements the Store interface on a pgx connection pool
type postgresStore struct {
	db *pgxpool.Pool
}

// Open connects to Postgres, verifies the connection and creates the
// schema if needed.
func Open(ctx context.Context, dsn string) (store.Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dsn: %v", internalerr.ErrInvalidConfig, err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &postgresStore{db: db}, nil
}

// Close closes the pool
func (s *postgresStore) Close() error {
	s.db.Close()
	return nil
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *pgxpool.Pool) error {
	schema := `
CREATE TABLE IF NOT EXISTS restaurants (
	key TEXT PRIMARY KEY,
	version TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS categories (
	id BIGSERIAL PRIMARY KEY,
	restaurant_key TEXT NOT NULL REFERENCES restaurants(key) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
	id BIGSERIAL PRIMARY KEY,
	category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	price TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS modifier_groups (
	id BIGSERIAL PRIMARY KEY,
	item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	required BOOLEAN NOT NULL DEFAULT FALSE,
	min_selections INTEGER NOT NULL DEFAULT 0,
	max_selections INTEGER NOT NULL DEFAULT 0,
	multi_select BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS modifier_options (
	id BIGSERIAL PRIMARY KEY,
	group_id BIGINT NOT NULL REFERENCES modifier_groups(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	price_delta TEXT NOT NULL,
	is_default BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_categories_restaurant ON categories(restaurant_key, position);
CREATE INDEX IF NOT EXISTS idx_items_category ON items(category_id, position);
CREATE INDEX IF NOT EXISTS idx_groups_item ON modifier_groups(item_id, position);
CREATE INDEX IF NOT EXISTS idx_options_group ON modifier_options(group_id, position);
`
	_, err := db.Exec(ctx, schema)
	return err
}

// GetMenu loads the full category/item/modifier tree for key.
func (s *postgresStore) GetMenu(ctx context.Context, key string) (*menu.Menu, error) {
	var version string
	err := s.db.QueryRow(ctx, `SELECT version FROM restaurants WHERE key = $1`, key).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("menu %q: %w", key, internalerr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("menu %q: %w", key, err)
	}

	a := store.NewAssembler(key, version)

	rows, err := s.db.Query(ctx,
		`SELECT id, name FROM categories WHERE restaurant_key = $1 ORDER BY position`, key)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return nil, err
		}
		a.Category(id, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(ctx, `
		SELECT i.id, i.category_id, i.name, i.price, i.description
		FROM items i JOIN categories c ON c.id = i.category_id
		WHERE c.restaurant_key = $1
		ORDER BY c.position, i.position`, key)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id, catID int64
		var name, price, desc string
		if err := rows.Scan(&id, &catID, &name, &price, &desc); err != nil {
			rows.Close()
			return nil, err
		}
		if err := a.Item(id, catID, name, price, desc); err != nil {
			rows.Close()
			return nil, err
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(ctx, `
		SELECT g.id, g.item_id, g.name, g.required, g.min_selections, g.max_selections, g.multi_select
		FROM modifier_groups g
		JOIN items i ON i.id = g.item_id
		JOIN categories c ON c.id = i.category_id
		WHERE c.restaurant_key = $1
		ORDER BY c.position, i.position, g.position`, key)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id, itemID int64
		var g menu.ModifierGroup
		if err := rows.Scan(&id, &itemID, &g.Name, &g.Required, &g.MinSelections, &g.MaxSelections, &g.MultiSelect); err != nil {
			rows.Close()
			return nil, err
		}
		if err := a.Group(id, itemID, g); err != nil {
			rows.Close()
			return nil, err
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(ctx, `
		SELECT o.group_id, o.name, o.price_delta, o.is_default
		FROM modifier_options o
		JOIN modifier_groups g ON g.id = o.group_id
		JOIN items i ON i.id = g.item_id
		JOIN categories c ON c.id = i.category_id
		WHERE c.restaurant_key = $1
		ORDER BY c.position, i.position, g.position, o.position`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var groupID int64
		var name, price string
		var isDefault bool
		if err := rows.Scan(&groupID, &name, &price, &isDefault); err != nil {
			return nil, err
		}
		if err := a.Option(groupID, name, price, isDefault); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return a.Menu(), nil
}

// PutMenu replaces the whole menu tree for m.Key in one transaction.
func (s *postgresStore) PutMenu(ctx context.Context, m *menu.Menu) error {
	if m == nil || m.Key == "" {
		return fmt.Errorf("put menu: %w: missing restaurant key", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM restaurants WHERE key = $1`, m.Key); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO restaurants (key, version, updated_at) VALUES ($1, $2, now())`,
		m.Key, m.Version); err != nil {
		return err
	}

	for ci, cat := range m.Categories {
		var catID int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO categories (restaurant_key, position, name) VALUES ($1, $2, $3) RETURNING id`,
			m.Key, ci, cat.Name).Scan(&catID); err != nil {
			return err
		}
		for ii, it := range cat.Items {
			var itemID int64
			if err := tx.QueryRow(ctx, `
				INSERT INTO items (category_id, position, name, price, description)
				VALUES ($1, $2, $3, $4, $5) RETURNING id`,
				catID, ii, it.Name, it.BasePrice.String(), it.Description).Scan(&itemID); err != nil {
				return err
			}
			for gi, g := range it.ModifierGroups {
				var groupID int64
				if err := tx.QueryRow(ctx, `
					INSERT INTO modifier_groups (item_id, position, name, required, min_selections, max_selections, multi_select)
					VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
					itemID, gi, g.Name, g.Required, g.MinSelections, g.MaxSelections, g.MultiSelect).Scan(&groupID); err != nil {
					return err
				}
				for oi, o := range g.Options {
					if _, err := tx.Exec(ctx, `
						INSERT INTO modifier_options (group_id, position, name, price_delta, is_default)
						VALUES ($1, $2, $3, $4, $5)`,
						groupID, oi, o.Name, o.PriceDelta.String(), o.IsDefault); err != nil {
						return err
					}
				}
			}
		}
	}

	return tx.Commit(ctx)
}

// DeleteMenu removes the menu for key; child rows cascade.
func (s *postgresStore) DeleteMenu(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM restaurants WHERE key = $1`, key)
	return err
}

// ListKeys returns every stored restaurant key, sorted.
func (s *postgresStore) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT key FROM restaurants ORDER BY key`)
	if err != nil {
		return nil, err
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}
