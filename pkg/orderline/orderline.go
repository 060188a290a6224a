// Package orderline turns a transcribed food order utterance into a priced
// order line matched against a restaurant menu.
package orderline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/cognicore/orderline/pkg/orderline/assemble"
	"github.com/cognicore/orderline/pkg/orderline/index"
	"github.com/cognicore/orderline/pkg/orderline/internalerr"
	"github.com/cognicore/orderline/pkg/orderline/match"
	"github.com/cognicore/orderline/pkg/orderline/menu"
	"github.com/cognicore/orderline/pkg/orderline/normalize"
	"github.com/cognicore/orderline/pkg/orderline/store"
)

// Engine is the order parsing facade
type Engine struct {
	cache  index.Cache
	norm   *normalize.Normalizer
	items  *match.ItemMatcher
	mods   *match.ModifierMatcher
	store  store.Store
	logger *slog.Logger
}

// Options configures an Engine. Zero fields get defaults.
type Options struct {
	Cache      index.Cache
	Normalizer *normalize.Normalizer
	Params     match.Params
	Store      store.Store // optional, needed by the *ByKey methods
	Logger     *slog.Logger
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	cache := opts.Cache
	if cache == nil {
		// NewLRUCache only fails for non-positive sizes.
		lru, _ := index.NewLRUCache(index.DefaultCacheSize)
		cache = lru
	}
	norm := opts.Normalizer
	if norm == nil {
		norm = normalize.NewDefault()
	}
	params := opts.Params
	if params == (match.Params{}) {
		params = match.DefaultParams()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		cache:  cache,
		norm:   norm,
		items:  match.NewItemMatcher(params),
		mods:   match.NewModifierMatcher(params),
		store:  opts.Store,
		logger: logger,
	}
}

// Close releases the menu store, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// ParseOrder matches utterance against m. The result depends only on the
// menu snapshot and the utterance; failures are reported in the result.
func (e *Engine) ParseOrder(m *menu.Menu, utterance string) assemble.ParseResult {
	tokens := e.norm.Normalize(utterance)
	if len(tokens) == 0 {
		return assemble.EmptyUtterance()
	}
	ix, err := e.Index(m)
	if err != nil {
		return e.unavailable(menuKey(m), tokens, err)
	}
	return e.parse(ix, tokens)
}

// ParseOrderByKey resolves the restaurant's menu through the store and
// parses utterance against it. A cached index built from the store is used
// without a store read. A missing menu is an IndexUnavailable result;
// store failures are returned as errors.
func (e *Engine) ParseOrderByKey(ctx context.Context, key, utterance string) (assemble.ParseResult, error) {
	tokens := e.norm.Normalize(utterance)
	if len(tokens) == 0 {
		return assemble.EmptyUtterance(), nil
	}
	if key != "" {
		if ix, ok := e.cache.Get(key); ok && ix.Stored {
			e.logger.Debug("index cache hit", "key", key, "index", ix.ID)
			return e.parse(ix, tokens), nil
		}
	}
	if e.store == nil {
		return assemble.ParseResult{}, fmt.Errorf("parse order for %q: %w: no menu store configured", key, internalerr.ErrStoreUnavailable)
	}

	m, err := e.store.GetMenu(ctx, key)
	if errors.Is(err, internalerr.ErrNotFound) {
		e.logger.Warn("no menu for restaurant", "key", key)
		return assemble.IndexUnavailable(tokens), nil
	}
	if err != nil {
		return assemble.ParseResult{}, fmt.Errorf("parse order for %q: %w", key, err)
	}
	if err := m.Validate(); err != nil {
		return e.unavailable(key, tokens, err), nil
	}

	ix := index.Build(m)
	ix.Stored = true
	e.logger.Debug("built menu index", "key", key, "version", m.Version, "items", ix.Len(), "index", ix.ID, "stored", true)
	e.cache.Set(key, ix)
	return e.parse(ix, tokens), nil
}

// unavailable reports a menu that cannot be indexed.
func (e *Engine) unavailable(key string, tokens []string, err error) assemble.ParseResult {
	if errors.Is(err, internalerr.ErrIndexUnavailable) {
		e.logger.Warn("menu index unavailable", "key", key, "err", err)
		return assemble.IndexUnavailable(tokens)
	}
	e.logger.Warn("menu rejected", "key", key, "err", err)
	return assemble.InvalidMenu(tokens, err)
}

func (e *Engine) parse(ix *index.Index, tokens []string) assemble.ParseResult {
	im := e.items.Match(ix, tokens)
	if !im.Found {
		return assemble.NoMatch(tokens, im)
	}
	mm := e.mods.Match(im.Remaining(tokens), im.Item)
	return assemble.Success(tokens, im, mm)
}

// Index returns the search index for the snapshot m. A cached index is
// reused only when it was built from identical content. A fresh build is
// cached under m.Key unless that key holds an index built from the menu
// store, which only the store path replaces. Menus without a key are
// indexed but never cached.
func (e *Engine) Index(m *menu.Menu) (*index.Index, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	var cached *index.Index
	if m.Key != "" {
		if ix, ok := e.cache.Get(m.Key); ok {
			if ix.Fingerprint == m.Fingerprint() {
				return ix, nil
			}
			cached = ix
		}
	}

	ix := index.Build(m)
	e.logger.Debug("built menu index", "key", m.Key, "version", m.Version, "items", ix.Len(), "index", ix.ID)
	if m.Key != "" && (cached == nil || !cached.Stored) {
		e.cache.Set(m.Key, ix)
	}
	return ix, nil
}

// InvalidateIndex drops the cached index for key, or every cached index
// when key is empty. The next parse for an affected restaurant rebuilds.
func (e *Engine) InvalidateIndex(key string) {
	if key == "" {
		e.cache.InvalidateAll()
		e.logger.Info("invalidated all menu indexes")
		return
	}
	e.cache.Invalidate(key)
	e.logger.Info("invalidated menu index", "key", key)
}

// UpdateMenu validates and stores m, then invalidates its cached index.
func (e *Engine) UpdateMenu(ctx context.Context, m *menu.Menu) error {
	if e.store == nil {
		return fmt.Errorf("update menu: %w: no menu store configured", internalerr.ErrStoreUnavailable)
	}
	if m == nil || m.Key == "" {
		return fmt.Errorf("update menu: %w: missing restaurant key", internalerr.ErrInvalidInput)
	}
	if err := m.Validate(); err != nil {
		if errors.Is(err, internalerr.ErrIndexUnavailable) {
			return fmt.Errorf("update menu %q: %w: menu has no items", m.Key, internalerr.ErrInvalidMenu)
		}
		return fmt.Errorf("update menu %q: %w", m.Key, err)
	}
	if err := e.store.PutMenu(ctx, m); err != nil {
		return fmt.Errorf("update menu %q: %w", m.Key, err)
	}
	e.InvalidateIndex(m.Key)
	return nil
}

// Menu returns the stored menu for key.
func (e *Engine) Menu(ctx context.Context, key string) (*menu.Menu, error) {
	if e.store == nil {
		return nil, fmt.Errorf("get menu: %w: no menu store configured", internalerr.ErrStoreUnavailable)
	}
	return e.store.GetMenu(ctx, key)
}

func menuKey(m *menu.Menu) string {
	if m == nil {
		return ""
	}
	return m.Key
}
