// Package menu holds the strongly-typed menu snapshot the matcher works on.
//
// Upstream representations (POS payloads, database rows, HTML pages) are
// converted into this tree by adapters before matching; nothing in the
// matching path sees loosely-typed menu data.
package menu

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"

	"github.com/cognicore/orderline/pkg/orderline/internalerr"
)

// Menu is a resolved, customer-visible menu for one restaurant.
type Menu struct {
	Key        string     `json:"key" yaml:"key"`
	Version    string     `json:"version,omitempty" yaml:"version,omitempty"`
	Categories []Category `json:"categories" yaml:"categories"`
}

// Category groups items. Only its name survives flattening.
type Category struct {
	Name  string `json:"name" yaml:"name"`
	Items []Item `json:"items" yaml:"items"`
}

// Item is a single orderable menu entry.
type Item struct {
	Name           string          `json:"name" yaml:"name"`
	BasePrice      decimal.Decimal `json:"price" yaml:"price"`
	Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
	Category       string          `json:"category,omitempty" yaml:"category,omitempty"`
	ModifierGroups []ModifierGroup `json:"modifierGroups,omitempty" yaml:"modifier_groups,omitempty"`
}

// ModifierGroup is a named set of related choices for an item
// (bread type, toppings, doneness).
type ModifierGroup struct {
	Name          string           `json:"name" yaml:"name"`
	Required      bool             `json:"required" yaml:"required"`
	MinSelections int              `json:"minSelections" yaml:"min_selections"`
	MaxSelections int              `json:"maxSelections" yaml:"max_selections"`
	MultiSelect   bool             `json:"multiSelect" yaml:"multi_select"`
	Options       []ModifierOption `json:"options" yaml:"options"`
}

// EffectiveMax is the number of options a caller may select from the group.
// Single-select groups allow one regardless of the stored maximum.
func (g ModifierGroup) EffectiveMax() int {
	if !g.MultiSelect {
		return 1
	}
	return g.MaxSelections
}

// ModifierOption is one choice inside a group. IsDefault is informational;
// defaults are never applied implicitly.
type ModifierOption struct {
	Name       string          `json:"name" yaml:"name"`
	PriceDelta decimal.Decimal `json:"price" yaml:"price"`
	IsDefault  bool            `json:"isDefault" yaml:"is_default"`
}

// Items flattens the category tree into declaration order. Each returned
// item carries the name of the category it was declared under.
func (m *Menu) Items() []Item {
	if m == nil {
		return nil
	}
	var items []Item
	for _, cat := range m.Categories {
		for _, it := range cat.Items {
			it.Category = cat.Name
			items = append(items, it)
		}
	}
	return items
}

// Empty reports whether the menu has no orderable items.
func (m *Menu) Empty() bool {
	if m == nil {
		return true
	}
	for _, cat := range m.Categories {
		if len(cat.Items) > 0 {
			return false
		}
	}
	return true
}

// Validate checks the structural invariants the matcher relies on.
func (m *Menu) Validate() error {
	if m.Empty() {
		return internalerr.ErrIndexUnavailable
	}
	for _, cat := range m.Categories {
		for _, it := range cat.Items {
			if it.Name == "" {
				return fmt.Errorf("%w: item without name in category %q", internalerr.ErrInvalidMenu, cat.Name)
			}
			for _, g := range it.ModifierGroups {
				if g.MinSelections < 0 {
					return fmt.Errorf("%w: group %q on %q has negative min selections", internalerr.ErrInvalidMenu, g.Name, it.Name)
				}
				// Zero on a multi-select group means no stated limit.
				if limit := g.EffectiveMax(); limit > 0 && limit < g.MinSelections {
					return fmt.Errorf("%w: group %q on %q allows %d selections but requires %d", internalerr.ErrInvalidMenu, g.Name, it.Name, limit, g.MinSelections)
				}
			}
		}
	}
	return nil
}

// Fingerprint hashes the menu's content. Menus with the same key and
// version but different items have different fingerprints.
func (m *Menu) Fingerprint() string {
	if m == nil {
		return ""
	}
	d := xxhash.New()
	// Menu values always encode.
	_ = json.NewEncoder(d).Encode(m)
	return strconv.FormatUint(d.Sum64(), 16)
}

// Clone returns a deep copy of the menu.
func (m *Menu) Clone() *Menu {
	if m == nil {
		return nil
	}
	out := &Menu{Key: m.Key, Version: m.Version}
	out.Categories = make([]Category, len(m.Categories))
	for i, cat := range m.Categories {
		c := Category{Name: cat.Name, Items: make([]Item, len(cat.Items))}
		for j, it := range cat.Items {
			c.Items[j] = it.clone()
		}
		out.Categories[i] = c
	}
	return out
}

func (it Item) clone() Item {
	groups := make([]ModifierGroup, len(it.ModifierGroups))
	for i, g := range it.ModifierGroups {
		g.Options = append([]ModifierOption(nil), g.Options...)
		groups[i] = g
	}
	it.ModifierGroups = groups
	return it
}
