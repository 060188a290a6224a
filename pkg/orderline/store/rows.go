package store

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cognicore/orderline/pkg/orderline/internalerr"
	"github.com/cognicore/orderline/pkg/orderline/menu"
)

// Assembler rebuilds a menu tree from flat relational rows. Rows must be
// fed parents first, each level in position order.
type Assembler struct {
	m      *menu.Menu
	cats   map[int64]int
	items  map[int64][2]int
	groups map[int64][3]int
}

// NewAssembler starts a menu with the given header.
func NewAssembler(key, version string) *Assembler {
	return &Assembler{
		m:      &menu.Menu{Key: key, Version: version, Categories: []menu.Category{}},
		cats:   make(map[int64]int),
		items:  make(map[int64][2]int),
		groups: make(map[int64][3]int),
	}
}

// Category adds a category row.
func (a *Assembler) Category(id int64, name string) {
	a.cats[id] = len(a.m.Categories)
	a.m.Categories = append(a.m.Categories, menu.Category{Name: name})
}

// Item adds an item row under categoryID.
func (a *Assembler) Item(id, categoryID int64, name, price, description string) error {
	ci, ok := a.cats[categoryID]
	if !ok {
		return fmt.Errorf("%w: item %q references unknown category %d", internalerr.ErrInvalidMenu, name, categoryID)
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return fmt.Errorf("%w: item %q price %q: %v", internalerr.ErrInvalidMenu, name, price, err)
	}
	cat := &a.m.Categories[ci]
	a.items[id] = [2]int{ci, len(cat.Items)}
	cat.Items = append(cat.Items, menu.Item{Name: name, BasePrice: p, Description: description})
	return nil
}

// Group adds a modifier group row under itemID. g.Options is ignored.
func (a *Assembler) Group(id, itemID int64, g menu.ModifierGroup) error {
	loc, ok := a.items[itemID]
	if !ok {
		return fmt.Errorf("%w: group %q references unknown item %d", internalerr.ErrInvalidMenu, g.Name, itemID)
	}
	it := &a.m.Categories[loc[0]].Items[loc[1]]
	g.Options = nil
	a.groups[id] = [3]int{loc[0], loc[1], len(it.ModifierGroups)}
	it.ModifierGroups = append(it.ModifierGroups, g)
	return nil
}

// Option adds a modifier option row under groupID.
func (a *Assembler) Option(groupID int64, name, price string, isDefault bool) error {
	loc, ok := a.groups[groupID]
	if !ok {
		return fmt.Errorf("%w: option %q references unknown group %d", internalerr.ErrInvalidMenu, name, groupID)
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return fmt.Errorf("%w: option %q price %q: %v", internalerr.ErrInvalidMenu, name, price, err)
	}
	g := &a.m.Categories[loc[0]].Items[loc[1]].ModifierGroups[loc[2]]
	g.Options = append(g.Options, menu.ModifierOption{Name: name, PriceDelta: p, IsDefault: isDefault})
	return nil
}

// Menu returns the assembled menu.
func (a *Assembler) Menu() *menu.Menu {
	return a.m
}
