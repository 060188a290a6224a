// Package htmlmenu reads a menu snapshot from an HTML page annotated with
// data attributes:
//
//	<section data-menu-category="Sandwiches">
//	  <div data-menu-item="Turkey Club" data-price="10.50"
//	       data-description="Roast turkey, bacon, lettuce">
//	    <ul data-modifier-group="Bread Choice" data-required="true" data-min="1" data-max="1">
//	      <li data-modifier-option="Sourdough" data-price-delta="0.50"></li>
//	    </ul>
//	  </div>
//	</section>
//
// A name attribute left empty takes the element's text. A data-description
// attribute on a descendant of an item supplies the description the same
// way. data-menu-version anywhere sets the menu version. Headings may also
// precede their contents as siblings instead of wrapping them.
package htmlmenu

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"github.com/cognicore/orderline/pkg/orderline/internalerr"
	"github.com/cognicore/orderline/pkg/orderline/menu"
)

// DefaultCategory holds items declared outside any category element.
const DefaultCategory = "Menu"

type parser struct {
	m     *menu.Menu
	cat   int // -1 before the first category
	item  int // -1 before the category's first item
	group int // -1 before the item's first group
}

// Parse builds a menu for key from the annotated HTML in r.
func Parse(r io.Reader, key string) (*menu.Menu, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse menu html: %w", err)
	}
	p := &parser{m: &menu.Menu{Key: key}, cat: -1, item: -1, group: -1}
	if err := p.walk(doc); err != nil {
		return nil, err
	}
	return p.m, nil
}

// walk visits elements in document order. A category stays current until
// the next one starts, and likewise an item or group, so both nested and
// flat markup work.
func (p *parser) walk(n *html.Node) error {
	if n.Type == html.ElementNode {
		if err := p.element(n); err != nil {
			return err
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := p.walk(c); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) element(n *html.Node) error {
	if v, ok := attr(n, "data-menu-version"); ok {
		p.m.Version = v
	}

	if name, ok := attr(n, "data-menu-category"); ok {
		p.m.Categories = append(p.m.Categories, menu.Category{Name: nameOrText(name, n)})
		p.cat, p.item, p.group = len(p.m.Categories)-1, -1, -1
		return nil
	}

	if name, ok := attr(n, "data-menu-item"); ok {
		return p.addItem(n, nameOrText(name, n))
	}

	if name, ok := attr(n, "data-modifier-group"); ok {
		return p.addGroup(n, nameOrText(name, n))
	}

	if name, ok := attr(n, "data-modifier-option"); ok {
		return p.addOption(n, nameOrText(name, n))
	}

	if desc, ok := attr(n, "data-description"); ok && p.item >= 0 {
		it := &p.m.Categories[p.cat].Items[p.item]
		if it.Description == "" {
			it.Description = nameOrText(desc, n)
		}
	}
	return nil
}

func (p *parser) addItem(n *html.Node, name string) error {
	price, err := decimalAttr(n, "data-price")
	if err != nil {
		return fmt.Errorf("item %q: %w", name, err)
	}
	if p.cat < 0 {
		p.m.Categories = append(p.m.Categories, menu.Category{Name: DefaultCategory})
		p.cat = len(p.m.Categories) - 1
	}
	desc, _ := attr(n, "data-description")
	cat := &p.m.Categories[p.cat]
	cat.Items = append(cat.Items, menu.Item{Name: name, BasePrice: price, Description: desc})
	p.item, p.group = len(cat.Items)-1, -1
	return nil
}

func (p *parser) addGroup(n *html.Node, name string) error {
	if p.item < 0 {
		return fmt.Errorf("%w: modifier group %q outside an item", internalerr.ErrInvalidMenu, name)
	}
	g := menu.ModifierGroup{
		Name:        name,
		Required:    boolAttr(n, "data-required"),
		MultiSelect: boolAttr(n, "data-multi"),
	}
	var err error
	if g.MinSelections, err = intAttr(n, "data-min"); err != nil {
		return fmt.Errorf("group %q: %w", name, err)
	}
	if g.MaxSelections, err = intAttr(n, "data-max"); err != nil {
		return fmt.Errorf("group %q: %w", name, err)
	}
	if g.MaxSelections == 0 && !g.MultiSelect {
		g.MaxSelections = 1
	}
	if g.Required && g.MinSelections == 0 {
		g.MinSelections = 1
	}

	it := &p.m.Categories[p.cat].Items[p.item]
	it.ModifierGroups = append(it.ModifierGroups, g)
	p.group = len(it.ModifierGroups) - 1
	return nil
}

func (p *parser) addOption(n *html.Node, name string) error {
	if p.group < 0 {
		return fmt.Errorf("%w: modifier option %q outside a group", internalerr.ErrInvalidMenu, name)
	}
	delta, err := decimalAttr(n, "data-price-delta")
	if err != nil {
		return fmt.Errorf("option %q: %w", name, err)
	}
	g := &p.m.Categories[p.cat].Items[p.item].ModifierGroups[p.group]
	g.Options = append(g.Options, menu.ModifierOption{
		Name:       name,
		PriceDelta: delta,
		IsDefault:  boolAttr(n, "data-default"),
	})
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val), true
		}
	}
	return "", false
}

func nameOrText(v string, n *html.Node) string {
	if v != "" {
		return v
	}
	return text(n)
}

// text returns the element's own text, skipping nested annotated elements.
func text(n *html.Node) string {
	var buf strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && annotated(c) {
				continue
			}
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func annotated(n *html.Node) bool {
	for _, a := range n.Attr {
		if strings.HasPrefix(a.Key, "data-menu-") || strings.HasPrefix(a.Key, "data-modifier-") || a.Key == "data-description" {
			return true
		}
	}
	return false
}

func decimalAttr(n *html.Node, key string) (decimal.Decimal, error) {
	v, ok := attr(n, key)
	if !ok || v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(v, "$"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s=%q", internalerr.ErrInvalidMenu, key, v)
	}
	return d, nil
}

func intAttr(n *html.Node, key string) (int, error) {
	v, ok := attr(n, key)
	if !ok || v == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", internalerr.ErrInvalidMenu, key, v)
	}
	return i, nil
}

// boolAttr treats a bare attribute as true.
func boolAttr(n *html.Node, key string) bool {
	v, ok := attr(n, key)
	if !ok {
		return false
	}
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
