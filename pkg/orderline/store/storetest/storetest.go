// Package storetest holds conformance checks shared by store.Store
// implementations.
package storetest

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cognicore/orderline/pkg/orderline/internalerr"
	"github.com/cognicore/orderline/pkg/orderline/menu"
	"github.com/cognicore/orderline/pkg/orderline/store"
)

// SampleMenu returns a small menu exercising every field the stores persist.
func SampleMenu(key string) *menu.Menu {
	return &menu.Menu{
		Key:     key,
		Version: "2024-06-01T10:00:00Z",
		Categories: []menu.Category{
			{Name: "Sandwiches", Items: []menu.Item{
				{
					Name:        "Turkey Club",
					BasePrice:   decimal.RequireFromString("10.50"),
					Description: "Roast turkey, bacon, lettuce, tomato",
					ModifierGroups: []menu.ModifierGroup{
						{Name: "Bread Choice", Required: true, MinSelections: 1, MaxSelections: 1, Options: []menu.ModifierOption{
							{Name: "White Bread", IsDefault: true},
							{Name: "Sourdough", PriceDelta: decimal.RequireFromString("0.50")},
						}},
						{Name: "Add Extras", MultiSelect: true, MaxSelections: 3, Options: []menu.ModifierOption{
							{Name: "Avocado", PriceDelta: decimal.RequireFromString("1.75")},
							{Name: "No Tomato", PriceDelta: decimal.RequireFromString("-0.25")},
						}},
					},
				},
				{Name: "Grilled Cheese", BasePrice: decimal.RequireFromString("8")},
			}},
			{Name: "Drinks", Items: []menu.Item{
				{Name: "Lemonade", BasePrice: decimal.RequireFromString("3.25")},
			}},
		},
	}
}

// Run exercises the Store contract against a fresh store from newStore.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetMenu(context.Background(), "+15550000")
		if !errors.Is(err, internalerr.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		want := SampleMenu("+15550101")
		if err := s.PutMenu(ctx, want); err != nil {
			t.Fatalf("PutMenu: %v", err)
		}
		got, err := s.GetMenu(ctx, want.Key)
		if err != nil {
			t.Fatalf("GetMenu: %v", err)
		}
		AssertMenuEqual(t, want, got)
	})

	t.Run("PutReplaces", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		first := SampleMenu("+15550102")
		if err := s.PutMenu(ctx, first); err != nil {
			t.Fatalf("PutMenu: %v", err)
		}
		second := &menu.Menu{Key: first.Key, Version: "v2", Categories: []menu.Category{
			{Name: "Soup", Items: []menu.Item{{Name: "Tomato Soup", BasePrice: decimal.RequireFromString("5.00")}}},
		}}
		if err := s.PutMenu(ctx, second); err != nil {
			t.Fatalf("PutMenu: %v", err)
		}
		got, err := s.GetMenu(ctx, first.Key)
		if err != nil {
			t.Fatalf("GetMenu: %v", err)
		}
		AssertMenuEqual(t, second, got)
	})

	t.Run("DeleteAndList", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, k := range []string{"+15550202", "+15550201"} {
			if err := s.PutMenu(ctx, SampleMenu(k)); err != nil {
				t.Fatalf("PutMenu %s: %v", k, err)
			}
		}
		keys, err := s.ListKeys(ctx)
		if err != nil {
			t.Fatalf("ListKeys: %v", err)
		}
		if !reflect.DeepEqual(keys, []string{"+15550201", "+15550202"}) {
			t.Fatalf("expected sorted keys, got %v", keys)
		}

		if err := s.DeleteMenu(ctx, "+15550201"); err != nil {
			t.Fatalf("DeleteMenu: %v", err)
		}
		if err := s.DeleteMenu(ctx, "+15550201"); err != nil {
			t.Fatalf("second DeleteMenu should be a no-op: %v", err)
		}
		if _, err := s.GetMenu(ctx, "+15550201"); !errors.Is(err, internalerr.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		keys, _ = s.ListKeys(ctx)
		if !reflect.DeepEqual(keys, []string{"+15550202"}) {
			t.Fatalf("expected one key left, got %v", keys)
		}
	})

	t.Run("RejectsMissingKey", func(t *testing.T) {
		s := newStore(t)
		err := s.PutMenu(context.Background(), SampleMenu(""))
		if !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

// AssertMenuEqual compares menus field by field, treating prices as equal
// when their decimal values match.
func AssertMenuEqual(t *testing.T, want, got *menu.Menu) {
	t.Helper()
	if got.Key != want.Key || got.Version != want.Version {
		t.Fatalf("menu header: got %q/%q, want %q/%q", got.Key, got.Version, want.Key, want.Version)
	}
	if len(got.Categories) != len(want.Categories) {
		t.Fatalf("categories: got %d, want %d", len(got.Categories), len(want.Categories))
	}
	for i, wc := range want.Categories {
		gc := got.Categories[i]
		if gc.Name != wc.Name || len(gc.Items) != len(wc.Items) {
			t.Fatalf("category %d: got %q (%d items), want %q (%d items)", i, gc.Name, len(gc.Items), wc.Name, len(wc.Items))
		}
		for j, wi := range wc.Items {
			assertItemEqual(t, wi, gc.Items[j])
		}
	}
}

func assertItemEqual(t *testing.T, want, got menu.Item) {
	t.Helper()
	if got.Name != want.Name || got.Description != want.Description || !got.BasePrice.Equal(want.BasePrice) {
		t.Fatalf("item: got %q %s %q, want %q %s %q", got.Name, got.BasePrice, got.Description, want.Name, want.BasePrice, want.Description)
	}
	if len(got.ModifierGroups) != len(want.ModifierGroups) {
		t.Fatalf("item %q groups: got %d, want %d", want.Name, len(got.ModifierGroups), len(want.ModifierGroups))
	}
	for i, wg := range want.ModifierGroups {
		gg := got.ModifierGroups[i]
		if gg.Name != wg.Name || gg.Required != wg.Required || gg.MinSelections != wg.MinSelections ||
			gg.MaxSelections != wg.MaxSelections || gg.MultiSelect != wg.MultiSelect {
			t.Fatalf("group %q: got %+v", wg.Name, gg)
		}
		if len(gg.Options) != len(wg.Options) {
			t.Fatalf("group %q options: got %d, want %d", wg.Name, len(gg.Options), len(wg.Options))
		}
		for j, wo := range wg.Options {
			gotOpt := gg.Options[j]
			if gotOpt.Name != wo.Name || gotOpt.IsDefault != wo.IsDefault || !gotOpt.PriceDelta.Equal(wo.PriceDelta) {
				t.Fatalf("option %q: got %+v", wo.Name, gotOpt)
			}
		}
	}
}
