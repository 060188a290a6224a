package index

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cognicore/orderline/pkg/orderline/menu"
)

func testMenu() *menu.Menu {
	return &menu.Menu{
		Key:     "+15550100",
		Version: "v1",
		Categories: []menu.Category{
			{Name: "Pizza", Items: []menu.Item{
				{Name: "Margherita Pizza", BasePrice: decimal.RequireFromString("12.00"), Description: "Tomato sauce, fresh mozzarella, basil"},
				{Name: "Pepperoni Pizza", BasePrice: decimal.RequireFromString("13.50"), Description: "Classic pepperoni and mozzarella"},
			}},
			{Name: "Entrees", Items: []menu.Item{
				{Name: "Chicken Parmesan", BasePrice: decimal.RequireFromString("16.99"), Description: "Breaded chicken breast with marinara and melted cheese"},
				{Name: "Chicken Wings", BasePrice: decimal.RequireFromString("11.00"), Description: "Ten wings tossed in buffalo sauce"},
			}},
			{Name: "Burgers", Items: []menu.Item{
				{Name: "Cheeseburger", BasePrice: decimal.RequireFromString("10.00")},
			}},
		},
	}
}

func TestBuildFlattensInDeclarationOrder(t *testing.T) {
	ix := Build(testMenu())

	if ix.Len() != 5 {
		t.Fatalf("Expected 5 items, got %d", ix.Len())
	}
	if ix.Key != "+15550100" || ix.Version != "v1" {
		t.Errorf("Index should carry menu key and version, got %q %q", ix.Key, ix.Version)
	}
	if ix.ID == "" {
		t.Error("Index should have an ID")
	}

	res := ix.Search("chicken wings")
	if res[0].Item.Name != "Chicken Wings" {
		t.Fatalf("Expected Chicken Wings first, got %s", res[0].Item.Name)
	}
	if res[0].Item.Category != "Entrees" {
		t.Errorf("Expected category Entrees, got %q", res[0].Item.Category)
	}
	if res[0].Position != 3 {
		t.Errorf("Expected position 3, got %d", res[0].Position)
	}
}

func TestBuildIDsAreUnique(t *testing.T) {
	a := Build(testMenu())
	b := Build(testMenu())
	if a.ID == b.ID {
		t.Errorf("Expected distinct build IDs, both %s", a.ID)
	}
}

func TestSearchExactNameScoresZero(t *testing.T) {
	ix := Build(testMenu())

	res := ix.Search("margherita pizza")
	if res[0].Item.Name != "Margherita Pizza" {
		t.Fatalf("Expected Margherita Pizza, got %s", res[0].Item.Name)
	}
	// The description never pulls an exact name hit away from zero.
	if res[0].Score != 0 {
		t.Errorf("Expected score 0, got %v", res[0].Score)
	}
}

func TestSearchSortedAscending(t *testing.T) {
	ix := Build(testMenu())

	res := ix.Search("chicken parm")
	if len(res) != 5 {
		t.Fatalf("Search should return every item, got %d", len(res))
	}
	for i := 1; i < len(res); i++ {
		if res[i].Score < res[i-1].Score {
			t.Fatalf("Results not sorted at %d: %v < %v", i, res[i].Score, res[i-1].Score)
		}
	}
	if res[0].Item.Name != "Chicken Parmesan" {
		t.Errorf("Expected Chicken Parmesan first, got %s", res[0].Item.Name)
	}
	if math.Abs(res[0].Score-0.1767767) > 1e-6 {
		t.Errorf("Expected score ~0.177, got %v", res[0].Score)
	}
}

func TestSearchTieBreaksByDeclarationOrder(t *testing.T) {
	ix := Build(testMenu())

	res := ix.Search("pizza")
	if res[0].Score != res[1].Score {
		t.Fatalf("Expected a tie, got %v and %v", res[0].Score, res[1].Score)
	}
	if res[0].Item.Name != "Margherita Pizza" || res[1].Item.Name != "Pepperoni Pizza" {
		t.Errorf("Expected declaration order, got %s then %s", res[0].Item.Name, res[1].Item.Name)
	}
}

func TestSearchCompoundSpelling(t *testing.T) {
	ix := Build(testMenu())

	res := ix.Search("cheese burger")
	if res[0].Item.Name != "Cheeseburger" {
		t.Fatalf("Expected Cheeseburger, got %s", res[0].Item.Name)
	}
	if res[0].Score != 0 {
		t.Errorf("Expected compound spelling to score 0, got %v", res[0].Score)
	}
}

func TestSearchNoOverlapScoresOne(t *testing.T) {
	ix := Build(testMenu())

	for _, r := range ix.Search("xyzzy") {
		if r.Score != 1 {
			t.Errorf("%s: expected score 1, got %v", r.Item.Name, r.Score)
		}
	}
	for _, r := range ix.Search("") {
		if r.Score != 1 {
			t.Errorf("%s: empty query should score 1, got %v", r.Item.Name, r.Score)
		}
	}
}

func TestSearchDescriptionCorroborates(t *testing.T) {
	m := &menu.Menu{Categories: []menu.Category{{Name: "Bowls", Items: []menu.Item{
		{Name: "Garden Bowl", Description: "Quinoa, kale, roasted squash"},
		{Name: "Garden Plate", Description: "Greens and hummus"},
	}}}}
	ix := Build(m)

	res := ix.Search("garden quinoa kale")
	if res[0].Item.Name != "Garden Bowl" {
		t.Errorf("Expected description to break the tie toward Garden Bowl, got %s", res[0].Item.Name)
	}
	if res[0].Score >= res[1].Score {
		t.Errorf("Expected Garden Bowl to score strictly better: %v vs %v", res[0].Score, res[1].Score)
	}
}

func TestBuildEmptyMenu(t *testing.T) {
	ix := Build(nil)
	if ix.Len() != 0 {
		t.Errorf("Expected empty index, got %d", ix.Len())
	}
	if res := ix.Search("anything"); len(res) != 0 {
		t.Errorf("Expected no results, got %d", len(res))
	}
}

func TestSearchInKeepsSpokenWordsApart(t *testing.T) {
	ix := Build(&menu.Menu{Categories: []menu.Category{
		{Name: "Burgers", Items: []menu.Item{
			{Name: "Burger", BasePrice: decimal.RequireFromString("9.50")},
			{Name: "Bacon Cheeseburger", BasePrice: decimal.RequireFromString("13.00")},
		}},
	}})

	alone := ix.Search("cheese bacon")
	if alone[0].Item.Name != "Bacon Cheeseburger" || alone[0].Score >= 0.3 {
		t.Fatalf("Expected a strong Bacon Cheeseburger hit, got %s %v", alone[0].Item.Name, alone[0].Score)
	}

	// "burger" was said on its own, so "cheese" is a topping.
	within := ix.SearchIn("cheese bacon", "burger cheese bacon medium")
	if within[0].Score <= 0.5 {
		t.Errorf("Expected no acceptable hit, got %s %v", within[0].Item.Name, within[0].Score)
	}

	// Said together, the words still spell the compound.
	split := ix.SearchIn("cheese", "cheese burger")
	if split[0].Item.Name != "Bacon Cheeseburger" || math.Abs(split[0].Score-ix.Search("cheese")[0].Score) > 1e-9 {
		t.Errorf("Expected the truncation to stand, got %s %v", split[0].Item.Name, split[0].Score)
	}
}

func TestFingerprintFollowsContent(t *testing.T) {
	a := Build(testMenu())
	b := Build(testMenu())
	if a.Fingerprint == "" || a.Fingerprint != b.Fingerprint {
		t.Errorf("Equal menus should share a fingerprint, got %q %q", a.Fingerprint, b.Fingerprint)
	}

	changed := testMenu()
	changed.Categories[0].Items[0].BasePrice = decimal.RequireFromString("12.50")
	if c := Build(changed); c.Fingerprint == a.Fingerprint {
		t.Error("A price change should change the fingerprint")
	}
}
