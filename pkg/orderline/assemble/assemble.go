package assemble

import (
	"github.com/shopspring/decimal"

	"github.com/cognicore/orderline/pkg/orderline/match"
	"github.com/cognicore/orderline/pkg/orderline/menu"
)

// Error messages carried in failed results.
const (
	msgEmptyUtterance   = "utterance contained no recognizable words"
	msgNoMatch          = "no menu item matched the utterance"
	msgWeakMatch        = "no confident match; confirm one of the alternatives"
	msgIndexUnavailable = "menu is missing or empty"
	msgInvalidMenu      = "menu is malformed"
)

// CalculatedPrice is the item base price plus every matched option's price,
// rounded to cents half away from zero.
func CalculatedPrice(item menu.Item, mods []match.MatchedModifier) decimal.Decimal {
	total := item.BasePrice
	for _, m := range mods {
		total = total.Add(m.Option.PriceDelta)
	}
	return total.Round(2)
}

// RemainingRequired lists required groups on item that no matched modifier
// belongs to. Defaults are not applied.
func RemainingRequired(item menu.Item, mods []match.MatchedModifier) []RequiredGroup {
	answered := make(map[string]bool, len(mods))
	for _, m := range mods {
		answered[m.Group] = true
	}
	out := []RequiredGroup{}
	for _, g := range item.ModifierGroups {
		if !g.Required || answered[g.Name] {
			continue
		}
		rg := RequiredGroup{
			GroupName:     g.Name,
			MinSelections: g.MinSelections,
			MaxSelections: g.EffectiveMax(),
			MultiSelect:   g.MultiSelect,
			Options:       make([]Option, len(g.Options)),
		}
		for i, o := range g.Options {
			rg.Options[i] = Option{Name: o.Name, Price: o.PriceDelta.InexactFloat64(), IsDefault: o.IsDefault}
		}
		out = append(out, rg)
	}
	return out
}

// Success builds the result for a found item.
func Success(tokens []string, im match.ItemMatch, mm match.ModifierMatch) ParseResult {
	mods := make([]Modifier, len(mm.Matched))
	for i, m := range mm.Matched {
		mods[i] = Modifier{
			GroupName:   m.Group,
			OptionName:  m.Option.Name,
			OptionPrice: m.Option.PriceDelta.InexactFloat64(),
		}
	}
	return ParseResult{
		Success: true,
		Match: &Match{
			Item: ItemView{
				Name:        im.Item.Name,
				Price:       im.Item.BasePrice.InexactFloat64(),
				Description: im.Item.Description,
				Category:    im.Item.Category,
			},
			Confidence:                 im.Confidence,
			MatchedModifiers:           mods,
			RemainingRequiredModifiers: RemainingRequired(im.Item, mm.Matched),
			CalculatedPrice:            CalculatedPrice(im.Item, mm.Matched).InexactFloat64(),
			UnmatchedTokens:            mm.Unmatched,
		},
		AlternativeMatches: alternatives(im.Alternatives),
		Tokens:             tokenList(tokens),
	}
}

// NoMatch builds the result for an utterance no item scored well enough
// for. The message tells a weak match with candidates apart from none.
func NoMatch(tokens []string, im match.ItemMatch) ParseResult {
	msg := msgNoMatch
	if len(im.Alternatives) > 0 {
		msg = msgWeakMatch
	}
	return ParseResult{
		AlternativeMatches: alternatives(im.Alternatives),
		Error:              msg,
		ErrorKind:          KindNoMatch,
		Tokens:             tokenList(tokens),
	}
}

// EmptyUtterance builds the result for an utterance with only filler words.
func EmptyUtterance() ParseResult {
	return ParseResult{
		AlternativeMatches: []Alternative{},
		Error:              msgEmptyUtterance,
		ErrorKind:          KindEmptyUtterance,
		Tokens:             []string{},
	}
}

// IndexUnavailable builds the result for a missing or empty menu.
func IndexUnavailable(tokens []string) ParseResult {
	return ParseResult{
		AlternativeMatches: []Alternative{},
		Error:              msgIndexUnavailable,
		ErrorKind:          KindIndexUnavailable,
		Tokens:             tokenList(tokens),
	}
}

// InvalidMenu builds the result for a menu that fails validation. The
// validation error is appended to the message.
func InvalidMenu(tokens []string, err error) ParseResult {
	msg := msgInvalidMenu
	if err != nil {
		msg += ": " + err.Error()
	}
	return ParseResult{
		AlternativeMatches: []Alternative{},
		Error:              msg,
		ErrorKind:          KindInvalidMenu,
		Tokens:             tokenList(tokens),
	}
}

func alternatives(alts []match.Alternative) []Alternative {
	out := make([]Alternative, len(alts))
	for i, a := range alts {
		out[i] = Alternative{Name: a.Name, Confidence: a.Confidence, Category: a.Category}
	}
	return out
}

func tokenList(tokens []string) []string {
	if tokens == nil {
		return []string{}
	}
	return tokens
}
