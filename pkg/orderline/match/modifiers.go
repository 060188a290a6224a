package match

import (
	"strings"

	"github.com/cognicore/orderline/pkg/orderline/menu"
	"github.com/cognicore/orderline/pkg/orderline/normalize"
	"github.com/cognicore/orderline/pkg/orderline/similarity"
)

// MatchedModifier is an option recognized in the utterance.
type MatchedModifier struct {
	Group  string
	Option menu.ModifierOption
}

// ModifierMatch holds the recognized options and the tokens nothing claimed.
type ModifierMatch struct {
	Matched   []MatchedModifier
	Unmatched []string
}

// ModifierMatcher assigns leftover tokens to an item's modifier options.
type ModifierMatcher struct {
	window int
}

// NewModifierMatcher creates a modifier matcher trying windows up to
// p.ModifierWindow tokens long.
func NewModifierMatcher(p Params) *ModifierMatcher {
	w := p.ModifierWindow
	if w < 1 {
		w = DefaultParams().ModifierWindow
	}
	return &ModifierMatcher{window: w}
}

type optionCandidate struct {
	group   int
	option  int
	name    string
	compact string
}

func (c optionCandidate) exact(text, compact string) bool {
	return text == c.name || compact == c.compact
}

func (c optionCandidate) close(text, compact string) bool {
	return similarity.IsCloseMatch(text, c.name) || similarity.IsCloseMatch(compact, c.compact)
}

// pick returns the first open candidate equal to the window, or failing
// that the first close one. Declaration order breaks ties.
func pick(cands []optionCandidate, text, compact string, open func(optionCandidate) bool) (optionCandidate, bool) {
	for _, c := range cands {
		if open(c) && c.exact(text, compact) {
			return c, true
		}
	}
	for _, c := range cands {
		if open(c) && c.close(text, compact) {
			return c, true
		}
	}
	return optionCandidate{}, false
}

// Match scans windows longest first so multi-word options like
// "extra cheese" win over their single-word parts.
func (mm *ModifierMatcher) Match(tokens []string, item menu.Item) ModifierMatch {
	if len(tokens) == 0 || len(item.ModifierGroups) == 0 {
		return ModifierMatch{Unmatched: append([]string(nil), tokens...)}
	}

	var cands []optionCandidate
	for gi, g := range item.ModifierGroups {
		for oi, o := range g.Options {
			name := normalize.Clean(o.Name)
			if name == "" {
				continue
			}
			cands = append(cands, optionCandidate{
				group:   gi,
				option:  oi,
				name:    name,
				compact: normalize.Compact(name),
			})
		}
	}

	used := make([]bool, len(tokens))
	filled := make(map[int]bool)   // single-select groups already answered
	taken := make(map[[2]int]bool) // options already matched
	var out ModifierMatch

	size := mm.window
	if size > len(tokens) {
		size = len(tokens)
	}
	for ; size >= 1; size-- {
		for start := 0; start+size <= len(tokens); start++ {
			if anyUsed(used[start : start+size]) {
				continue
			}
			text := normalize.Clean(strings.Join(tokens[start:start+size], " "))
			if text == "" {
				continue
			}
			compact := normalize.Compact(text)
			c, ok := pick(cands, text, compact, func(c optionCandidate) bool {
				g := item.ModifierGroups[c.group]
				return !taken[[2]int{c.group, c.option}] && (g.MultiSelect || !filled[c.group])
			})
			if !ok {
				continue
			}
			g := item.ModifierGroups[c.group]
			taken[[2]int{c.group, c.option}] = true
			if !g.MultiSelect {
				filled[c.group] = true
			}
			for i := start; i < start+size; i++ {
				used[i] = true
			}
			out.Matched = append(out.Matched, MatchedModifier{Group: g.Name, Option: g.Options[c.option]})
		}
	}

	for i, tok := range tokens {
		if !used[i] {
			out.Unmatched = append(out.Unmatched, tok)
		}
	}
	return out
}

func anyUsed(flags []bool) bool {
	for _, f := range flags {
		if f {
			return true
		}
	}
	return false
}
