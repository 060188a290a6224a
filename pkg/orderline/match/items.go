package match

import (
	"math"
	"strings"

	"github.com/cognicore/orderline/pkg/orderline/index"
	"github.com/cognicore/orderline/pkg/orderline/menu"
)

// Alternative is a runner-up item offered for disambiguation.
type Alternative struct {
	Name       string
	Category   string
	Score      float64
	Confidence float64
}

// ItemMatch is the outcome of item matching. When Found is false, Score and
// Alternatives describe the best attempt.
type ItemMatch struct {
	Found        bool
	Item         menu.Item
	Score        float64
	Confidence   float64
	Consumed     []int // token positions explained by the item
	Alternatives []Alternative
}

// Remaining returns the tokens not consumed by the item, in order.
func (m ItemMatch) Remaining(tokens []string) []string {
	used := make(map[int]bool, len(m.Consumed))
	for _, i := range m.Consumed {
		used[i] = true
	}
	var out []string
	for i, tok := range tokens {
		if !used[i] {
			out = append(out, tok)
		}
	}
	return out
}

// Confidence converts a distance score into a two-decimal confidence.
func Confidence(score float64) float64 {
	return math.Round((1-score)*100) / 100
}

// ItemMatcher finds the menu item a token sequence refers to.
type ItemMatcher struct {
	params Params
}

// NewItemMatcher creates an item matcher with the given thresholds.
func NewItemMatcher(p Params) *ItemMatcher {
	return &ItemMatcher{params: p}
}

type candidate struct {
	score   float64
	start   int
	size    int
	results []index.Result
}

// Match searches the full phrase first and, failing a strong hit, every
// contiguous window from longest to shortest. Longer windows get a small
// bonus so matches that explain more of the utterance win.
func (im *ItemMatcher) Match(ix *index.Index, tokens []string) ItemMatch {
	if len(tokens) == 0 || ix == nil || ix.Len() == 0 {
		return ItemMatch{Score: 1}
	}

	utterance := strings.Join(tokens, " ")
	full := ix.Search(utterance)
	best := candidate{score: full[0].Score, start: 0, size: len(tokens), results: full}
	if best.score >= im.params.StrongMatch {
		best = im.subPhrase(ix, tokens, utterance, best)
	}

	if best.score > im.params.AcceptCeiling {
		return ItemMatch{
			Score:        best.score,
			Alternatives: im.alternatives(best.results, ""),
		}
	}

	top := best.results[0]
	consumed := make([]int, best.size)
	for i := range consumed {
		consumed[i] = best.start + i
	}
	return ItemMatch{
		Found:        true,
		Item:         top.Item,
		Score:        best.score,
		Confidence:   Confidence(best.score),
		Consumed:     consumed,
		Alternatives: im.alternatives(best.results, top.Item.Name),
	}
}

func (im *ItemMatcher) subPhrase(ix *index.Index, tokens []string, utterance string, best candidate) candidate {
	for size := len(tokens); size >= 1; size-- {
		levelBest := math.Inf(1)
		for start := 0; start+size <= len(tokens); start++ {
			res := ix.SearchIn(strings.Join(tokens[start:start+size], " "), utterance)
			adjusted := math.Max(0, res[0].Score-im.params.LengthBonus*float64(size))
			if adjusted < best.score {
				best = candidate{score: adjusted, start: start, size: size, results: res}
			}
			levelBest = math.Min(levelBest, adjusted)
		}
		// Stop once a length produced a strong match.
		if levelBest < im.params.StrongMatch {
			break
		}
	}
	return best
}

// alternatives lists distinct-named, relevant results other than exclude.
func (im *ItemMatcher) alternatives(results []index.Result, exclude string) []Alternative {
	seen := map[string]bool{exclude: true}
	var alts []Alternative
	for _, r := range results {
		if len(alts) >= im.params.MaxAlternatives || r.Score >= 1 {
			break
		}
		if seen[r.Item.Name] {
			continue
		}
		seen[r.Item.Name] = true
		alts = append(alts, Alternative{
			Name:       r.Item.Name,
			Category:   r.Item.Category,
			Score:      r.Score,
			Confidence: Confidence(r.Score),
		})
	}
	return alts
}
