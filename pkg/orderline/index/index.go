// Package index provides approximate search over a restaurant's menu items.
package index

import (
	"crypto/rand"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/orderline/pkg/orderline/menu"
	"github.com/cognicore/orderline/pkg/orderline/normalize"
	"github.com/cognicore/orderline/pkg/orderline/similarity"
)

// Field weights for the item score.
const (
	NameWeight        = 0.7
	DescriptionWeight = 0.3
)

// reverseWeight scales how much unmentioned name words count against a
// query. Generic words ("pizza", "salad") are often left unsaid.
const reverseWeight = 0.5

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// Index is an immutable search structure over one menu snapshot.
// It is safe for concurrent readers.
type Index struct {
	ID          string
	Key         string
	Version     string
	Fingerprint string // menu.(*Menu).Fingerprint of the source snapshot
	BuiltAt     time.Time
	// Stored marks an index built from the menu store rather than from a
	// caller-supplied snapshot.
	Stored bool

	entries []entry
}

type entry struct {
	item menu.Item
	name field
	desc field
}

type field struct {
	text    string
	compact string
	words   []string
}

func newField(s string) field {
	text := normalize.Clean(s)
	f := field{text: text, compact: normalize.Compact(text)}
	if text != "" {
		f.words = strings.Split(text, " ")
	}
	return f
}

// Result is one ranked search hit. Score is in [0,1], 0 best.
type Result struct {
	Item     menu.Item
	Position int
	Score    float64
}

// Build flattens the menu and precomputes the comparison forms of every
// item's name and description.
func Build(m *menu.Menu) *Index {
	items := m.Items()
	ix := &Index{
		ID:      newID(),
		BuiltAt: time.Now(),
		entries: make([]entry, len(items)),
	}
	if m != nil {
		ix.Key = m.Key
		ix.Version = m.Version
		ix.Fingerprint = m.Fingerprint()
	}
	for i, it := range items {
		ix.entries[i] = entry{
			item: it,
			name: newField(it.Name),
			desc: newField(it.Description),
		}
	}
	return ix
}

func newID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// Len returns the number of indexed items.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Search scores every item against the query and returns all of them,
// best first. Equal scores keep menu declaration order.
func (ix *Index) Search(query string) []Result {
	return ix.SearchIn(query, query)
}

// SearchIn is Search for a query taken out of a longer utterance. The
// utterance decides whether a word may stand for a longer compound: with
// "burger with cheese" said, "cheese" is not read as "cheeseburger".
func (ix *Index) SearchIn(query, utterance string) []Result {
	q := newField(query)
	sp := newSpoken(utterance)
	results := make([]Result, len(ix.entries))
	for i, e := range ix.entries {
		results[i] = Result{
			Item:     e.item,
			Position: i,
			Score:    e.score(q, sp),
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})
	return results
}

// score combines the name and description scores. The description can
// only corroborate a name match, never penalize it.
func (e entry) score(q field, sp spoken) float64 {
	name := fieldScore(q, e.name, sp, true)
	if len(e.desc.words) == 0 {
		return name
	}
	desc := fieldScore(q, e.desc, sp, false)
	return math.Min(name, NameWeight*name+DescriptionWeight*desc)
}

// fieldScore measures how well the query words are explained by the field
// words, as a root mean square of per-word distances. With reverse set the
// field words must also be explained by the query, at reverseWeight.
func fieldScore(q, f field, sp spoken, reverse bool) float64 {
	if len(q.words) == 0 || len(f.words) == 0 {
		return 1
	}
	// Coincidental one-letter overlaps are not evidence.
	if !similarity.SharesBigram(q.compact, f.compact) {
		return 1
	}

	score := sp.alignment(q.words, f.words)
	if reverse {
		score = math.Max(score, reverseWeight*sp.alignment(f.words, q.words))
	}

	// Compound spellings: "cheese burger" against "cheeseburger".
	if similarity.Distance(q.compact, f.compact) <= 1 {
		score = math.Min(score, similarity.NormalizedDistance(q.compact, f.compact))
	}
	return score
}

// spoken is the cleaned utterance a query was taken from.
type spoken struct {
	text  string
	words map[string]bool
}

func newSpoken(utterance string) spoken {
	f := newField(utterance)
	sp := spoken{text: " " + f.text + " ", words: make(map[string]bool, len(f.words))}
	for _, w := range f.words {
		sp.words[w] = true
	}
	return sp
}

// truncates reports whether short may stand for long. It may not when the
// rest of long was said as a word of its own somewhere other than right
// after short.
func (sp spoken) truncates(short, long string) bool {
	rest := strings.TrimPrefix(long, short)
	if !sp.words[rest] {
		return true
	}
	return strings.Contains(sp.text, " "+short+" "+rest+" ")
}

func (sp spoken) distance(a, b string) float64 {
	if short, long, ok := similarity.Truncation(a, b); ok && !sp.truncates(short, long) {
		return similarity.WordDistance(a, b)
	}
	return similarity.TokenDistance(a, b)
}

func (sp spoken) alignment(from, to []string) float64 {
	var sum float64
	for _, w := range from {
		best := 1.0
		for _, t := range to {
			if d := sp.distance(w, t); d < best {
				best = d
				if best == 0 {
					break
				}
			}
		}
		sum += best * best
	}
	return math.Sqrt(sum / float64(len(from)))
}
