package normalize

import (
	"strings"
	"unicode"
)

// DefaultFillers is the static filler vocabulary dropped from utterances:
// articles, pronouns, politeness words, order verbs, hesitation sounds,
// the conjunctions and/with/of and a few prepositions.
var DefaultFillers = []string{
	// articles
	"a", "an", "the", "some",
	// pronouns
	"i", "me", "my", "we", "us", "our", "you", "your", "it", "its", "that", "this",
	"i'd", "i'll", "i'm", "id", "im", "ill", "we'd", "we'll", "lemme", "let",
	// politeness
	"please", "thanks", "thank", "thx", "pls",
	// order verbs and modals
	"can", "could", "would", "will", "like", "love", "want", "wanna", "get", "gonna",
	"gimme", "give", "have", "order", "take", "need", "try", "do",
	// fillers
	"um", "umm", "uh", "uhh", "er", "erm", "hmm", "mm", "yeah", "yes", "yep",
	"okay", "ok", "so", "just", "actually", "maybe",
	// conjunctions
	"and", "with", "of", "also", "plus",
	// prepositions
	"for", "to", "on", "in", "at",
}

// Normalizer turns a raw transcript into ordered, meaningful tokens.
type Normalizer struct {
	fillers map[string]struct{}
}

// New creates a normalizer with the given filler words. A nil slice means
// no fillers; pass DefaultFillers for the standard vocabulary.
func New(fillers []string) *Normalizer {
	set := make(map[string]struct{}, len(fillers))
	for _, w := range fillers {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Normalizer{fillers: set}
}

// NewDefault creates a normalizer using DefaultFillers.
func NewDefault() *Normalizer {
	return New(DefaultFillers)
}

// Normalize lowercases the utterance, strips everything but letters, digits,
// spaces, apostrophes and hyphens, collapses whitespace and drops filler
// words. Token order is preserved. The result may be empty.
func (n *Normalizer) Normalize(utterance string) []string {
	var b strings.Builder
	b.Grow(len(utterance))
	for _, r := range strings.ToLower(utterance) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	var tokens []string
	for _, word := range strings.Split(collapseSpaces(b.String()), " ") {
		if word == "" || n.IsFiller(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// IsFiller reports whether word is in the filler set.
func (n *Normalizer) IsFiller(word string) bool {
	_, ok := n.fillers[word]
	return ok
}

// AddFiller adds a word to the filler set
func (n *Normalizer) AddFiller(word string) {
	n.fillers[strings.ToLower(word)] = struct{}{}
}

// RemoveFiller removes a word from the filler set
func (n *Normalizer) RemoveFiller(word string) {
	delete(n.fillers, strings.ToLower(word))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
