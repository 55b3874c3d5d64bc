// Package lexicon loads and indexes the per-language word lists.
package lexicon

import (
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/chainpick/internal/model"
)

var (
	// ErrNoLexiconAvailable means the main list could not be loaded or is empty.
	ErrNoLexiconAvailable = errors.New("no lexicon available")
	// ErrCategoryUnavailable means a single non-main list could not be loaded.
	ErrCategoryUnavailable = errors.New("category unavailable")
)

// Lexicon holds the word lists for one language.
type Lexicon struct {
	Lang        string
	Weights     [26]float64
	LoadedAt    time.Time
	Unavailable []model.Category

	lists   map[model.Category][]string
	sets    map[model.Category]map[string]struct{}
	indexes map[model.Category]*suffixIndex
}

// New builds a lexicon from raw lists. Words are normalized and indexed; the
// main list must be non-empty.
func New(lang string, lists map[model.Category][]string) (*Lexicon, error) {
	lex := &Lexicon{
		Lang:    lang,
		lists:   make(map[model.Category][]string, len(model.Categories)),
		sets:    make(map[model.Category]map[string]struct{}, len(model.Categories)),
		indexes: make(map[model.Category]*suffixIndex, len(model.Categories)),
	}
	for _, cat := range model.Categories {
		words := NormalizeWords(lists[cat])
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			set[w] = struct{}{}
		}
		lex.lists[cat] = words
		lex.sets[cat] = set
		lex.indexes[cat] = newSuffixIndex(words)
	}
	if len(lex.lists[model.CategoryMain]) == 0 {
		return nil, fmt.Errorf("%w: main list for %q is empty", ErrNoLexiconAvailable, lang)
	}
	lex.Weights = LetterWeights(lex.lists[model.CategoryMain])
	return lex, nil
}

// Words returns the normalized list of a category.
func (l *Lexicon) Words(cat model.Category) []string {
	return l.lists[cat]
}

// Size returns the number of words in a category.
func (l *Lexicon) Size(cat model.Category) int {
	return len(l.lists[cat])
}

// Match returns the words of a category that contain sub, in list order.
func (l *Lexicon) Match(cat model.Category, sub string) []string {
	idx, ok := l.indexes[cat]
	if !ok {
		return nil
	}
	return idx.match(sub)
}

// Contains reports whether word is in the category.
func (l *Lexicon) Contains(cat model.Category, word string) bool {
	_, ok := l.sets[cat][word]
	return ok
}
