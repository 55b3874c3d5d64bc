// Package candidate turns a syllable into the set of playable words with the
// facts the ranker needs.
package candidate

import (
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/chainpick/internal/coverage"
	"github.com/verte-zerg/chainpick/internal/lexicon"
	"github.com/verte-zerg/chainpick/internal/model"
)

// NearWindow is the largest length distance still counted as near.
const NearWindow = 6

// SpecialRank orders the themed categories. Higher wins.
var SpecialRank = map[model.Category]int{
	model.CategoryProfanity: 4,
	model.CategoryPokemon:   3,
	model.CategoryMinerals:  2,
	model.CategoryRare:      1,
}

// Fit classifies a word's length against the target.
type Fit int

// Length fits, best last.
const (
	FitNone Fit = iota
	FitNear
	FitExact
)

func (f Fit) String() string {
	switch f {
	case FitExact:
		return "exact"
	case FitNear:
		return "near"
	default:
		return "none"
	}
}

// Sources is a bitmask of the categories a word was matched in.
type Sources uint8

// SourceOf returns the bit for cat.
func SourceOf(cat model.Category) Sources {
	for i, c := range model.Categories {
		if c == cat {
			return 1 << i
		}
	}
	return 0
}

// Has reports whether cat contributed the word.
func (s Sources) Has(cat model.Category) bool {
	bit := SourceOf(cat)
	return bit != 0 && s&bit != 0
}

// Candidate is a playable word and its per-turn facts.
type Candidate struct {
	Word        string
	Sources     Sources
	Special     model.Category
	SpecialRank int
	ContainsIdx int
	Hyphen      bool
	Length      int
	Fit         Fit
	Distance    int
	Score       float64

	Rank int
	Tone model.Tone
}

// Flags reports modes that degraded this turn.
type Flags struct {
	FoulFallback     bool
	PokemonFallback  bool
	MineralsFallback bool
	RareFallback     bool
	LenCapApplied    bool
	LenCapRelaxed    bool
	LenFallback      bool
	LenSuppressed    bool
}

// Fallback reports whether the fallback flag of a special category is set.
func (f Flags) Fallback(cat model.Category) bool {
	switch cat {
	case model.CategoryProfanity:
		return f.FoulFallback
	case model.CategoryPokemon:
		return f.PokemonFallback
	case model.CategoryMinerals:
		return f.MineralsFallback
	case model.CategoryRare:
		return f.RareFallback
	default:
		return false
	}
}

func (f *Flags) setFallback(cat model.Category) {
	switch cat {
	case model.CategoryProfanity:
		f.FoulFallback = true
	case model.CategoryPokemon:
		f.PokemonFallback = true
	case model.CategoryMinerals:
		f.MineralsFallback = true
	case model.CategoryRare:
		f.RareFallback = true
	}
}

// Request describes one generation pass.
type Request struct {
	Context  model.Context
	Syllable string
	Modes    model.Modes
	Counts   [coverage.Letters]int
	Targets  [coverage.Letters]int
}

// Pool is the unranked result of a generation pass.
type Pool struct {
	Candidates []Candidate
	Flags      Flags
}

// Generate collects every word containing the syllable from main and the
// enabled special categories. It never fails; an empty syllable or lexicon
// gives an empty pool.
func Generate(lex *lexicon.Lexicon, req Request) Pool {
	var pool Pool
	syllable := strings.ToLower(strings.TrimSpace(req.Syllable))
	if syllable == "" || lex == nil {
		return pool
	}

	index := map[string]int{}
	add := func(word string, cat model.Category) {
		if i, ok := index[word]; ok {
			pool.Candidates[i].Sources |= SourceOf(cat)
			return
		}
		index[word] = len(pool.Candidates)
		pool.Candidates = append(pool.Candidates, Candidate{Word: word, Sources: SourceOf(cat)})
	}

	for _, cat := range model.SpecialCategories {
		if !req.Modes.Enabled(cat) {
			continue
		}
		matches := lex.Match(cat, syllable)
		if len(matches) == 0 {
			pool.Flags.setFallback(cat)
			continue
		}
		for _, word := range matches {
			add(word, cat)
		}
	}
	for _, word := range lex.Match(model.CategoryMain, syllable) {
		add(word, model.CategoryMain)
	}

	for i := range pool.Candidates {
		describe(&pool.Candidates[i], req, lex.Weights)
	}

	if req.Modes.Length && req.Modes.Coverage {
		capped := make([]Candidate, 0, len(pool.Candidates))
		for _, c := range pool.Candidates {
			if c.Length <= req.Modes.TargetLen {
				capped = append(capped, c)
			}
		}
		if len(capped) == 0 {
			pool.Flags.LenCapRelaxed = true
		} else {
			pool.Flags.LenCapApplied = true
			pool.Candidates = capped
		}
	}
	return pool
}

func describe(c *Candidate, req Request, weights [coverage.Letters]float64) {
	for _, cat := range model.SpecialCategories {
		if c.Sources.Has(cat) {
			c.Special = cat
			c.SpecialRank = SpecialRank[cat]
			break
		}
	}

	c.ContainsIdx = -1
	if req.Modes.Contains && req.Modes.ContainsText != "" {
		c.ContainsIdx = strings.Index(c.Word, req.Modes.ContainsText)
	}
	c.Hyphen = strings.Contains(c.Word, "-")

	c.Length = utf8.RuneCountInString(c.Word)
	c.Distance = c.Length - req.Modes.TargetLen
	switch d := abs(c.Distance); {
	case d == 0:
		c.Fit = FitExact
	case d <= NearWindow:
		c.Fit = FitNear
	default:
		c.Fit = FitNone
	}

	c.Score = coverage.Score(c.Word, req.Counts, req.Targets, weights)
	c.Rank = -1
	c.Tone = model.ToneDefault
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Words returns the words of cands in order.
func Words(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Word
	}
	return out
}
