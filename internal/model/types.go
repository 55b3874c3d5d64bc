// Package model defines shared data structures.
package model

import (
	"strings"
	"time"
)

// Category names a word list within a lexicon.
type Category string

// Lexicon categories.
const (
	CategoryMain      Category = "main"
	CategoryProfanity Category = "profanity"
	CategoryPokemon   Category = "pokemon"
	CategoryMinerals  Category = "minerals"
	CategoryRare      Category = "rare"
)

// Categories lists every category in load order.
var Categories = []Category{CategoryMain, CategoryProfanity, CategoryPokemon, CategoryMinerals, CategoryRare}

// SpecialCategories lists the themed categories in descending priority.
var SpecialCategories = []Category{CategoryProfanity, CategoryPokemon, CategoryMinerals, CategoryRare}

// Context says whose turn suggestions are computed for.
type Context string

// Suggestion contexts.
const (
	ContextSelf      Context = "self"
	ContextSpectator Context = "spectator"
)

// Criterion is a ranking criterion key.
type Criterion string

// Ranking criteria. The foul key covers every special category.
const (
	CriterionContains Criterion = "contains"
	CriterionFoul     Criterion = "foul"
	CriterionCoverage Criterion = "coverage"
	CriterionHyphen   Criterion = "hyphen"
	CriterionLength   Criterion = "length"
)

// DefaultPriorityOrder is the ranking order used until the user changes it.
var DefaultPriorityOrder = []Criterion{CriterionContains, CriterionFoul, CriterionCoverage, CriterionHyphen, CriterionLength}

// NormalizePriorityOrder drops unknown and repeated keys and appends missing
// keys in default order, so the result is always a full permutation.
func NormalizePriorityOrder(order []Criterion) []Criterion {
	known := map[Criterion]struct{}{}
	for _, c := range DefaultPriorityOrder {
		known[c] = struct{}{}
	}
	out := make([]Criterion, 0, len(DefaultPriorityOrder))
	seen := map[Criterion]struct{}{}
	for _, c := range order {
		c = Criterion(strings.ToLower(strings.TrimSpace(string(c))))
		if _, ok := known[c]; !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, c := range DefaultPriorityOrder {
		if _, ok := seen[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Tone is the display color class of a suggestion.
type Tone string

// Suggestion tones.
const (
	ToneDefault     Tone = "default"
	ToneContains    Tone = "contains"
	ToneFoul        Tone = "foul"
	TonePokemon     Tone = "pokemon"
	ToneMinerals    Tone = "minerals"
	ToneRare        Tone = "rare"
	ToneHyphen      Tone = "hyphen"
	ToneLengthExact Tone = "lengthExact"
	ToneLengthFlex  Tone = "lengthFlex"
)

// Setting bounds.
const (
	MinSuggestionsLimit = 1
	MaxSuggestionsLimit = 20
	MinTargetLen        = 3
	MaxTargetLen        = 21
	DefaultLimit        = 5
	DefaultTargetLen    = 8
	DefaultGoalSpec     = "x0 z0"
)

// Modes holds the per-context mode toggles.
type Modes struct {
	Foul         bool
	Pokemon      bool
	Minerals     bool
	Rare         bool
	Coverage     bool
	Length       bool
	TargetLen    int
	Hyphen       bool
	Contains     bool
	ContainsText string
}

// Enabled reports whether the special category is toggled on.
func (m Modes) Enabled(cat Category) bool {
	switch cat {
	case CategoryProfanity:
		return m.Foul
	case CategoryPokemon:
		return m.Pokemon
	case CategoryMinerals:
		return m.Minerals
	case CategoryRare:
		return m.Rare
	default:
		return false
	}
}

// AnySpecial reports whether at least one special category is on.
func (m Modes) AnySpecial() bool {
	return m.Foul || m.Pokemon || m.Minerals || m.Rare
}

// Settings defines every user-configurable engine value.
type Settings struct {
	Lang           string
	Self           Modes
	Spectator      Modes
	Limit          int
	PriorityOrder  []Criterion
	PostfixEnabled bool
	PostfixText    string
	GoalsEnabled   bool
	GoalSpec       string
	AutoSuicide    bool
	SubmitDelay    time.Duration
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Lang:          "en",
		Self:          Modes{TargetLen: DefaultTargetLen},
		Spectator:     Modes{TargetLen: DefaultTargetLen},
		Limit:         DefaultLimit,
		PriorityOrder: append([]Criterion(nil), DefaultPriorityOrder...),
		GoalSpec:      DefaultGoalSpec,
	}
}

// Modes returns the toggles for a context.
func (s Settings) Modes(ctx Context) Modes {
	if ctx == ContextSpectator {
		return s.Spectator
	}
	return s.Self
}

// Normalize clamps numeric values into range and fixes the priority order.
func (s *Settings) Normalize() {
	s.Limit = ClampInt(s.Limit, MinSuggestionsLimit, MaxSuggestionsLimit)
	s.Self.TargetLen = ClampInt(s.Self.TargetLen, MinTargetLen, MaxTargetLen)
	s.Spectator.TargetLen = ClampInt(s.Spectator.TargetLen, MinTargetLen, MaxTargetLen)
	s.Self.ContainsText = strings.ToLower(strings.TrimSpace(s.Self.ContainsText))
	s.Spectator.ContainsText = strings.ToLower(strings.TrimSpace(s.Spectator.ContainsText))
	s.PriorityOrder = NormalizePriorityOrder(s.PriorityOrder)
	if s.SubmitDelay < 0 {
		s.SubmitDelay = 0
	}
	if s.Lang == "" {
		s.Lang = "en"
	}
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Play records a submitted word and its outcome.
type Play struct {
	ID       int64
	RoundID  string
	PlayedAt time.Time
	Lang     string
	Syllable string
	Word     string
	Context  Context
	Accepted bool
	Reason   string
}

// HistoryConfig defines filters for play history reports.
type HistoryConfig struct {
	Lang  string
	Since *time.Time
	Last  int
	Top   int
}

// WordCount pairs a word with how often it occurred.
type WordCount struct {
	Word  string
	Count int
}
