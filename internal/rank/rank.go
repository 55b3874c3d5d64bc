// Package rank orders candidates by a user-ordered list of criteria.
package rank

import (
	"sort"

	"github.com/verte-zerg/chainpick/internal/candidate"
	"github.com/verte-zerg/chainpick/internal/model"
)

// Active says which criteria take part in ordering.
type Active struct {
	Contains  bool
	Special   bool
	Coverage  bool
	Hyphen    bool
	Length    bool
	LengthCap bool
}

// ActiveFor derives the active criteria from a context's modes.
func ActiveFor(m model.Modes) Active {
	return Active{
		Contains:  m.Contains && m.ContainsText != "",
		Special:   m.AnySpecial(),
		Coverage:  m.Coverage,
		Hyphen:    m.Hyphen,
		Length:    m.Length,
		LengthCap: m.Length && m.Coverage,
	}
}

// comparator returns a negative value when a sorts before b.
type comparator func(a, b *candidate.Candidate, act Active) int

var comparators = map[model.Criterion]comparator{
	model.CriterionContains: compareContains,
	model.CriterionFoul:     compareSpecial,
	model.CriterionCoverage: compareCoverage,
	model.CriterionHyphen:   compareHyphen,
	model.CriterionLength:   compareLength,
}

func compareContains(a, b *candidate.Candidate, act Active) int {
	if !act.Contains {
		return 0
	}
	am, bm := a.ContainsIdx >= 0, b.ContainsIdx >= 0
	switch {
	case am && !bm:
		return -1
	case !am && bm:
		return 1
	case am && bm:
		return a.ContainsIdx - b.ContainsIdx
	}
	return 0
}

func compareSpecial(a, b *candidate.Candidate, act Active) int {
	if !act.Special {
		return 0
	}
	return b.SpecialRank - a.SpecialRank
}

func compareCoverage(a, b *candidate.Candidate, act Active) int {
	if !act.Coverage {
		return 0
	}
	if c := compareScore(a, b); c != 0 {
		return c
	}
	return a.Length - b.Length
}

func compareHyphen(a, b *candidate.Candidate, act Active) int {
	if !act.Hyphen || a.Hyphen == b.Hyphen {
		return 0
	}
	if a.Hyphen {
		return -1
	}
	return 1
}

// compareLength prefers the better fit. Within a fit, the smaller distance
// wins, or the shorter word when the target acts as a cap.
func compareLength(a, b *candidate.Candidate, act Active) int {
	if !act.Length {
		return 0
	}
	if a.Fit != b.Fit {
		return int(b.Fit) - int(a.Fit)
	}
	if act.LengthCap {
		return a.Length - b.Length
	}
	return abs(a.Distance) - abs(b.Distance)
}

func compareScore(a, b *candidate.Candidate) int {
	switch {
	case a.Score > b.Score:
		return -1
	case a.Score < b.Score:
		return 1
	}
	return 0
}

// Compare folds the criteria in order and returns the first non-zero result.
func Compare(a, b *candidate.Candidate, order []model.Criterion, act Active) int {
	for _, key := range order {
		cmp, ok := comparators[key]
		if !ok {
			continue
		}
		if c := cmp(a, b, act); c != 0 {
			return c
		}
	}
	return 0
}

// compareFull extends Compare with the score, length and word tie-breaks so
// distinct words never tie.
func compareFull(a, b *candidate.Candidate, order []model.Criterion, act Active) int {
	if c := Compare(a, b, order, act); c != 0 {
		return c
	}
	if c := compareScore(a, b); c != 0 {
		return c
	}
	if a.Length != b.Length {
		return a.Length - b.Length
	}
	switch {
	case a.Word < b.Word:
		return -1
	case a.Word > b.Word:
		return 1
	}
	return 0
}

// Sort orders cands in place and assigns ranks and tones.
func Sort(cands []candidate.Candidate, order []model.Criterion, act Active) {
	order = model.NormalizePriorityOrder(order)
	sort.Slice(cands, func(i, j int) bool {
		return compareFull(&cands[i], &cands[j], order, act) < 0
	})
	for i := range cands {
		cands[i].Rank = i
		cands[i].Tone = Tone(&cands[i], order, act)
	}
}

// Eliminate returns the group that ties for best under the criteria alone.
// The returned slice preserves pool order.
func Eliminate(pool []candidate.Candidate, order []model.Criterion, act Active) []candidate.Candidate {
	if len(pool) == 0 {
		return nil
	}
	order = model.NormalizePriorityOrder(order)
	best := []candidate.Candidate{pool[0]}
	for i := 1; i < len(pool); i++ {
		switch c := Compare(&pool[i], &best[0], order, act); {
		case c < 0:
			best = []candidate.Candidate{pool[i]}
		case c == 0:
			best = append(best, pool[i])
		}
	}
	return best
}

// Tone picks the display tone from the first criterion in order that applies
// to c. Coverage never yields a tone.
func Tone(c *candidate.Candidate, order []model.Criterion, act Active) model.Tone {
	for _, key := range order {
		switch key {
		case model.CriterionContains:
			if act.Contains && c.ContainsIdx >= 0 {
				return model.ToneContains
			}
		case model.CriterionFoul:
			if act.Special && c.Special != "" {
				return specialTone(c.Special)
			}
		case model.CriterionHyphen:
			if act.Hyphen && c.Hyphen {
				return model.ToneHyphen
			}
		case model.CriterionLength:
			if !act.Length {
				continue
			}
			if c.Fit == candidate.FitExact {
				return model.ToneLengthExact
			}
			if act.LengthCap || c.Fit == candidate.FitNear {
				return model.ToneLengthFlex
			}
		}
	}
	return model.ToneDefault
}

func specialTone(cat model.Category) model.Tone {
	switch cat {
	case model.CategoryProfanity:
		return model.ToneFoul
	case model.CategoryPokemon:
		return model.TonePokemon
	case model.CategoryMinerals:
		return model.ToneMinerals
	case model.CategoryRare:
		return model.ToneRare
	default:
		return model.ToneDefault
	}
}

// Flags computes the post-ranking length flags for a ranked pool.
func Flags(cands []candidate.Candidate, act Active, limit int) (lenFallback, lenSuppressed bool) {
	if !act.Length {
		return false, false
	}
	var exact, near, special int
	for i := range cands {
		switch cands[i].Fit {
		case candidate.FitExact:
			exact++
		case candidate.FitNear:
			near++
		}
		if cands[i].Special != "" {
			special++
		}
	}
	if !act.Coverage && len(cands) > 0 {
		lenFallback = exact == 0 || (exact < limit && near > 0)
	}
	lenSuppressed = act.Special && special >= limit
	return lenFallback, lenSuppressed
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
