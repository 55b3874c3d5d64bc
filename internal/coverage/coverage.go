// Package coverage tracks progress toward per-letter alphabet goals.
package coverage

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/verte-zerg/chainpick/internal/model"
)

// Letters is the number of tracked letters.
const Letters = 26

// MaxValue bounds every count and target.
const MaxValue = 99

// Snapshot is a copy of the tally state.
type Snapshot struct {
	Counts  [Letters]int
	Targets [Letters]int
}

// Tracker holds per-letter counts and targets. Counts never exceed targets.
type Tracker struct {
	counts   [Letters]int
	targets  [Letters]int
	onChange func(Snapshot)
}

// New returns a tracker with zero counts and the given targets.
func New(targets [Letters]int) *Tracker {
	t := &Tracker{}
	for i, v := range targets {
		t.targets[i] = model.ClampInt(v, 0, MaxValue)
	}
	return t
}

// Restore returns a tracker initialized from a saved snapshot.
func Restore(s Snapshot) *Tracker {
	t := New(s.Targets)
	for i, v := range s.Counts {
		t.counts[i] = model.ClampInt(v, 0, t.targets[i])
	}
	return t
}

// OnChange registers a hook called with a snapshot after every mutation.
func (t *Tracker) OnChange(fn func(Snapshot)) {
	t.onChange = fn
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{Counts: t.counts, Targets: t.targets}
}

// Counts returns a copy of the counts.
func (t *Tracker) Counts() [Letters]int { return t.counts }

// Targets returns a copy of the targets.
func (t *Tracker) Targets() [Letters]int { return t.targets }

// Apply tallies a confirmed word. Occurrences are added for every letter with
// a positive target, clamped to the target. When every positive target is
// then complete, counts reset to zero and Apply reports true.
func (t *Tracker) Apply(word string) bool {
	occ, letters := letterCounts(word)
	for i, ok := letters.NextSet(0); ok; i, ok = letters.NextSet(i + 1) {
		if t.targets[i] <= 0 {
			continue
		}
		t.counts[i] = model.ClampInt(t.counts[i]+occ[i], 0, t.targets[i])
	}
	reset := t.complete()
	if reset {
		t.counts = [Letters]int{}
	}
	t.changed()
	return reset
}

// complete reports whether every positive target is met. A tracker with no
// positive target is never complete.
func (t *Tracker) complete() bool {
	positive := false
	for i, target := range t.targets {
		if target <= 0 {
			continue
		}
		positive = true
		if t.counts[i] < target {
			return false
		}
	}
	return positive
}

// Reset zeroes every count, keeping targets.
func (t *Tracker) Reset() {
	t.counts = [Letters]int{}
	t.changed()
}

// AdjustCount adds delta to a letter's count.
func (t *Tracker) AdjustCount(letter rune, delta int) {
	if i, ok := letterIndex(letter); ok {
		t.setCount(i, t.counts[i]+delta)
		t.changed()
	}
}

// SetCount sets a letter's count.
func (t *Tracker) SetCount(letter rune, value int) {
	if i, ok := letterIndex(letter); ok {
		t.setCount(i, value)
		t.changed()
	}
}

// AdjustTarget adds delta to a letter's target.
func (t *Tracker) AdjustTarget(letter rune, delta int) {
	if i, ok := letterIndex(letter); ok {
		t.setTarget(i, t.targets[i]+delta)
		t.changed()
	}
}

// SetTarget sets a letter's target.
func (t *Tracker) SetTarget(letter rune, value int) {
	if i, ok := letterIndex(letter); ok {
		t.setTarget(i, value)
		t.changed()
	}
}

// SetAllTargets sets every target to value.
func (t *Tracker) SetAllTargets(value int) {
	for i := range t.targets {
		t.setTarget(i, value)
	}
	t.changed()
}

// SetTargets replaces every target.
func (t *Tracker) SetTargets(targets [Letters]int) {
	for i, v := range targets {
		t.setTarget(i, v)
	}
	t.changed()
}

func (t *Tracker) setCount(i, value int) {
	t.counts[i] = model.ClampInt(value, 0, t.targets[i])
}

func (t *Tracker) setTarget(i, value int) {
	t.targets[i] = model.ClampInt(value, 0, MaxValue)
	if t.counts[i] > t.targets[i] {
		t.counts[i] = t.targets[i]
	}
}

func (t *Tracker) changed() {
	if t.onChange != nil {
		t.onChange(t.Snapshot())
	}
}

// Score rates how much word advances the goals. Each distinct letter with
// remaining need contributes min(occurrences, need) times its weight, plus one
// flat weight when the word finishes that letter. Letters with target 0 never
// score.
func Score(word string, counts, targets [Letters]int, weights [Letters]float64) float64 {
	occ, letters := letterCounts(word)
	score := 0.0
	for i, ok := letters.NextSet(0); ok; i, ok = letters.NextSet(i + 1) {
		if targets[i] <= 0 || counts[i] >= targets[i] {
			continue
		}
		need := targets[i] - counts[i]
		contribution := min(occ[i], need)
		score += float64(contribution) * weights[i]
		if contribution == need {
			score += weights[i]
		}
	}
	return score
}

// Score rates word against the tracker's current state.
func (t *Tracker) Score(word string, weights [Letters]float64) float64 {
	return Score(word, t.counts, t.targets, weights)
}

func letterCounts(word string) ([Letters]int, *bitset.BitSet) {
	var occ [Letters]int
	letters := bitset.New(Letters)
	for _, r := range word {
		if i, ok := letterIndex(r); ok {
			occ[i]++
			letters.Set(uint(i))
		}
	}
	return occ, letters
}

func letterIndex(r rune) (int, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return int(r - 'a'), true
	case r >= 'A' && r <= 'Z':
		return int(r - 'A'), true
	default:
		return 0, false
	}
}
