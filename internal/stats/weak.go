package stats

import (
	"sort"

	"github.com/verte-zerg/chainpick/internal/coverage"
)

// NeededLetters returns the letters with the most remaining need, up to top.
// A non-positive top returns all of them.
func NeededLetters(snap coverage.Snapshot, top int) []rune {
	type item struct {
		letter rune
		need   int
	}
	var items []item
	for i := 0; i < coverage.Letters; i++ {
		if need := snap.Targets[i] - snap.Counts[i]; need > 0 {
			items = append(items, item{letter: rune('a' + i), need: need})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].need == items[j].need {
			return items[i].letter < items[j].letter
		}
		return items[i].need > items[j].need
	})
	if top <= 0 || top > len(items) {
		top = len(items)
	}
	out := make([]rune, top)
	for i := range out {
		out[i] = items[i].letter
	}
	return out
}
