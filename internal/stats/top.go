package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/chainpick/internal/model"
)

// HardestSyllables returns the N syllables with the most rejected plays.
func HardestSyllables(plays []model.Play, n int) []model.WordCount {
	if n <= 0 || len(plays) == 0 {
		return nil
	}
	counts := map[string]int{}
	for _, p := range plays {
		if p.Accepted || p.Syllable == "" {
			continue
		}
		counts[p.Syllable]++
	}
	items := make([]model.WordCount, 0, len(counts))
	for syl, c := range counts {
		items = append(items, model.WordCount{Word: syl, Count: c})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Word < items[j].Word
		}
		return items[i].Count > items[j].Count
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// RenderHardestSyllables prints the syllables with the most rejections.
func RenderHardestSyllables(w io.Writer, items []model.WordCount) error {
	if len(items) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Hardest Syllables"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.Word, fmt.Sprintf("%d", it.Count)})
	}
	for _, line := range formatTable([]string{"Syllable", "Rejected"}, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
