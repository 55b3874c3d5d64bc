package lexicon

import "github.com/bits-and-blooms/bitset"

const minDocFreq = 0.001

// LetterSet returns the distinct a-z letters of word as a 26-bit set.
func LetterSet(word string) *bitset.BitSet {
	set := bitset.New(26)
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch >= 'a' && ch <= 'z' {
			set.Set(uint(ch - 'a'))
		}
	}
	return set
}

// LetterWeights computes relative letter rarity over words. Each weight is
// the inverse document frequency of the letter divided by the mean, so the
// vector averages to 1.
func LetterWeights(words []string) [26]float64 {
	var docFreq [26]int
	for _, word := range words {
		set := LetterSet(word)
		for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
			docFreq[i]++
		}
	}

	total := len(words)
	if total == 0 {
		total = 1
	}
	var weights [26]float64
	sum := 0.0
	for i := range weights {
		freq := float64(docFreq[i]) / float64(total)
		if freq < minDocFreq {
			freq = minDocFreq
		}
		weights[i] = 1 / freq
		sum += weights[i]
	}
	mean := sum / 26
	if mean == 0 {
		mean = 1
	}
	for i := range weights {
		weights[i] /= mean
	}
	return weights
}

// UniformWeights returns a vector of ones.
func UniformWeights() [26]float64 {
	var weights [26]float64
	for i := range weights {
		weights[i] = 1
	}
	return weights
}
