package lexicon

import (
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// suffixKeyLen caps the indexed suffix length in bytes. Longer queries are
// looked up by their first suffixKeyLen bytes and then checked word by word.
const suffixKeyLen = 6

// suffixIndex answers substring queries by storing every suffix of every
// word, cut to suffixKeyLen, in a patricia trie; the words containing s are
// the items found under the subtree rooted at s.
type suffixIndex struct {
	trie  *patricia.Trie
	words []string
}

func newSuffixIndex(words []string) *suffixIndex {
	ids := make(map[string][]uint32)
	for id, word := range words {
		for i := range word {
			key := suffixKey(word[i:])
			list := ids[key]
			if n := len(list); n > 0 && list[n-1] == uint32(id) {
				continue
			}
			ids[key] = append(list, uint32(id))
		}
	}
	trie := patricia.NewTrie()
	for key, list := range ids {
		trie.Insert(patricia.Prefix(key), list)
	}
	return &suffixIndex{trie: trie, words: words}
}

func suffixKey(s string) string {
	if len(s) > suffixKeyLen {
		return s[:suffixKeyLen]
	}
	return s
}

// match returns the words containing sub, in list order.
func (x *suffixIndex) match(sub string) []string {
	if sub == "" || len(x.words) == 0 {
		return nil
	}
	hits := bitset.New(uint(len(x.words)))
	err := x.trie.VisitSubtree(patricia.Prefix(suffixKey(sub)), func(_ patricia.Prefix, item patricia.Item) error {
		for _, id := range item.([]uint32) {
			hits.Set(uint(id))
		}
		return nil
	})
	if err != nil {
		log.Errorf("visiting suffix index for %q: %v", sub, err)
		return nil
	}
	long := len(sub) > suffixKeyLen
	out := make([]string, 0, hits.Count())
	for i, ok := hits.NextSet(0); ok; i, ok = hits.NextSet(i + 1) {
		if long && !strings.Contains(x.words[i], sub) {
			continue
		}
		out = append(out, x.words[i])
	}
	return out
}
