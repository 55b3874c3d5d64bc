package lexicon

import (
	"encoding/json"
	"strings"
)

var langAliases = map[string]string{
	"english":      "en",
	"en":           "en",
	"german":       "de",
	"de":           "de",
	"french":       "fr",
	"fr":           "fr",
	"spanish":      "es",
	"es":           "es",
	"portuguese":   "pt-br",
	"pt-br":        "pt-br",
	"br":           "pt-br",
	"nahuatl":      "nah",
	"nah":          "nah",
	"pokemon (en)": "pok-en",
	"pok-en":       "pok-en",
	"pokemon (fr)": "pok-fr",
	"pok-fr":       "pok-fr",
	"pokemon (de)": "pok-de",
	"pok-de":       "pok-de",
}

// NormalizeLang maps a language name or code to a lexicon code.
// Unknown names map to "en".
func NormalizeLang(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if code, ok := langAliases[key]; ok {
		return code
	}
	return "en"
}

// ParseWords extracts a normalized word list from a payload. JSON arrays and
// objects with a "words" array are accepted; anything else is read as one
// word per line. Words are trimmed, lowercased and deduplicated in order.
func ParseWords(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if trimmed[0] == '[' || trimmed[0] == '{' {
		if words := parseJSONWords(trimmed); len(words) > 0 {
			return words
		}
	}
	return NormalizeWords(strings.Split(text, "\n"))
}

func parseJSONWords(text string) []string {
	var raw []any
	if text[0] == '[' {
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return nil
		}
	} else {
		var obj struct {
			Words []any `json:"words"`
		}
		if err := json.Unmarshal([]byte(text), &obj); err != nil {
			return nil
		}
		raw = obj.Words
	}
	items := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			items = append(items, s)
		}
	}
	return NormalizeWords(items)
}

// NormalizeWords trims and lowercases words, dropping blanks and duplicates.
func NormalizeWords(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		word := strings.ToLower(strings.TrimSpace(item))
		if word == "" {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	return out
}
