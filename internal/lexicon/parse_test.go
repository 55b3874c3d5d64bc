package lexicon

import (
	"reflect"
	"testing"
)

func TestParseWordsFormats(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{name: "json array", in: `["Apple", " banana ", "apple", 3]`, want: []string{"apple", "banana"}},
		{name: "json object", in: `{"words": ["Quiz", "quack"]}`, want: []string{"quiz", "quack"}},
		{name: "lines", in: "Quote\r\n\nquote\nzebra\n", want: []string{"quote", "zebra"}},
		{name: "broken json", in: "[not json\nword", want: []string{"[not json", "word"}},
		{name: "empty", in: "   \n", want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseWords(tc.in)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseWords(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeLang(t *testing.T) {
	cases := map[string]string{
		"English":      "en",
		"german":       "de",
		" French ":     "fr",
		"br":           "pt-br",
		"Portuguese":   "pt-br",
		"nahuatl":      "nah",
		"Pokemon (EN)": "pok-en",
		"klingon":      "en",
		"":             "en",
	}
	for in, want := range cases {
		if got := NormalizeLang(in); got != want {
			t.Fatalf("NormalizeLang(%q) = %q, want %q", in, got, want)
		}
	}
}
