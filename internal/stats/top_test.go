package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/chainpick/internal/coverage"
	"github.com/verte-zerg/chainpick/internal/model"
)

func TestHardestSyllables(t *testing.T) {
	plays := []model.Play{
		{Syllable: "qu"},
		{Syllable: "zz"},
		{Syllable: "zz"},
		{Syllable: "qu", Accepted: true},
		{Syllable: "ab"},
	}
	got := HardestSyllables(plays, 2)
	if len(got) != 2 || got[0].Word != "zz" || got[0].Count != 2 || got[1].Word != "ab" {
		t.Fatalf("unexpected hardest syllables: %+v", got)
	}
}

func TestNeededLetters(t *testing.T) {
	var snap coverage.Snapshot
	snap.Targets['e'-'a'] = 3
	snap.Targets['q'-'a'] = 1
	snap.Targets['a'-'a'] = 1
	snap.Counts['a'-'a'] = 1
	got := string(NeededLetters(snap, 0))
	if got != "eq" {
		t.Fatalf("needed letters = %q, want eq", got)
	}
	if got := string(NeededLetters(snap, 1)); got != "e" {
		t.Fatalf("top needed letter = %q, want e", got)
	}
}

func TestRenderHardestSyllables(t *testing.T) {
	var buf bytes.Buffer
	items := []model.WordCount{{Word: "zz", Count: 12}, {Word: "qu", Count: 3}}
	if err := RenderHardestSyllables(&buf, items); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "Hardest Syllables" {
		t.Fatalf("unexpected title %q", lines[0])
	}
	if lines[1] != "Syllable Rejected" {
		t.Fatalf("unexpected header %q", lines[1])
	}
	if lines[2] != "zz             12" || lines[3] != "qu              3" {
		t.Fatalf("unexpected rows %q %q", lines[2], lines[3])
	}

	buf.Reset()
	if err := RenderHardestSyllables(&buf, nil); err != nil || buf.Len() != 0 {
		t.Fatalf("expected no output for empty input, got %q", buf.String())
	}
}
