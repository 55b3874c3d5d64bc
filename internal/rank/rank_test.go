package rank

import (
	"reflect"
	"testing"

	"github.com/verte-zerg/chainpick/internal/candidate"
	"github.com/verte-zerg/chainpick/internal/coverage"
	"github.com/verte-zerg/chainpick/internal/lexicon"
	"github.com/verte-zerg/chainpick/internal/model"
)

func generate(t *testing.T, lists map[model.Category][]string, syllable string, modes model.Modes) candidate.Pool {
	t.Helper()
	lex, err := lexicon.New("en", lists)
	if err != nil {
		t.Fatalf("new lexicon: %v", err)
	}
	return candidate.Generate(lex, candidate.Request{
		Syllable: syllable,
		Modes:    modes,
		Targets:  coverage.ParseGoals(""),
	})
}

func TestQuackScenario(t *testing.T) {
	modes := model.Modes{TargetLen: 8}
	pool := generate(t, map[model.Category][]string{model.CategoryMain: {"quack", "quote", "quiz"}}, "qu", modes)
	act := ActiveFor(modes)
	Sort(pool.Candidates, model.DefaultPriorityOrder, act)

	if len(pool.Candidates) != 3 {
		t.Fatalf("expected three candidates, got %v", candidate.Words(pool.Candidates))
	}
	for i, c := range pool.Candidates {
		if c.Tone != model.ToneDefault || c.Rank != i {
			t.Fatalf("candidate %q tone=%s rank=%d", c.Word, c.Tone, c.Rank)
		}
	}
	lenFallback, _ := Flags(pool.Candidates, act, 5)
	if lenFallback {
		t.Fatalf("lenFallback must stay off without length mode")
	}
}

func TestLengthFallbackScenario(t *testing.T) {
	modes := model.Modes{Length: true, TargetLen: 8}
	// no 8-letter word contains "mple"; sampler has 7 letters, ampleness 9
	words := []string{"complementarities", "simple", "ampleness", "sampler"}
	pool := generate(t, map[model.Category][]string{model.CategoryMain: words}, "mple", modes)
	act := ActiveFor(modes)
	Sort(pool.Candidates, model.DefaultPriorityOrder, act)

	got := candidate.Words(pool.Candidates)
	top := map[string]bool{got[0]: true, got[1]: true}
	if !top["sampler"] || !top["ampleness"] {
		t.Fatalf("expected distance-1 words first, got %v", got)
	}
	if got[2] != "simple" || got[3] != "complementarities" {
		t.Fatalf("order = %v", got)
	}
	for _, c := range pool.Candidates[:3] {
		if c.Tone != model.ToneLengthFlex {
			t.Fatalf("%q tone = %s, want lengthFlex", c.Word, c.Tone)
		}
	}
	if pool.Candidates[3].Tone != model.ToneDefault {
		t.Fatalf("far word tone = %s, want default", pool.Candidates[3].Tone)
	}
	lenFallback, _ := Flags(pool.Candidates, act, 5)
	if !lenFallback {
		t.Fatalf("expected lenFallback with no exact match")
	}
}

func TestLenFallbackWhenExactShortOfLimit(t *testing.T) {
	act := Active{Length: true}
	cands := []candidate.Candidate{
		{Word: "abcdefgh", Fit: candidate.FitExact},
		{Word: "abcdefg", Fit: candidate.FitNear},
	}
	if fb, _ := Flags(cands, act, 5); !fb {
		t.Fatalf("expected fallback when exact matches are below the limit")
	}
	if fb, _ := Flags(cands, act, 1); fb {
		t.Fatalf("no fallback when exact matches fill the limit")
	}
	act.Coverage = true
	if fb, _ := Flags(cands, act, 5); fb {
		t.Fatalf("no length fallback in coverage mode")
	}
	if fb, _ := Flags(nil, Active{Length: true}, 5); fb {
		t.Fatalf("no fallback for an empty pool")
	}
}

func TestLenSuppressed(t *testing.T) {
	act := Active{Length: true, Special: true}
	cands := []candidate.Candidate{
		{Word: "darn", Special: model.CategoryProfanity},
		{Word: "heck", Special: model.CategoryProfanity},
		{Word: "quack"},
	}
	if _, s := Flags(cands, act, 2); !s {
		t.Fatalf("expected lenSuppressed when specials fill the limit")
	}
	if _, s := Flags(cands, act, 3); s {
		t.Fatalf("did not expect lenSuppressed below the limit")
	}
}

func TestSortIsDeterministicTotalOrder(t *testing.T) {
	modes := model.Modes{Coverage: true, Hyphen: true, TargetLen: 8}
	words := []string{"cab", "bac", "abc", "a-bc", "cabbage", "back", "bca"}
	act := ActiveFor(modes)

	first := generate(t, map[model.Category][]string{model.CategoryMain: words}, "b", modes)
	Sort(first.Candidates, model.DefaultPriorityOrder, act)

	reversed := append([]string(nil), words...)
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	second := generate(t, map[model.Category][]string{model.CategoryMain: reversed}, "b", modes)
	Sort(second.Candidates, model.DefaultPriorityOrder, act)

	if !reflect.DeepEqual(candidate.Words(first.Candidates), candidate.Words(second.Candidates)) {
		t.Fatalf("order depends on input: %v vs %v", candidate.Words(first.Candidates), candidate.Words(second.Candidates))
	}
	for i := 1; i < len(first.Candidates); i++ {
		if compareFull(&first.Candidates[i-1], &first.Candidates[i], model.DefaultPriorityOrder, act) >= 0 {
			t.Fatalf("%q and %q are not strictly ordered", first.Candidates[i-1].Word, first.Candidates[i].Word)
		}
	}
}

func TestPriorityOrderChangesPrecedence(t *testing.T) {
	act := Active{Special: true, Hyphen: true}
	cands := func() []candidate.Candidate {
		return []candidate.Candidate{
			{Word: "darn", Special: model.CategoryProfanity, SpecialRank: candidate.SpecialRank[model.CategoryProfanity], ContainsIdx: -1, Length: 4},
			{Word: "x-ray", Hyphen: true, ContainsIdx: -1, Length: 5},
		}
	}

	byFoul := cands()
	Sort(byFoul, model.DefaultPriorityOrder, act)
	if byFoul[0].Word != "darn" || byFoul[0].Tone != model.ToneFoul || byFoul[1].Tone != model.ToneHyphen {
		t.Fatalf("default order = %v", byFoul)
	}

	byHyphen := cands()
	Sort(byHyphen, []model.Criterion{model.CriterionHyphen}, act)
	if byHyphen[0].Word != "x-ray" || byHyphen[0].Tone != model.ToneHyphen {
		t.Fatalf("hyphen-first order = %v", byHyphen)
	}
}

func TestContainsPrefersEarlierIndex(t *testing.T) {
	modes := model.Modes{Contains: true, ContainsText: "er", TargetLen: 8}
	pool := generate(t, map[model.Category][]string{model.CategoryMain: {"stone", "hunter", "ernest", "nerds"}}, "n", modes)
	Sort(pool.Candidates, model.DefaultPriorityOrder, ActiveFor(modes))
	got := candidate.Words(pool.Candidates)
	want := []string{"ernest", "nerds", "hunter", "stone"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if pool.Candidates[3].Tone != model.ToneDefault || pool.Candidates[0].Tone != model.ToneContains {
		t.Fatalf("unexpected tones %s %s", pool.Candidates[0].Tone, pool.Candidates[3].Tone)
	}
}

func TestLengthCapPrefersShorter(t *testing.T) {
	act := Active{Length: true, Coverage: true, LengthCap: true}
	cands := []candidate.Candidate{
		{Word: "abcde", Length: 5, Fit: candidate.FitNear, Distance: -1},
		{Word: "abc", Length: 3, Fit: candidate.FitNear, Distance: -3},
		{Word: "abcdef", Length: 6, Fit: candidate.FitExact},
	}
	Sort(cands, []model.Criterion{model.CriterionLength}, act)
	got := candidate.Words(cands)
	want := []string{"abcdef", "abc", "abcde"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if cands[0].Tone != model.ToneLengthExact || cands[1].Tone != model.ToneLengthFlex {
		t.Fatalf("cap tones = %s %s", cands[0].Tone, cands[1].Tone)
	}
}

func TestEliminateReturnsTiedGroup(t *testing.T) {
	act := Active{Hyphen: true}
	pool := []candidate.Candidate{
		{Word: "plain"},
		{Word: "x-ray", Hyphen: true},
		{Word: "t-shirt", Hyphen: true},
	}
	got := candidate.Words(Eliminate(pool, model.DefaultPriorityOrder, act))
	want := []string{"x-ray", "t-shirt"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("eliminate = %v, want %v", got, want)
	}
	if Eliminate(nil, model.DefaultPriorityOrder, act) != nil {
		t.Fatalf("expected nil for empty pool")
	}
	all := Eliminate(pool, model.DefaultPriorityOrder, Active{})
	if len(all) != len(pool) {
		t.Fatalf("without active criteria every word ties, got %d", len(all))
	}
}
