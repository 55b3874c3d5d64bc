// Package ipc serves the engine over a msgpack stream, typically the
// stdin/stdout of a browser-side bridge.
package ipc

import (
	"github.com/verte-zerg/chainpick/internal/candidate"
	"github.com/verte-zerg/chainpick/internal/coverage"
	"github.com/verte-zerg/chainpick/internal/engine"
)

// Request types.
const (
	TypeTurn     = "turn"
	TypeOutcome  = "outcome"
	TypeSuggest  = "suggest"
	TypeLang     = "lang"
	TypeCoverage = "coverage"
	TypePriority = "priority"
	TypeStatus   = "status"
	TypeHealth   = "health"
)

// Response types not shared with requests.
const (
	TypeSuggestions = "suggestions"
	TypeSubmit      = "submit"
	TypeError       = "error"
)

// Coverage operations.
const (
	OpGet           = "get"
	OpAdjustCount   = "adjust-count"
	OpSetCount      = "set-count"
	OpAdjustTarget  = "adjust-target"
	OpSetTarget     = "set-target"
	OpSetAllTargets = "set-all-targets"
	OpGoals         = "goals"
	OpReset         = "reset"
)

// Error codes.
const (
	CodeBadRequest = "bad-request"
	CodeNoLexicon  = "no-lexicon"
	CodeExhausted  = "exhausted"
	CodeNoRound    = "no-round"
	CodeInternal   = "internal"
)

// Request is one inbound frame.
type Request struct {
	ID       uint64   `msgpack:"id"`
	Type     string   `msgpack:"type"`
	Syllable string   `msgpack:"syllable,omitempty"`
	Mine     bool     `msgpack:"mine,omitempty"`
	Context  string   `msgpack:"context,omitempty"`
	Word     string   `msgpack:"word,omitempty"`
	Accepted bool     `msgpack:"accepted,omitempty"`
	Reason   string   `msgpack:"reason,omitempty"`
	Lang     string   `msgpack:"lang,omitempty"`
	Op       string   `msgpack:"op,omitempty"`
	Letter   string   `msgpack:"letter,omitempty"`
	Value    int      `msgpack:"value,omitempty"`
	Goals    string   `msgpack:"goals,omitempty"`
	Priority []string `msgpack:"priority,omitempty"`
}

// Suggestion is a displayed word and its tone.
type Suggestion struct {
	Word string `msgpack:"word"`
	Tone string `msgpack:"tone"`
}

// Coverage carries the letter tallies, indexed a..z.
type Coverage struct {
	Counts  []int `msgpack:"counts"`
	Targets []int `msgpack:"targets"`
}

// Status mirrors engine.Status.
type Status struct {
	Lang     string   `msgpack:"lang"`
	Syllable string   `msgpack:"syllable"`
	RoundID  string   `msgpack:"round_id,omitempty"`
	State    string   `msgpack:"state"`
	Current  string   `msgpack:"current,omitempty"`
	Failed   []string `msgpack:"failed,omitempty"`
}

// Response is one outbound frame. Submit frames are unsolicited and carry no
// id.
type Response struct {
	ID       uint64       `msgpack:"id,omitempty"`
	Type     string       `msgpack:"type"`
	Context  string       `msgpack:"context,omitempty"`
	Syllable string       `msgpack:"syllable,omitempty"`
	Words    []string     `msgpack:"words,omitempty"`
	Display  []Suggestion `msgpack:"display,omitempty"`
	Flags    []string     `msgpack:"flags,omitempty"`
	Word     string       `msgpack:"word,omitempty"`
	Coverage *Coverage    `msgpack:"coverage,omitempty"`
	Status   *Status      `msgpack:"status,omitempty"`
	Priority []string     `msgpack:"priority,omitempty"`
	Code     string       `msgpack:"code,omitempty"`
	Error    string       `msgpack:"error,omitempty"`
}

func suggestionsResponse(id uint64, s engine.Suggestions) Response {
	display := make([]Suggestion, 0, len(s.Display))
	for _, c := range s.Display {
		display = append(display, Suggestion{Word: c.Word, Tone: string(c.Tone)})
	}
	return Response{
		ID:       id,
		Type:     TypeSuggestions,
		Context:  string(s.Context),
		Syllable: s.Syllable,
		Words:    s.Words,
		Display:  display,
		Flags:    flagNames(s.Flags),
	}
}

func flagNames(f candidate.Flags) []string {
	var out []string
	add := func(on bool, name string) {
		if on {
			out = append(out, name)
		}
	}
	add(f.FoulFallback, "foul-fallback")
	add(f.PokemonFallback, "pokemon-fallback")
	add(f.MineralsFallback, "minerals-fallback")
	add(f.RareFallback, "rare-fallback")
	add(f.LenCapApplied, "len-cap-applied")
	add(f.LenCapRelaxed, "len-cap-relaxed")
	add(f.LenFallback, "len-fallback")
	add(f.LenSuppressed, "len-suppressed")
	return out
}

func coverageOf(s coverage.Snapshot) *Coverage {
	return &Coverage{Counts: append([]int(nil), s.Counts[:]...), Targets: append([]int(nil), s.Targets[:]...)}
}

func statusOf(s engine.Status) *Status {
	return &Status{
		Lang:     s.Lang,
		Syllable: s.Syllable,
		RoundID:  s.RoundID,
		State:    s.State.String(),
		Current:  s.Current,
		Failed:   s.Failed,
	}
}
