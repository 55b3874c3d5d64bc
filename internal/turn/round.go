// Package turn tracks the word offered for a turn and the words already
// rejected in it.
package turn

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/verte-zerg/chainpick/internal/candidate"
	"github.com/verte-zerg/chainpick/internal/model"
	"github.com/verte-zerg/chainpick/internal/rank"
)

var (
	// ErrPoolExhausted means every candidate of the round was rejected.
	ErrPoolExhausted = errors.New("candidate pool exhausted")
	// ErrRoundClosed means the round already ended with an accepted word.
	ErrRoundClosed = errors.New("round closed")
)

// State is the lifecycle position of a round.
type State int

// Round states.
const (
	StateIdle State = iota
	StateAwaiting
	StateAccepted
	StateRejected
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaiting:
		return "awaiting"
	case StateAccepted:
		return "accepted"
	case StateRejected:
		return "rejected"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Criteria is the ranking configuration captured when the round started.
type Criteria struct {
	Order  []model.Criterion
	Active rank.Active
}

// Round is the selection state of one turn.
type Round struct {
	ID       string
	Syllable string

	pool     []candidate.Candidate
	criteria Criteria
	postfix  string
	picker   *Picker

	failed  map[string]struct{}
	state   State
	current string
}

// NewRound starts a round over an already ranked pool.
func NewRound(syllable string, ranked []candidate.Candidate, criteria Criteria, postfix string, picker *Picker) *Round {
	if picker == nil {
		picker = NewPicker()
	}
	criteria.Order = model.NormalizePriorityOrder(criteria.Order)
	return &Round{
		ID:       uuid.NewString(),
		Syllable: syllable,
		pool:     append([]candidate.Candidate(nil), ranked...),
		criteria: criteria,
		postfix:  strings.ToLower(postfix),
		picker:   picker,
		failed:   make(map[string]struct{}),
	}
}

// Next offers the best ranked word not yet rejected.
func (r *Round) Next() (string, error) {
	if r.state == StateAccepted {
		return "", ErrRoundClosed
	}
	for _, c := range r.pool {
		if _, bad := r.failed[c.Word]; !bad {
			r.offer(c.Word)
			return c.Word, nil
		}
	}
	r.state = StateExhausted
	return "", ErrPoolExhausted
}

// Reject blacklists word, plus its bare form when it carries the postfix,
// and picks a replacement among the best remaining words. Ties are broken
// at random.
func (r *Round) Reject(word string) (string, error) {
	if r.state == StateAccepted {
		return "", ErrRoundClosed
	}
	lower := strings.ToLower(strings.TrimSpace(word))
	if lower != "" {
		r.failed[lower] = struct{}{}
	}
	if r.postfix != "" && strings.HasSuffix(lower, r.postfix) {
		if bare := strings.TrimSpace(strings.TrimSuffix(lower, r.postfix)); bare != "" {
			r.failed[bare] = struct{}{}
		}
	}
	r.state = StateRejected

	eligible := r.Eligible()
	if len(eligible) == 0 {
		r.state = StateExhausted
		r.current = ""
		return "", ErrPoolExhausted
	}
	best := rank.Eliminate(eligible, r.criteria.Order, r.criteria.Active)
	next := best[r.picker.Pick(len(best))].Word
	r.offer(next)
	return next, nil
}

// Accept ends the round.
func (r *Round) Accept(word string) {
	r.state = StateAccepted
	r.current = strings.ToLower(strings.TrimSpace(word))
}

// Eligible returns the pool words not yet rejected, in rank order.
func (r *Round) Eligible() []candidate.Candidate {
	out := make([]candidate.Candidate, 0, len(r.pool))
	for _, c := range r.pool {
		if _, bad := r.failed[c.Word]; !bad {
			out = append(out, c)
		}
	}
	return out
}

// Failed reports whether word was rejected this round.
func (r *Round) Failed(word string) bool {
	_, ok := r.failed[strings.ToLower(strings.TrimSpace(word))]
	return ok
}

// FailedWords returns the rejected words, sorted.
func (r *Round) FailedWords() []string {
	out := make([]string, 0, len(r.failed))
	for w := range r.failed {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// State returns the round state.
func (r *Round) State() State { return r.state }

// Current returns the word on offer, if any.
func (r *Round) Current() string { return r.current }

// Pool returns the ranked pool the round was started with.
func (r *Round) Pool() []candidate.Candidate { return r.pool }

func (r *Round) offer(word string) {
	r.current = word
	r.state = StateAwaiting
}
