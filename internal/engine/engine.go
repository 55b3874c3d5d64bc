// Package engine drives suggestion, submission and retry for live turns.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/verte-zerg/chainpick/internal/candidate"
	"github.com/verte-zerg/chainpick/internal/coverage"
	"github.com/verte-zerg/chainpick/internal/lexicon"
	"github.com/verte-zerg/chainpick/internal/model"
	"github.com/verte-zerg/chainpick/internal/rank"
	"github.com/verte-zerg/chainpick/internal/turn"
)

// SuicideCommand is submitted instead of a word in auto-suicide mode.
const SuicideCommand = "/suicide"

// ErrNoRound means an outcome arrived while no local round was active.
var ErrNoRound = errors.New("no active round")

// Submitter performs the actual input of a chosen word.
type Submitter interface {
	Submit(ctx context.Context, word string) error
}

// Recorder persists played words.
type Recorder interface {
	InsertPlay(ctx context.Context, play model.Play) error
}

// Suggestions is the ranked result for one syllable.
type Suggestions struct {
	Context    model.Context
	Syllable   string
	Words      []string
	Display    []candidate.Candidate
	Candidates []candidate.Candidate
	Flags      candidate.Flags
}

// Outcome reports what the game did with a submitted word.
type Outcome struct {
	Word     string
	Accepted bool
	Reason   string
	Mine     bool
}

// Status is a summary of the engine's turn state.
type Status struct {
	Lang     string
	Syllable string
	RoundID  string
	State    turn.State
	Current  string
	Failed   []string
}

// Options configures an Engine.
type Options struct {
	Settings  model.Settings
	Loader    *lexicon.Loader
	Submitter Submitter
	Recorder  Recorder
	Logger    *log.Logger
	Picker    *turn.Picker
	// Coverage restores saved tallies; nil starts from the goal settings.
	Coverage *coverage.Snapshot
	// OnCoverageChange is called with every tally change.
	OnCoverageChange func(lang string, s coverage.Snapshot)
}

// Engine owns the settings, coverage tallies and the active round. Callers
// serialize turn events; the engine guards its state against its own
// submission goroutines.
type Engine struct {
	mu       sync.Mutex
	settings model.Settings
	tracker  *coverage.Tracker
	round    *turn.Round
	syllable string
	cancel   context.CancelFunc

	loader    *lexicon.Loader
	submitter Submitter
	recorder  Recorder
	logger    *log.Logger
	picker    *turn.Picker
	onChange  func(lang string, s coverage.Snapshot)

	wg sync.WaitGroup
}

// New builds an engine from opts.
func New(opts Options) *Engine {
	settings := opts.Settings
	settings.Lang = lexicon.NormalizeLang(settings.Lang)
	settings.Normalize()

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	picker := opts.Picker
	if picker == nil {
		picker = turn.NewPicker()
	}

	var tracker *coverage.Tracker
	if opts.Coverage != nil {
		tracker = coverage.Restore(*opts.Coverage)
	} else {
		tracker = coverage.New(coverage.Targets(settings.GoalsEnabled, settings.GoalSpec))
	}

	e := &Engine{
		settings:  settings,
		tracker:   tracker,
		loader:    opts.Loader,
		submitter: opts.Submitter,
		recorder:  opts.Recorder,
		logger:    logger,
		picker:    picker,
		onChange:  opts.OnCoverageChange,
	}
	// tracker mutations only happen with e.mu held
	tracker.OnChange(func(s coverage.Snapshot) {
		if e.onChange != nil {
			e.onChange(e.settings.Lang, s)
		}
	})
	return e
}

// Suggest generates and ranks the words for a syllable in a context.
func (e *Engine) Suggest(ctx context.Context, c model.Context, syllable string) (Suggestions, error) {
	syllable = strings.ToLower(strings.TrimSpace(syllable))
	result := Suggestions{Context: c, Syllable: syllable}
	if syllable == "" {
		return result, nil
	}
	lex, err := e.lexicon(ctx)
	if err != nil {
		return result, err
	}

	e.mu.Lock()
	settings := e.settings
	counts, targets := e.tracker.Counts(), e.tracker.Targets()
	e.mu.Unlock()

	modes := settings.Modes(c)
	pool := candidate.Generate(lex, candidate.Request{
		Context:  c,
		Syllable: syllable,
		Modes:    modes,
		Counts:   counts,
		Targets:  targets,
	})
	act := rank.ActiveFor(modes)
	rank.Sort(pool.Candidates, settings.PriorityOrder, act)
	pool.Flags.LenFallback, pool.Flags.LenSuppressed = rank.Flags(pool.Candidates, act, settings.Limit)

	result.Candidates = pool.Candidates
	result.Flags = pool.Flags
	result.Words = candidate.Words(pool.Candidates)
	result.Display = pool.Candidates[:min(settings.Limit, len(pool.Candidates))]
	e.logger.Debug("suggestions ready", "context", c, "syllable", syllable, "pool", len(pool.Candidates))
	return result, nil
}

// StartTurn begins a new turn. Any in-flight submission is cancelled. For
// the local player a round is started and the best word is submitted in the
// background; other players' turns only produce spectator suggestions.
func (e *Engine) StartTurn(ctx context.Context, syllable string, mine bool) (Suggestions, error) {
	e.mu.Lock()
	e.stopSubmissionLocked()
	e.round = nil
	e.syllable = strings.ToLower(strings.TrimSpace(syllable))
	current := e.syllable
	autoSuicide := e.settings.AutoSuicide
	e.mu.Unlock()

	if !mine {
		return e.Suggest(ctx, model.ContextSpectator, syllable)
	}
	if autoSuicide {
		e.mu.Lock()
		e.submitLocked(ctx, SuicideCommand, true)
		e.mu.Unlock()
		return Suggestions{Context: model.ContextSelf, Syllable: current}, nil
	}

	sugg, err := e.Suggest(ctx, model.ContextSelf, syllable)
	if err != nil {
		return sugg, fmt.Errorf("start turn %q: %w", syllable, err)
	}
	if sugg.Syllable == "" {
		return sugg, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.syllable != sugg.Syllable {
		// a newer turn started while ranking
		return sugg, nil
	}
	postfix := ""
	if e.settings.PostfixEnabled {
		postfix = e.settings.PostfixText
	}
	modes := e.settings.Modes(model.ContextSelf)
	e.round = turn.NewRound(sugg.Syllable, sugg.Candidates, turn.Criteria{
		Order:  e.settings.PriorityOrder,
		Active: rank.ActiveFor(modes),
	}, postfix, e.picker)

	word, err := e.round.Next()
	if err != nil {
		e.logger.Warn("no playable word", "syllable", sugg.Syllable, "err", err)
		return sugg, err
	}
	e.submitLocked(ctx, word, false)
	return sugg, nil
}

// HandleOutcome records the result of a submitted word. An accepted local
// word updates the coverage tallies; a rejected one triggers a replacement.
func (e *Engine) HandleOutcome(ctx context.Context, out Outcome) error {
	word := strings.ToLower(strings.TrimSpace(out.Word))
	e.record(ctx, out, word)
	if !out.Mine {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.round == nil {
		return ErrNoRound
	}
	if out.Accepted {
		e.stopSubmissionLocked()
		e.round.Accept(word)
		e.applyLocked(word)
		return nil
	}

	next, err := e.round.Reject(word)
	if err != nil {
		e.stopSubmissionLocked()
		return err
	}
	e.submitLocked(ctx, next, false)
	return nil
}

// SelectReplacementAfterFailure blacklists word in the active round and
// returns the next word to try.
func (e *Engine) SelectReplacementAfterFailure(word string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.round == nil {
		return "", ErrNoRound
	}
	return e.round.Reject(word)
}

// ApplyCorrectWord tallies a confirmed local word and reports whether the
// coverage goals were completed and reset.
func (e *Engine) ApplyCorrectWord(word string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applyLocked(strings.ToLower(strings.TrimSpace(word)))
}

func (e *Engine) applyLocked(word string) bool {
	if e.settings.PostfixEnabled && e.settings.PostfixText != "" {
		word = strings.TrimSpace(strings.TrimSuffix(word, strings.ToLower(e.settings.PostfixText)))
	}
	reset := e.tracker.Apply(word)
	if reset {
		e.logger.Info("coverage goals complete, tallies reset")
	}
	return reset
}

// SetLanguage switches the lexicon. Changing language clears the tallies and
// the active round.
func (e *Engine) SetLanguage(ctx context.Context, lang string) error {
	code := lexicon.NormalizeLang(lang)
	if _, err := e.loader.Load(ctx, code); err != nil {
		return fmt.Errorf("set language %s: %w", code, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if code == e.settings.Lang {
		return nil
	}
	e.settings.Lang = code
	e.stopSubmissionLocked()
	e.round = nil
	e.tracker.Reset()
	e.logger.Info("language changed", "lang", code)
	return nil
}

// Lang returns the active language code.
func (e *Engine) Lang() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings.Lang
}

// Settings returns a copy of the current settings.
func (e *Engine) Settings() model.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.settings
	s.PriorityOrder = append([]model.Criterion(nil), s.PriorityOrder...)
	return s
}

// UpdateSettings applies fn to the settings and normalizes the result. Goal
// changes recompute the targets; a language change behaves like SetLanguage
// without preloading.
func (e *Engine) UpdateSettings(fn func(*model.Settings)) model.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	before := e.settings
	next := e.settings
	next.PriorityOrder = append([]model.Criterion(nil), before.PriorityOrder...)
	fn(&next)
	next.Lang = lexicon.NormalizeLang(next.Lang)
	next.Normalize()
	e.settings = next

	if next.GoalsEnabled != before.GoalsEnabled || next.GoalSpec != before.GoalSpec {
		e.tracker.SetTargets(coverage.Targets(next.GoalsEnabled, next.GoalSpec))
	}
	if next.Lang != before.Lang {
		e.stopSubmissionLocked()
		e.round = nil
		e.tracker.Reset()
	}
	return next
}

// PriorityOrder returns the ranking order.
func (e *Engine) PriorityOrder() []model.Criterion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Criterion(nil), e.settings.PriorityOrder...)
}

// SetPriorityOrder normalizes and stores a ranking order.
func (e *Engine) SetPriorityOrder(order []model.Criterion) []model.Criterion {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.PriorityOrder = model.NormalizePriorityOrder(order)
	return append([]model.Criterion(nil), e.settings.PriorityOrder...)
}

// Status reports the active round.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{Lang: e.settings.Lang, Syllable: e.syllable}
	if e.round != nil {
		st.RoundID = e.round.ID
		st.State = e.round.State()
		st.Current = e.round.Current()
		st.Failed = e.round.FailedWords()
	}
	return st
}

// Wait blocks until background submissions finish.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Close cancels any in-flight submission and waits for it.
func (e *Engine) Close() {
	e.mu.Lock()
	e.stopSubmissionLocked()
	e.mu.Unlock()
	e.wg.Wait()
}

func (e *Engine) lexicon(ctx context.Context) (*lexicon.Lexicon, error) {
	e.mu.Lock()
	lang := e.settings.Lang
	e.mu.Unlock()
	if e.loader == nil {
		return nil, lexicon.ErrNoLexiconAvailable
	}
	return e.loader.Load(ctx, lang)
}

func (e *Engine) stopSubmissionLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// submitLocked hands word to the submitter after the configured delay. The
// postfix is appended unless raw is set or auto-suicide is on.
func (e *Engine) submitLocked(ctx context.Context, word string, raw bool) {
	e.stopSubmissionLocked()
	if e.submitter == nil {
		return
	}
	text := word
	if !raw && !e.settings.AutoSuicide && e.settings.PostfixEnabled {
		text += e.settings.PostfixText
	}
	delay := e.settings.SubmitDelay

	subCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-subCtx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
		if err := e.submitter.Submit(subCtx, text); err != nil && !errors.Is(err, context.Canceled) {
			e.logger.Warn("submit failed", "word", text, "err", err)
		}
	}()
}

func (e *Engine) record(ctx context.Context, out Outcome, word string) {
	if e.recorder == nil || word == "" {
		return
	}
	e.mu.Lock()
	play := model.Play{
		PlayedAt: time.Now().UTC(),
		Lang:     e.settings.Lang,
		Syllable: e.syllable,
		Word:     word,
		Context:  model.ContextSpectator,
		Accepted: out.Accepted,
		Reason:   out.Reason,
	}
	if out.Mine {
		play.Context = model.ContextSelf
		if e.round != nil {
			play.RoundID = e.round.ID
		}
	}
	e.mu.Unlock()
	if err := e.recorder.InsertPlay(ctx, play); err != nil {
		e.logger.Warn("record play failed", "word", word, "err", err)
	}
}
