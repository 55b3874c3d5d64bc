package tui

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/verte-zerg/chainpick/internal/coverage"
	"github.com/verte-zerg/chainpick/internal/engine"
	"github.com/verte-zerg/chainpick/internal/lexicon"
	"github.com/verte-zerg/chainpick/internal/model"
	"github.com/verte-zerg/chainpick/internal/turn"
)

type mapProvider map[model.Category]string

func (p mapProvider) FetchCategory(_ context.Context, lang string, cat model.Category) (string, error) {
	text, ok := p[cat]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", lexicon.ErrCategoryUnavailable, lang, cat)
	}
	return text, nil
}

func newTestModel(t *testing.T) (*Model, chan tea.Msg) {
	t.Helper()
	quiet := log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
	msgs := make(chan tea.Msg, 8)
	sub := NewSubmitter()
	sub.Bind(func(msg tea.Msg) { msgs <- msg })
	eng := engine.New(engine.Options{
		Settings:  model.DefaultSettings(),
		Loader:    lexicon.NewLoader(mapProvider{model.CategoryMain: "quack\nquiz"}, time.Minute, quiet),
		Submitter: sub,
		Logger:    quiet,
		Picker:    turn.NewPickerWithSource(rand.NewSource(1)),
	})
	t.Cleanup(eng.Close)
	return NewModel(context.Background(), eng), msgs
}

func nextMsg(t *testing.T, msgs chan tea.Msg) tea.Msg {
	t.Helper()
	select {
	case msg := <-msgs:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for submission")
		return nil
	}
}

func typeSyllable(m *Model, s string) tea.Cmd {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestSubmitterRequiresBinding(t *testing.T) {
	if err := NewSubmitter().Submit(context.Background(), "quiz"); err != ErrNotBound {
		t.Fatalf("expected ErrNotBound, got %v", err)
	}
}

func TestTurnRejectAcceptFlow(t *testing.T) {
	m, msgs := newTestModel(t)

	cmd := typeSyllable(m, "qu")
	if cmd == nil {
		t.Fatalf("expected a turn command")
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input cleared, got %q", m.input.Value())
	}
	m.Update(cmd())
	if len(m.sugg.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(m.sugg.Candidates))
	}

	m.Update(nextMsg(t, msgs))
	first := m.submitted
	if first == "" {
		t.Fatalf("expected a submitted word")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m.Update(cmd())
	if m.rejected != 1 {
		t.Fatalf("expected 1 rejection, got %d", m.rejected)
	}

	m.Update(nextMsg(t, msgs))
	second := m.submitted
	if second == "" || second == first {
		t.Fatalf("expected a different replacement, got %q after %q", second, first)
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	m.Update(cmd())
	if m.accepted != 1 {
		t.Fatalf("expected 1 acceptance, got %d", m.accepted)
	}
	if m.status.State != turn.StateAccepted {
		t.Fatalf("expected accepted round, got %s", m.status.State)
	}
	if m.snap.Counts['q'-'a'] != 1 {
		t.Fatalf("expected q tallied, got %d", m.snap.Counts['q'-'a'])
	}
	if !strings.Contains(m.View(), second) {
		t.Fatalf("expected view to list %q", second)
	}
}

func TestOutcomeWithoutSubmissionIsIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlY}); cmd != nil {
		t.Fatalf("expected no command without a submitted word")
	}
}

func TestSpectatorTurnDoesNotSubmit(t *testing.T) {
	m, msgs := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if !m.spectator {
		t.Fatalf("expected spectator context")
	}
	cmd := typeSyllable(m, "qu")
	m.Update(cmd())
	if m.sugg.Context != model.ContextSpectator {
		t.Fatalf("expected spectator suggestions, got %s", m.sugg.Context)
	}
	select {
	case msg := <-msgs:
		t.Fatalf("unexpected submission %v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestGoalsCompleted(t *testing.T) {
	var before, after coverage.Snapshot
	before.Targets['q'-'a'] = 1
	before.Targets['z'-'a'] = 1
	before.Counts['z'-'a'] = 1
	after.Targets = before.Targets

	if !goalsCompleted(before, after, "quiz") {
		t.Fatalf("expected completion when tallies wiped after a hit")
	}
	if goalsCompleted(before, after, "bee") {
		t.Fatalf("expected no completion when the word missed every target")
	}
	after.Counts['q'-'a'] = 1
	if goalsCompleted(before, after, "quiz") {
		t.Fatalf("expected no completion while tallies remain")
	}
}
