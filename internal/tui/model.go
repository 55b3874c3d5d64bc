// Package tui provides the Bubble Tea practice HUD.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/chainpick/internal/candidate"
	"github.com/verte-zerg/chainpick/internal/coverage"
	"github.com/verte-zerg/chainpick/internal/engine"
	"github.com/verte-zerg/chainpick/internal/model"
	"github.com/verte-zerg/chainpick/internal/turn"
)

const (
	gridCellWidth = 8
	rejectReason  = "rejected in practice"
)

var (
	defaultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	flagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	gridOpenStyle = pendingStyle
	gridDoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))

	toneStyles = map[model.Tone]lipgloss.Style{
		model.ToneContains:    lipgloss.NewStyle().Foreground(lipgloss.Color("#40A9FF")),
		model.ToneFoul:        lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
		model.TonePokemon:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FADB14")),
		model.ToneMinerals:    lipgloss.NewStyle().Foreground(lipgloss.Color("#13C2C2")),
		model.ToneRare:        lipgloss.NewStyle().Foreground(lipgloss.Color("#B37FEB")),
		model.ToneHyphen:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FA8C16")),
		model.ToneLengthExact: lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")),
		model.ToneLengthFlex:  lipgloss.NewStyle().Foreground(lipgloss.Color("#95DE64")),
	}
)

type turnMsg struct {
	sugg engine.Suggestions
	err  error
}

type outcomeMsg struct {
	word     string
	accepted bool
	err      error
}

// Model implements the Bubble Tea practice HUD. The user plays the game
// master: typing a syllable starts a turn, and the word the engine submits is
// accepted or rejected by hand.
type Model struct {
	ctx    context.Context
	engine *engine.Engine
	input  textinput.Model

	spectator bool
	width     int
	height    int

	sugg      engine.Suggestions
	submitted string
	status    engine.Status
	snap      coverage.Snapshot
	notice    string
	err       error

	accepted int
	rejected int
	resets   int
}

// NewModel constructs the HUD over an engine.
func NewModel(ctx context.Context, eng *engine.Engine) *Model {
	in := textinput.New()
	in.Placeholder = "syllable"
	in.Prompt = "> "
	in.CharLimit = 16
	in.Focus()
	m := &Model{
		ctx:    ctx,
		engine: eng,
		input:  in,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case turnMsg:
		m.sugg = msg.sugg
		m.err = msg.err
		if errors.Is(msg.err, turn.ErrPoolExhausted) {
			m.err = nil
			m.notice = "no playable word left"
		}
		m.refresh()
		return m, nil
	case submittedMsg:
		m.submitted = msg.word
		m.notice = ""
		m.refresh()
		return m, nil
	case outcomeMsg:
		m.handleOutcome(msg)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		syllable := strings.TrimSpace(m.input.Value())
		if syllable == "" {
			return m, nil
		}
		m.input.SetValue("")
		m.submitted = ""
		m.notice = ""
		return m, m.startTurn(syllable, !m.spectator)
	case tea.KeyTab:
		m.spectator = !m.spectator
		return m, nil
	case tea.KeyCtrlY:
		return m, m.outcome(true)
	case tea.KeyCtrlN:
		return m, m.outcome(false)
	case tea.KeyCtrlR:
		m.snap = m.engine.ResetCoverage()
		m.notice = "coverage reset"
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) startTurn(syllable string, mine bool) tea.Cmd {
	eng, ctx := m.engine, m.ctx
	return func() tea.Msg {
		sugg, err := eng.StartTurn(ctx, syllable, mine)
		return turnMsg{sugg: sugg, err: err}
	}
}

func (m *Model) outcome(accepted bool) tea.Cmd {
	word := m.submitted
	if word == "" {
		return nil
	}
	m.submitted = ""
	eng, ctx := m.engine, m.ctx
	return func() tea.Msg {
		out := engine.Outcome{Word: word, Accepted: accepted, Mine: true}
		if !accepted {
			out.Reason = rejectReason
		}
		return outcomeMsg{word: word, accepted: accepted, err: eng.HandleOutcome(ctx, out)}
	}
}

func (m *Model) handleOutcome(msg outcomeMsg) {
	before := m.snap
	m.refresh()
	switch {
	case errors.Is(msg.err, turn.ErrPoolExhausted):
		m.rejected++
		m.notice = "no playable word left"
	case msg.err != nil:
		m.err = msg.err
	case msg.accepted:
		m.accepted++
		m.notice = fmt.Sprintf("%s accepted", msg.word)
		if goalsCompleted(before, m.snap, msg.word) {
			m.resets++
			m.notice += ", coverage complete"
		}
	default:
		m.rejected++
		m.notice = fmt.Sprintf("%s rejected", msg.word)
	}
}

// goalsCompleted reports whether accepting word completed the goals: every
// tally is back to zero although the word hit a positive target.
func goalsCompleted(before, after coverage.Snapshot, word string) bool {
	for i := range after.Counts {
		if after.Counts[i] != 0 {
			return false
		}
	}
	for _, r := range word {
		if r >= 'a' && r <= 'z' && before.Targets[r-'a'] > 0 {
			return true
		}
	}
	return false
}

func (m *Model) refresh() {
	m.status = m.engine.Status()
	m.snap = m.engine.Coverage()
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := m.width * 7 / 10
	if m.width == 0 {
		contentWidth = 0
	} else if contentWidth < 1 {
		contentWidth = 1
	}

	sections := []string{m.renderHeader(), m.input.View()}
	if body := m.renderSuggestions(contentWidth); body != "" {
		sections = append(sections, body)
	}
	if grid := buildGridTokens(m.snap); len(grid) > 0 {
		sections = append(sections, wrapTokens(grid, contentWidth))
	}
	if m.err != nil {
		sections = append(sections, errorStyle.Render(m.err.Error()))
	}
	content := strings.Join(sections, "\n\n")

	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	content = lipgloss.NewStyle().Width(contentWidth).Render(content)
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderHeader() string {
	ctx := model.ContextSelf
	if m.spectator {
		ctx = model.ContextSpectator
	}
	return headerStyle.Render(fmt.Sprintf("chainpick · %s · %s", m.status.Lang, ctx))
}

func (m *Model) renderSuggestions(width int) string {
	if m.sugg.Syllable == "" {
		return ""
	}
	lines := []string{pendingStyle.Render(fmt.Sprintf("%q: %d words", m.sugg.Syllable, len(m.sugg.Candidates)))}
	if len(m.sugg.Display) > 0 {
		lines = append(lines, wrapTokens(buildSuggestionTokens(m.sugg.Display, m.submitted), width))
	}
	if flags := describeFlags(m.sugg.Flags); len(flags) > 0 {
		lines = append(lines, flagStyle.Render(strings.Join(flags, " · ")))
	}
	if m.submitted != "" {
		lines = append(lines, fmt.Sprintf("submitted %s  (ctrl+y accept, ctrl+n reject)", m.submitted))
	}
	if len(m.status.Failed) > 0 {
		lines = append(lines, pendingStyle.Render("failed: "+strings.Join(m.status.Failed, ", ")))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	segments := []string{fmt.Sprintf("Accepted %d · Rejected %d", m.accepted, m.rejected)}
	if m.resets > 0 {
		segments = append(segments, fmt.Sprintf("Goals done %d", m.resets))
	}
	if m.status.RoundID != "" {
		segments = append(segments, "Round "+m.status.State.String())
	}
	if m.notice != "" {
		segments = append(segments, m.notice)
	}
	segments = append(segments, "tab context · ctrl+r reset · esc quit")
	return footerStyle.Render(strings.Join(segments, "  "))
}

// describeFlags lists the modes that degraded for the shown turn.
func describeFlags(f candidate.Flags) []string {
	var out []string
	for _, cat := range model.SpecialCategories {
		if f.Fallback(cat) {
			out = append(out, fmt.Sprintf("no %s words", cat))
		}
	}
	switch {
	case f.LenCapRelaxed:
		out = append(out, "length cap relaxed")
	case f.LenCapApplied:
		out = append(out, "length cap")
	}
	if f.LenFallback {
		out = append(out, "no exact length")
	}
	if f.LenSuppressed {
		out = append(out, "length ignored")
	}
	return out
}
