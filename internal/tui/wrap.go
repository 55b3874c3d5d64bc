package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/chainpick/internal/candidate"
	"github.com/verte-zerg/chainpick/internal/coverage"
	"github.com/verte-zerg/chainpick/internal/model"
)

// styledToken is a pre-rendered cell with its printable width.
type styledToken struct {
	s     string
	width int
}

func newToken(style lipgloss.Style, text string) styledToken {
	return styledToken{s: style.Render(text), width: runewidth.StringWidth(text)}
}

func toneStyle(t model.Tone) lipgloss.Style {
	if s, ok := toneStyles[t]; ok {
		return s
	}
	return defaultStyle
}

// buildSuggestionTokens renders each displayed candidate as "N.word".
// The word currently in flight is underlined.
func buildSuggestionTokens(cands []candidate.Candidate, inFlight string) []styledToken {
	out := make([]styledToken, 0, len(cands))
	for i, c := range cands {
		style := toneStyle(c.Tone)
		if c.Word == inFlight {
			style = style.Underline(true)
		}
		text := fmt.Sprintf("%d.%s", i+1, c.Word)
		out = append(out, newToken(style, text))
	}
	return out
}

// buildGridTokens renders one "a 1/2" cell per letter with a positive
// target.
func buildGridTokens(snap coverage.Snapshot) []styledToken {
	out := make([]styledToken, 0, coverage.Letters)
	for i := 0; i < coverage.Letters; i++ {
		target := snap.Targets[i]
		if target <= 0 {
			continue
		}
		count := snap.Counts[i]
		style := gridOpenStyle
		if count >= target {
			style = gridDoneStyle
		}
		cell := runewidth.FillRight(fmt.Sprintf("%c %d/%d", 'a'+i, count, target), gridCellWidth)
		out = append(out, newToken(style, cell))
	}
	return out
}

func renderTokens(tokens []styledToken) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, t.s)
	}
	return strings.Join(parts, " ")
}

// wrapTokens joins tokens with single spaces, breaking lines so that no line
// exceeds width. A token wider than width gets a line of its own.
func wrapTokens(tokens []styledToken, width int) string {
	if width <= 0 {
		return renderTokens(tokens)
	}
	var out strings.Builder
	line := make([]styledToken, 0, len(tokens))
	lineWidth := 0
	for _, t := range tokens {
		need := t.width
		if len(line) > 0 {
			need++
		}
		if lineWidth+need > width && len(line) > 0 {
			out.WriteString(renderTokens(line))
			out.WriteRune('\n')
			line = line[:0]
			lineWidth = 0
			need = t.width
		}
		line = append(line, t)
		lineWidth += need
	}
	out.WriteString(renderTokens(line))
	return out.String()
}
