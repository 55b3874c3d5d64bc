package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/chainpick/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a play history.
type Summary struct {
	Plays       int
	Self        int
	Spectator   int
	Accepted    int
	Rejected    int
	Rounds      int
	AcceptRate  float64
	AvgAttempts float64
}

// Summarize counts plays, outcomes and rounds. Attempts per round only
// consider the local player's plays.
func Summarize(plays []model.Play) Summary {
	var s Summary
	rounds := map[string]int{}
	for _, p := range plays {
		s.Plays++
		if p.Accepted {
			s.Accepted++
		} else {
			s.Rejected++
		}
		if p.Context != model.ContextSelf {
			s.Spectator++
			continue
		}
		s.Self++
		if p.RoundID != "" {
			rounds[p.RoundID]++
		}
	}
	s.Rounds = len(rounds)
	if s.Plays > 0 {
		s.AcceptRate = float64(s.Accepted) / float64(s.Plays)
	}
	if s.Rounds > 0 {
		total := 0
		for _, n := range rounds {
			total += n
		}
		s.AvgAttempts = float64(total) / float64(s.Rounds)
	}
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary of plays.
func RenderSummary(w io.Writer, plays []model.Play) error {
	if len(plays) == 0 {
		_, err := fmt.Fprintln(w, "No plays found.")
		return err
	}
	s := Summarize(plays)
	lines := []string{
		"Summary",
		fmt.Sprintf("Plays: %d (self %d, spectator %d)", s.Plays, s.Self, s.Spectator),
		fmt.Sprintf("Accepted: %d  Rejected: %d", s.Accepted, s.Rejected),
		fmt.Sprintf("Accept rate: %.2f%%", s.AcceptRate*100),
		fmt.Sprintf("Rounds: %d  Avg attempts: %.2f", s.Rounds, s.AvgAttempts),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderAcceptanceCurve prints a sparkline of the local accept rate,
// smoothed over window plays and trimmed to width columns.
func RenderAcceptanceCurve(w io.Writer, plays []model.Play, window, width int) error {
	var values []float64
	for _, p := range plays {
		if p.Context != model.ContextSelf {
			continue
		}
		v := 0.0
		if p.Accepted {
			v = 1
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil
	}
	values = MovingAverage(values, window)
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	if _, err := fmt.Fprintf(w, "Accept rate (window %d)\n", window); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s\n\n", Sparkline(values))
	return err
}

// RenderRejectedTable prints the most rejected words.
func RenderRejectedTable(w io.Writer, words []model.WordCount, total int) error {
	if len(words) == 0 {
		_, err := fmt.Fprintln(w, "No rejected words.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Most Rejected"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(words))
	for _, wc := range words {
		share := 0.0
		if total > 0 {
			share = float64(wc.Count) / float64(total) * 100
		}
		rows = append(rows, []string{wc.Word, fmt.Sprintf("%d", wc.Count), fmt.Sprintf("%.2f%%", share)})
	}
	for _, line := range formatTable([]string{"Word", "Rejected", "Share"}, rows, map[int]bool{1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
