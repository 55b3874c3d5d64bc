package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/chainpick/internal/coverage"
)

const (
	colorDone  = "\x1b[32m"
	colorOpen  = "\x1b[33m"
	colorReset = "\x1b[0m"
	barFull    = "#"
	barEmpty   = "."
	minBar     = 3
)

// RenderCoverage prints one progress bar per letter with a positive target.
// Bars are scaled so the widest target fits in width columns.
func RenderCoverage(w io.Writer, snap coverage.Snapshot, width int, useColor bool) error {
	maxTarget := 0
	for _, t := range snap.Targets {
		maxTarget = max(maxTarget, t)
	}
	if maxTarget == 0 {
		_, err := fmt.Fprintln(w, "No coverage goals set.")
		return err
	}
	// "a " prefix and " 99/99" suffix
	barWidth := max(minBar, min(maxTarget, width-2-6))

	if _, err := fmt.Fprintln(w, "Coverage"); err != nil {
		return err
	}
	for i := 0; i < coverage.Letters; i++ {
		target := snap.Targets[i]
		if target == 0 {
			continue
		}
		count := snap.Counts[i]
		filled := count * barWidth / maxTarget
		size := max(1, target*barWidth/maxTarget)
		bar := strings.Repeat(barFull, filled) + strings.Repeat(barEmpty, max(0, size-filled))
		if useColor {
			color := colorOpen
			if count >= target {
				color = colorDone
			}
			bar = color + bar + colorReset
		}
		pad := strings.Repeat(" ", barWidth-max(size, filled))
		if _, err := fmt.Fprintf(w, "%c %s%s %2d/%-2d\n", 'a'+i, bar, pad, count, target); err != nil {
			return err
		}
	}
	if needed := NeededLetters(snap, 0); len(needed) > 0 {
		if _, err := fmt.Fprintf(w, "Still needed: %s\n", string(needed)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
