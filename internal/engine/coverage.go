package engine

import "github.com/verte-zerg/chainpick/internal/coverage"

// Coverage returns a snapshot of the tallies.
func (e *Engine) Coverage() coverage.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Snapshot()
}

// AdjustCount adds delta to a letter's tally.
func (e *Engine) AdjustCount(letter rune, delta int) coverage.Snapshot {
	return e.editCoverage(func(t *coverage.Tracker) { t.AdjustCount(letter, delta) })
}

// SetCount sets a letter's tally.
func (e *Engine) SetCount(letter rune, value int) coverage.Snapshot {
	return e.editCoverage(func(t *coverage.Tracker) { t.SetCount(letter, value) })
}

// AdjustTarget adds delta to a letter's goal.
func (e *Engine) AdjustTarget(letter rune, delta int) coverage.Snapshot {
	return e.editCoverage(func(t *coverage.Tracker) { t.AdjustTarget(letter, delta) })
}

// SetTarget sets a letter's goal.
func (e *Engine) SetTarget(letter rune, value int) coverage.Snapshot {
	return e.editCoverage(func(t *coverage.Tracker) { t.SetTarget(letter, value) })
}

// SetAllTargets sets every goal to value.
func (e *Engine) SetAllTargets(value int) coverage.Snapshot {
	return e.editCoverage(func(t *coverage.Tracker) { t.SetAllTargets(value) })
}

// SetTargets replaces every goal.
func (e *Engine) SetTargets(targets [coverage.Letters]int) coverage.Snapshot {
	return e.editCoverage(func(t *coverage.Tracker) { t.SetTargets(targets) })
}

// ResetCoverage zeroes the tallies.
func (e *Engine) ResetCoverage() coverage.Snapshot {
	return e.editCoverage(func(t *coverage.Tracker) { t.Reset() })
}

func (e *Engine) editCoverage(fn func(*coverage.Tracker)) coverage.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.tracker)
	return e.tracker.Snapshot()
}
