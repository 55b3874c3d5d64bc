// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"

	"github.com/verte-zerg/chainpick/internal/coverage"
	"github.com/verte-zerg/chainpick/internal/model"
	"github.com/verte-zerg/chainpick/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Plays    []model.Play
	Rejected []model.WordCount
	Coverage *coverage.Snapshot
}

// BuildReport loads and prepares data for stats rendering. Coverage is read
// for coverageLang when it is set and saved.
func BuildReport(ctx context.Context, st *store.Store, cfg model.HistoryConfig, coverageLang string) (Report, error) {
	plays, err := st.ListPlays(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	rejected, err := st.RejectedWords(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	report := Report{Plays: plays, Rejected: rejected}
	if coverageLang != "" {
		snap, found, err := st.LoadCoverage(ctx, coverageLang)
		if err != nil {
			return Report{}, err
		}
		if found {
			report.Coverage = &snap
		}
	}
	return report, nil
}
