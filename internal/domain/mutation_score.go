package domain

import (
	"fmt"

	m "gooze.dev/pkg/mutscore/internal/model"
	pkg "gooze.dev/pkg/mutscore/pkg"
)

// ScoreAggregator accumulates outcomes into a MutationSummary.
type ScoreAggregator struct {
	catalogSize int
	summary     m.MutationSummary
}

// NewScoreAggregator creates an aggregator for a catalog of catalogSize mutations.
func NewScoreAggregator(catalogSize int) *ScoreAggregator {
	return &ScoreAggregator{catalogSize: catalogSize}
}

// Add counts one outcome.
func (a *ScoreAggregator) Add(outcome m.MutationOutcome) {
	switch outcome.Label {
	case m.Killed:
		a.summary.Killed++
	case m.Survived:
		a.summary.Survived++
	case m.Timeout:
		a.summary.Timeout++
	case m.Error:
		a.summary.Suspicious++
	}
}

// Summary returns the summary for the outcomes added so far. Timeouts and
// errors stay out of the score; with nothing killed or survived the score is 0.
func (a *ScoreAggregator) Summary() m.MutationSummary {
	summary := a.summary

	if valid := summary.Killed + summary.Survived; valid > 0 {
		summary.Score = float64(summary.Killed) / float64(valid)
	}

	summary.Skipped = max(a.catalogSize-summary.Tested(), 0)

	return summary
}

// Aggregate folds outcomes into a summary. Mutations beyond tested in the
// catalog count as skipped.
func Aggregate(outcomes []m.MutationOutcome, catalogSize, tested int) m.MutationSummary {
	agg := NewScoreAggregator(catalogSize)

	for _, outcome := range outcomes {
		agg.Add(outcome)
	}

	summary := agg.Summary()
	summary.Skipped = max(catalogSize-tested, 0)

	return summary
}

// SummaryFromSpill folds the outcomes recorded in a spill file.
func SummaryFromSpill(outcomes pkg.FileSpill[m.MutationOutcome], catalogSize int) (m.MutationSummary, error) {
	agg := NewScoreAggregator(catalogSize)

	var read uint64

	err := outcomes.Range(func(_ uint64, outcome m.MutationOutcome) error {
		agg.Add(outcome)
		read++

		return nil
	})
	if err != nil {
		return m.MutationSummary{}, err
	}

	if read != outcomes.Len() {
		return m.MutationSummary{}, fmt.Errorf("outcome spill %s holds %d outcomes, read %d", outcomes.Path(), outcomes.Len(), read)
	}

	return agg.Summary(), nil
}
