package analytics

import (
	"sort"

	"costlens/internal/dataset"
)

// UnderutilizedConfig tunes the underutilized-resource report. The
// threshold factor is a heuristic carried over from the original
// dashboard, intentionally configurable rather than baked in.
type UnderutilizedConfig struct {
	// ThresholdFactor scales the client's mean usage to form the
	// low-usage cutoff.
	ThresholdFactor float64
	// MaxRows caps the ranked output.
	MaxRows int
}

// DefaultUnderutilizedConfig preserves the original dashboard's
// constants: 20% of mean usage, top 5 rows.
func DefaultUnderutilizedConfig() UnderutilizedConfig {
	return UnderutilizedConfig{ThresholdFactor: 0.2, MaxRows: 5}
}

// underutilizedColumns is the fixed projection of the report.
var underutilizedColumns = []string{
	dataset.ColDate,
	dataset.ColCloudProvider,
	dataset.ColResourceType,
	dataset.ColUsageHours,
	dataset.ColCostUSD,
	dataset.ColCostPerHour,
}

// Underutilized reports the client's costliest low-usage rows: usage
// below ThresholdFactor of the client's mean usage while cost stays
// positive, ranked by cost per hour, at most MaxRows rows.
//
// The threshold baseline is the mean over the full table, including
// zero-usage rows; only the ranked output excludes rows whose
// CostPerHour is undefined (UsageHours == 0).
func Underutilized(t *dataset.Table, cfg UnderutilizedConfig) (*dataset.Table, error) {
	usage, ok := t.Column(dataset.ColUsageHours)
	if !ok || usage.Kind != dataset.KindFloat {
		return nil, ErrMissingColumn
	}
	cost, ok := t.Column(dataset.ColCostUSD)
	if !ok || cost.Kind != dataset.KindFloat {
		return nil, ErrMissingColumn
	}

	meanUsage, err := Mean(t, dataset.ColUsageHours)
	if err != nil {
		// No usage values at all: nothing can fall below the threshold.
		return t.Select(nil).Project(underutilizedColumns...), nil
	}
	threshold := meanUsage * cfg.ThresholdFactor

	type candidate struct {
		row         int
		costPerHour float64
	}
	var candidates []candidate
	for i := 0; i < t.NumRows(); i++ {
		u, uok := usage.Float(i)
		c, cok := cost.Float(i)
		if !uok || !cok {
			continue
		}
		if u <= 0 || u >= threshold || c <= 0 {
			continue
		}
		candidates = append(candidates, candidate{row: i, costPerHour: c / u})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].costPerHour > candidates[j].costPerHour
	})
	if cfg.MaxRows >= 0 && len(candidates) > cfg.MaxRows {
		candidates = candidates[:cfg.MaxRows]
	}

	rows := make([]int, len(candidates))
	for i, c := range candidates {
		rows[i] = c.row
	}
	return t.Select(rows).Project(underutilizedColumns...), nil
}
