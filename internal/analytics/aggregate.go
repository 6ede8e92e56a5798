package analytics

import (
	"errors"
	"sort"

	"costlens/internal/dataset"
)

var (
	// ErrMissingColumn marks a computation referencing a column the
	// table does not carry. Callers skip the computation silently;
	// nothing downstream treats this as fatal.
	ErrMissingColumn = errors.New("missing column")

	// ErrUndefinedMean marks the mean of zero rows. It is a distinct
	// signal, never conflated with a zero value.
	ErrUndefinedMean = errors.New("mean of zero rows is undefined")
)

// GroupTotal is one chart-ready (group, sum) pair. Null cells form
// their own group, flagged rather than encoded as a magic key.
type GroupTotal struct {
	Key  string  `json:"key"`
	Null bool    `json:"null,omitempty"`
	Sum  float64 `json:"sum"`
}

// GroupSum groups rows by groupCol and sums valueCol within each group.
// Output order is first appearance of each group, which keeps results
// deterministic; callers needing a ranking sort explicitly. Null value
// cells contribute nothing to their group's sum.
func GroupSum(t *dataset.Table, groupCol, valueCol string) ([]GroupTotal, error) {
	gc, ok := t.Column(groupCol)
	if !ok {
		return nil, ErrMissingColumn
	}
	vc, ok := t.Column(valueCol)
	if !ok || vc.Kind != dataset.KindFloat {
		return nil, ErrMissingColumn
	}

	type slot struct{ index int }
	totals := []GroupTotal{}
	byKey := map[string]slot{}
	var nullSlot = -1

	for i := 0; i < t.NumRows(); i++ {
		v, _ := vc.Float(i)

		key, present := gc.StringAt(i)
		if !present {
			if nullSlot < 0 {
				totals = append(totals, GroupTotal{Null: true})
				nullSlot = len(totals) - 1
			}
			totals[nullSlot].Sum += v
			continue
		}
		s, seen := byKey[key]
		if !seen {
			totals = append(totals, GroupTotal{Key: key})
			s = slot{index: len(totals) - 1}
			byKey[key] = s
		}
		totals[s.index].Sum += v
	}
	return totals, nil
}

// Sum adds every non-null value of the column. The sum over zero rows
// is zero, matching the dashboard's "total cost of nothing is $0".
func Sum(t *dataset.Table, col string) (float64, error) {
	c, ok := t.Column(col)
	if !ok || c.Kind != dataset.KindFloat {
		return 0, ErrMissingColumn
	}
	var total float64
	for i := 0; i < t.NumRows(); i++ {
		if v, ok := c.Float(i); ok {
			total += v
		}
	}
	return total, nil
}

// Mean returns the arithmetic mean over the column's non-null values.
// Zero such values yields ErrUndefinedMean, not 0.
func Mean(t *dataset.Table, col string) (float64, error) {
	c, ok := t.Column(col)
	if !ok || c.Kind != dataset.KindFloat {
		return 0, ErrMissingColumn
	}
	var total float64
	var n int
	for i := 0; i < t.NumRows(); i++ {
		if v, ok := c.Float(i); ok {
			total += v
			n++
		}
	}
	if n == 0 {
		return 0, ErrUndefinedMean
	}
	return total / float64(n), nil
}

// TopGroups ranks GroupSum output descending by sum and keeps the first
// n groups. The sort is stable, so ties keep first-appearance order.
func TopGroups(t *dataset.Table, groupCol, valueCol string, n int) ([]GroupTotal, error) {
	totals, err := GroupSum(t, groupCol, valueCol)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Sum > totals[j].Sum
	})
	if n >= 0 && len(totals) > n {
		totals = totals[:n]
	}
	return totals, nil
}

// NumericValues returns the column's non-null values in row order, the
// histogram-ready shape the charting layer consumes.
func NumericValues(t *dataset.Table, col string) ([]float64, error) {
	c, ok := t.Column(col)
	if !ok || c.Kind != dataset.KindFloat {
		return nil, ErrMissingColumn
	}
	values := []float64{}
	for i := 0; i < t.NumRows(); i++ {
		if v, ok := c.Float(i); ok {
			values = append(values, v)
		}
	}
	return values, nil
}
