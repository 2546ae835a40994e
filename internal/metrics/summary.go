package metrics

import (
	"gonum.org/v1/gonum/stat"
)

// Summary is the cross-fold aggregate of one metric.
type Summary struct {
	Mean float64
	// SD is the population standard deviation across folds.
	SD float64
	// N is the number of fold values that entered the aggregate.
	N int
}

// Summarize aggregates per-fold metric values. Folds with undefined values
// must be filtered by the caller before aggregation; an empty input yields a
// zero Summary with N == 0.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	return Summary{
		Mean: stat.Mean(values, nil),
		SD:   stat.PopStdDev(values, nil),
		N:    len(values),
	}
}
