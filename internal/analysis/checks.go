// Package analysis implements the descriptive and inferential analyzers.
// Degenerate numeric cases (all values missing, zero variance, too few
// samples) are detected up front by the helpers in this file and surface
// as typed failures; no analyzer lets floating-point division leak NaN
// or Inf into the report.
package analysis

import (
	"plato/domain/core"
	"plato/domain/dataset"

	"github.com/montanaflynn/stats"
)

// observed returns the non-missing values of a numeric column, failing
// with AllValuesMissing when nothing remains after cleaning.
func observed(stage string, col *dataset.Column) ([]float64, error) {
	values := col.NumericValues()
	if len(values) == 0 {
		return nil, core.NewAllValuesMissingError(stage, col.Name)
	}
	return values, nil
}

// observedAtLeast additionally enforces a minimum sample size.
func observedAtLeast(stage string, col *dataset.Column, min int) ([]float64, error) {
	values, err := observed(stage, col)
	if err != nil {
		return nil, err
	}
	if len(values) < min {
		return nil, core.NewInsufficientSamplesError(stage+" column "+col.Name, len(values), min)
	}
	return values, nil
}

// pairComplete returns the rows where both columns have a value, in row
// order. Rows missing on either side are excluded, not imputed.
func pairComplete(a, b *dataset.Column) (xs, ys []float64) {
	n := len(a.Values)
	if len(b.Values) < n {
		n = len(b.Values)
	}
	for i := 0; i < n; i++ {
		if a.Values[i].Missing || b.Values[i].Missing {
			continue
		}
		xs = append(xs, a.Values[i].Num)
		ys = append(ys, b.Values[i].Num)
	}
	return xs, ys
}

// hasVariance reports whether the values are not all identical.
func hasVariance(values []float64) bool {
	if len(values) < 2 {
		return false
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return true
		}
	}
	return false
}

// sampleMeanVar returns the mean and sample (n-1) variance.
func sampleMeanVar(values []float64) (mean, variance float64) {
	mean, _ = stats.Mean(values)
	variance, _ = stats.SampleVariance(values)
	return mean, variance
}
