package analysis

import (
	"context"

	"plato/domain/core"
	"plato/domain/dataset"
	"plato/domain/report"
	"plato/internal"
	"plato/internal/config"
	"plato/internal/resolve"

	"github.com/montanaflynn/stats"
)

// Descriptive computes summary statistics and correlation matrices over
// configured columns.
type Descriptive struct {
	log *internal.Logger
}

// NewDescriptive creates a descriptive analyzer.
func NewDescriptive() *Descriptive {
	return &Descriptive{log: internal.DefaultLogger}
}

// Run executes the configured descriptive analyses. Data quality
// failures become failure entries; configuration errors are returned and
// abort the run.
func (a *Descriptive) Run(ctx context.Context, ds *dataset.Dataset, q config.QuantitativeConfig) (map[string]report.Result, error) {
	results := make(map[string]report.Result)

	if len(q.DescriptiveStatisticsColumns) > 0 {
		summaries, err := a.Describe(ds, q.DescriptiveStatisticsColumns)
		entry := report.Result{
			Analysis:   report.KeyDescriptive,
			Columns:    q.DescriptiveStatisticsColumns,
			SampleSize: ds.Rows(),
		}
		switch {
		case err == nil:
			entry.Value = summaries
		case core.IsDataQualityError(err):
			entry.Failure = err.Error()
		default:
			return nil, err
		}
		results[report.KeyDescriptive] = entry
	}

	if len(q.CorrelationMatrixColumns) > 0 {
		matrix, err := a.Correlate(ds, q.CorrelationMatrixColumns)
		entry := report.Result{
			Analysis:   report.KeyCorrelation,
			Columns:    q.CorrelationMatrixColumns,
			SampleSize: ds.Rows(),
		}
		switch {
		case err == nil:
			entry.Value = matrix
		case core.IsDataQualityError(err):
			entry.Failure = err.Error()
		default:
			return nil, err
		}
		results[report.KeyCorrelation] = entry
	}

	return results, nil
}

// Describe computes per-column {count, mean, std, min, quartiles, max}
// over the non-missing values. A column with too few observations for a
// statistic (std under 2 values, outer quartiles too small to
// interpolate) reports that field as undefined rather than failing.
func (a *Descriptive) Describe(ds *dataset.Dataset, columns []string) ([]report.ColumnSummary, error) {
	refs, err := resolve.Columns(ds.Schema(), "descriptive statistics", columns, resolve.Numeric)
	if err != nil {
		return nil, err
	}

	summaries := make([]report.ColumnSummary, 0, len(refs))
	for _, ref := range refs {
		col := &ds.Columns[ref.Index]
		values, err := observed("descriptive statistics", col)
		if err != nil {
			return nil, err
		}

		mean, _ := stats.Mean(values)
		min, _ := stats.Min(values)
		max, _ := stats.Max(values)
		median, _ := stats.Median(values)

		summary := report.ColumnSummary{
			Column: col.Name,
			Count:  len(values),
			Mean:   mean,
			Min:    min,
			Median: median,
			Max:    max,
		}
		// Percentile fails for samples too small to interpolate a
		// quartile; those report undefined, never NaN.
		if q25, err := stats.Percentile(values, 25); err == nil {
			summary.Q25 = &q25
		}
		if q75, err := stats.Percentile(values, 75); err == nil {
			summary.Q75 = &q75
		}
		if len(values) >= 2 {
			std, _ := stats.StandardDeviationSample(values)
			summary.Std = &std
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Correlate computes the symmetric pairwise Pearson matrix over the
// resolved column order. The diagonal is exactly 1.0 for columns with
// variance; pairs where either side has zero variance are reported as
// undefined (nil) instead of dividing by zero.
func (a *Descriptive) Correlate(ds *dataset.Dataset, columns []string) (report.CorrelationMatrix, error) {
	refs, err := resolve.Columns(ds.Schema(), "correlation matrix", columns, resolve.Numeric)
	if err != nil {
		return report.CorrelationMatrix{}, err
	}

	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}

	cells := make([][]*float64, len(refs))
	for i := range cells {
		cells[i] = make([]*float64, len(refs))
	}

	for i, ri := range refs {
		ci := &ds.Columns[ri.Index]
		if hasVariance(ci.NumericValues()) {
			one := 1.0
			cells[i][i] = &one
		}
		for j := i + 1; j < len(refs); j++ {
			cj := &ds.Columns[refs[j].Index]
			xs, ys := pairComplete(ci, cj)
			if len(xs) < 2 || !hasVariance(xs) || !hasVariance(ys) {
				continue // undefined, stays nil
			}
			r, err := stats.Pearson(xs, ys)
			if err != nil {
				continue
			}
			v := r
			cells[i][j] = &v
			cells[j][i] = &v
		}
	}

	return report.CorrelationMatrix{Columns: names, Cells: cells}, nil
}
