package analysis

import (
	"context"
	"encoding/json"
	"testing"

	"plato/domain/core"
	"plato/domain/dataset"
	"plato/domain/report"
	"plato/internal/config"

	"github.com/stretchr/testify/assert"
)

func mustDataset(t *testing.T, columns []dataset.Column) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(columns)
	if err != nil {
		t.Fatalf("building dataset: %v", err)
	}
	return ds
}

func numeric(name string, values ...float64) dataset.Column {
	vals := make([]dataset.Value, len(values))
	for i, v := range values {
		vals[i] = dataset.Number(v)
	}
	return dataset.Column{Name: name, Kind: dataset.KindNumeric, Values: vals}
}

func withMissing(col dataset.Column, rows ...int) dataset.Column {
	for _, r := range rows {
		col.Values[r] = dataset.Missing()
	}
	return col
}

func TestDescribe(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		withMissing(numeric("age", 10, 20, 30, 40, 0), 4),
	})

	a := NewDescriptive()
	summaries, err := a.Describe(ds, []string{"age"})
	assert.NoError(t, err)
	assert.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "age", s.Column)
	assert.Equal(t, 4, s.Count, "missing values are excluded from the count")
	assert.InDelta(t, 25.0, s.Mean, 1e-9)
	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 40.0, s.Max)
	assert.InDelta(t, 25.0, s.Median, 1e-9)
	if assert.NotNil(t, s.Std) {
		assert.InDelta(t, 12.909944, *s.Std, 1e-5)
	}
}

func TestDescribe_SingleObservationHasUndefinedStd(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{numeric("age", 42)})

	a := NewDescriptive()
	summaries, err := a.Describe(ds, []string{"age"})
	assert.NoError(t, err)
	assert.Nil(t, summaries[0].Std)
}

func TestDescribe_SmallSampleQuartilesAreUndefined(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{numeric("age", 10, 20, 30)})

	a := NewDescriptive()
	summaries, err := a.Describe(ds, []string{"age"})
	assert.NoError(t, err)

	s := summaries[0]
	assert.Nil(t, s.Q25, "lower quartile cannot be interpolated from 3 values")
	assert.InDelta(t, 20.0, s.Median, 1e-9)
	if assert.NotNil(t, s.Q75) {
		assert.InDelta(t, 25.0, *s.Q75, 1e-9)
	}

	// Summaries with undefined quartiles still serialize cleanly.
	_, err = json.Marshal(summaries)
	assert.NoError(t, err)
}

func TestDescribe_OneAndTwoObservations(t *testing.T) {
	a := NewDescriptive()

	one := mustDataset(t, []dataset.Column{numeric("age", 42)})
	summaries, err := a.Describe(one, []string{"age"})
	assert.NoError(t, err)
	if assert.NotNil(t, summaries[0].Q25) {
		assert.Equal(t, 42.0, *summaries[0].Q25)
	}
	if assert.NotNil(t, summaries[0].Q75) {
		assert.Equal(t, 42.0, *summaries[0].Q75)
	}

	two := mustDataset(t, []dataset.Column{numeric("age", 10, 20)})
	summaries, err = a.Describe(two, []string{"age"})
	assert.NoError(t, err)
	assert.Nil(t, summaries[0].Q25)
	if assert.NotNil(t, summaries[0].Q75) {
		assert.InDelta(t, 15.0, *summaries[0].Q75, 1e-9)
	}

	_, err = json.Marshal(summaries)
	assert.NoError(t, err)
}

func TestDescribe_AllValuesMissing(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		withMissing(numeric("age", 0, 0), 0, 1),
	})

	a := NewDescriptive()
	_, err := a.Describe(ds, []string{"age"})
	assert.ErrorIs(t, err, core.ErrAllValuesMissing)
}

func TestCorrelate_PerfectCorrelation(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		numeric("x", 1, 2, 3, 4),
		numeric("y", 2, 4, 6, 8),
		numeric("z", 8, 6, 4, 2),
	})

	a := NewDescriptive()
	matrix, err := a.Correlate(ds, []string{"x", "y", "z"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, matrix.Columns)

	// Diagonal is exactly 1.0.
	for i := range matrix.Columns {
		if assert.NotNil(t, matrix.Cells[i][i]) {
			assert.Equal(t, 1.0, *matrix.Cells[i][i])
		}
	}

	assert.InDelta(t, 1.0, *matrix.Cells[0][1], 1e-9)
	assert.InDelta(t, -1.0, *matrix.Cells[0][2], 1e-9)

	// Symmetry.
	for i := range matrix.Columns {
		for j := range matrix.Columns {
			a, b := matrix.Cells[i][j], matrix.Cells[j][i]
			if a == nil {
				assert.Nil(t, b)
			} else if assert.NotNil(t, b) {
				assert.Equal(t, *a, *b)
			}
		}
	}
}

func TestCorrelate_ZeroVarianceCellsAreUndefined(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		numeric("x", 1, 2, 3),
		numeric("c", 5, 5, 5),
	})

	a := NewDescriptive()
	matrix, err := a.Correlate(ds, []string{"x", "c"})
	assert.NoError(t, err)

	assert.Nil(t, matrix.Cells[0][1], "pair with a constant side is undefined")
	assert.Nil(t, matrix.Cells[1][1], "constant column has no defined self-correlation")
	assert.NotNil(t, matrix.Cells[0][0])
}

func TestCorrelate_PairwiseDeletion(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		withMissing(numeric("x", 1, 2, 3, 4), 3),
		numeric("y", 2, 4, 6, 100),
	})

	a := NewDescriptive()
	matrix, err := a.Correlate(ds, []string{"x", "y"})
	assert.NoError(t, err)
	if assert.NotNil(t, matrix.Cells[0][1]) {
		assert.InDelta(t, 1.0, *matrix.Cells[0][1], 1e-9, "row 3 is excluded pairwise, leaving a perfect fit")
	}
}

func TestDescriptiveRun_DataQualityBecomesFailureEntry(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		withMissing(numeric("age", 0, 0), 0, 1),
	})

	a := NewDescriptive()
	results, err := a.Run(context.Background(), ds, config.QuantitativeConfig{
		DescriptiveStatisticsColumns: []string{"age"},
	})
	assert.NoError(t, err, "data quality failures do not abort the analyzer")

	entry, ok := results[report.KeyDescriptive]
	assert.True(t, ok)
	assert.True(t, entry.Failed())
	assert.Contains(t, entry.Failure, "all values missing")
}

func TestDescriptiveRun_UnknownColumnAborts(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{numeric("age", 1, 2)})

	a := NewDescriptive()
	_, err := a.Run(context.Background(), ds, config.QuantitativeConfig{
		DescriptiveStatisticsColumns: []string{"height"},
	})
	assert.ErrorIs(t, err, core.ErrUnknownColumn)
}
