package analysis

import (
	"context"
	"testing"

	"plato/domain/core"
	"plato/domain/dataset"
	"plato/domain/report"
	"plato/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestLinearRegression_PerfectFit(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		numeric("age", 1, 2, 3),
		numeric("score", 2, 4, 6),
	})

	a := NewInferential()
	result, err := a.LinearRegression(ds, "score", []string{"age"})
	assert.NoError(t, err)

	assert.InDelta(t, 0.0, result.Intercept, 1e-9)
	assert.InDelta(t, 2.0, result.Coefficients["age"], 1e-9)
	assert.InDelta(t, 1.0, result.RSquared, 1e-9)
	assert.Equal(t, 3, result.N)
}

func TestLinearRegression_ExcludesIncompleteRows(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		withMissing(numeric("age", 1, 2, 3, 0), 3),
		numeric("score", 2, 4, 6, 1000),
	})

	a := NewInferential()
	result, err := a.LinearRegression(ds, "score", []string{"age"})
	assert.NoError(t, err)
	assert.Equal(t, 3, result.N)
	assert.InDelta(t, 2.0, result.Coefficients["age"], 1e-9)
}

func TestLinearRegression_CollinearFeatures(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		numeric("x1", 1, 2, 3, 4),
		numeric("x2", 2, 4, 6, 8), // exactly 2*x1
		numeric("y", 1, 3, 2, 5),
	})

	a := NewInferential()
	_, err := a.LinearRegression(ds, "y", []string{"x1", "x2"})
	assert.ErrorIs(t, err, core.ErrSingularDesignMatrix)
	assert.True(t, core.IsDataQualityError(err))
}

func TestLinearRegression_InsufficientSamples(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		numeric("x1", 1, 2),
		numeric("x2", 3, 5),
		numeric("y", 1, 3),
	})

	a := NewInferential()
	_, err := a.LinearRegression(ds, "y", []string{"x1", "x2"})
	assert.ErrorIs(t, err, core.ErrInsufficientSamples)
}

func TestLinearRegression_ConstantTarget(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		numeric("x", 1, 2, 3),
		numeric("y", 5, 5, 5),
	})

	a := NewInferential()
	_, err := a.LinearRegression(ds, "y", []string{"x"})
	assert.ErrorIs(t, err, core.ErrZeroVariance)
}

func hypothesisConfig(columns ...string) config.QuantitativeConfig {
	return config.QuantitativeConfig{
		HypothesisTestingColumns: columns,
		HypothesisTestingMethod:  config.MethodTTest,
	}
}

func TestHypothesisTest_IdenticalSamplesFailToReject(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		numeric("a", 1, 2, 3, 4, 5),
		numeric("b", 1, 2, 3, 4, 5),
	})

	a := NewInferential()
	result, err := a.HypothesisTest(ds, hypothesisConfig("a", "b"))
	assert.NoError(t, err)

	assert.Equal(t, "t-test (pooled)", result.Method)
	assert.InDelta(t, 0.0, result.Statistic, 1e-9)
	assert.InDelta(t, 1.0, result.PValue, 1e-9)
	assert.Equal(t, report.VerdictFailReject, result.Verdict)
	assert.Equal(t, [2]int{5, 5}, result.SampleSizes)
	assert.InDelta(t, 8.0, result.DegreesOfFreedom, 1e-9)
}

func TestHypothesisTest_ClearlySeparatedSamplesReject(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		numeric("a", 1, 2, 3, 2, 1),
		numeric("b", 101, 102, 103, 102, 101),
	})

	a := NewInferential()
	result, err := a.HypothesisTest(ds, hypothesisConfig("a", "b"))
	assert.NoError(t, err)
	assert.Less(t, result.PValue, 0.05)
	assert.Equal(t, report.VerdictReject, result.Verdict)
}

func TestHypothesisTest_WelchVariant(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		numeric("a", 1, 2, 3, 4, 5),
		numeric("b", 10, 30, 50, 70, 90),
	})

	cfg := hypothesisConfig("a", "b")
	unequal := false
	cfg.EqualVariance = &unequal

	a := NewInferential()
	result, err := a.HypothesisTest(ds, cfg)
	assert.NoError(t, err)
	assert.Equal(t, "t-test (welch)", result.Method)
	assert.Less(t, result.DegreesOfFreedom, 8.0, "Welch df shrinks under unequal variances")
}

func TestHypothesisTest_Paired(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		numeric("before", 10, 12, 14, 16),
		numeric("after", 11, 14, 15, 18),
	})

	cfg := hypothesisConfig("before", "after")
	cfg.Paired = true

	a := NewInferential()
	result, err := a.HypothesisTest(ds, cfg)
	assert.NoError(t, err)
	assert.Equal(t, "t-test (paired)", result.Method)
	assert.InDelta(t, 3.0, result.DegreesOfFreedom, 1e-9)
}

func TestHypothesisTest_Anova(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		numeric("a", 1, 2, 3, 2, 1),
		numeric("b", 7, 8, 9, 8, 7),
	})

	cfg := hypothesisConfig("a", "b")
	cfg.HypothesisTestingMethod = config.MethodAnova

	a := NewInferential()
	result, err := a.HypothesisTest(ds, cfg)
	assert.NoError(t, err)
	assert.Equal(t, "anova", result.Method)
	assert.Greater(t, result.Statistic, 0.0)
	assert.Equal(t, report.VerdictReject, result.Verdict)
}

func TestHypothesisTest_BothConstantIsZeroVariance(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		numeric("a", 3, 3, 3),
		numeric("b", 3, 3, 3),
	})

	a := NewInferential()
	_, err := a.HypothesisTest(ds, hypothesisConfig("a", "b"))
	assert.ErrorIs(t, err, core.ErrZeroVariance)
}

func TestHistogramBins_EqualWidth(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		numeric("v", 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10),
	})

	a := NewInferential()
	bins, n, err := a.HistogramBins(ds, "v", 2)
	assert.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Len(t, bins, 2)

	assert.Equal(t, 0.0, bins[0].Lower)
	assert.Equal(t, 5.0, bins[0].Upper)
	assert.Equal(t, 10.0, bins[1].Upper)

	assert.Equal(t, 5, bins[0].Count)
	assert.Equal(t, 6, bins[1].Count, "last bin includes its upper edge")
}

func TestHistogramBins_ConstantColumnCollapsesToOneBin(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{numeric("v", 4, 4, 4)})

	a := NewInferential()
	bins, n, err := a.HistogramBins(ds, "v", 10)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, bins, 1)
	assert.Equal(t, 4.0, bins[0].Lower)
	assert.Equal(t, 4.0, bins[0].Upper)
	assert.Equal(t, 3, bins[0].Count)
}

func TestHistogramBins_RejectsNonPositiveBinCount(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{numeric("v", 1, 2, 3)})

	a := NewInferential()
	_, _, err := a.HistogramBins(ds, "v", 0)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	_, _, err = a.HistogramBins(ds, "v", -3)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestScatterPairs_SkipsIncompleteRows(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		withMissing(numeric("x", 1, 2, 3), 1),
		numeric("y", 10, 20, 30),
	})

	a := NewInferential()
	points, err := a.ScatterPairs(ds, "x", "y")
	assert.NoError(t, err)
	assert.Equal(t, []report.ScatterPoint{{X: 1, Y: 10}, {X: 3, Y: 30}}, points)
}

func TestInferentialRun_FailureEntryDoesNotAbortSiblings(t *testing.T) {
	ds := mustDataset(t, []dataset.Column{
		numeric("x", 1, 2, 3),
		numeric("constant", 5, 5, 5),
	})

	a := NewInferential()
	bins := 2
	results, err := a.Run(context.Background(), ds, config.QuantitativeConfig{
		LinearRegressionTarget:   "constant",
		LinearRegressionFeatures: []string{"x"},
		HistogramColumn:          "x",
		HistogramBins:            &bins,
	})
	assert.NoError(t, err)

	regression := results[report.KeyRegression]
	assert.True(t, regression.Failed())
	assert.Contains(t, regression.Failure, "zero variance")

	histogram := results[report.KeyHistogram]
	assert.False(t, histogram.Failed(), "sibling analyses keep their results")
}
