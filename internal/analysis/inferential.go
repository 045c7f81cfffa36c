package analysis

import (
	"context"
	"fmt"
	"math"

	"plato/domain/core"
	"plato/domain/dataset"
	"plato/domain/report"
	"plato/internal"
	"plato/internal/config"
	"plato/internal/resolve"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Singular values below this fraction of the largest are treated as
// zero when checking the design matrix rank.
const singularTolerance = 1e-10

// Inferential fits linear regressions and runs hypothesis tests,
// producing point estimates and significance verdicts. It also prepares
// histogram bins and scatter pairs for visualization collaborators.
type Inferential struct {
	log *internal.Logger
}

// NewInferential creates an inferential analyzer.
func NewInferential() *Inferential {
	return &Inferential{log: internal.DefaultLogger}
}

// Run executes the configured inferential analyses. Data quality
// failures become failure entries; configuration errors are returned and
// abort the run.
func (a *Inferential) Run(ctx context.Context, ds *dataset.Dataset, q config.QuantitativeConfig) (map[string]report.Result, error) {
	results := make(map[string]report.Result)

	record := func(key string, columns []string, n int, value interface{}, err error) error {
		entry := report.Result{Analysis: key, Columns: columns, SampleSize: n}
		switch {
		case err == nil:
			entry.Value = value
		case core.IsDataQualityError(err):
			entry.Failure = err.Error()
		default:
			return err
		}
		results[key] = entry
		return nil
	}

	if q.LinearRegressionTarget != "" && len(q.LinearRegressionFeatures) > 0 {
		regression, err := a.LinearRegression(ds, q.LinearRegressionTarget, q.LinearRegressionFeatures)
		columns := append([]string{q.LinearRegressionTarget}, q.LinearRegressionFeatures...)
		if err := record(report.KeyRegression, columns, regression.N, regression, err); err != nil {
			return nil, err
		}
	}

	if len(q.HypothesisTestingColumns) == 2 {
		test, err := a.HypothesisTest(ds, q)
		n := test.SampleSizes[0] + test.SampleSizes[1]
		if err := record(report.KeyHypothesis, q.HypothesisTestingColumns, n, test, err); err != nil {
			return nil, err
		}
	}

	if q.HistogramColumn != "" {
		bins, n, err := a.HistogramBins(ds, q.HistogramColumn, q.BinCount())
		if err := record(report.KeyHistogram, []string{q.HistogramColumn}, n, bins, err); err != nil {
			return nil, err
		}
	}

	if len(q.ScatterPlotColumns) == 2 {
		points, err := a.ScatterPairs(ds, q.ScatterPlotColumns[0], q.ScatterPlotColumns[1])
		if err := record(report.KeyScatter, q.ScatterPlotColumns, len(points), points, err); err != nil {
			return nil, err
		}
	}

	return results, nil
}

// LinearRegression fits target ~ features by ordinary least squares.
// Rows with a missing value in the target or any feature are excluded.
// Perfect collinearity is detected through the singular values of the
// design matrix and reported, never solved through to NaN coefficients.
func (a *Inferential) LinearRegression(ds *dataset.Dataset, target string, features []string) (report.RegressionResult, error) {
	schema := ds.Schema()
	targetRef, err := resolve.Column(schema, "linear regression", target, resolve.Numeric)
	if err != nil {
		return report.RegressionResult{}, err
	}
	featureRefs, err := resolve.Columns(schema, "linear regression", features, resolve.Numeric)
	if err != nil {
		return report.RegressionResult{}, err
	}

	// Complete rows only.
	var rows []int
rows:
	for i := 0; i < ds.Rows(); i++ {
		if ds.Columns[targetRef.Index].Values[i].Missing {
			continue
		}
		for _, ref := range featureRefs {
			if ds.Columns[ref.Index].Values[i].Missing {
				continue rows
			}
		}
		rows = append(rows, i)
	}

	n, p := len(rows), len(featureRefs)
	if n <= p {
		return report.RegressionResult{}, core.NewInsufficientSamplesError("linear regression", n, p+1)
	}

	y := make([]float64, n)
	design := mat.NewDense(n, p+1, nil)
	for i, row := range rows {
		y[i] = ds.Columns[targetRef.Index].Values[row].Num
		design.Set(i, 0, 1) // intercept
		for j, ref := range featureRefs {
			design.Set(i, j+1, ds.Columns[ref.Index].Values[row].Num)
		}
	}

	if !hasVariance(y) {
		return report.RegressionResult{}, core.NewZeroVarianceError("linear regression target", target)
	}

	var svd mat.SVD
	if !svd.Factorize(design, mat.SVDThin) {
		return report.RegressionResult{}, core.ErrSingularDesignMatrix
	}
	sv := svd.Values(nil)
	if sv[0] == 0 || sv[len(sv)-1] < singularTolerance*sv[0] {
		return report.RegressionResult{}, core.ErrSingularDesignMatrix
	}

	var qr mat.QR
	qr.Factorize(design)
	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, mat.NewDense(n, 1, y)); err != nil {
		return report.RegressionResult{}, core.ErrSingularDesignMatrix
	}

	// R^2 from residual and total sums of squares.
	meanY, _ := stats.Mean(y)
	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		fitted := beta.At(0, 0)
		for j := 0; j < p; j++ {
			fitted += beta.At(j+1, 0) * design.At(i, j+1)
		}
		ssRes += (y[i] - fitted) * (y[i] - fitted)
		ssTot += (y[i] - meanY) * (y[i] - meanY)
	}

	coefficients := make(map[string]float64, p)
	for j, ref := range featureRefs {
		coefficients[ref.Name] = beta.At(j+1, 0)
	}

	return report.RegressionResult{
		Target:       target,
		Intercept:    beta.At(0, 0),
		Coefficients: coefficients,
		RSquared:     1 - ssRes/ssTot,
		N:            n,
	}, nil
}

// HypothesisTest compares the means of the two configured columns.
// The t-test pools variances by default (equal variances assumed);
// equal_variance:false selects Welch's variant with Satterthwaite
// degrees of freedom, paired:true the paired variant over complete rows.
// The verdict threshold is the configured significance level.
func (a *Inferential) HypothesisTest(ds *dataset.Dataset, q config.QuantitativeConfig) (report.HypothesisTestResult, error) {
	refs, err := resolve.Columns(ds.Schema(), "hypothesis test", q.HypothesisTestingColumns, resolve.Numeric)
	if err != nil {
		return report.HypothesisTestResult{}, err
	}
	colA := &ds.Columns[refs[0].Index]
	colB := &ds.Columns[refs[1].Index]

	if q.HypothesisTestingMethod == config.MethodAnova {
		return a.oneWayAnova(colA, colB, q.Alpha())
	}
	if q.Paired {
		return a.pairedTTest(colA, colB, q.Alpha())
	}
	return a.twoSampleTTest(colA, colB, q.PooledVariance(), q.Alpha())
}

func (a *Inferential) twoSampleTTest(colA, colB *dataset.Column, pooled bool, alpha float64) (report.HypothesisTestResult, error) {
	x, err := observedAtLeast("t-test", colA, 2)
	if err != nil {
		return report.HypothesisTestResult{}, err
	}
	y, err := observedAtLeast("t-test", colB, 2)
	if err != nil {
		return report.HypothesisTestResult{}, err
	}

	n1, n2 := float64(len(x)), float64(len(y))
	m1, v1 := sampleMeanVar(x)
	m2, v2 := sampleMeanVar(y)
	if v1 == 0 && v2 == 0 {
		return report.HypothesisTestResult{}, core.NewZeroVarianceError("t-test", colA.Name+", "+colB.Name)
	}

	var tStat, df float64
	method := "t-test (pooled)"
	if pooled {
		sp := math.Sqrt(((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2))
		tStat = (m1 - m2) / (sp * math.Sqrt(1/n1+1/n2))
		df = n1 + n2 - 2
	} else {
		method = "t-test (welch)"
		se := math.Sqrt(v1/n1 + v2/n2)
		tStat = (m1 - m2) / se
		// Welch-Satterthwaite degrees of freedom
		df = math.Pow(v1/n1+v2/n2, 2) / (math.Pow(v1/n1, 2)/(n1-1) + math.Pow(v2/n2, 2)/(n2-1))
	}

	p := tPValue(tStat, df)
	return report.HypothesisTestResult{
		Method:            method,
		Statistic:         tStat,
		PValue:            p,
		DegreesOfFreedom:  df,
		SignificanceLevel: alpha,
		Verdict:           verdict(p, alpha),
		SampleSizes:       [2]int{len(x), len(y)},
	}, nil
}

func (a *Inferential) pairedTTest(colA, colB *dataset.Column, alpha float64) (report.HypothesisTestResult, error) {
	xs, ys := pairComplete(colA, colB)
	if len(xs) < 2 {
		return report.HypothesisTestResult{}, core.NewInsufficientSamplesError("paired t-test", len(xs), 2)
	}

	diffs := make([]float64, len(xs))
	for i := range xs {
		diffs[i] = xs[i] - ys[i]
	}
	mean, variance := sampleMeanVar(diffs)
	if variance == 0 {
		return report.HypothesisTestResult{}, core.NewZeroVarianceError("paired t-test", colA.Name+", "+colB.Name)
	}

	n := float64(len(diffs))
	tStat := mean / math.Sqrt(variance/n)
	df := n - 1

	p := tPValue(tStat, df)
	return report.HypothesisTestResult{
		Method:            "t-test (paired)",
		Statistic:         tStat,
		PValue:            p,
		DegreesOfFreedom:  df,
		SignificanceLevel: alpha,
		Verdict:           verdict(p, alpha),
		SampleSizes:       [2]int{len(xs), len(ys)},
	}, nil
}

// oneWayAnova runs a one-way F test across the two columns as groups.
func (a *Inferential) oneWayAnova(colA, colB *dataset.Column, alpha float64) (report.HypothesisTestResult, error) {
	x, err := observedAtLeast("anova", colA, 2)
	if err != nil {
		return report.HypothesisTestResult{}, err
	}
	y, err := observedAtLeast("anova", colB, 2)
	if err != nil {
		return report.HypothesisTestResult{}, err
	}

	n1, n2 := float64(len(x)), float64(len(y))
	m1, v1 := sampleMeanVar(x)
	m2, v2 := sampleMeanVar(y)
	if v1 == 0 && v2 == 0 {
		return report.HypothesisTestResult{}, core.NewZeroVarianceError("anova", colA.Name+", "+colB.Name)
	}

	total := n1 + n2
	grand := (n1*m1 + n2*m2) / total
	ssBetween := n1*(m1-grand)*(m1-grand) + n2*(m2-grand)*(m2-grand)
	ssWithin := (n1-1)*v1 + (n2-1)*v2

	dfBetween := 1.0 // two groups
	dfWithin := total - 2
	fStat := (ssBetween / dfBetween) / (ssWithin / dfWithin)

	fDist := distuv.F{D1: dfBetween, D2: dfWithin}
	p := 1 - fDist.CDF(fStat)

	return report.HypothesisTestResult{
		Method:            "anova",
		Statistic:         fStat,
		PValue:            p,
		DegreesOfFreedom:  dfWithin,
		SignificanceLevel: alpha,
		Verdict:           verdict(p, alpha),
		SampleSizes:       [2]int{len(x), len(y)},
	}, nil
}

// tPValue is the two-sided p-value of a t statistic with df degrees of
// freedom, from the Student's t distribution.
func tPValue(t, df float64) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - dist.CDF(math.Abs(t)))
	if p > 1 {
		p = 1
	}
	return p
}

func verdict(p, alpha float64) string {
	if p < alpha {
		return report.VerdictReject
	}
	return report.VerdictFailReject
}

// HistogramBins splits the column's non-missing values into equal-width
// bins spanning [min, max]. The last bin is right-inclusive so the
// maximum lands in a bin; a constant column collapses to a single bin.
func (a *Inferential) HistogramBins(ds *dataset.Dataset, column string, binCount int) ([]report.HistogramBin, int, error) {
	if binCount < 1 {
		return nil, 0, fmt.Errorf("%w: histogram needs at least 1 bin, got %d", core.ErrInvalidConfig, binCount)
	}
	ref, err := resolve.Column(ds.Schema(), "histogram", column, resolve.Numeric)
	if err != nil {
		return nil, 0, err
	}
	values, err := observed("histogram", &ds.Columns[ref.Index])
	if err != nil {
		return nil, 0, err
	}

	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	if min == max {
		return []report.HistogramBin{{Lower: min, Upper: max, Count: len(values)}}, len(values), nil
	}

	bins := make([]report.HistogramBin, binCount)
	width := (max - min) / float64(binCount)
	for i := range bins {
		bins[i].Lower = min + float64(i)*width
		bins[i].Upper = min + float64(i+1)*width
	}
	bins[binCount-1].Upper = max

	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= binCount {
			idx = binCount - 1
		}
		bins[idx].Count++
	}
	return bins, len(values), nil
}

// ScatterPairs returns the (x, y) sequence for all rows where both
// columns have a value, ready for plot rendering.
func (a *Inferential) ScatterPairs(ds *dataset.Dataset, xColumn, yColumn string) ([]report.ScatterPoint, error) {
	refs, err := resolve.Columns(ds.Schema(), "scatter plot", []string{xColumn, yColumn}, resolve.Numeric)
	if err != nil {
		return nil, err
	}
	xs, ys := pairComplete(&ds.Columns[refs[0].Index], &ds.Columns[refs[1].Index])

	points := make([]report.ScatterPoint, len(xs))
	for i := range xs {
		points[i] = report.ScatterPoint{X: xs[i], Y: ys[i]}
	}
	return points, nil
}
