package report

import (
	"time"

	"plato/domain/core"
)

// Result is one analysis entry in the report. It carries the inputs it
// was computed from (columns, sample size) alongside the output, so every
// entry is self-describing and reproducible. A data quality failure is
// recorded in Failure instead of aborting sibling analyses.
type Result struct {
	Analysis   string      `json:"analysis"`
	Columns    []string    `json:"columns,omitempty"`
	SampleSize int         `json:"sample_size"`
	Value      interface{} `json:"value,omitempty"`
	Failure    string      `json:"failure,omitempty"`
}

// Failed reports whether this entry recorded a data quality failure.
func (r Result) Failed() bool { return r.Failure != "" }

// AnalysisReport is the final structured collection of all analysis
// results for a run. Built once by the assembler, immutable afterwards.
type AnalysisReport struct {
	RunID     core.RunID        `json:"run_id"`
	CreatedAt time.Time         `json:"created_at"`
	Results   map[string]Result `json:"results"`
}

// Keys under which the standard analyses are reported.
const (
	KeyDescriptive = "descriptive_statistics"
	KeyCorrelation = "correlation_matrix"
	KeyRegression  = "linear_regression"
	KeyHypothesis  = "hypothesis_test"
	KeyHistogram   = "histogram"
	KeyScatter     = "scatter_plot"
)

// ColumnSummary holds per-column descriptive statistics. Std and the
// outer quartiles are nil when the sample is too small to define them
// (undefined, not fatal).
type ColumnSummary struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   float64  `json:"mean"`
	Std    *float64 `json:"std"` // nil = undefined
	Min    float64  `json:"min"`
	Q25    *float64 `json:"q25"` // nil = undefined
	Median float64  `json:"median"`
	Q75    *float64 `json:"q75"` // nil = undefined
	Max    float64  `json:"max"`
}

// CorrelationMatrix is a symmetric Pearson matrix indexed by the resolved
// column order. A nil cell means the pair is undefined (zero variance on
// either side); the diagonal is exactly 1.0 for columns with variance.
type CorrelationMatrix struct {
	Columns []string     `json:"columns"`
	Cells   [][]*float64 `json:"cells"`
}

// RegressionResult is an ordinary least squares fit.
type RegressionResult struct {
	Target       string             `json:"target"`
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
	RSquared     float64            `json:"r_squared"`
	N            int                `json:"n"`
}

// HypothesisTestResult is the outcome of a two-sample mean comparison.
type HypothesisTestResult struct {
	Method            string  `json:"method"`
	Statistic         float64 `json:"statistic"`
	PValue            float64 `json:"p_value"`
	DegreesOfFreedom  float64 `json:"degrees_of_freedom"`
	SignificanceLevel float64 `json:"significance_level"`
	Verdict           string  `json:"verdict"`
	SampleSizes       [2]int  `json:"sample_sizes"`
}

// Verdict strings for hypothesis tests.
const (
	VerdictReject     = "reject null"
	VerdictFailReject = "fail to reject null"
)

// HistogramBin is one equal-width bin; the last bin's upper edge is
// inclusive so the column maximum lands in a bin.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// ScatterPoint is one (x, y) pair where both values were present.
type ScatterPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
