// Package export renders an AnalysisReport for humans: Markdown for
// logs and files, HTML for the API. The report itself stays the
// serializable source of truth; rendering is presentation only.
package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"plato/domain/report"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders the report as a Markdown document. Result keys are
// emitted in sorted order so output is stable across runs.
func Markdown(rpt *report.AnalysisReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Analysis Report\n\n")
	fmt.Fprintf(&sb, "- Run: `%s`\n", rpt.RunID)
	fmt.Fprintf(&sb, "- Created: %s\n\n", rpt.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	keys := make([]string, 0, len(rpt.Results))
	for key := range rpt.Results {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		result := rpt.Results[key]
		fmt.Fprintf(&sb, "## %s\n\n", strings.ReplaceAll(key, "_", " "))
		fmt.Fprintf(&sb, "Columns: %s (sample size %d)\n\n", strings.Join(result.Columns, ", "), result.SampleSize)

		if result.Failed() {
			fmt.Fprintf(&sb, "**Failed:** %s\n\n", result.Failure)
			continue
		}
		writeValue(&sb, key, result.Value)
	}
	return sb.String()
}

// HTML renders the report as an HTML fragment via gomarkdown.
func HTML(rpt *report.AnalysisReport) []byte {
	md := []byte(Markdown(rpt))
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML(md, p, renderer)
}

func writeValue(sb *strings.Builder, key string, value interface{}) {
	switch key {
	case report.KeyDescriptive:
		var summaries []report.ColumnSummary
		if coerce(value, &summaries) {
			writeSummaries(sb, summaries)
			return
		}
	case report.KeyCorrelation:
		var matrix report.CorrelationMatrix
		if coerce(value, &matrix) {
			writeMatrix(sb, matrix)
			return
		}
	case report.KeyRegression:
		var regression report.RegressionResult
		if coerce(value, &regression) {
			writeRegression(sb, regression)
			return
		}
	case report.KeyHypothesis:
		var test report.HypothesisTestResult
		if coerce(value, &test) {
			writeHypothesis(sb, test)
			return
		}
	case report.KeyHistogram:
		var bins []report.HistogramBin
		if coerce(value, &bins) {
			writeHistogram(sb, bins)
			return
		}
	case report.KeyScatter:
		var points []report.ScatterPoint
		if coerce(value, &points) {
			fmt.Fprintf(sb, "%d point pairs prepared for plotting.\n\n", len(points))
			return
		}
	}
	// Unknown entry: fall back to raw JSON so nothing is dropped.
	raw, _ := json.MarshalIndent(value, "", "  ")
	fmt.Fprintf(sb, "```json\n%s\n```\n\n", raw)
}

// coerce accepts both typed values (fresh reports) and generic maps
// (reports round-tripped through JSON storage).
func coerce(value, dst interface{}) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func writeSummaries(sb *strings.Builder, summaries []report.ColumnSummary) {
	sb.WriteString("| column | count | mean | std | min | q25 | median | q75 | max |\n")
	sb.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for _, s := range summaries {
		fmt.Fprintf(sb, "| %s | %d | %.4g | %s | %.4g | %s | %.4g | %s | %.4g |\n",
			s.Column, s.Count, s.Mean, optional(s.Std), s.Min, optional(s.Q25), s.Median, optional(s.Q75), s.Max)
	}
	sb.WriteString("\n")
}

// optional renders a statistic that may be undefined for small samples.
func optional(v *float64) string {
	if v == nil {
		return "undefined"
	}
	return fmt.Sprintf("%.4g", *v)
}

func writeMatrix(sb *strings.Builder, matrix report.CorrelationMatrix) {
	fmt.Fprintf(sb, "| | %s |\n", strings.Join(matrix.Columns, " | "))
	sb.WriteString("|---" + strings.Repeat("|---", len(matrix.Columns)) + "|\n")
	for i, name := range matrix.Columns {
		cells := make([]string, len(matrix.Columns))
		for j := range matrix.Columns {
			if matrix.Cells[i][j] == nil {
				cells[j] = "undefined"
			} else {
				cells[j] = fmt.Sprintf("%.4f", *matrix.Cells[i][j])
			}
		}
		fmt.Fprintf(sb, "| %s | %s |\n", name, strings.Join(cells, " | "))
	}
	sb.WriteString("\n")
}

func writeRegression(sb *strings.Builder, regression report.RegressionResult) {
	fmt.Fprintf(sb, "- target: %s\n", regression.Target)
	fmt.Fprintf(sb, "- intercept: %.6g\n", regression.Intercept)
	names := make([]string, 0, len(regression.Coefficients))
	for name := range regression.Coefficients {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(sb, "- coefficient %s: %.6g\n", name, regression.Coefficients[name])
	}
	fmt.Fprintf(sb, "- r_squared: %.4f\n", regression.RSquared)
	fmt.Fprintf(sb, "- n: %d\n\n", regression.N)
}

func writeHypothesis(sb *strings.Builder, test report.HypothesisTestResult) {
	fmt.Fprintf(sb, "- method: %s\n", test.Method)
	fmt.Fprintf(sb, "- statistic: %.4f\n", test.Statistic)
	fmt.Fprintf(sb, "- p_value: %.4g\n", test.PValue)
	fmt.Fprintf(sb, "- degrees_of_freedom: %.2f\n", test.DegreesOfFreedom)
	fmt.Fprintf(sb, "- verdict: %s (at α = %v)\n", test.Verdict, test.SignificanceLevel)
	fmt.Fprintf(sb, "- sample sizes: %d, %d\n\n", test.SampleSizes[0], test.SampleSizes[1])
}

func writeHistogram(sb *strings.Builder, bins []report.HistogramBin) {
	sb.WriteString("| lower | upper | count |\n|---|---|---|\n")
	for _, bin := range bins {
		fmt.Fprintf(sb, "| %.4g | %.4g | %d |\n", bin.Lower, bin.Upper, bin.Count)
	}
	sb.WriteString("\n")
}
