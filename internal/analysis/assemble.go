package analysis

import (
	"fmt"
	"time"

	"plato/domain/core"
	"plato/domain/report"
)

// Assemble merges analyzer outputs into one immutable AnalysisReport.
// Pure merge: a key appearing in more than one input is a
// configuration-naming collision and fails with DuplicateReportKey.
func Assemble(runID core.RunID, partials ...map[string]report.Result) (*report.AnalysisReport, error) {
	merged := make(map[string]report.Result)
	for _, partial := range partials {
		for key, result := range partial {
			if _, exists := merged[key]; exists {
				return nil, fmt.Errorf("%w: %q", core.ErrDuplicateReportKey, key)
			}
			merged[key] = result
		}
	}
	return &report.AnalysisReport{
		RunID:     runID,
		CreatedAt: time.Now().UTC(),
		Results:   merged,
	}, nil
}
