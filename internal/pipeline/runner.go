// Package pipeline wires the stage sequence: clean, transform, analyze,
// assemble. Each stage consumes one immutable Dataset and produces a new
// one, so a run can be retried or inspected at any stage boundary.
package pipeline

import (
	"context"

	"plato/domain/core"
	"plato/domain/dataset"
	"plato/domain/report"
	"plato/internal"
	"plato/internal/analysis"
	"plato/internal/config"
	"plato/internal/resolve"

	"golang.org/x/sync/errgroup"
)

// Runner executes one pipeline run over one in-memory dataset.
type Runner struct {
	cfg         *config.Pipeline
	cleaner     *Cleaner
	transformer *Transformer
	descriptive *analysis.Descriptive
	inferential *analysis.Inferential
	log         *internal.Logger
}

// NewRunner creates a runner for the given pipeline configuration.
func NewRunner(cfg *config.Pipeline) *Runner {
	return &Runner{
		cfg:         cfg,
		cleaner:     NewCleaner(cfg.Transformation.Cleaner),
		transformer: NewTransformer(cfg.Transformation.Transformer),
		descriptive: analysis.NewDescriptive(),
		inferential: analysis.NewInferential(),
		log:         internal.DefaultLogger,
	}
}

// Result is the output of one run: the post-transform dataset (handed to
// qualitative and visualization collaborators) and the analysis report.
type Result struct {
	RunID       core.RunID             `json:"run_id"`
	Transformed *dataset.Dataset       `json:"-"`
	Report      *report.AnalysisReport `json:"report"`
}

// Run executes clean, transform, both analyzers, and assembly. The two
// analyzers read the same immutable dataset concurrently and are joined
// before assembly. Stage boundaries are the cancellation checkpoints; a
// stage in flight always completes.
func (r *Runner) Run(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	runID := core.NewRunID()
	r.log.Info("run %s: starting with %d rows x %d columns", runID, ds.Rows(), len(ds.Columns))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleaned, err := r.cleaner.Clean(ds)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	transformed, err := r.transformer.Transform(cleaned)
	if err != nil {
		return nil, err
	}

	// Resolve every configured analysis column against the post-transform
	// schema before any analysis runs, so one bad reference aborts the run
	// without wasting partial computation.
	if err := validateAnalysisColumns(transformed.Schema(), r.cfg.Analysis.Quantitative); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var descResults, infResults map[string]report.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		descResults, err = r.descriptive.Run(gctx, transformed, r.cfg.Analysis.Quantitative)
		return err
	})
	g.Go(func() error {
		var err error
		infResults, err = r.inferential.Run(gctx, transformed, r.cfg.Analysis.Quantitative)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rpt, err := analysis.Assemble(runID, descResults, infResults)
	if err != nil {
		return nil, err
	}
	r.log.Info("run %s: report assembled with %d entries", runID, len(rpt.Results))

	return &Result{RunID: runID, Transformed: transformed, Report: rpt}, nil
}

// validateAnalysisColumns is the run-level eager resolution pass over
// every analysis column set in the configuration.
func validateAnalysisColumns(schema dataset.Schema, q config.QuantitativeConfig) error {
	if _, err := resolve.Columns(schema, "descriptive statistics", q.DescriptiveStatisticsColumns, resolve.Numeric); err != nil {
		return err
	}
	if _, err := resolve.Columns(schema, "correlation matrix", q.CorrelationMatrixColumns, resolve.Numeric); err != nil {
		return err
	}
	if q.LinearRegressionTarget != "" && len(q.LinearRegressionFeatures) > 0 {
		targets := append([]string{q.LinearRegressionTarget}, q.LinearRegressionFeatures...)
		if _, err := resolve.Columns(schema, "linear regression", targets, resolve.Numeric); err != nil {
			return err
		}
	}
	if _, err := resolve.Columns(schema, "hypothesis test", q.HypothesisTestingColumns, resolve.Numeric); err != nil {
		return err
	}
	if q.HistogramColumn != "" {
		if _, err := resolve.Column(schema, "histogram", q.HistogramColumn, resolve.Numeric); err != nil {
			return err
		}
	}
	if _, err := resolve.Columns(schema, "scatter plot", q.ScatterPlotColumns, resolve.Numeric); err != nil {
		return err
	}
	return nil
}
