package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"plato/internal/errors"
)

// MissingValueStrategy selects how the cleaner fills (or drops) missing cells.
type MissingValueStrategy string

const (
	StrategyMean     MissingValueStrategy = "mean"
	StrategyMedian   MissingValueStrategy = "median"
	StrategyMode     MissingValueStrategy = "mode"
	StrategyConstant MissingValueStrategy = "constant"
	StrategyDropRow  MissingValueStrategy = "drop-row"
)

// ParseMissingValueStrategy validates a strategy name eagerly at load time.
func ParseMissingValueStrategy(s string) (MissingValueStrategy, error) {
	switch MissingValueStrategy(s) {
	case StrategyMean, StrategyMedian, StrategyMode, StrategyConstant, StrategyDropRow:
		return MissingValueStrategy(s), nil
	case "":
		return StrategyMean, nil // documented default
	}
	return "", fmt.Errorf("unknown missing_value_strategy %q", s)
}

// ScalingMethod selects the numeric scaling applied by the transformer.
type ScalingMethod string

const (
	ScalingMinMax   ScalingMethod = "minmax"
	ScalingStandard ScalingMethod = "standard"
	ScalingNone     ScalingMethod = "none"
)

// ParseScalingMethod validates a scaling method name eagerly at load time.
func ParseScalingMethod(s string) (ScalingMethod, error) {
	switch ScalingMethod(s) {
	case ScalingMinMax, ScalingStandard, ScalingNone:
		return ScalingMethod(s), nil
	case "":
		return ScalingNone, nil // empty means no scaling
	}
	return "", fmt.Errorf("unknown scaling_method %q", s)
}

// HypothesisMethod selects the hypothesis test variant.
type HypothesisMethod string

const (
	MethodTTest HypothesisMethod = "t-test"
	MethodAnova HypothesisMethod = "anova"
)

// ParseHypothesisMethod validates a test method name eagerly at load time.
func ParseHypothesisMethod(s string) (HypothesisMethod, error) {
	switch HypothesisMethod(s) {
	case MethodTTest, MethodAnova:
		return HypothesisMethod(s), nil
	case "":
		return MethodTTest, nil // documented default
	}
	return "", fmt.Errorf("unknown hypothesis_testing_method %q", s)
}

// Pipeline is the declarative configuration document for one run.
// Unknown keys in the source JSON are ignored; empty column sets are
// valid, documented no-ops for their sub-stage.
type Pipeline struct {
	Transformation TransformationConfig `json:"data_transformation"`
	Analysis       AnalysisConfig       `json:"data_analysis"`
}

// TransformationConfig groups the cleaning and transform stages.
type TransformationConfig struct {
	Cleaner     CleanerConfig     `json:"cleaner"`
	Transformer TransformerConfig `json:"transformer"`
}

// CleanerConfig drives duplicate removal and missing value imputation.
type CleanerConfig struct {
	MissingValueStrategy MissingValueStrategy `json:"missing_value_strategy"`
	// ConstantFillValue is the literal used by the "constant" strategy;
	// parsed as a number for numeric columns.
	ConstantFillValue string `json:"constant_fill_value"`
	DuplicateRemoval  bool   `json:"duplicate_removal"`
}

// TransformerConfig drives categorical encoding and numeric scaling.
type TransformerConfig struct {
	LabelEncodingColumns  []string      `json:"label_encoding_columns"`
	OneHotEncodingColumns []string      `json:"one_hot_encoding_columns"`
	ScalingMethod         ScalingMethod `json:"scaling_method"`
	ScalingColumns        []string      `json:"scaling_columns"`
	// SkipConstantColumns opts standard scaling out of the ZeroVariance
	// failure for constant columns, leaving them untouched instead.
	SkipConstantColumns bool `json:"skip_constant_columns"`
	// MaxOneHotCategories is the distinct-value ceiling guarding against
	// pathological column explosion. Defaults to 50.
	MaxOneHotCategories int `json:"max_one_hot_categories"`
}

// AnalysisConfig groups the analysis stages.
type AnalysisConfig struct {
	Quantitative QuantitativeConfig `json:"quantitative"`
}

// QuantitativeConfig declares which analyses run and over which columns.
type QuantitativeConfig struct {
	DescriptiveStatisticsColumns []string `json:"descriptive_statistics_columns"`
	CorrelationMatrixColumns     []string `json:"correlation_matrix_columns"`

	LinearRegressionTarget   string   `json:"linear_regression_target"`
	LinearRegressionFeatures []string `json:"linear_regression_features"`

	HypothesisTestingColumns []string         `json:"hypothesis_testing_columns"`
	HypothesisTestingMethod  HypothesisMethod `json:"hypothesis_testing_method"`
	// EqualVariance selects the pooled-variance t-test (the default) or
	// Welch's unequal-variance variant when explicitly set to false.
	EqualVariance *bool `json:"equal_variance"`
	Paired        bool  `json:"paired"`
	// SignificanceLevel is the verdict threshold. Nil means the 0.05
	// default; an explicit value is kept as written, including 0.
	SignificanceLevel *float64 `json:"significance_level"`

	HistogramColumn string `json:"histogram_column"`
	// HistogramBins is nil when absent, selecting the 10-bin default.
	HistogramBins *int `json:"histogram_bins"`

	ScatterPlotColumns []string `json:"scatter_plot_columns"`
}

// PooledVariance reports whether the t-test should assume equal variances.
func (q QuantitativeConfig) PooledVariance() bool {
	return q.EqualVariance == nil || *q.EqualVariance
}

// Alpha is the effective significance level.
func (q QuantitativeConfig) Alpha() float64 {
	if q.SignificanceLevel == nil {
		return DefaultSignificanceLevel
	}
	return *q.SignificanceLevel
}

// BinCount is the effective histogram bin count.
func (q QuantitativeConfig) BinCount() int {
	if q.HistogramBins == nil {
		return DefaultHistogramBins
	}
	return *q.HistogramBins
}

// Default values applied when optional keys are absent.
const (
	DefaultSignificanceLevel   = 0.05
	DefaultHistogramBins       = 10
	DefaultMaxOneHotCategories = 50
)

// LoadPipeline reads and validates a pipeline configuration document.
// Enum values are rejected eagerly here, not downstream.
func LoadPipeline(path string) (*Pipeline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read pipeline config %s", path)
	}
	return ParsePipeline(raw)
}

// ParsePipeline decodes and validates a pipeline configuration document.
func ParsePipeline(raw []byte) (*Pipeline, error) {
	var p Pipeline
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errors.Wrap(err, "failed to parse pipeline config")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.applyDefaults()
	return &p, nil
}

// Validate rejects unknown enum values and malformed settings. Column
// existence is checked later against the dataset schema by the resolver.
func (p *Pipeline) Validate() error {
	var err error
	if p.Transformation.Cleaner.MissingValueStrategy, err = ParseMissingValueStrategy(string(p.Transformation.Cleaner.MissingValueStrategy)); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if p.Transformation.Transformer.ScalingMethod, err = ParseScalingMethod(string(p.Transformation.Transformer.ScalingMethod)); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	q := &p.Analysis.Quantitative
	if q.HypothesisTestingMethod, err = ParseHypothesisMethod(string(q.HypothesisTestingMethod)); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if n := len(q.HypothesisTestingColumns); n != 0 && n != 2 {
		return errors.ConfigInvalid(fmt.Sprintf("hypothesis_testing_columns needs exactly 2 columns, got %d", n))
	}
	if n := len(q.ScatterPlotColumns); n != 0 && n != 2 {
		return errors.ConfigInvalid(fmt.Sprintf("scatter_plot_columns needs exactly 2 columns, got %d", n))
	}
	if q.SignificanceLevel != nil && (*q.SignificanceLevel < 0 || *q.SignificanceLevel >= 1) {
		return errors.ConfigInvalid(fmt.Sprintf("significance_level %v outside [0,1)", *q.SignificanceLevel))
	}
	if q.HistogramBins != nil && *q.HistogramBins < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("histogram_bins needs at least 1 bin, got %d", *q.HistogramBins))
	}
	if p.Transformation.Transformer.MaxOneHotCategories < 0 {
		return errors.ConfigInvalid("max_one_hot_categories cannot be negative")
	}
	return nil
}

func (p *Pipeline) applyDefaults() {
	if p.Transformation.Transformer.MaxOneHotCategories == 0 {
		p.Transformation.Transformer.MaxOneHotCategories = DefaultMaxOneHotCategories
	}
}

// DefaultPipeline mirrors the configuration document shipped with the
// project: mean imputation, duplicate removal on, no encoding or scaling,
// no analyses selected.
func DefaultPipeline() *Pipeline {
	p := &Pipeline{
		Transformation: TransformationConfig{
			Cleaner: CleanerConfig{
				MissingValueStrategy: StrategyMean,
				DuplicateRemoval:     true,
			},
			Transformer: TransformerConfig{
				ScalingMethod: ScalingNone,
			},
		},
		Analysis: AnalysisConfig{
			Quantitative: QuantitativeConfig{
				HypothesisTestingMethod: MethodTTest,
			},
		},
	}
	p.applyDefaults()
	return p
}

// App holds process-level settings sourced from environment variables.
type App struct {
	Server   ServerConfig
	Database DatabaseConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port int
}

// DatabaseConfig holds database connection settings; URL empty means
// persistence is disabled and runs stay in memory.
type DatabaseConfig struct {
	URL string
}

// LoadApp reads process configuration from environment variables.
func LoadApp() *App {
	return &App{
		Server: ServerConfig{
			Port: getEnvIntOrDefault("PORT", 8080),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
