package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors - always fatal to the run
	ErrUnknownColumn      = errors.New("unknown column")
	ErrTypeMismatch       = errors.New("column type mismatch")
	ErrTooManyCategories  = errors.New("too many categories for one-hot encoding")
	ErrDuplicateReportKey = errors.New("duplicate report key")
	ErrInvalidConfig      = errors.New("invalid configuration")

	// Data quality errors - fatal to the analysis that hit them,
	// siblings keep running
	ErrAllValuesMissing     = errors.New("all values missing")
	ErrZeroVariance         = errors.New("zero variance")
	ErrSingularDesignMatrix = errors.New("singular design matrix")
	ErrInsufficientSamples  = errors.New("insufficient samples")
)

// Error constructors with context

func NewUnknownColumnError(stage, column string) error {
	return fmt.Errorf("%w: %q referenced by %s is not in the dataset", ErrUnknownColumn, column, stage)
}

func NewTypeMismatchError(stage, column, want, got string) error {
	return fmt.Errorf("%w: %s requires %s column, %q is %s", ErrTypeMismatch, stage, want, column, got)
}

func NewTooManyCategoriesError(column string, distinct, ceiling int) error {
	return fmt.Errorf("%w: column %q has %d distinct values (ceiling %d)", ErrTooManyCategories, column, distinct, ceiling)
}

func NewAllValuesMissingError(stage, column string) error {
	return fmt.Errorf("%w: column %q in %s", ErrAllValuesMissing, column, stage)
}

func NewZeroVarianceError(stage, column string) error {
	return fmt.Errorf("%w: column %q in %s", ErrZeroVariance, column, stage)
}

func NewInsufficientSamplesError(stage string, got, need int) error {
	return fmt.Errorf("%w: %s has %d observations, needs at least %d", ErrInsufficientSamples, stage, got, need)
}

// Error checking helpers

// IsConfigurationError reports whether err belongs to the configuration
// taxonomy. These abort the whole pipeline run.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrUnknownColumn) ||
		errors.Is(err, ErrTypeMismatch) ||
		errors.Is(err, ErrTooManyCategories) ||
		errors.Is(err, ErrDuplicateReportKey) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsDataQualityError reports whether err belongs to the data quality
// taxonomy. These fail only the analysis that triggered them.
func IsDataQualityError(err error) bool {
	return errors.Is(err, ErrAllValuesMissing) ||
		errors.Is(err, ErrZeroVariance) ||
		errors.Is(err, ErrSingularDesignMatrix) ||
		errors.Is(err, ErrInsufficientSamples)
}
