// Package resolve validates configured column references against a
// dataset schema. Every stage calls it before touching data, so a
// malformed configuration entry fails fast with a column-level
// diagnostic instead of a downstream numeric error.
package resolve

import (
	"fmt"

	"plato/domain/core"
	"plato/domain/dataset"
)

// Requirement is the column kind a stage needs.
type Requirement string

const (
	Numeric     Requirement = "numeric"
	Categorical Requirement = "categorical"
	Any         Requirement = "any"
)

// Columns validates that every name exists in the schema, appears at
// most once, and satisfies the kind requirement, returning references
// in the requested order. Pure validation; no side effects.
func Columns(schema dataset.Schema, stage string, names []string, required Requirement) ([]dataset.ColumnRef, error) {
	byName := make(map[string]dataset.ColumnRef, len(schema))
	for _, ref := range schema {
		byName[ref.Name] = ref
	}

	seen := make(map[string]bool, len(names))
	refs := make([]dataset.ColumnRef, 0, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("%w: column %q listed more than once in %s", core.ErrInvalidConfig, name, stage)
		}
		seen[name] = true
		ref, ok := byName[name]
		if !ok {
			return nil, core.NewUnknownColumnError(stage, name)
		}
		switch required {
		case Numeric:
			if ref.Kind != dataset.KindNumeric {
				return nil, core.NewTypeMismatchError(stage, name, string(dataset.KindNumeric), string(ref.Kind))
			}
		case Categorical:
			if ref.Kind != dataset.KindCategorical {
				return nil, core.NewTypeMismatchError(stage, name, string(dataset.KindCategorical), string(ref.Kind))
			}
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Column validates a single column reference.
func Column(schema dataset.Schema, stage, name string, required Requirement) (dataset.ColumnRef, error) {
	refs, err := Columns(schema, stage, []string{name}, required)
	if err != nil {
		return dataset.ColumnRef{}, err
	}
	return refs[0], nil
}

// Disjoint verifies that two configured column sets do not overlap,
// reporting the first shared name as a type mismatch: a column cannot be
// both an encoding target and a numeric target in the same run.
func Disjoint(stage string, a, b []string) error {
	inA := make(map[string]bool, len(a))
	for _, name := range a {
		inA[name] = true
	}
	for _, name := range b {
		if inA[name] {
			return core.NewTypeMismatchError(stage, name, "disjoint encoding and scaling targets", "configured for both")
		}
	}
	return nil
}
