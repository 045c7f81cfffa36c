package pipeline

import (
	"fmt"

	"plato/domain/core"
	"plato/domain/dataset"
	"plato/internal"
	"plato/internal/config"
	"plato/internal/resolve"

	"github.com/montanaflynn/stats"
)

// Transformer applies categorical encodings and numeric scaling to the
// configured columns, producing a dataset with a new schema. Encoding
// always runs before scaling; encoding and scaling targets must be
// disjoint sets.
type Transformer struct {
	cfg config.TransformerConfig
	log *internal.Logger
}

// NewTransformer creates a transformer for the given configuration.
func NewTransformer(cfg config.TransformerConfig) *Transformer {
	return &Transformer{cfg: cfg, log: internal.DefaultLogger}
}

// Transform runs label encoding, one-hot encoding, then scaling. Empty
// column sets are documented no-ops for their sub-stage.
func (t *Transformer) Transform(ds *dataset.Dataset) (*dataset.Dataset, error) {
	encodingTargets := append(append([]string{}, t.cfg.LabelEncodingColumns...), t.cfg.OneHotEncodingColumns...)
	if err := resolve.Disjoint("transformer", encodingTargets, t.cfg.ScalingColumns); err != nil {
		return nil, err
	}
	if err := resolve.Disjoint("transformer", t.cfg.LabelEncodingColumns, t.cfg.OneHotEncodingColumns); err != nil {
		return nil, err
	}

	out, err := t.labelEncode(ds)
	if err != nil {
		return nil, err
	}
	out, err = t.oneHotEncode(out)
	if err != nil {
		return nil, err
	}
	return t.scale(out)
}

// labelEncode replaces each configured categorical column with integer
// codes assigned in first-seen order within the column. The reverse
// mapping is retained in the dataset's schema metadata.
func (t *Transformer) labelEncode(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if len(t.cfg.LabelEncodingColumns) == 0 {
		return ds, nil
	}
	refs, err := resolve.Columns(ds.Schema(), "label encoding", t.cfg.LabelEncodingColumns, resolve.Categorical)
	if err != nil {
		return nil, err
	}

	out := ds.Clone()
	if out.Encodings == nil {
		out.Encodings = make(map[string][]string)
	}
	for _, ref := range refs {
		col := &out.Columns[ref.Index]
		codes := make(map[string]int)
		var order []string

		for i, v := range col.Values {
			if v.Missing {
				continue
			}
			code, ok := codes[v.Str]
			if !ok {
				code = len(order)
				codes[v.Str] = code
				order = append(order, v.Str)
			}
			col.Values[i] = dataset.Number(float64(code))
		}
		col.Kind = dataset.KindNumeric
		out.Encodings[col.Name] = order
		t.log.Info("transformer: label encoded %q (%d categories)", col.Name, len(order))
	}
	return out, nil
}

// oneHotEncode expands each configured categorical column into one
// indicator column per distinct category in first-seen order, named
// <column>_<category>. The original column is removed. A distinct-value
// count above the configured ceiling fails the run rather than exploding
// the schema.
func (t *Transformer) oneHotEncode(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if len(t.cfg.OneHotEncodingColumns) == 0 {
		return ds, nil
	}
	if _, err := resolve.Columns(ds.Schema(), "one-hot encoding", t.cfg.OneHotEncodingColumns, resolve.Categorical); err != nil {
		return nil, err
	}
	targets := make(map[string]bool, len(t.cfg.OneHotEncodingColumns))
	for _, name := range t.cfg.OneHotEncodingColumns {
		targets[name] = true
	}

	var columns []dataset.Column
	for _, col := range ds.Columns {
		if !targets[col.Name] {
			columns = append(columns, col)
			continue
		}

		seen := make(map[string]bool)
		var order []string
		for _, v := range col.Values {
			if !v.Missing && !seen[v.Str] {
				seen[v.Str] = true
				order = append(order, v.Str)
			}
		}
		if len(order) > t.cfg.MaxOneHotCategories {
			return nil, core.NewTooManyCategoriesError(col.Name, len(order), t.cfg.MaxOneHotCategories)
		}

		for _, category := range order {
			values := make([]dataset.Value, len(col.Values))
			for i, v := range col.Values {
				switch {
				case v.Missing:
					values[i] = dataset.Number(0)
				case v.Str == category:
					values[i] = dataset.Number(1)
				default:
					values[i] = dataset.Number(0)
				}
			}
			columns = append(columns, dataset.Column{
				Name:   fmt.Sprintf("%s_%s", col.Name, category),
				Kind:   dataset.KindNumeric,
				Values: values,
			})
		}
		t.log.Info("transformer: one-hot encoded %q into %d indicator columns", col.Name, len(order))
	}

	out, err := dataset.New(columns)
	if err != nil {
		// Indicator name collided with an existing column.
		return nil, fmt.Errorf("%w: one-hot encoding: %v", core.ErrInvalidConfig, err)
	}
	out.Encodings = ds.Encodings
	return out, nil
}

// MinMaxConstant is what every value of a constant column becomes under
// minmax scaling, where (x-min)/(max-min) is otherwise undefined.
const MinMaxConstant = 0.5

// scale applies the configured scaling method to the configured numeric
// columns. Standard scaling uses the sample (n-1) standard deviation.
func (t *Transformer) scale(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if t.cfg.ScalingMethod == config.ScalingNone || len(t.cfg.ScalingColumns) == 0 {
		return ds, nil
	}
	refs, err := resolve.Columns(ds.Schema(), "scaling", t.cfg.ScalingColumns, resolve.Numeric)
	if err != nil {
		return nil, err
	}

	out := ds.Clone()
	for _, ref := range refs {
		col := &out.Columns[ref.Index]
		observed := col.NumericValues()
		if len(observed) == 0 {
			return nil, core.NewAllValuesMissingError("scaling", col.Name)
		}

		switch t.cfg.ScalingMethod {
		case config.ScalingMinMax:
			min, _ := stats.Min(observed)
			max, _ := stats.Max(observed)
			for i, v := range col.Values {
				if v.Missing {
					continue
				}
				if max == min {
					col.Values[i] = dataset.Number(MinMaxConstant)
				} else {
					col.Values[i] = dataset.Number((v.Num - min) / (max - min))
				}
			}

		case config.ScalingStandard:
			if len(observed) < 2 {
				if t.cfg.SkipConstantColumns {
					t.log.Warn("transformer: skipping constant column %q", col.Name)
					continue
				}
				return nil, core.NewZeroVarianceError("standard scaling", col.Name)
			}
			mean, _ := stats.Mean(observed)
			std, _ := stats.StandardDeviationSample(observed)
			if std == 0 {
				if t.cfg.SkipConstantColumns {
					t.log.Warn("transformer: skipping constant column %q", col.Name)
					continue
				}
				return nil, core.NewZeroVarianceError("standard scaling", col.Name)
			}
			for i, v := range col.Values {
				if !v.Missing {
					col.Values[i] = dataset.Number((v.Num - mean) / std)
				}
			}
		}
	}
	return out, nil
}
