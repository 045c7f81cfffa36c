package pipeline

import (
	"strconv"
	"strings"

	"plato/domain/core"
	"plato/domain/dataset"
	"plato/internal"
	"plato/internal/config"

	"github.com/montanaflynn/stats"
)

// Cleaner removes duplicate rows and imputes missing values per the
// configured strategy. Each call consumes a Dataset and produces a new
// one; inputs are never mutated.
type Cleaner struct {
	cfg config.CleanerConfig
	log *internal.Logger
}

// NewCleaner creates a cleaner for the given configuration.
func NewCleaner(cfg config.CleanerConfig) *Cleaner {
	return &Cleaner{cfg: cfg, log: internal.DefaultLogger}
}

// Clean applies the cleaning stage. Under the drop-row strategy the
// incomplete rows are removed first, so no later stage ever sees them;
// otherwise duplicates are removed and remaining gaps imputed.
func (c *Cleaner) Clean(ds *dataset.Dataset) (*dataset.Dataset, error) {
	out := ds

	if c.cfg.MissingValueStrategy == config.StrategyDropRow {
		out = dropMissingRows(out)
		c.log.Info("cleaner: dropped %d rows with missing values", ds.Rows()-out.Rows())
	}

	if c.cfg.DuplicateRemoval {
		before := out.Rows()
		out = RemoveDuplicates(out)
		c.log.Info("cleaner: removed %d duplicate rows", before-out.Rows())
	}

	if c.cfg.MissingValueStrategy != config.StrategyDropRow {
		imputed, err := c.imputeMissing(out)
		if err != nil {
			return nil, err
		}
		out = imputed
	}

	if out == ds {
		out = ds.Clone()
	}
	return out, nil
}

// RemoveDuplicates drops rows that are exact duplicates across all
// columns, keeping the first occurrence. Retained rows keep their order,
// so applying it twice yields the same dataset as applying it once.
func RemoveDuplicates(ds *dataset.Dataset) *dataset.Dataset {
	seen := make(map[string]bool, ds.Rows())
	keep := make([]int, 0, ds.Rows())

	for row := 0; row < ds.Rows(); row++ {
		var sb strings.Builder
		for i := range ds.Columns {
			c := &ds.Columns[i]
			sb.WriteString(dataset.CellString(c.Kind, c.Values[row]))
			sb.WriteByte(0x1f) // unit separator keeps cells from running together
		}
		key := sb.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		keep = append(keep, row)
	}

	if len(keep) == ds.Rows() {
		return ds.Clone()
	}
	return ds.SelectRows(keep)
}

// dropMissingRows removes every row containing at least one missing value.
func dropMissingRows(ds *dataset.Dataset) *dataset.Dataset {
	keep := make([]int, 0, ds.Rows())
rows:
	for row := 0; row < ds.Rows(); row++ {
		for i := range ds.Columns {
			if ds.Columns[i].Values[row].Missing {
				continue rows
			}
		}
		keep = append(keep, row)
	}
	return ds.SelectRows(keep)
}

// imputeMissing fills gaps column by column. Mean and median apply to
// numeric columns only (categorical gaps stay until a mode or constant
// strategy handles them); mode applies to both kinds with first-seen
// tie-breaking. Row count never changes here.
func (c *Cleaner) imputeMissing(ds *dataset.Dataset) (*dataset.Dataset, error) {
	out := ds.Clone()

	for i := range out.Columns {
		col := &out.Columns[i]
		if col.MissingCount() == 0 {
			continue
		}

		var fill dataset.Value
		switch c.cfg.MissingValueStrategy {
		case config.StrategyMean, config.StrategyMedian:
			if col.Kind != dataset.KindNumeric {
				continue
			}
			observed := col.NumericValues()
			if len(observed) == 0 {
				return nil, core.NewAllValuesMissingError("cleaner", col.Name)
			}
			var v float64
			var err error
			if c.cfg.MissingValueStrategy == config.StrategyMean {
				v, err = stats.Mean(observed)
			} else {
				v, err = stats.Median(observed)
			}
			if err != nil {
				return nil, core.NewAllValuesMissingError("cleaner", col.Name)
			}
			fill = dataset.Number(v)

		case config.StrategyMode:
			mode, ok := firstSeenMode(col)
			if !ok {
				return nil, core.NewAllValuesMissingError("cleaner", col.Name)
			}
			fill = mode

		case config.StrategyConstant:
			if col.Kind == dataset.KindNumeric {
				v, err := strconv.ParseFloat(c.cfg.ConstantFillValue, 64)
				if err != nil {
					return nil, core.NewTypeMismatchError("cleaner", col.Name, "numeric constant_fill_value", strconv.Quote(c.cfg.ConstantFillValue))
				}
				fill = dataset.Number(v)
			} else {
				fill = dataset.Category(c.cfg.ConstantFillValue)
			}
		}

		for j := range col.Values {
			if col.Values[j].Missing {
				col.Values[j] = fill
			}
		}
	}
	return out, nil
}

// firstSeenMode returns the most frequent non-missing value of a column.
// Ties are broken by first-seen order so the result is deterministic
// given row order.
func firstSeenMode(col *dataset.Column) (dataset.Value, bool) {
	type entry struct {
		count int
		first int
	}
	counts := make(map[string]*entry)
	values := make(map[string]dataset.Value)

	for i, v := range col.Values {
		if v.Missing {
			continue
		}
		key := dataset.CellString(col.Kind, v)
		if e, ok := counts[key]; ok {
			e.count++
		} else {
			counts[key] = &entry{count: 1, first: i}
			values[key] = v
		}
	}
	if len(counts) == 0 {
		return dataset.Value{}, false
	}

	bestKey := ""
	for key, e := range counts {
		if bestKey == "" {
			bestKey = key
			continue
		}
		best := counts[bestKey]
		if e.count > best.count || (e.count == best.count && e.first < best.first) {
			bestKey = key
		}
	}
	return values[bestKey], true
}
