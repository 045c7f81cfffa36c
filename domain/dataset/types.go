package dataset

import (
	"fmt"
	"strconv"
)

// Kind classifies a column once at Dataset construction. Operations never
// re-infer it.
type Kind string

const (
	KindNumeric Kind = "numeric"
	// KindCategorical covers categorical and free-text columns alike;
	// the distinction only matters to downstream text collaborators.
	KindCategorical Kind = "categorical"
)

// Value is a single cell: a number, a category, or a missing marker.
// Which payload field is meaningful follows from the owning column's Kind.
type Value struct {
	Num     float64 `json:"num,omitempty"`
	Str     string  `json:"str,omitempty"`
	Missing bool    `json:"missing,omitempty"`
}

// Number creates a numeric value
func Number(f float64) Value { return Value{Num: f} }

// Category creates a categorical value
func Category(s string) Value { return Value{Str: s} }

// Missing creates a missing-value marker
func Missing() Value { return Value{Missing: true} }

// Equal compares two cells, treating missing markers as equal to each other.
func (v Value) Equal(o Value) bool {
	if v.Missing || o.Missing {
		return v.Missing && o.Missing
	}
	return v.Num == o.Num && v.Str == o.Str
}

// Column is a named, typed sequence of values.
type Column struct {
	Name   string  `json:"name"`
	Kind   Kind    `json:"kind"`
	Values []Value `json:"values"`
}

// NumericValues returns the non-missing observations of a numeric column,
// preserving row order.
func (c *Column) NumericValues() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.Missing {
			out = append(out, v.Num)
		}
	}
	return out
}

// Categories returns the non-missing categories of a categorical column,
// preserving row order.
func (c *Column) Categories() []string {
	out := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.Missing {
			out = append(out, v.Str)
		}
	}
	return out
}

// MissingCount returns how many cells carry the missing marker.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.Missing {
			n++
		}
	}
	return n
}

// ColumnRef is a validated reference into a Dataset's schema.
type ColumnRef struct {
	Name  string `json:"name"`
	Kind  Kind   `json:"kind"`
	Index int    `json:"index"`
}

// Schema is the ordered column layout of a Dataset.
type Schema []ColumnRef

// Dataset is an immutable-by-convention table: ordered named columns of
// equal length. Each pipeline stage consumes one Dataset and produces a
// new one; nothing mutates a Dataset across a stage boundary.
type Dataset struct {
	Columns []Column `json:"columns"`

	// Encodings holds the reverse mapping for label-encoded columns:
	// category at index i was encoded as code i. Kept so downstream
	// consumers can decode back to the original categories.
	Encodings map[string][]string `json:"encodings,omitempty"`
}

// New builds a Dataset and enforces its structural invariants: unique
// column names and equal row counts across columns.
func New(columns []Column) (*Dataset, error) {
	seen := make(map[string]bool, len(columns))
	rows := -1
	for _, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("column name cannot be empty")
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = true
		if rows == -1 {
			rows = len(c.Values)
		} else if len(c.Values) != rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, len(c.Values), rows)
		}
	}
	return &Dataset{Columns: columns}, nil
}

// Rows returns the shared row count.
func (d *Dataset) Rows() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

// Column looks a column up by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// ColumnNames returns the column names in schema order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Schema returns the ordered column layout.
func (d *Dataset) Schema() Schema {
	s := make(Schema, len(d.Columns))
	for i, c := range d.Columns {
		s[i] = ColumnRef{Name: c.Name, Kind: c.Kind, Index: i}
	}
	return s
}

// Clone deep-copies the dataset so a stage can build its output without
// touching its input.
func (d *Dataset) Clone() *Dataset {
	cols := make([]Column, len(d.Columns))
	for i, c := range d.Columns {
		vals := make([]Value, len(c.Values))
		copy(vals, c.Values)
		cols[i] = Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	var enc map[string][]string
	if d.Encodings != nil {
		enc = make(map[string][]string, len(d.Encodings))
		for k, v := range d.Encodings {
			cp := make([]string, len(v))
			copy(cp, v)
			enc[k] = cp
		}
	}
	return &Dataset{Columns: cols, Encodings: enc}
}

// SelectRows builds a new Dataset keeping only the rows at the given
// indices, in the given order.
func (d *Dataset) SelectRows(indices []int) *Dataset {
	cols := make([]Column, len(d.Columns))
	for i, c := range d.Columns {
		vals := make([]Value, 0, len(indices))
		for _, idx := range indices {
			vals = append(vals, c.Values[idx])
		}
		cols[i] = Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	out := &Dataset{Columns: cols, Encodings: d.Encodings}
	return out
}

// DecodeLabels maps a label-encoded column back to its original
// categories using the retained reverse mapping.
func (d *Dataset) DecodeLabels(name string) ([]string, error) {
	mapping, ok := d.Encodings[name]
	if !ok {
		return nil, fmt.Errorf("column %q has no label encoding", name)
	}
	col, ok := d.Column(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]string, len(col.Values))
	for i, v := range col.Values {
		if v.Missing {
			continue
		}
		code := int(v.Num)
		if code < 0 || code >= len(mapping) {
			return nil, fmt.Errorf("column %q row %d: code %d outside mapping", name, i, code)
		}
		out[i] = mapping[code]
	}
	return out, nil
}

// CellString renders a cell for display and hashing.
func CellString(kind Kind, v Value) string {
	if v.Missing {
		return "<missing>"
	}
	if kind == KindNumeric {
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
	return v.Str
}
