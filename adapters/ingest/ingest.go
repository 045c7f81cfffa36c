// Package ingest reads tabular files (CSV, Excel) into Datasets. Column
// kinds are inferred once here, at construction; the pipeline never
// re-infers them.
package ingest

import (
	"strconv"
	"strings"

	"plato/domain/dataset"
	"plato/internal/errors"
)

// NumericThreshold is the fraction of non-missing cells that must parse
// as numbers for a column to be coerced to numeric. Cells that fail to
// parse in a numeric column become missing markers.
const NumericThreshold = 0.8

// missingMarkers are the cell spellings treated as absent observations.
var missingMarkers = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

func isMissingCell(s string) bool {
	return missingMarkers[strings.ToLower(strings.TrimSpace(s))]
}

// BuildDataset turns a header row plus string rows into a typed Dataset.
// A column becomes numeric when at least NumericThreshold of its observed
// cells parse as floats; otherwise it stays categorical.
func BuildDataset(headers []string, rows [][]string) (*dataset.Dataset, error) {
	if len(headers) == 0 {
		return nil, errors.IngestError("no header row", nil)
	}

	columns := make([]dataset.Column, len(headers))
	for col, name := range headers {
		cells := make([]string, len(rows))
		for row := range rows {
			if col < len(rows[row]) {
				cells[row] = rows[row][col]
			}
		}
		columns[col] = buildColumn(strings.TrimSpace(name), cells)
	}

	ds, err := dataset.New(columns)
	if err != nil {
		return nil, errors.IngestError("malformed table", err)
	}
	return ds, nil
}

func buildColumn(name string, cells []string) dataset.Column {
	parsed := 0
	observedCount := 0
	for _, cell := range cells {
		if isMissingCell(cell) {
			continue
		}
		observedCount++
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			parsed++
		}
	}

	numeric := observedCount > 0 && float64(parsed) >= NumericThreshold*float64(observedCount)

	values := make([]dataset.Value, len(cells))
	for i, cell := range cells {
		trimmed := strings.TrimSpace(cell)
		switch {
		case isMissingCell(cell):
			values[i] = dataset.Missing()
		case numeric:
			if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
				values[i] = dataset.Number(f)
			} else {
				values[i] = dataset.Missing()
			}
		default:
			values[i] = dataset.Category(trimmed)
		}
	}

	kind := dataset.KindCategorical
	if numeric {
		kind = dataset.KindNumeric
	}
	return dataset.Column{Name: name, Kind: kind, Values: values}
}
