package ingest

import (
	"encoding/csv"
	"io"
	"os"

	"plato/domain/dataset"
	"plato/internal"
	"plato/internal/errors"
)

// CSVReader loads a CSV file with a header row into a Dataset.
type CSVReader struct {
	filePath string
	log      *internal.Logger
}

// NewCSVReader creates a reader for the given file path.
func NewCSVReader(filePath string) *CSVReader {
	return &CSVReader{filePath: filePath, log: internal.DefaultLogger}
}

// Read loads the file into a typed Dataset.
func (r *CSVReader) Read() (*dataset.Dataset, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.IngestError("failed to open CSV file "+r.filePath, err)
	}
	defer f.Close()

	ds, err := ReadCSV(f)
	if err != nil {
		return nil, err
	}
	r.log.Info("ingest: loaded %d rows x %d columns from %s", ds.Rows(), len(ds.Columns), r.filePath)
	return ds, nil
}

// ReadCSV reads CSV content from any source, such as an HTTP upload.
func ReadCSV(src io.Reader) (*dataset.Dataset, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1 // ragged rows are padded with missing markers

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.IngestError("failed to parse CSV", err)
	}
	if len(records) == 0 {
		return nil, errors.IngestError("empty CSV input", nil)
	}
	return BuildDataset(records[0], records[1:])
}
