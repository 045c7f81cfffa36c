package ingest

import (
	"io"

	"plato/domain/dataset"
	"plato/internal"
	"plato/internal/errors"

	"github.com/xuri/excelize/v2"
)

// ExcelReader loads a crosstab sheet from an Excel workbook into a
// Dataset. The first row is the header; an empty sheet name means the
// workbook's first sheet.
type ExcelReader struct {
	filePath  string
	sheetName string
	log       *internal.Logger
}

// NewExcelReader creates a reader for the given workbook path.
func NewExcelReader(filePath, sheetName string) *ExcelReader {
	return &ExcelReader{filePath: filePath, sheetName: sheetName, log: internal.DefaultLogger}
}

// Read loads the configured sheet into a typed Dataset.
func (r *ExcelReader) Read() (*dataset.Dataset, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.IngestError("failed to open Excel file "+r.filePath, err)
	}
	defer f.Close()

	ds, err := readWorkbook(f, r.sheetName)
	if err != nil {
		return nil, err
	}
	r.log.Info("ingest: loaded %d rows x %d columns from %s", ds.Rows(), len(ds.Columns), r.filePath)
	return ds, nil
}

// ReadExcel reads workbook content from any source, such as an HTTP upload.
func ReadExcel(src io.Reader, sheetName string) (*dataset.Dataset, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, errors.IngestError("failed to open Excel stream", err)
	}
	defer f.Close()
	return readWorkbook(f, sheetName)
}

func readWorkbook(f *excelize.File, sheetName string) (*dataset.Dataset, error) {
	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.IngestError("workbook has no sheets", nil)
		}
		sheetName = sheets[0]
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, errors.IngestError("failed to read sheet "+sheetName, err)
	}
	if len(rows) == 0 {
		return nil, errors.IngestError("sheet "+sheetName+" is empty", nil)
	}
	return BuildDataset(rows[0], rows[1:])
}
