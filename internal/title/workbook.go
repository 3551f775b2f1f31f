package title

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFile is returned for extensions other than CSV and XLSX.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrEmptyWorkbook is returned when no sheet holds any data.
	ErrEmptyWorkbook = errors.New("workbook has no data")
)

// Sheet is one worksheet as rows of cell text.
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook is an uploaded spreadsheet. A CSV file is a one-sheet workbook.
type Workbook struct {
	Sheets []Sheet
}

// ReadFile decodes CSV or XLSX bytes, choosing the reader by extension.
func ReadFile(filename string, data []byte) (*Workbook, error) {
	var (
		wb  *Workbook
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		wb, err = ReadCSV(bytes.NewReader(data))
	case ".xlsx", ".xlsm":
		wb, err = ReadXLSX(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}
	if wb.empty() {
		return nil, ErrEmptyWorkbook
	}
	return wb, nil
}

// ReadCSV reads a CSV stream with ragged rows allowed.
func ReadCSV(r io.Reader) (*Workbook, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return &Workbook{Sheets: []Sheet{{Name: "Sheet1", Rows: rows}}}, nil
}

// ReadXLSX reads every sheet of an Excel workbook in tab order.
func ReadXLSX(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}

func (w *Workbook) empty() bool {
	for _, s := range w.Sheets {
		for _, row := range s.Rows {
			for _, c := range row {
				if strings.TrimSpace(c) != "" {
					return false
				}
			}
		}
	}
	return true
}

// cell returns row[i] trimmed, or "" when the row is short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
