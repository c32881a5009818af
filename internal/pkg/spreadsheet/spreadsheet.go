// Package spreadsheet reads the first worksheet of an uploaded workbook into a
// grid of cell text, and writes single-sheet workbooks for export.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
)

// Sheet is a parsed worksheet. Rows are ragged: trailing empty cells are dropped.
type Sheet struct {
	Name string
	Rows [][]string
}

// Cell returns the trimmed text at (row, col), or "" when out of range
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(s.Rows[row][col])
}

// Parse picks the reader from the file extension. Anything that is not .csv
// is treated as an OOXML workbook.
func Parse(r io.Reader, filename string) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(r)
	default:
		return ParseXLSX(r)
	}
}

// ParseXLSX reads the first worksheet of an xlsx workbook
func ParseXLSX(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, unreadable(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, unreadable(errors.New("workbook has no worksheets"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, unreadable(err)
	}
	if len(rows) == 0 {
		return nil, unreadable(errors.New("first worksheet is empty"))
	}
	return &Sheet{Name: sheets[0], Rows: rows}, nil
}

// ParseCSV reads a comma separated file. A UTF-8 byte order mark is skipped.
func ParseCSV(r io.Reader) (*Sheet, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, unreadable(err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, unreadable(err)
	}
	if len(rows) == 0 {
		return nil, unreadable(errors.New("file is empty"))
	}
	for i, row := range rows {
		rows[i] = trimTrailingEmpty(row)
	}
	return &Sheet{Name: "csv", Rows: rows}, nil
}

func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	return row[:end]
}

func unreadable(err error) error {
	return fmt.Errorf("%w: %v", apperrors.ErrSpreadsheetUnreadable, err)
}

// WriteWorkbook writes headers and rows into a new workbook with a single
// sheet called sheetName
func WriteWorkbook(w io.Writer, sheetName string, headers []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
