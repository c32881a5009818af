package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
)

func TestParseCSV_RaggedRowsAndBOM(t *testing.T) {
	input := "\xef\xbb\xbfReport,,\nStudent ID,First Name,Major\n1001,Ada,Math,,\n1002,Bob\n"

	sheet, err := Parse(strings.NewReader(input), "roster.CSV")
	require.NoError(t, err)

	require.Len(t, sheet.Rows, 4)
	assert.Equal(t, []string{"Report"}, sheet.Rows[0])
	assert.Equal(t, "Math", sheet.Cell(2, 2))
	assert.Equal(t, "", sheet.Cell(3, 2))
	assert.Equal(t, "", sheet.Cell(10, 0))
}

func TestParse_UnreadableInput(t *testing.T) {
	_, err := Parse(strings.NewReader("definitely not a zip"), "upload.xlsx")
	assert.ErrorIs(t, err, apperrors.ErrSpreadsheetUnreadable)

	_, err = Parse(strings.NewReader(""), "empty.csv")
	assert.ErrorIs(t, err, apperrors.ErrSpreadsheetUnreadable)
}

func TestWriteWorkbook_RoundTripsThroughParse(t *testing.T) {
	var buf bytes.Buffer
	err := WriteWorkbook(&buf, "AlumniData",
		[]string{"Student ID", "First Name", "Graduation Year"},
		[][]any{{"1001", "Ada", 2020}, {"1002", "Bob", ""}},
	)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"AlumniData"}, f.GetSheetList())

	sheet, err := ParseXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "AlumniData", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "2020", sheet.Cell(1, 2))
	assert.Equal(t, "Bob", sheet.Cell(2, 1))
}
