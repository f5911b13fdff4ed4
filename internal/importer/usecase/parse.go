package usecase

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/importer/dto"
)

// ParseCSV reads a header row followed by data rows. Blank rows are skipped.
func ParseCSV(r io.Reader) ([]dto.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperr.Validation("import file is empty")
	}
	if err != nil {
		return nil, apperr.Validation("invalid CSV: %v", err)
	}
	header = cleanHeader(header)

	rows := []dto.Row{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.Validation("invalid CSV: %v", err)
		}
		line, _ := reader.FieldPos(0)
		if row, ok := toRow(header, record, line); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// ParseXLSX reads the first worksheet the same way as ParseCSV. Line is the sheet row number.
func ParseXLSX(r io.Reader) ([]dto.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Validation("invalid Excel file: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Validation("import file is empty")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Validation("invalid Excel file: %v", err)
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, apperr.Validation("import file is empty")
	}
	header := cleanHeader(records[0])

	rows := []dto.Row{}
	for i, record := range records[1:] {
		if row, ok := toRow(header, record, i+2); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}

// toRow maps record onto header. It reports false for a row with no values.
func toRow(header, record []string, line int) (dto.Row, bool) {
	values := make(map[string]string, len(header))
	blank := true
	for i, col := range header {
		if col == "" || i >= len(record) {
			continue
		}
		values[col] = record[i]
		if strings.TrimSpace(record[i]) != "" {
			blank = false
		}
	}
	return dto.Row{Line: line, Values: values}, !blank
}
