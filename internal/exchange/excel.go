package exchange

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jmwangi/casetrack/internal/model"
)

const sheetName = "Records"

// BuildWorkbook renders record details into an xlsx workbook with one
// "Records" sheet: a header row followed by one row per record in the
// given order. The caller owns closing the returned file.
func BuildWorkbook(details []model.RecordDetail, fields []model.FieldDefinition) (*excelize.File, error) {
	f := excelize.NewFile()
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	// excelize creates a default "Sheet1"; drop it so the workbook has
	// exactly the Records sheet.
	_ = f.DeleteSheet("Sheet1")

	headers := Headers(fields)
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}
	for i, det := range details {
		row := Flatten(det, fields)
		for col, h := range headers {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, row[h]); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// ParseWorkbook reads the first sheet of an uploaded workbook into
// flat name-keyed rows. The first row is the header; short data rows
// are padded with empty strings. Blank rows are skipped.
func ParseWorkbook(r io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return []map[string]string{}, nil
	}
	headers := rows[0]
	out := make([]map[string]string, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		blank := true
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			v := ""
			if i < len(raw) {
				v = raw[i]
			}
			if v != "" {
				blank = false
			}
			row[h] = v
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out, nil
}
