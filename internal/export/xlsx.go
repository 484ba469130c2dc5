package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/timew-bot/internal/model"
)

const defaultSheet = "Sheet1"

// WriteXLSX writes rows to a new workbook at path with a bold header.
// Negative differences are highlighted.
func WriteXLSX(path, sheet string, rows []model.DayRow) error {
	f, err := newWorkbook(sheet, rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// WriteXLSXTo streams the workbook WriteXLSX would save to w.
func WriteXLSXTo(w io.Writer, sheet string, rows []model.DayRow) error {
	f, err := newWorkbook(sheet, rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func newWorkbook(sheet string, rows []model.DayRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := fillWorkbook(f, sheet, rows); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func fillWorkbook(f *excelize.File, sheet string, rows []model.DayRow) error {
	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("naming sheet: %w", err)
		}
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	negative, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "9C0006"}})
	if err != nil {
		return fmt.Errorf("creating difference style: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := Values(r)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
		if r.DiffMinutes < 0 {
			diff, _ := excelize.CoordinatesToCellName(len(Columns), i+2)
			if err := f.SetCellStyle(sheet, diff, diff, negative); err != nil {
				return fmt.Errorf("styling row %d: %w", i+2, err)
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 12); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "F", "H", 16)
}
