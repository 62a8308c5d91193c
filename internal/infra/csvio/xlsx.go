package csvio

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

const sheetName = "Buyers"

// WriteLeadsXLSX writes the same columns as WriteLeads into a single-sheet workbook.
func WriteLeadsXLSX(w io.Writer, leads []*entity.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	if err := sw.SetRow("A1", toCells(ExportHeader), excelize.RowOpts{}); err != nil {
		return err
	}
	for i, l := range leads {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, toCells(ExportRecord(l))); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
