package writers

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/gosom/gmaps-favorites/favorites"
)

const sheetName = "favorites"

// XLSXWriter writes one row per item to <Dir>/<id>.xlsx.
type XLSXWriter struct {
	Dir string
}

func (w *XLSXWriter) Write(_ context.Context, imp *favorites.Import) error {
	path, err := outputPath(w.Dir, imp.ID, "xlsx")
	if err != nil {
		return err
	}

	return SaveSheet(path, Records(imp))
}

// SaveSheet writes records to a single-sheet workbook at path.
func SaveSheet(path string, records [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	for i, row := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save xlsx: %w", err)
	}

	return nil
}
