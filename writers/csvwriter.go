package writers

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/gosom/gmaps-favorites/favorites"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CsvWriter writes one row per item to <Dir>/<id>.csv. The file starts with
// a UTF-8 BOM so Excel opens Korean names correctly.
type CsvWriter struct {
	Dir string
}

func (w *CsvWriter) Write(ctx context.Context, imp *favorites.Import) error {
	path, err := outputPath(w.Dir, imp.ID, "csv")
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(tableHeaders); err != nil {
		return err
	}

	for i, row := range imp.Rows() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := cw.Write(tableRow(row)); err != nil {
			return err
		}

		// flush periodically instead of every row
		if i%100 == 99 {
			cw.Flush()
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	return f.Close()
}
