package runner

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// PrintTable writes rows as left aligned columns. Widths are measured in
// terminal cells so Hangul folder names line up.
func PrintTable(w io.Writer, headers []string, rows [][]string) error {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}

	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}

			if i == len(widths)-1 {
				parts[i] = cell
			} else {
				parts[i] = runewidth.FillRight(cell, widths[i])
			}
		}

		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	if _, err := fmt.Fprintln(w, line(headers)); err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(w, line(row)); err != nil {
			return err
		}
	}

	return nil
}
