package writers

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	olc "github.com/google/open-location-code/go"

	"github.com/gosom/gmaps-favorites/favorites"
)

// ResultWriter persists one finished import.
type ResultWriter interface {
	Write(ctx context.Context, imp *favorites.Import) error
}

// plusCodeLength gives ~14m precision, enough to find a place again.
const plusCodeLength = 10

var tableHeaders = []string{"folder", "name", "description", "lat", "lng", "plus_code"}

func tableRow(r favorites.Row) []string {
	return []string{
		r.Folder,
		r.Name,
		r.Description,
		strconv.FormatFloat(r.LatLng.Lat, 'f', -1, 64),
		strconv.FormatFloat(r.LatLng.Lng, 'f', -1, 64),
		olc.Encode(r.LatLng.Lat, r.LatLng.Lng, plusCodeLength),
	}
}

// Records renders imp as a header row followed by one row per item. When
// fields name known columns only those are kept, in table order.
func Records(imp *favorites.Import, fields ...string) [][]string {
	keep := make([]int, 0, len(tableHeaders))

	for i, h := range tableHeaders {
		if len(fields) == 0 || slices.ContainsFunc(fields, func(f string) bool {
			return strings.TrimSpace(f) == h
		}) {
			keep = append(keep, i)
		}
	}

	if len(keep) == 0 {
		return Records(imp)
	}

	project := func(row []string) []string {
		out := make([]string, len(keep))
		for j, i := range keep {
			out[j] = row[i]
		}

		return out
	}

	records := [][]string{project(tableHeaders)}
	for _, r := range imp.Rows() {
		records = append(records, project(tableRow(r)))
	}

	return records
}

// outputPath builds <dir>/<import id>.<ext>, refusing ids that would escape dir.
func outputPath(dir, id, ext string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid import id %q", id)
	}

	return filepath.Join(dir, id+"."+ext), nil
}
