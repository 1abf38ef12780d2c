package favorites

import (
	"time"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Item is a single saved place. It is owned by exactly one Folder.
type Item struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	LatLng      LatLng `json:"latLng"`
}

// Folder is a named list of saved places. A folder is never built without items.
type Folder struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Import is the result of one driver run, as handed to writers and history.
type Import struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Folders    []Folder  `json:"folders"`
}

func (i *Import) ItemCount() int {
	n := 0
	for _, f := range i.Folders {
		n += len(f.Items)
	}

	return n
}

func (i *Import) Duration() time.Duration {
	return i.FinishedAt.Sub(i.StartedAt)
}

// Rows flattens the import into one row per item, in folder order.
func (i *Import) Rows() []Row {
	rows := make([]Row, 0, i.ItemCount())
	for _, f := range i.Folders {
		for _, it := range f.Items {
			rows = append(rows, Row{Folder: f.Name, Item: it})
		}
	}

	return rows
}

// Row is an item together with the name of its folder.
type Row struct {
	Folder string
	Item
}

// FailedItem is an item a destination refused, kept for manual review.
type FailedItem struct {
	Item
	Folder string `json:"folder"`
	Reason string `json:"reason"`
}
