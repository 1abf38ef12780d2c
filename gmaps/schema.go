package gmaps

import (
	"github.com/gosom/gmaps-favorites/favorites"
)

// Positional layout of the undocumented responses. Indices were observed
// against the web client in 2024 and are the only place that knows them.
//
// folder list (locationhistory/preview/mas):
//
//	root[29][0] = [ entry, ... ]
//	entry       = [ [_, id], name, ... ]   id is absent when the folder is empty
//
// item list (maps/preview/entitylist/getlist):
//
//	root[0][8] = [ entry, ... ]
//	entry      = [ _, [_, _, _, _, _, [_, _, lat, lng, ...]], name, description, ... ]

// at walks nested arrays by index and reports whether every step existed.
func at(v any, path ...int) (any, bool) {
	cur := v
	for _, idx := range path {
		arr, ok := cur.([]any)
		if !ok || idx < 0 || idx >= len(arr) {
			return nil, false
		}

		cur = arr[idx]
	}

	return cur, true
}

func stringAt(v any, path ...int) string {
	raw, ok := at(v, path...)
	if !ok {
		return ""
	}

	s, _ := raw.(string)

	return s
}

func listAt(v any, path ...int) []any {
	raw, ok := at(v, path...)
	if !ok {
		return nil
	}

	arr, _ := raw.([]any)

	return arr
}

func folderList(root any) []any { return listAt(root, 29, 0) }

func folderID(entry any) string { return stringAt(entry, 0, 1) }

func folderName(entry any) string { return stringAt(entry, 1) }

func itemList(root any) []any { return listAt(root, 0, 8) }

func itemName(entry any) string { return stringAt(entry, 2) }

func itemDescription(entry any) string { return stringAt(entry, 3) }

// itemLatLng returns the coordinates of an item entry. present is false when
// the coordinate block is missing altogether. valid is false when the block
// exists but does not hold two numbers.
func itemLatLng(entry any) (ll favorites.LatLng, present, valid bool) {
	block, ok := at(entry, 1, 5)
	if !ok {
		return ll, false, false
	}

	if _, isArr := block.([]any); !isArr {
		return ll, false, false
	}

	lat, okLat := numberAt(block, 2)
	lng, okLng := numberAt(block, 3)
	if !okLat || !okLng {
		return ll, true, false
	}

	return favorites.LatLng{Lat: lat, Lng: lng}, true, true
}

func numberAt(v any, path ...int) (float64, bool) {
	raw, ok := at(v, path...)
	if !ok {
		return 0, false
	}

	f, ok := raw.(float64)

	return f, ok
}
