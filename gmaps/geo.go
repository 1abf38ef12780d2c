package gmaps

import "github.com/gosom/gmaps-favorites/favorites"

// BoundingBox is an inclusive latitude/longitude rectangle.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// KoreaBounds covers the Korean peninsula including Jeju and Ulleungdo.
var KoreaBounds = BoundingBox{
	MinLat: 33.0,
	MaxLat: 38.6,
	MinLng: 124.0,
	MaxLng: 132.0,
}

func (b BoundingBox) Contains(p favorites.LatLng) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// IsInKorea reports whether p lies inside KoreaBounds.
func IsInKorea(p favorites.LatLng) bool {
	return KoreaBounds.Contains(p)
}
