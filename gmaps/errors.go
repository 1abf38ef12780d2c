package gmaps

import "errors"

var (
	// ErrAuthenticationRequired is returned when the page shows no signed-in account.
	ErrAuthenticationRequired = errors.New("google maps: login required")
	// ErrMalformedEnvelope is returned when a response body is not a )]}' prefixed JSON document.
	ErrMalformedEnvelope = errors.New("google maps: malformed response envelope")
	// ErrNoFavoritesFound is returned when the account has no folder with saved places.
	ErrNoFavoritesFound = errors.New("google maps: no favorites to import")
	// ErrNotImplemented is returned by Export and View.
	ErrNotImplemented = errors.New("google maps: not implemented")
)
