package domain

import "context"

// Geocoder resolves a coordinate to a place name.
type Geocoder interface {
	// ReverseGeocode converts a coordinate to place details. A non-nil error
	// means the request itself failed (transport fault, non-success status,
	// malformed body); a successful request with an empty address yields a
	// zero Location and a nil error.
	ReverseGeocode(ctx context.Context, coord Coordinate) (Location, error)
}
