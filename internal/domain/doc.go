// Package domain models photo GPS metadata and its resolution to place names.
//
// # EXIF GPS Conventions
//
// Capture-time location is stored in the EXIF GPS IFD as sexagesimal
// (degree/minute/second) rationals plus hemisphere reference characters:
//
//	GPSLatitude     →  [48, 51, 23.76]  (three non-negative values)
//	GPSLatitudeRef  →  "N" or "S"       ("S" negates, default "N")
//	GPSLongitude    →  [2, 21, 7.92]
//	GPSLongitudeRef →  "E" or "W"       ("W" negates, default "E")
//
// Conversion to signed decimal degrees is d + m/60 + s/3600. A photo yields a
// coordinate only when both latitude and longitude tag groups are present and
// well formed; anything else is an extraction failure for that photo, never a
// fault for the run.
//
// # Nominatim Address Conventions
//
// Reverse geocoding uses the OSM Nominatim /reverse endpoint. The "address"
// object names the settlement differently depending on OSM tagging, so the
// city is resolved by trying, in order:
//
//	city → town → village → hamlet → municipality
//
// and the administrative region by:
//
//	state → region → province → county
//
// Any subset of fields may be absent. A response with no city at all is still
// a valid resolution; such records are kept on the photo report but excluded
// from the unique-places aggregation.
//
// # Cache Keys
//
// Resolved locations are cached under "<lat>,<lon>" strings with both axes
// rounded to six decimal places (~0.1 m), e.g. "48.856600,2.352200". Lookups
// additionally tolerate a 0.01° difference per axis (~1 km at the equator) so
// photos taken minutes apart at the same venue share one live request. See
// [Coordinate.Key] and [Coordinate.CloseTo].
package domain
