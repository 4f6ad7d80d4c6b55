package domain

// GPS tag names as they appear in the EXIF GPS IFD.
const (
	TagGPSLatitude     = "GPSLatitude"
	TagGPSLatitudeRef  = "GPSLatitudeRef"
	TagGPSLongitude    = "GPSLongitude"
	TagGPSLongitudeRef = "GPSLongitudeRef"
)

// GPSTags is a raw EXIF GPS tag dictionary as produced by the metadata
// decoder: sexagesimal tag values as float64 slices, reference tags as
// strings.
type GPSTags map[string]any

// ExtractCoordinate maps a raw GPS tag dictionary to a coordinate. It returns
// false when the dictionary is empty, when either axis tag is missing, or
// when a tag value is malformed; no malformed input causes a panic.
func ExtractCoordinate(tags GPSTags) (Coordinate, bool) {
	if len(tags) == 0 {
		return Coordinate{}, false
	}

	lat, ok := sexagesimal(tags[TagGPSLatitude])
	if !ok {
		return Coordinate{}, false
	}
	lon, ok := sexagesimal(tags[TagGPSLongitude])
	if !ok {
		return Coordinate{}, false
	}

	if ref, _ := tags[TagGPSLatitudeRef].(string); ref == "S" {
		lat = -lat
	}
	if ref, _ := tags[TagGPSLongitudeRef].(string); ref == "W" {
		lon = -lon
	}

	coord := Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		return Coordinate{}, false
	}
	return coord, true
}

// sexagesimal converts a three-element degree/minute/second tag value to
// decimal degrees.
func sexagesimal(value any) (float64, bool) {
	dms, ok := value.([]float64)
	if !ok || len(dms) != 3 {
		return 0, false
	}
	return ToDecimalDegrees(dms[0], dms[1], dms[2]), true
}
