package domain

// Location is the resolved place for a coordinate. Every field is optional;
// an empty City is valid (the resolver may find no settlement) but excludes
// the record from aggregation. The JSON shape doubles as the persisted cache
// entry format.
type Location struct {
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Photo is one scanned file with whatever metadata survived the pipeline.
// Coordinate is nil when the file carried no usable GPS tags, Location is nil
// when resolution was skipped or failed.
type Photo struct {
	Path       string
	Coordinate *Coordinate
	Location   *Location
}
