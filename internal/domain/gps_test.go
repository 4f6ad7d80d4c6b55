package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parisTags() GPSTags {
	return GPSTags{
		TagGPSLatitude:     []float64{48, 51, 23.76},
		TagGPSLatitudeRef:  "N",
		TagGPSLongitude:    []float64{2, 21, 7.92},
		TagGPSLongitudeRef: "E",
	}
}

func TestExtractCoordinate(t *testing.T) {
	coord, ok := ExtractCoordinate(parisTags())
	require.True(t, ok)
	assert.InDelta(t, 48.8566, coord.Lat, 1e-4)
	assert.InDelta(t, 2.3522, coord.Lon, 1e-4)
}

func TestExtractCoordinate_HemisphereSigns(t *testing.T) {
	tags := GPSTags{
		TagGPSLatitude:     []float64{33, 52, 7.68},
		TagGPSLatitudeRef:  "S",
		TagGPSLongitude:    []float64{70, 38, 57.12},
		TagGPSLongitudeRef: "W",
	}

	coord, ok := ExtractCoordinate(tags)
	require.True(t, ok)
	assert.Negative(t, coord.Lat)
	assert.Negative(t, coord.Lon)
	assert.InDelta(t, -33.8688, coord.Lat, 1e-4)
	assert.InDelta(t, -70.6492, coord.Lon, 1e-4)
}

func TestExtractCoordinate_MissingRefsDefaultNorthEast(t *testing.T) {
	tags := parisTags()
	delete(tags, TagGPSLatitudeRef)
	delete(tags, TagGPSLongitudeRef)

	coord, ok := ExtractCoordinate(tags)
	require.True(t, ok)
	assert.Positive(t, coord.Lat)
	assert.Positive(t, coord.Lon)
}

func TestExtractCoordinate_Failures(t *testing.T) {
	tests := []struct {
		name string
		tags GPSTags
	}{
		{"nil map", nil},
		{"empty map", GPSTags{}},
		{"latitude only", GPSTags{TagGPSLatitude: []float64{48, 51, 23.76}}},
		{"longitude only", GPSTags{TagGPSLongitude: []float64{2, 21, 7.92}}},
		{"short tuple", GPSTags{
			TagGPSLatitude:  []float64{48, 51},
			TagGPSLongitude: []float64{2, 21, 7.92},
		}},
		{"wrong value type", GPSTags{
			TagGPSLatitude:  "48.8566",
			TagGPSLongitude: []float64{2, 21, 7.92},
		}},
		{"out of range", GPSTags{
			TagGPSLatitude:  []float64{95, 0, 0},
			TagGPSLongitude: []float64{2, 21, 7.92},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ExtractCoordinate(tt.tags)
			assert.False(t, ok)
		})
	}
}
