package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anten-puzl/CityPin/internal/domain"
	"github.com/anten-puzl/CityPin/internal/observability"
)

// --- mocks ---

type stubScanner struct {
	photos []domain.Photo
	err    error
}

func (s *stubScanner) Scan(_ context.Context) ([]domain.Photo, error) {
	return s.photos, s.err
}

type stubGeocoder struct {
	calls   int
	results map[string]domain.Location
	err     error
}

func (g *stubGeocoder) ReverseGeocode(_ context.Context, coord domain.Coordinate) (domain.Location, error) {
	g.calls++
	if g.err != nil {
		return domain.Location{}, g.err
	}
	return g.results[coord.Key()], nil
}

type capturingExporter struct {
	photos    []domain.Photo
	places    []domain.Place
	photosErr error
}

func (e *capturingExporter) ExportPhotos(photos []domain.Photo) error {
	e.photos = photos
	return e.photosErr
}

func (e *capturingExporter) ExportPlaces(places []domain.Place) error {
	e.places = places
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func coordPtr(lat, lon float64) *domain.Coordinate {
	return &domain.Coordinate{Lat: lat, Lon: lon}
}

func newTestPipeline(s *stubScanner, g *stubGeocoder, e *capturingExporter) *Pipeline {
	return New(s, g, e, discardLogger(), observability.NewMetricsForTesting(), false)
}

// --- tests ---

func TestRun_ResolvesOnlyPhotosWithCoordinates(t *testing.T) {
	paris := coordPtr(48.8566, 2.3522)
	scanner := &stubScanner{photos: []domain.Photo{
		{Path: "paris.jpg", Coordinate: paris},
		{Path: "no-gps.png"},
	}}
	geocoder := &stubGeocoder{results: map[string]domain.Location{
		paris.Key(): {City: "Paris", Country: "France"},
	}}
	exporter := &capturingExporter{}

	summary, err := newTestPipeline(scanner, geocoder, exporter).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, geocoder.calls)
	assert.Equal(t, 2, summary.Photos)
	assert.Equal(t, 1, summary.WithGPS)
	assert.Equal(t, 1, summary.Resolved)

	require.Len(t, exporter.photos, 2)
	require.NotNil(t, exporter.photos[0].Location)
	assert.Equal(t, "Paris", exporter.photos[0].Location.City)
	assert.Nil(t, exporter.photos[1].Location)
}

func TestRun_ResolutionFailureIsNotFatal(t *testing.T) {
	scanner := &stubScanner{photos: []domain.Photo{
		{Path: "a.jpg", Coordinate: coordPtr(1, 2)},
		{Path: "b.jpg", Coordinate: coordPtr(3, 4)},
	}}
	geocoder := &stubGeocoder{err: errors.New("nominatim API error: status 503")}
	exporter := &capturingExporter{}

	summary, err := newTestPipeline(scanner, geocoder, exporter).Run(context.Background())
	require.NoError(t, err, "failed resolutions degrade, they do not abort the run")

	assert.Equal(t, 2, geocoder.calls, "each photo gets exactly one attempt")
	assert.Equal(t, 0, summary.Resolved)
	require.Len(t, exporter.photos, 2)
	assert.Nil(t, exporter.photos[0].Location)
	assert.NotNil(t, exporter.photos[0].Coordinate, "coordinate survives a failed resolution")
}

func TestRun_AggregatesUniquePlaces(t *testing.T) {
	c1 := coordPtr(48.8566, 2.3522)
	c2 := coordPtr(48.8600, 2.3400)
	c3 := coordPtr(45.7640, 4.8357)
	scanner := &stubScanner{photos: []domain.Photo{
		{Path: "a.jpg", Coordinate: c1},
		{Path: "b.jpg", Coordinate: c2},
		{Path: "c.jpg", Coordinate: c3},
	}}
	geocoder := &stubGeocoder{results: map[string]domain.Location{
		c1.Key(): {City: "Paris", Country: "France"},
		c2.Key(): {City: "Paris", Country: "France"},
		c3.Key(): {City: "Lyon", State: "Auvergne-Rhône-Alpes", Country: "France"},
	}}
	exporter := &capturingExporter{}

	summary, err := newTestPipeline(scanner, geocoder, exporter).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Places, 2)
	assert.Equal(t, "Lyon", summary.Places[0].City)
	assert.Equal(t, "Paris", summary.Places[1].City)
	assert.Equal(t, summary.Places, exporter.places)
	assert.Equal(t, map[string]int{"Paris": 2, "Lyon": 1}, summary.CityCounts)
}

func TestRun_ScanErrorAborts(t *testing.T) {
	scanner := &stubScanner{err: errors.New("walk failed")}
	_, err := newTestPipeline(scanner, &stubGeocoder{}, &capturingExporter{}).Run(context.Background())
	assert.Error(t, err)
}

func TestRun_ExportErrorSurfaces(t *testing.T) {
	scanner := &stubScanner{photos: []domain.Photo{{Path: "a.jpg"}}}
	exporter := &capturingExporter{photosErr: errors.New("disk full")}

	_, err := newTestPipeline(scanner, &stubGeocoder{}, exporter).Run(context.Background())
	assert.Error(t, err)
}

func TestRun_CancellationStillExports(t *testing.T) {
	scanner := &stubScanner{photos: []domain.Photo{
		{Path: "a.jpg", Coordinate: coordPtr(1, 2)},
	}}
	geocoder := &stubGeocoder{}
	exporter := &capturingExporter{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newTestPipeline(scanner, geocoder, exporter).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 0, geocoder.calls, "no live calls after cancellation")
	assert.NotNil(t, exporter.photos, "partial results are still written")
	assert.Equal(t, 0, summary.Resolved)
}

func TestCheckReadiness_StaysUnreadyWhenNothingResolves(t *testing.T) {
	scanner := &stubScanner{photos: []domain.Photo{
		{Path: "a.jpg", Coordinate: coordPtr(1, 2)},
	}}
	geocoder := &stubGeocoder{err: errors.New("nominatim API error: status 503")}
	p := newTestPipeline(scanner, geocoder, &capturingExporter{})

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, geocoder.calls)
	assert.Error(t, p.CheckReadiness(context.Background()), "a failed resolution does not mark the run ready")
}

func TestProgress_CountsResolveOutcomes(t *testing.T) {
	paris := coordPtr(48.8566, 2.3522)
	scanner := &stubScanner{photos: []domain.Photo{
		{Path: "paris.jpg", Coordinate: paris},
		{Path: "no-gps.png"},
	}}
	geocoder := &stubGeocoder{results: map[string]domain.Location{
		paris.Key(): {City: "Paris", Country: "France"},
	}}
	p := newTestPipeline(scanner, geocoder, &capturingExporter{})

	withGPS, resolved, failed := p.Progress()
	assert.Zero(t, withGPS+resolved+failed, "counters start at zero")

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	withGPS, resolved, failed = p.Progress()
	assert.Equal(t, 1, withGPS)
	assert.Equal(t, 1, resolved)
	assert.Equal(t, 0, failed)
}

func TestProgress_CountsFailures(t *testing.T) {
	scanner := &stubScanner{photos: []domain.Photo{
		{Path: "a.jpg", Coordinate: coordPtr(1, 2)},
		{Path: "b.jpg", Coordinate: coordPtr(3, 4)},
	}}
	geocoder := &stubGeocoder{err: errors.New("nominatim API error: status 503")}
	p := newTestPipeline(scanner, geocoder, &capturingExporter{})

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	withGPS, resolved, failed := p.Progress()
	assert.Equal(t, 2, withGPS)
	assert.Equal(t, 0, resolved)
	assert.Equal(t, 2, failed)
}

func TestCheckReadiness(t *testing.T) {
	scanner := &stubScanner{photos: []domain.Photo{
		{Path: "a.jpg", Coordinate: coordPtr(1, 2)},
	}}
	p := newTestPipeline(scanner, &stubGeocoder{}, &capturingExporter{})

	assert.Error(t, p.CheckReadiness(context.Background()))

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}
