// Package pipeline orchestrates the scan → resolve → export flow.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/anten-puzl/CityPin/internal/domain"
	"github.com/anten-puzl/CityPin/internal/observability"
)

// PhotoScanner enumerates photos and their extracted coordinates.
type PhotoScanner interface {
	Scan(ctx context.Context) ([]domain.Photo, error)
}

// Exporter persists the final reports.
type Exporter interface {
	ExportPhotos(photos []domain.Photo) error
	ExportPlaces(places []domain.Place) error
}

// Summary describes one completed run.
type Summary struct {
	Photos     int
	WithGPS    int
	Resolved   int
	Places     []domain.Place
	CityCounts map[string]int
}

// Pipeline drives a single scan run: enumerate photos, resolve each
// coordinate through the (cached, rate-limited) geocoder, then export the
// photo report and the deduplicated place list. Resolution failures are
// logged and final for the run; the photo keeps its coordinate and proceeds
// with no location.
type Pipeline struct {
	scanner  PhotoScanner
	geocoder domain.Geocoder
	exporter Exporter
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
	withGPS  atomic.Int64
	resolved atomic.Int64
	failed   atomic.Int64
	progress bool
}

// New creates a Pipeline. Set progress to render a progress bar on stderr
// during the resolve phase (suppressed when stderr is not a terminal).
func New(scanner PhotoScanner, geocoder domain.Geocoder, exporter Exporter, logger *slog.Logger, metrics *observability.Metrics, progress bool) *Pipeline {
	return &Pipeline{
		scanner:  scanner,
		geocoder: geocoder,
		exporter: exporter,
		logger:   logger,
		metrics:  metrics,
		progress: progress,
	}
}

// CheckReadiness returns nil once the run has resolved at least one photo, or
// an error describing why the service is not yet ready. Failed resolutions do
// not count.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no photo has been resolved yet")
	}
	return nil
}

// Progress reports how far the resolve phase has advanced. Served on the
// readiness endpoint so long runs can be watched from outside.
func (p *Pipeline) Progress() (withGPS, resolved, failed int) {
	return int(p.withGPS.Load()), int(p.resolved.Load()), int(p.failed.Load())
}

// Run executes one complete scan. Cancellation stops the resolve phase early
// but the reports are still written from whatever was resolved so far.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	p.metrics.ScanRunning.Set(1)
	defer p.metrics.ScanRunning.Set(0)

	photos, err := p.scanner.Scan(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("scan photos: %w", err)
	}

	withGPS := 0
	for _, photo := range photos {
		if photo.Coordinate != nil {
			withGPS++
		}
	}
	p.withGPS.Store(int64(withGPS))
	p.logger.Info("scan phase complete", "photos", len(photos), "with_gps", withGPS)

	interrupted := p.resolve(ctx, photos, withGPS)

	summary := p.summarize(photos, withGPS)
	if err := p.exporter.ExportPhotos(photos); err != nil {
		return summary, err
	}
	if err := p.exporter.ExportPlaces(summary.Places); err != nil {
		return summary, err
	}

	if interrupted {
		return summary, ctx.Err()
	}
	return summary, nil
}

// resolve fills in the Location of every photo with a coordinate. Returns
// true when the phase was cut short by cancellation.
func (p *Pipeline) resolve(ctx context.Context, photos []domain.Photo, withGPS int) bool {
	bar := p.newProgressBar(withGPS)

	for i := range photos {
		if photos[i].Coordinate == nil {
			continue
		}
		if ctx.Err() != nil {
			p.logger.Warn("resolve phase interrupted", "reason", ctx.Err())
			return true
		}

		coord := *photos[i].Coordinate
		loc, err := p.geocoder.ReverseGeocode(ctx, coord)
		if err != nil {
			p.failed.Add(1)
			p.logger.Warn("reverse geocoding failed",
				"path", photos[i].Path,
				"lat", coord.Lat,
				"lon", coord.Lon,
				"error", err,
			)
		} else {
			photos[i].Location = &loc
			p.resolved.Add(1)
			p.ready.Store(true)
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return false
}

func (p *Pipeline) summarize(photos []domain.Photo, withGPS int) Summary {
	summary := Summary{
		Photos:     len(photos),
		WithGPS:    withGPS,
		CityCounts: make(map[string]int),
	}

	locations := make([]domain.Location, 0, withGPS)
	for _, photo := range photos {
		if photo.Location == nil {
			continue
		}
		summary.Resolved++
		locations = append(locations, *photo.Location)
		if photo.Location.City != "" {
			summary.CityCounts[photo.Location.City]++
		}
	}
	summary.Places = domain.AggregatePlaces(locations)
	return summary
}

func (p *Pipeline) newProgressBar(total int) *progressbar.ProgressBar {
	if !p.progress || total == 0 || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Resolving locations"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
