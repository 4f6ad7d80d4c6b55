package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a scan run.
type Metrics struct {
	PhotosScanned prometheus.Counter
	PhotosWithGPS prometheus.Counter
	ScanErrors    prometheus.Counter
	ScanRunning   prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,error}
	CacheLookups    *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeDuration prometheus.Histogram
}

// NewMetrics creates and registers all scan metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PhotosScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "citypin",
			Name:      "photos_scanned_total",
			Help:      "Total photo files examined during the scan phase.",
		}),
		PhotosWithGPS: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "citypin",
			Name:      "photos_with_gps_total",
			Help:      "Photos that yielded a usable GPS coordinate.",
		}),
		ScanErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "citypin",
			Name:      "scan_errors_total",
			Help:      "Files that could not be opened or decoded.",
		}),
		ScanRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "citypin",
			Name:      "scan_running",
			Help:      "1 while the scan/resolve pipeline is active, 0 otherwise.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "citypin",
			Name:      "geocode_requests_total",
			Help:      "Live reverse-geocoding requests by outcome.",
		}, []string{"outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "citypin",
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by result.",
		}, []string{"result"}),
		GeocodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "citypin",
			Name:      "geocode_request_duration_seconds",
			Help:      "Nominatim request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}

	prometheus.MustRegister(
		m.PhotosScanned,
		m.PhotosWithGPS,
		m.ScanErrors,
		m.ScanRunning,
		m.GeocodeRequests,
		m.CacheLookups,
		m.GeocodeDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PhotosScanned:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "citypin", Name: "photos_scanned_total"}),
		PhotosWithGPS:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "citypin", Name: "photos_with_gps_total"}),
		ScanErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "citypin", Name: "scan_errors_total"}),
		ScanRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "citypin", Name: "scan_running"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "citypin", Name: "geocode_requests_total"}, []string{"outcome"}),
		CacheLookups:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "citypin", Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "citypin", Name: "geocode_request_duration_seconds"}),
	}
}
