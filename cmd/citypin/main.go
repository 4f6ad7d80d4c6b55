// Command citypin scans a photo library for EXIF GPS coordinates, resolves
// each to a city via the OSM Nominatim API, and writes CSV reports of the
// photos and the unique places they were taken.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	csvadapter "github.com/anten-puzl/CityPin/internal/adapter/csvexport"
	"github.com/anten-puzl/CityPin/internal/adapter/exifscan"
	httpadapter "github.com/anten-puzl/CityPin/internal/adapter/http"
	"github.com/anten-puzl/CityPin/internal/adapter/nominatim"
	"github.com/anten-puzl/CityPin/internal/config"
	"github.com/anten-puzl/CityPin/internal/geocache"
	"github.com/anten-puzl/CityPin/internal/observability"
	"github.com/anten-puzl/CityPin/internal/pipeline"
)

var version = "dev"

var (
	flagConfig     string
	flagCacheFile  string
	flagPhotosCSV  string
	flagPlacesCSV  string
	flagMetrics    string
	flagNoProgress bool
)

var rootCmd = &cobra.Command{
	Use:   "citypin <photos-dir>",
	Short: "map a photo library to the cities it was taken in",
	Long: `
citypin recursively scans a directory of photos, extracts the GPS coordinates
embedded in their EXIF metadata, and reverse-geocodes each coordinate to a
city, state, and country using the OSM Nominatim API. Resolved locations are
cached on disk across runs and live requests are limited to one per second
per the Nominatim usage policy.
`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to a citypin config file")
	rootCmd.Flags().StringVar(&flagCacheFile, "cache-file", "", "geocode cache document (default location_cache.json)")
	rootCmd.Flags().StringVar(&flagPhotosCSV, "photos-csv", "", "photo report output (default photos_gps_data.csv)")
	rootCmd.Flags().StringVar(&flagPlacesCSV, "places-csv", "", "unique places output (default unique_locations.csv)")
	rootCmd.Flags().StringVar(&flagMetrics, "metrics-addr", "", "serve /metrics, /healthz and /readyz on this address during the run")
	rootCmd.Flags().BoolVar(&flagNoProgress, "no-progress", false, "disable the resolve-phase progress bar")
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(args[0])
	if err != nil {
		return err
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	if _, err := os.Stat(cfg.PhotosDir); err != nil {
		return fmt.Errorf("photos directory: %w", err)
	}

	cache, err := geocache.Load(cfg.CacheFile)
	if err != nil {
		logger.Warn("cache file unusable, starting empty", "path", cfg.CacheFile, "error", err)
	} else if cache.Len() > 0 {
		logger.Info("geocode cache loaded", "path", cfg.CacheFile, "entries", cache.Len())
	}
	// Persist on every exit path, including early returns below.
	defer func() {
		if err := cache.Save(cfg.CacheFile); err != nil {
			logger.Error("persisting geocode cache failed", "path", cfg.CacheFile, "error", err)
			return
		}
		logger.Info("geocode cache persisted", "path", cfg.CacheFile, "entries", cache.Len())
	}()

	client := nominatim.NewClient(cfg.Nominatim.BaseURL, cfg.Nominatim.UserAgent, cfg.Nominatim.Timeout, logger, metrics)
	geocoder := geocache.NewCachingGeocoder(client, cache, cfg.Nominatim.RequestDelay, clockwork.NewRealClock(), logger, metrics)
	scanner := exifscan.NewScanner(cfg.PhotosDir, nil, logger, metrics)
	exporter := csvadapter.NewExporter(cfg.Output.Photos, cfg.Output.Places, logger)

	p := pipeline.New(scanner, geocoder, exporter, logger, metrics, !flagNoProgress)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := httpadapter.NewServer(cfg.MetricsAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	summary, err := p.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	printSummary(summary, cache.Len())
	return nil
}

// loadConfig merges the config file, environment, and CLI flags; flags win.
func loadConfig(photosDir string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flagConfig != "" {
		cfg, err = config.NewFromFile(flagConfig)
	} else {
		cfg, err = config.New()
	}
	if err != nil {
		return nil, err
	}

	cfg.PhotosDir = photosDir
	if flagCacheFile != "" {
		cfg.CacheFile = flagCacheFile
	}
	if flagPhotosCSV != "" {
		cfg.Output.Photos = flagPhotosCSV
	}
	if flagPlacesCSV != "" {
		cfg.Output.Places = flagPlacesCSV
	}
	if flagMetrics != "" {
		cfg.MetricsAddr = flagMetrics
	}
	if cfg.Nominatim.UserAgent == "" {
		cfg.Nominatim.UserAgent = fmt.Sprintf("CityPin/%s (+https://github.com/anten-puzl/CityPin)", version)
	}
	return cfg, nil
}

func printSummary(s pipeline.Summary, cacheEntries int) {
	fmt.Printf("Found %d photos, %d with GPS coordinates, %d resolved.\n", s.Photos, s.WithGPS, s.Resolved)

	if len(s.CityCounts) > 0 {
		cities := make([]string, 0, len(s.CityCounts))
		for city := range s.CityCounts {
			cities = append(cities, city)
		}
		sort.Slice(cities, func(i, j int) bool {
			if s.CityCounts[cities[i]] != s.CityCounts[cities[j]] {
				return s.CityCounts[cities[i]] > s.CityCounts[cities[j]]
			}
			return cities[i] < cities[j]
		})
		fmt.Println("\nCities:")
		for _, city := range cities {
			fmt.Printf("  %s: %d photos\n", city, s.CityCounts[city])
		}
	}

	if len(s.Places) > 0 {
		fmt.Println("\nUnique places:")
		for _, place := range s.Places {
			line := place.City
			if place.State != "" {
				line += ", " + place.State
			}
			if place.Country != "" {
				line += ", " + place.Country
			}
			fmt.Printf("  %s\n", line)
		}
	}

	fmt.Printf("\nCached coordinates: %d\n", cacheEntries)
}
