// Package csvexport writes the photo report and unique-places CSV files.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/anten-puzl/CityPin/internal/domain"
)

// Exporter writes scan results to the two configured CSV files.
type Exporter struct {
	photosPath string
	placesPath string
	logger     *slog.Logger
}

// NewExporter creates an exporter writing the photo report to photosPath and
// the unique-places list to placesPath.
func NewExporter(photosPath, placesPath string, logger *slog.Logger) *Exporter {
	return &Exporter{photosPath: photosPath, placesPath: placesPath, logger: logger}
}

// ExportPhotos writes one row per scanned photo. Photos without a coordinate
// or location keep their row with the corresponding columns empty.
func (e *Exporter) ExportPhotos(photos []domain.Photo) error {
	rows := make([][]string, 0, len(photos)+1)
	rows = append(rows, []string{"file_path", "latitude", "longitude", "city", "state", "country", "display_name"})

	for _, p := range photos {
		row := []string{p.Path, "", "", "", "", "", ""}
		if p.Coordinate != nil {
			row[1] = formatCoord(p.Coordinate.Lat)
			row[2] = formatCoord(p.Coordinate.Lon)
		}
		if p.Location != nil {
			row[3] = p.Location.City
			row[4] = p.Location.State
			row[5] = p.Location.Country
			row[6] = p.Location.DisplayName
		}
		rows = append(rows, row)
	}

	if err := writeCSV(e.photosPath, rows); err != nil {
		return err
	}
	e.logger.Info("photo report written", "path", e.photosPath, "rows", len(photos))
	return nil
}

// ExportPlaces writes the deduplicated place list.
func (e *Exporter) ExportPlaces(places []domain.Place) error {
	rows := make([][]string, 0, len(places)+1)
	rows = append(rows, []string{"city", "state", "country"})
	for _, p := range places {
		rows = append(rows, []string{p.City, p.State, p.Country})
	}

	if err := writeCSV(e.placesPath, rows); err != nil {
		return err
	}
	e.logger.Info("unique places written", "path", e.placesPath, "rows", len(places))
	return nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
