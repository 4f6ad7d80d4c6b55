// Package exifscan walks a photo directory and extracts raw EXIF GPS tags.
package exifscan

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/anten-puzl/CityPin/internal/domain"
	"github.com/anten-puzl/CityPin/internal/observability"
)

// DefaultExtensions are the image formats examined during a scan.
var DefaultExtensions = []string{".jpg", ".jpeg", ".tiff", ".png"}

// Scanner recursively enumerates image files under a root directory and maps
// each to a domain.Photo with an optional coordinate.
type Scanner struct {
	root    string
	exts    map[string]struct{}
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewScanner creates a scanner rooted at dir. Extensions are matched
// case-insensitively; pass nil for [DefaultExtensions].
func NewScanner(dir string, extensions []string, logger *slog.Logger, metrics *observability.Metrics) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &Scanner{root: dir, exts: exts, logger: logger, metrics: metrics}
}

// Scan walks the root and returns one Photo per readable image file. Files
// without usable GPS metadata are kept with a nil coordinate so they still
// appear on the report; files that cannot be opened are logged and skipped.
func (s *Scanner) Scan(ctx context.Context) ([]domain.Photo, error) {
	var photos []domain.Photo

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := s.exts[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}

		s.metrics.PhotosScanned.Inc()
		photo, ok := s.readPhoto(path)
		if !ok {
			return nil
		}
		if photo.Coordinate != nil {
			s.metrics.PhotosWithGPS.Inc()
		}
		photos = append(photos, photo)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// readPhoto opens one file and extracts its coordinate. The second return is
// false only when the file itself is unreadable; a file with no EXIF block or
// no GPS tags is a valid photo without a coordinate.
func (s *Scanner) readPhoto(path string) (domain.Photo, bool) {
	f, err := os.Open(path)
	if err != nil {
		s.logger.Warn("cannot open photo", "path", path, "error", err)
		s.metrics.ScanErrors.Inc()
		return domain.Photo{}, false
	}
	defer f.Close()

	photo := domain.Photo{Path: path}

	x, err := exif.Decode(f)
	if err != nil {
		// PNGs and stripped JPEGs routinely have no EXIF block.
		s.logger.Debug("no exif metadata", "path", path, "error", err)
		return photo, true
	}

	if coord, ok := domain.ExtractCoordinate(gpsTags(x)); ok {
		photo.Coordinate = &coord
	}
	return photo, true
}

// gpsTags copies the GPS IFD into the tag dictionary consumed by
// domain.ExtractCoordinate. Absent or unreadable tags are simply omitted.
func gpsTags(x *exif.Exif) domain.GPSTags {
	tags := make(domain.GPSTags, 4)

	if dms, ok := rationalTriple(x, exif.GPSLatitude); ok {
		tags[domain.TagGPSLatitude] = dms
	}
	if dms, ok := rationalTriple(x, exif.GPSLongitude); ok {
		tags[domain.TagGPSLongitude] = dms
	}
	if ref, ok := stringTag(x, exif.GPSLatitudeRef); ok {
		tags[domain.TagGPSLatitudeRef] = ref
	}
	if ref, ok := stringTag(x, exif.GPSLongitudeRef); ok {
		tags[domain.TagGPSLongitudeRef] = ref
	}
	return tags
}

func rationalTriple(x *exif.Exif, name exif.FieldName) ([]float64, bool) {
	tag, err := x.Get(name)
	if err != nil || tag.Count != 3 {
		return nil, false
	}
	dms := make([]float64, 3)
	for i := range dms {
		// Rat2 instead of Rat: corrupt files carry 0/0 rationals and
		// big.NewRat panics on a zero denominator.
		num, den, err := tag.Rat2(i)
		if err != nil || den == 0 {
			return nil, false
		}
		dms[i] = float64(num) / float64(den)
	}
	return dms, true
}

func stringTag(x *exif.Exif, name exif.FieldName) (string, bool) {
	tag, err := x.Get(name)
	if err != nil || tag.Format() != tiff.StringVal {
		return "", false
	}
	val, err := tag.StringVal()
	if err != nil {
		return "", false
	}
	return val, true
}
