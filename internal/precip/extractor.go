package precip

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/rtm0/precip/internal/observability"
)

// File naming convention of the monthly precipitation files.
const (
	FilePrefix = "PRECIP_PT_mensal"
	FileSuffix = ".nc"
)

// DefaultField is the precipitation variable of the IPMA monthly grids.
const DefaultField = "var228"

// FileError records why a matched file contributed nothing.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one directory scan.
type Result struct {
	Series   TimeSeries
	Files    []string // matched files that were read successfully
	Failures []*FileError
}

// Extractor builds monthly series at a target coordinate from a directory of
// gridded files.
type Extractor struct {
	field   string
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithField selects the field variable. The default is DefaultField.
func WithField(name string) Option {
	return func(e *Extractor) { e.field = name }
}

// WithClock sets the clock used to time files.
func WithClock(c clockwork.Clock) Option {
	return func(e *Extractor) { e.clock = c }
}

// NewExtractor creates an Extractor.
func NewExtractor(logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Extractor {
	e := &Extractor{
		field:   DefaultField,
		logger:  logger,
		metrics: metrics,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MatchFile reports whether a file name follows the input convention.
func MatchFile(name string) bool {
	return strings.HasPrefix(name, FilePrefix) && strings.HasSuffix(name, FileSuffix)
}

// Extract reads every matching file in dir, in file name order, and returns
// the series at the grid cell nearest to (lat, lon) sorted by period.
// Unreadable files are reported in Result.Failures and skipped; only a
// failure to list dir is returned as an error.
func (e *Extractor) Extract(dir string, lat, lon float64) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}

	res := &Result{}
	var series TimeSeries
	for _, entry := range entries {
		if entry.IsDir() || !MatchFile(entry.Name()) {
			continue
		}
		e.metrics.FilesMatched.Inc()
		path := filepath.Join(dir, entry.Name())

		start := e.clock.Now()
		points, err := e.extractFile(path, lat, lon)
		e.metrics.FileDuration.Observe(e.clock.Since(start).Seconds())
		if err != nil {
			e.logger.Warn("skipping file", "file", entry.Name(), "err", err)
			e.metrics.FilesFailed.Inc()
			res.Failures = append(res.Failures, &FileError{File: entry.Name(), Err: err})
			continue
		}
		e.metrics.PointsExtracted.Add(float64(len(points)))
		res.Files = append(res.Files, entry.Name())
		series = append(series, points...)
	}

	series.Sort()
	res.Series = series
	e.logger.Info("extraction done",
		"files", len(res.Files),
		"failed", len(res.Failures),
		"points", len(series),
	)
	if dups := series.Duplicates(); len(dups) > 0 {
		e.logger.Warn("overlapping periods in input", "periods", len(dups), "first", dups[0].String())
	}
	return res, nil
}

// extractFile reads one file completely. A file either contributes all of
// its time steps or none.
func (e *Extractor) extractFile(path string, lat, lon float64) ([]ObservationPoint, error) {
	s, err := NewScanner(path, e.field, lat, lon)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	e.logger.Debug("reading file", append([]any{"file", filepath.Base(path)}, s.Summary()...)...)

	points := make([]ObservationPoint, 0, s.Len())
	for s.Scan() {
		points = append(points, s.Point())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return points, nil
}
