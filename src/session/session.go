// Package session holds the viewer's working state: the loaded dataset and the active time range,
// and the three commands that move it along (load, apply filter, plot).
package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/iafilius/LeituraViewer/src/leitura"
	"github.com/iafilius/LeituraViewer/src/plot"
	"github.com/iafilius/LeituraViewer/src/store"
)

// State is where the session stands in NoDatabaseLoaded -> Loaded -> Filtered.
type State int

const (
	NoDatabaseLoaded State = iota
	Loaded
	Filtered
)

func (s State) String() string {
	switch s {
	case NoDatabaseLoaded:
		return "no-database"
	case Loaded:
		return "loaded"
	case Filtered:
		return "filtered"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StatusFilterApplied is the status text after a successful ApplyFilter.
const StatusFilterApplied = "Filtro aplicado"

// LoadedStatus is the status text after a load of n records.
func LoadedStatus(n int) string {
	return fmt.Sprintf("%d registros carregados", n)
}

// Loader reads a readings database.
type Loader interface {
	Load(path string) (leitura.LoadResult, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (leitura.LoadResult, error)

func (f LoaderFunc) Load(path string) (leitura.LoadResult, error) { return f(path) }

// StoreLoader loads through the SQLite store with opts.
func StoreLoader(opts store.Options) Loader {
	return LoaderFunc(func(path string) (leitura.LoadResult, error) {
		return store.Load(path, opts)
	})
}

// Session is not safe for concurrent use; hosts call it from their UI goroutine.
type Session struct {
	loader Loader
	logger *slog.Logger

	path    string
	loaded  bool
	dataset leitura.Dataset
	skipped int
	rng     *leitura.TimeRange
	status  string
}

func New(loader Loader, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{loader: loader, logger: logger}
}

// Load replaces the dataset with the contents of path. The previous dataset is dropped before
// reading, so a failed load leaves the session empty in NoDatabaseLoaded. The active range, if
// any, is kept.
func (s *Session) Load(path string) (leitura.LoadResult, error) {
	s.path = path
	s.loaded = false
	s.dataset = nil
	s.skipped = 0

	res, err := s.loader.Load(path)
	if err != nil {
		s.status = LoadedStatus(0)
		s.logger.Error("load failed", "path", path, "error", err)
		return leitura.LoadResult{}, err
	}
	s.loaded = true
	s.dataset = res.Records
	s.skipped = res.Skipped
	s.status = LoadedStatus(len(res.Records))
	s.logger.Debug("session loaded", "path", path, "records", len(res.Records), "state", s.State())
	return res, nil
}

// ApplyFilter sets the active range from the form's date and clock fields. On an inverted range
// it returns *leitura.RangeInversionError and the previous range stays in place.
func (s *Session) ApplyFilter(startDate time.Time, startClock leitura.Clock, endDate time.Time, endClock leitura.Clock) (leitura.TimeRange, error) {
	rng, err := leitura.RangeFromParts(startDate, startClock, endDate, endClock)
	if err != nil {
		s.logger.Warn("filter rejected", "error", err)
		return leitura.TimeRange{}, err
	}
	s.rng = &rng
	s.status = StatusFilterApplied
	s.logger.Debug("filter applied", "start", rng.Start, "end", rng.End, "matching", len(s.Filtered()))
	return rng, nil
}

// Filtered returns the records inside the active range. Without a range or a dataset it is empty.
func (s *Session) Filtered() []leitura.Record {
	return leitura.Filter(s.dataset, s.rng)
}

// Plot builds the chart data for kind over the filtered records. An empty selection, including
// the case where no filter has been applied yet, yields leitura.ErrNoData.
func (s *Session) Plot(kind plot.Kind) (plot.Figure, error) {
	return plot.Build(kind, s.Filtered(), s.rng)
}

// Summary summarises the filtered records.
func (s *Session) Summary() leitura.Summary {
	return leitura.Summarize(s.Filtered())
}

func (s *Session) State() State {
	switch {
	case !s.loaded:
		return NoDatabaseLoaded
	case s.rng == nil:
		return Loaded
	default:
		return Filtered
	}
}

// Path is the file of the last load attempt.
func (s *Session) Path() string { return s.path }

// Dataset returns the loaded records. Callers must not modify it.
func (s *Session) Dataset() leitura.Dataset { return s.dataset }

// Skipped is the number of rows the last load dropped for an unparseable timestamp.
func (s *Session) Skipped() int { return s.skipped }

// Range returns a copy of the active range, or nil.
func (s *Session) Range() *leitura.TimeRange {
	if s.rng == nil {
		return nil
	}
	r := *s.rng
	return &r
}

// Status is the status-bar text left by the last command.
func (s *Session) Status() string { return s.status }
