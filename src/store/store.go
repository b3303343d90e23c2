// Package store reads sensor readings out of a SQLite file.
package store

import (
	"database/sql"
	_ "embed"
	"log/slog"
	"math"
	"time"

	"github.com/iafilius/LeituraViewer/src/leitura"
	"github.com/iafilius/LeituraViewer/src/logging"
)

//go:embed sql/select-readings.sql
var selectReadingsSQL string

// Options tunes a load. The zero value is usable.
type Options struct {
	Logger *slog.Logger
	// SQLDebug logs every statement at debug level.
	SQLDebug bool
	// Location is the zone datahora values are interpreted in; nil means time.Local.
	Location *time.Location
}

// Load opens path read-only, reads every row of the leitura table in query order and closes the
// database before returning. Rows whose datahora matches neither accepted layout are dropped and
// counted in Skipped. Open, query and scan failures come back as *leitura.DataAccessError.
func Load(path string, opts Options) (leitura.LoadResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	defer logging.TimeTrack(logger, time.Now(), "load "+path)

	db, err := open(path, opts.SQLDebug, logger)
	if err != nil {
		return leitura.LoadResult{}, &leitura.DataAccessError{Path: path, Op: "open", Err: err}
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("close database", "path", path, "error", err)
		}
	}()

	rows, err := db.Query(selectReadingsSQL)
	if err != nil {
		return leitura.LoadResult{}, &leitura.DataAccessError{Path: path, Op: "query", Err: err}
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("close readings rows", "error", err)
		}
	}()

	records, skipped, err := scanRecords(rows, loc, logger)
	if err != nil {
		return leitura.LoadResult{}, &leitura.DataAccessError{Path: path, Op: "scan", Err: err}
	}

	if skipped > 0 {
		logger.Warn("skipped readings with unparseable datahora", "path", path, "skipped", skipped)
	}
	logger.Info("readings loaded", "path", path, "records", len(records))

	return leitura.LoadResult{Path: path, Records: records, Skipped: skipped}, nil
}

func scanRecords(rows *sql.Rows, loc *time.Location, logger *slog.Logger) (leitura.Dataset, int, error) {
	out := leitura.Dataset{}
	skipped := 0
	for rows.Next() {
		var (
			id                  sql.NullInt64
			datahora            sql.NullString
			temp, umid, tempCPU sql.NullFloat64
		)
		if err := rows.Scan(&id, &datahora, &temp, &umid, &tempCPU); err != nil {
			return nil, 0, err
		}
		if !datahora.Valid {
			skipped++
			logger.Debug("skip reading", "id", id.Int64, "reason", "null datahora")
			continue
		}
		ts, err := leitura.ParseTimestampIn(datahora.String, loc)
		if err != nil {
			skipped++
			logger.Debug("skip reading", "id", id.Int64, "error", err)
			continue
		}
		out = append(out, leitura.Record{
			ID:             id.Int64,
			Timestamp:      ts,
			Temperature:    floatOrNaN(temp),
			Humidity:       floatOrNaN(umid),
			CPUTemperature: floatOrNaN(tempCPU),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, skipped, nil
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
