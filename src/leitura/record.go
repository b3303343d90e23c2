// Package leitura holds the sensor reading model shared by the loader, the plot builder and the
// hosts: records, the inclusive time range used for filtering and the error taxonomy.
package leitura

import (
	"math"
	"time"
)

// Field selects one of the three measurements carried by a Record.
type Field int

const (
	Temperature Field = iota
	Humidity
	CPUTemperature
)

// Label returns the short axis label used on charts.
func (f Field) Label() string {
	switch f {
	case Temperature:
		return "Temp"
	case Humidity:
		return "Umid"
	case CPUTemperature:
		return "CPU"
	default:
		return "?"
	}
}

// Record is one sensor sample. NULL measurements are stored as NaN.
type Record struct {
	ID             int64     `json:"id"`
	Timestamp      time.Time `json:"datahora"`
	Temperature    float64   `json:"temperatura"`
	Humidity       float64   `json:"umidade"`
	CPUTemperature float64   `json:"temp_cpu"`
}

// Value returns the measurement selected by f.
func (r Record) Value(f Field) float64 {
	switch f {
	case Temperature:
		return r.Temperature
	case Humidity:
		return r.Humidity
	case CPUTemperature:
		return r.CPUTemperature
	default:
		return math.NaN()
	}
}

// Dataset is the ordered list of records produced by one load. It is replaced wholesale on reload.
type Dataset []Record

// LoadResult is what a load hands back to the session: the records in query order plus the number
// of rows dropped because their timestamp matched neither accepted layout.
type LoadResult struct {
	Path    string
	Records Dataset
	Skipped int
}
