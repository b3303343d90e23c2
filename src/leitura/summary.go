package leitura

import (
	"math"
	"time"
)

// FieldStats aggregates one measurement over a selection. NaN samples are ignored; Count is the
// number of samples that contributed.
type FieldStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Avg   float64 `json:"avg"`
	Max   float64 `json:"max"`
}

// Summary captures aggregate values for a selection of records.
type Summary struct {
	Records        int        `json:"records"`
	First          time.Time  `json:"first,omitempty"`
	Last           time.Time  `json:"last,omitempty"`
	Temperature    FieldStats `json:"temperatura"`
	Humidity       FieldStats `json:"umidade"`
	CPUTemperature FieldStats `json:"temp_cpu"`
}

// Summarize computes counts, the earliest/latest timestamp and min/avg/max per field.
func Summarize(records []Record) Summary {
	s := Summary{Records: len(records)}
	if len(records) == 0 {
		return s
	}
	s.First = records[0].Timestamp
	s.Last = records[0].Timestamp
	for _, r := range records[1:] {
		if r.Timestamp.Before(s.First) {
			s.First = r.Timestamp
		}
		if r.Timestamp.After(s.Last) {
			s.Last = r.Timestamp
		}
	}
	s.Temperature = fieldStats(records, Temperature)
	s.Humidity = fieldStats(records, Humidity)
	s.CPUTemperature = fieldStats(records, CPUTemperature)
	return s
}

func fieldStats(records []Record, f Field) FieldStats {
	st := FieldStats{Min: math.NaN(), Avg: math.NaN(), Max: math.NaN()}
	sum := 0.0
	for _, r := range records {
		v := r.Value(f)
		if math.IsNaN(v) {
			continue
		}
		if st.Count == 0 || v < st.Min {
			st.Min = v
		}
		if st.Count == 0 || v > st.Max {
			st.Max = v
		}
		sum += v
		st.Count++
	}
	if st.Count > 0 {
		st.Avg = sum / float64(st.Count)
	}
	return st
}
