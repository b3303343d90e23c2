package leitura

import "time"

// TimeRange is an inclusive [Start, End] window. Build it with NewTimeRange or RangeFromParts so
// Start <= End holds.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange validates that end is not before start.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if end.Before(start) {
		return TimeRange{}, &RangeInversionError{Start: start, End: end}
	}
	return TimeRange{Start: start, End: end}, nil
}

// Contains reports whether t lies inside the inclusive range.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Clock is a minute-resolution time of day as entered in the filter form.
type Clock struct {
	Hour   int
	Minute int
}

// RangeFromParts combines calendar days with clock times. The start takes second 0 and the end
// second 59 so the whole end minute is included.
func RangeFromParts(startDay time.Time, start Clock, endDay time.Time, end Clock) (TimeRange, error) {
	s := time.Date(startDay.Year(), startDay.Month(), startDay.Day(), start.Hour, start.Minute, 0, 0, startDay.Location())
	e := time.Date(endDay.Year(), endDay.Month(), endDay.Day(), end.Hour, end.Minute, 59, 0, endDay.Location())
	return NewTimeRange(s, e)
}

// Filter returns the records whose timestamp lies in rng, keeping dataset order. A nil range or an
// empty dataset yields nil. The dataset is never modified.
func Filter(dataset Dataset, rng *TimeRange) []Record {
	if len(dataset) == 0 || rng == nil {
		return nil
	}
	out := make([]Record, 0, len(dataset))
	for _, r := range dataset {
		if rng.Contains(r.Timestamp) {
			out = append(out, r)
		}
	}
	return out
}
