package plot

import (
	"math"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
)

// Readings that never move still get a one unit (degree or percent) wide scale.
const minValueSpan = 1.0

// valueScale is a numeric axis whose bounds are whole multiples of Step.
type valueScale struct {
	Min, Max, Step float64
}

// newValueScale fits a scale around [lo, hi] with roughly target intervals and a 5% margin on
// each side. Max > Min always holds.
func newValueScale(lo, hi float64, target int) valueScale {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return valueScale{Min: 0, Max: 1, Step: 0.2}
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi-lo < minValueSpan {
		mid := (lo + hi) / 2
		lo, hi = mid-minValueSpan/2, mid+minValueSpan/2
	}
	if target < 1 {
		target = 1
	}
	margin := (hi - lo) * 0.05
	lo, hi = lo-margin, hi+margin
	step := stepFor((hi - lo) / float64(target))
	return valueScale{
		Min:  math.Floor(lo/step) * step,
		Max:  math.Ceil(hi/step) * step,
		Step: step,
	}
}

// stepFor rounds raw up to the next 1, 2 or 5 times a power of ten.
func stepFor(raw float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5} {
		if raw <= m*mag*(1+1e-9) {
			return m * mag
		}
	}
	return 10 * mag
}

func (s valueScale) Range() *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: s.Min, Max: s.Max}
}

// Ticks labels every step from Min to Max with as many decimals as the step needs.
func (s valueScale) Ticks() []chart.Tick {
	if !(s.Step > 0) || !(s.Max > s.Min) {
		return nil
	}
	decimals := 0
	if s.Step < 1 {
		decimals = int(math.Ceil(-math.Log10(s.Step) - 1e-9))
	}
	n := int(math.Round((s.Max - s.Min) / s.Step))
	if n > 50 {
		n = 50
	}
	ticks := make([]chart.Tick, 0, n+1)
	for i := 0; i <= n; i++ {
		v := s.Min + float64(i)*s.Step
		if math.Abs(v) < s.Step*1e-6 {
			v = 0
		}
		ticks = append(ticks, chart.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', decimals, 64)})
	}
	return ticks
}

// Day/month ordering everywhere, matching the datahora column.
const (
	tickFmtSeconds = "15:04:05"
	tickFmtMinutes = "02/01 15:04"
	tickFmtDays    = "02/01"
)

// pickTimeStep maps a visible span to a tick step and label layout, aiming for at most ~10 labels.
func pickTimeStep(span time.Duration) (time.Duration, string) {
	switch {
	case span <= 2*time.Minute:
		return 15 * time.Second, tickFmtSeconds
	case span <= 10*time.Minute:
		return 1 * time.Minute, tickFmtMinutes
	case span <= 30*time.Minute:
		return 5 * time.Minute, tickFmtMinutes
	case span <= 1*time.Hour:
		return 10 * time.Minute, tickFmtMinutes
	case span <= 3*time.Hour:
		return 30 * time.Minute, tickFmtMinutes
	case span <= 8*time.Hour:
		return 1 * time.Hour, tickFmtMinutes
	case span <= 16*time.Hour:
		return 2 * time.Hour, tickFmtMinutes
	case span <= 2*24*time.Hour:
		return 6 * time.Hour, tickFmtMinutes
	case span <= 4*24*time.Hour:
		return 12 * time.Hour, tickFmtMinutes
	case span <= 10*24*time.Hour:
		return 24 * time.Hour, tickFmtDays
	case span <= 70*24*time.Hour:
		return 7 * 24 * time.Hour, tickFmtDays
	default:
		return 30 * 24 * time.Hour, tickFmtDays
	}
}

// makeNiceTimeTicks returns ticks at step boundaries of loc's wall clock between minT and maxT
// inclusive, labelled with labelFmt.
func makeNiceTimeTicks(minT, maxT time.Time, step time.Duration, labelFmt string, loc *time.Location) []chart.Tick {
	if step <= 0 || maxT.Before(minT) {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}
	st := int64(step / time.Second)
	if st <= 0 {
		st = 1
	}
	// Align on the wall clock so hourly and daily ticks land on round local times.
	_, off := minT.In(loc).Zone()
	wall := minT.Unix() + int64(off)
	aligned := (wall / st) * st
	if aligned < wall {
		aligned += st
	}
	first := time.Unix(aligned-int64(off), 0).In(loc)

	ticks := []chart.Tick{}
	for t := first; !t.After(maxT); t = t.Add(step) {
		ticks = append(ticks, chart.Tick{Value: chart.TimeToFloat64(t), Label: t.In(loc).Format(labelFmt)})
		if len(ticks) > 20 {
			break
		}
	}
	return ticks
}

// timeAxisRange returns the x range in go-chart units for [minT, maxT], widened when the two are
// equal.
func timeAxisRange(minT, maxT time.Time) (time.Time, time.Time) {
	if !maxT.After(minT) {
		return minT.Add(-30 * time.Second), minT.Add(30 * time.Second)
	}
	return minT, maxT
}
