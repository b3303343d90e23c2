package plot

import (
	"fmt"
	"math"
	"time"

	"github.com/iafilius/LeituraViewer/src/leitura"
)

// Series is one named line or point cloud. Time panels fill Times, scatter panels fill X; Y is
// always parallel to whichever is used. Points with a NaN coordinate are never included.
type Series struct {
	Name  string
	Times []time.Time
	X     []float64
	Y     []float64
}

// Len returns the number of points in the series.
func (s Series) Len() int { return len(s.Y) }

// Panel is one set of axes.
type Panel struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series
	// TimeBounds pins the x axis of a time panel to the active filter. Nil lets the data decide.
	TimeBounds *leitura.TimeRange
	Scatter    bool
	Legend     bool
}

// Figure is what one plot button produces: a single panel, or three side by side for Matrix.
type Figure struct {
	Kind   Kind
	Panels []Panel
}

type timeSpec struct {
	field  leitura.Field
	ylabel string
}

var timeSpecs = map[Kind]timeSpec{
	TemperatureTime: {leitura.Temperature, "Temperatura"},
	HumidityTime:    {leitura.Humidity, "Umidade"},
	CPUTime:         {leitura.CPUTemperature, "Temp_CPU"},
}

type pair struct {
	x, y leitura.Field
}

var scatterPairs = map[Kind]pair{
	TemperatureVsHumidity: {leitura.Temperature, leitura.Humidity},
	TemperatureVsCPU:      {leitura.Temperature, leitura.CPUTemperature},
	HumidityVsCPU:         {leitura.Humidity, leitura.CPUTemperature},
}

const timeAxisLabel = "Data Hora"

// Build produces the chart data for kind over records. rng is the active filter and bounds the x
// axis of time panels; it may be nil. An empty selection yields leitura.ErrNoData.
func Build(kind Kind, records []leitura.Record, rng *leitura.TimeRange) (Figure, error) {
	if !kind.valid() {
		return Figure{}, fmt.Errorf("build plot: unknown kind %d", int(kind))
	}
	if len(records) == 0 {
		return Figure{}, leitura.ErrNoData
	}

	var bounds *leitura.TimeRange
	if rng != nil {
		b := *rng
		bounds = &b
	}

	fig := Figure{Kind: kind}
	switch kind {
	case TemperatureTime, HumidityTime, CPUTime:
		spec := timeSpecs[kind]
		fig.Panels = []Panel{{
			Title:      kind.Title(),
			XLabel:     timeAxisLabel,
			YLabel:     spec.ylabel,
			Series:     []Series{timeSeries(spec.field.Label(), records, spec.field)},
			TimeBounds: bounds,
		}}
	case Comparative:
		fig.Panels = []Panel{{
			Title:  kind.Title(),
			XLabel: timeAxisLabel,
			Series: []Series{
				timeSeries(leitura.Temperature.Label(), records, leitura.Temperature),
				timeSeries(leitura.Humidity.Label(), records, leitura.Humidity),
				timeSeries(leitura.CPUTemperature.Label(), records, leitura.CPUTemperature),
			},
			TimeBounds: bounds,
			Legend:     true,
		}}
	case TemperatureVsHumidity, TemperatureVsCPU, HumidityVsCPU:
		fig.Panels = []Panel{scatterPanel(kind, records)}
	case Matrix:
		fig.Panels = []Panel{
			scatterPanel(TemperatureVsHumidity, records),
			scatterPanel(TemperatureVsCPU, records),
			scatterPanel(HumidityVsCPU, records),
		}
	}
	return fig, nil
}

func timeSeries(name string, records []leitura.Record, f leitura.Field) Series {
	s := Series{Name: name, Times: make([]time.Time, 0, len(records)), Y: make([]float64, 0, len(records))}
	for _, r := range records {
		v := r.Value(f)
		if math.IsNaN(v) {
			continue
		}
		s.Times = append(s.Times, r.Timestamp)
		s.Y = append(s.Y, v)
	}
	return s
}

func scatterPanel(kind Kind, records []leitura.Record) Panel {
	p := scatterPairs[kind]
	s := Series{Name: kind.Title(), X: make([]float64, 0, len(records)), Y: make([]float64, 0, len(records))}
	for _, r := range records {
		x, y := r.Value(p.x), r.Value(p.y)
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		s.X = append(s.X, x)
		s.Y = append(s.Y, y)
	}
	return Panel{
		Title:   kind.Title(),
		XLabel:  p.x.Label(),
		YLabel:  p.y.Label(),
		Series:  []Series{s},
		Scatter: true,
	}
}
