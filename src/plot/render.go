package plot

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	png "image/png"
	"math"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Smallest panel go-chart lays out without overlapping its own padding.
const (
	minPanelWidth  = 240
	minPanelHeight = 200
)

// matplotlib's first three cycle colors, so the comparative chart reads the same as before.
var seriesColors = []drawing.Color{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
}

var gridStyle = chart.Style{StrokeColor: drawing.Color{R: 220, G: 220, B: 220, A: 255}, StrokeWidth: 1}

// lineStyle draws a thin line with small markers on every sample.
func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 1.5,
		DotWidth:    3,
		DotColor:    col,
	}
}

// pointStyle returns a style that renders points only (no connecting line)
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

// Render draws fig into a width x height image. Matrix figures split the width evenly between
// their panels.
func Render(fig Figure, width, height int) (image.Image, error) {
	if len(fig.Panels) == 0 {
		return nil, fmt.Errorf("render %s: figure has no panels", fig.Kind)
	}
	n := len(fig.Panels)
	if width < minPanelWidth*n {
		width = minPanelWidth * n
	}
	if height < minPanelHeight {
		height = minPanelHeight
	}
	if n == 1 {
		img, err := renderPanel(fig.Panels[0], width, height)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", fig.Kind, err)
		}
		return img, nil
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	pw := width / n
	for i, p := range fig.Panels {
		img, err := renderPanel(p, pw, height)
		if err != nil {
			return nil, fmt.Errorf("render %s panel %q: %w", fig.Kind, p.Title, err)
		}
		r := image.Rect(i*pw, 0, (i+1)*pw, height)
		draw.Draw(out, r, img, img.Bounds().Min, draw.Src)
	}
	return out, nil
}

func renderPanel(p Panel, w, h int) (image.Image, error) {
	if panelPoints(p) == 0 {
		return caption(filled(w, h, color.RGBA{R: 255, G: 255, B: 255, A: 255}), p.Title+": sem valores numéricos no intervalo"), nil
	}

	var (
		series []chart.Series
		xAxis  chart.XAxis
	)
	padBottom := 28
	if p.Scatter {
		series, xAxis = scatterSeries(p)
	} else {
		series, xAxis = timeSeriesAndAxis(p)
		padBottom = 64
	}
	xAxis.Name = p.XLabel
	xAxis.GridMajorStyle = gridStyle

	minY, maxY := yExtent(p)
	ys := newValueScale(minY, maxY, 6)

	ch := chart.Chart{
		Title:      p.Title,
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 28, Left: 16, Right: 16, Bottom: padBottom}},
		XAxis:      xAxis,
		YAxis: chart.YAxis{
			Name:           p.YLabel,
			Range:          ys.Range(),
			Ticks:          ys.Ticks(),
			GridMajorStyle: gridStyle,
		},
		Series: series,
	}
	if p.Legend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode chart png: %w", err)
	}
	return img, nil
}

func panelPoints(p Panel) int {
	n := 0
	for _, s := range p.Series {
		n += s.Len()
	}
	return n
}

func yExtent(p Panel) (float64, float64) {
	minY := math.MaxFloat64
	maxY := -math.MaxFloat64
	for _, s := range p.Series {
		for _, v := range s.Y {
			if v < minY {
				minY = v
			}
			if v > maxY {
				maxY = v
			}
		}
	}
	if minY == math.MaxFloat64 {
		return 0, 1
	}
	return minY, maxY
}

func timeSeriesAndAxis(p Panel) ([]chart.Series, chart.XAxis) {
	var minT, maxT time.Time
	if p.TimeBounds != nil {
		minT, maxT = p.TimeBounds.Start, p.TimeBounds.End
	} else {
		first := true
		for _, s := range p.Series {
			for _, t := range s.Times {
				if first || t.Before(minT) {
					minT = t
				}
				if first || t.After(maxT) {
					maxT = t
				}
				first = false
			}
		}
	}
	minT, maxT = timeAxisRange(minT, maxT)
	loc := minT.Location()

	step, layout := pickTimeStep(maxT.Sub(minT))
	xa := chart.XAxis{
		Ticks:          makeNiceTimeTicks(minT, maxT, step, layout, loc),
		Range:          &chart.ContinuousRange{Min: chart.TimeToFloat64(minT), Max: chart.TimeToFloat64(maxT)},
		ValueFormatter: chart.TimeValueFormatterWithFormat(layout),
		TickStyle:      chart.Style{TextRotationDegrees: 30},
	}

	out := []chart.Series{}
	for i, s := range p.Series {
		if s.Len() == 0 {
			continue
		}
		xs, ys := s.Times, s.Y
		if len(xs) == 1 {
			// go-chart wants two samples to lay out a line series
			xs = []time.Time{xs[0], xs[0]}
			ys = []float64{ys[0], ys[0]}
		}
		out = append(out, chart.TimeSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   lineStyle(seriesColors[i%len(seriesColors)]),
		})
	}
	return out, xa
}

func scatterSeries(p Panel) ([]chart.Series, chart.XAxis) {
	minX := math.MaxFloat64
	maxX := -math.MaxFloat64
	out := []chart.Series{}
	for i, s := range p.Series {
		if s.Len() == 0 {
			continue
		}
		for _, v := range s.X {
			if v < minX {
				minX = v
			}
			if v > maxX {
				maxX = v
			}
		}
		xs, ys := s.X, s.Y
		if len(xs) == 1 {
			xs = []float64{xs[0], xs[0]}
			ys = []float64{ys[0], ys[0]}
		}
		out = append(out, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(seriesColors[i%len(seriesColors)]),
		})
	}
	xs := newValueScale(minX, maxX, 6)
	return out, chart.XAxis{
		Range: xs.Range(),
		Ticks: xs.Ticks(),
	}
}

var placeholderBackground = color.RGBA{R: 18, G: 18, B: 18, A: 255}

// Placeholder returns a w x h dark canvas carrying text, for the chart area before anything is
// plotted or after the data behind a chart went away.
func Placeholder(w, h int, text string) image.Image {
	return caption(filled(w, h, placeholderBackground), text)
}

func filled(w, h int, bg color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return img
}

// caption writes text centred on img, in black or near-white depending on the background under it.
func caption(img *image.RGBA, text string) *image.RGBA {
	text = strings.TrimSpace(text)
	if text == "" {
		return img
	}
	b := img.Bounds()
	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: img, Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + (b.Dx()-tw)/2
	if x < b.Min.X+4 {
		x = b.Min.X + 4
	}
	y := b.Min.Y + (b.Dy()+face.Metrics().Ascent.Ceil())/2

	dr.Src = image.NewUniform(textColorOn(img.RGBAAt(b.Min.X, b.Min.Y)))
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return img
}

func textColorOn(bg color.RGBA) color.RGBA {
	// Rec. 601 luma
	luma := (299*int(bg.R) + 587*int(bg.G) + 114*int(bg.B)) / 1000
	if luma < 128 {
		return color.RGBA{R: 230, G: 230, B: 230, A: 255}
	}
	return color.RGBA{R: 40, G: 40, B: 40, A: 255}
}
