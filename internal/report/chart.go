package report

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"PrimeTerminal/internal/calculator"
	"PrimeTerminal/internal/model"
)

// Overlay periods drawn on price charts when the series is long enough.
var DefaultOverlays = []int{50, 200}

var overlayColors = []drawing.Color{
	drawing.ColorFromHex("f59e0b"), // amber-500
	drawing.ColorFromHex("dc2626"), // red-600
	drawing.ColorFromHex("16a34a"), // green-600
}

var compareColors = []drawing.Color{
	drawing.ColorFromHex("2563eb"),
	drawing.ColorFromHex("dc2626"),
	drawing.ColorFromHex("16a34a"),
	drawing.ColorFromHex("9333ea"),
	drawing.ColorFromHex("f59e0b"),
}

func timeAxis() chart.XAxis {
	return chart.XAxis{
		TickPosition: chart.TickPositionBetweenTicks,
		ValueFormatter: func(v interface{}) string {
			if t, ok := v.(float64); ok {
				return chart.TimeFromFloat64(t).Format("Jan 06")
			}
			return ""
		},
	}
}

// RenderPriceChart renders a PNG line chart of closing prices with SMA
// overlays for every period the series can fill.
func RenderPriceChart(series model.PriceSeries, overlays ...int) ([]byte, error) {
	if series.Len() < 2 {
		return nil, fmt.Errorf("need at least 2 bars, got %d", series.Len())
	}

	closes := series.Closes()
	xValues := make([]time.Time, series.Len())
	for i, b := range series.Bars {
		xValues[i] = b.Time
	}

	graph := chart.Chart{
		Title:  series.Symbol,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: timeAxis(),
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Close",
				Style:   chart.Style{StrokeColor: drawing.ColorFromHex("2563eb"), StrokeWidth: 2},
				XValues: xValues,
				YValues: closes,
			},
		},
	}

	for i, period := range overlays {
		sma, err := calculator.SMA(closes, period)
		if err != nil {
			continue // not enough history for this overlay
		}
		xs, ys := dropNaN(xValues, sma)
		if len(xs) < 2 {
			continue
		}
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name: fmt.Sprintf("SMA %d", period),
			Style: chart.Style{
				StrokeColor:     overlayColors[i%len(overlayColors)],
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: xs,
			YValues: ys,
		})
	}

	return render(&graph)
}

// RenderComparisonChart draws rebased performance lines on one axis.
func RenderComparisonChart(perfs []model.Performance) ([]byte, error) {
	graph := chart.Chart{
		Title:  "Performanta comparata (%)",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: timeAxis(),
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%+.0f%%", f)
				}
				return ""
			},
		},
	}
	for i, p := range perfs {
		if len(p.Values) < 2 || len(p.Times) != len(p.Values) {
			continue
		}
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name:    p.Symbol,
			Style:   chart.Style{StrokeColor: compareColors[i%len(compareColors)], StrokeWidth: 2},
			XValues: p.Times,
			YValues: p.Values,
		})
	}
	if len(graph.Series) == 0 {
		return nil, fmt.Errorf("no series with at least 2 points")
	}
	return render(&graph)
}

// render adds the legend and pads a flat y-range, which go-chart rejects.
func render(graph *chart.Chart) ([]byte, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range graph.Series {
		ts, ok := s.(chart.TimeSeries)
		if !ok {
			continue
		}
		for _, y := range ts.YValues {
			lo = math.Min(lo, y)
			hi = math.Max(hi, y)
		}
	}
	if lo == hi {
		graph.YAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func dropNaN(xs []time.Time, ys []float64) ([]time.Time, []float64) {
	outX := make([]time.Time, 0, len(ys))
	outY := make([]float64, 0, len(ys))
	for i, y := range ys {
		if math.IsNaN(y) {
			continue
		}
		outX = append(outX, xs[i])
		outY = append(outY, y)
	}
	return outX, outY
}
