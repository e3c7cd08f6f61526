// Package plot draws the comparison line plot for a frame.
package plot

import (
	"bytes"
	"fmt"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/au-temperature-map/internal/render"
)

// LinePlot renders the two selected postcode traces over the frame's x-domain
// with a fixed temperature axis.
type LinePlot struct {
	Width   int
	Height  int
	MinTemp float64
	MaxTemp float64
}

// PNG encodes the line plot for f.
func (p LinePlot) PNG(f render.Frame) ([]byte, error) {
	start, end := f.XDomain[0], f.XDomain[1]
	if !end.After(start) {
		// The first month has a single x value; widen so the axis has extent.
		end = start.AddDate(0, 1, 0)
	}

	series := []chart.Series{domainSeries(start, end, p.MinTemp)}
	for _, tr := range f.Traces {
		if len(tr.Points) == 0 {
			continue
		}
		ts := chart.TimeSeries{
			Name: tr.Postcode,
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex(tr.Colour),
				StrokeWidth: 1.5,
				DotColor:    drawing.ColorFromHex(tr.Colour),
				DotWidth:    1.5,
			},
		}
		for _, pt := range tr.Points {
			ts.XValues = append(ts.XValues, pt.Date)
			ts.YValues = append(ts.YValues, pt.AvgTemp)
		}
		series = append(series, ts)
	}

	c := chart.Chart{
		Title:  fmt.Sprintf("%s vs %s", f.Selection[0], f.Selection[1]),
		Width:  p.Width,
		Height: p.Height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 2006"),
			Range:          &chart.ContinuousRange{Min: chart.TimeToFloat64(start), Max: chart.TimeToFloat64(end)},
		},
		YAxis: chart.YAxis{
			Name:           "Avg temp (°C)",
			ValueFormatter: func(v any) string { return fmt.Sprintf("%.0f", v) },
			Range:          &chart.ContinuousRange{Min: p.MinTemp, Max: p.MaxTemp},
		},
		Series: series,
	}
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render line plot: %w", err)
	}
	return buf.Bytes(), nil
}

// domainSeries is an invisible two-point series spanning the x-domain, so a
// plot with no selected data still has something to lay out.
func domainSeries(start, end time.Time, y float64) chart.TimeSeries {
	return chart.TimeSeries{
		Style: chart.Style{
			StrokeColor: drawing.ColorTransparent,
			StrokeWidth: 0.1,
		},
		XValues: []time.Time{start, end},
		YValues: []float64{y, y},
	}
}
