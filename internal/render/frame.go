package render

import (
	"fmt"
	"time"

	"github.com/couchcryptid/au-temperature-map/internal/domain"
	"github.com/couchcryptid/au-temperature-map/internal/geo"
)

// Where a region's temperature came from.
const (
	SourceRegion   = "region"
	SourceFallback = "fallback"
	SourceNone     = "none"
)

// RegionFill is the derived colour for one map region.
type RegionFill struct {
	Postcode    string  `json:"postcode"`
	Temperature float64 `json:"temperature"`
	Source      string  `json:"source"`
	Fill        string  `json:"fill,omitempty"`
}

// TracePoint is one vertex of a line-plot trace.
type TracePoint struct {
	Date    time.Time `json:"date"`
	AvgTemp float64   `json:"avg_temp"`
}

// Trace is one selected postcode's history from the range start through the
// cursor month.
type Trace struct {
	Postcode string       `json:"postcode"`
	Colour   string       `json:"colour"`
	Points   []TracePoint `json:"points"`
}

// Pin marks a selected postcode on the map.
type Pin struct {
	Slot     int     `json:"slot"`
	Postcode string  `json:"postcode"`
	Name     string  `json:"name"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Fill     string  `json:"fill"`
}

// Slider is the visual state of the time scrubber.
type Slider struct {
	Value int    `json:"value"`
	Max   int    `json:"max"`
	Class string `json:"class"`
}

// Frame is everything the views need for one cursor position.
type Frame struct {
	Offset          int              `json:"offset"`
	YearMonth       domain.YearMonth `json:"year_month"`
	Label           string           `json:"label"`
	Season          string           `json:"season"`
	Running         bool             `json:"running"`
	Average         float64          `json:"fallback_average"`
	HasAverage      bool             `json:"has_fallback_average"`
	BucketSize      int              `json:"bucket_size"`
	Regions         []RegionFill     `json:"regions"`
	Traces          []Trace          `json:"traces"`
	XDomain         [2]time.Time     `json:"x_domain"`
	Pins            []Pin            `json:"pins"`
	Slider          Slider           `json:"slider"`
	Zoom            geo.Transform    `json:"zoom"`
	Selection       domain.Selection `json:"selection"`
	TransitionMilli int64            `json:"transition_ms"`
}

// Region finds the fill for postcode.
func (f *Frame) Region(postcode string) (RegionFill, bool) {
	for _, r := range f.Regions {
		if r.Postcode == postcode {
			return r, true
		}
	}
	return RegionFill{}, false
}

// Tooltip is the hover text for a region.
func (f *Frame) Tooltip(postcode string) string {
	r, ok := f.Region(postcode)
	if !ok || r.Source == SourceNone {
		return fmt.Sprintf("Postcode: %s\nTemperature: n/a", postcode)
	}
	return fmt.Sprintf("Postcode: %s\nTemperature: %.1f°C", postcode, r.Temperature)
}

// fills keys each region's displayed state for reconciliation: its colour,
// where the value came from and the value shown in the tooltip.
func (f *Frame) fills() map[string]string {
	m := make(map[string]string, len(f.Regions))
	for _, r := range f.Regions {
		m[r.Postcode] = fmt.Sprintf("%s|%s|%.1f", r.Fill, r.Source, r.Temperature)
	}
	return m
}

// pins keys each pin by slot and postcode with its screen position.
func (f *Frame) pins() map[string]string {
	m := make(map[string]string, len(f.Pins))
	for _, p := range f.Pins {
		m[fmt.Sprintf("%d:%s", p.Slot, p.Postcode)] = fmt.Sprintf("%.3f,%.3f,%s", p.X, p.Y, p.Name)
	}
	return m
}
